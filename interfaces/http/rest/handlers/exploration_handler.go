package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"lamad-backend/application/queries"
	"lamad-backend/application/services"
	"lamad-backend/pkg/common"
	pkgerrors "lamad-backend/pkg/errors"
)

// ExplorationHandler handles graph exploration HTTP requests
type ExplorationHandler struct {
	exploration *services.ExplorationService
	logger      *zap.Logger
}

// NewExplorationHandler creates a new exploration handler
func NewExplorationHandler(exploration *services.ExplorationService, logger *zap.Logger) *ExplorationHandler {
	return &ExplorationHandler{
		exploration: exploration,
		logger:      logger,
	}
}

// Explore handles POST /graph/explore
func (h *ExplorationHandler) Explore(w http.ResponseWriter, r *http.Request) {
	agentID, ok := common.GetAgentID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing agent identity")
		return
	}

	var query queries.ExploreNeighborhoodQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		common.RespondError(w, http.StatusBadRequest, pkgerrors.CodeInvalidQuery, "malformed request body")
		return
	}

	view, err := h.exploration.ExploreNeighborhood(r.Context(), agentID, query)
	if err != nil {
		h.respondError(w, agentID, err)
		return
	}

	// The depth-keyed map goes over the wire in ordered record form.
	common.RespondJSON(w, http.StatusOK, queries.SerializeGraphView(*view))
}

// FindPath handles POST /graph/path
func (h *ExplorationHandler) FindPath(w http.ResponseWriter, r *http.Request) {
	agentID, ok := common.GetAgentID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing agent identity")
		return
	}

	var query queries.FindPathQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		common.RespondError(w, http.StatusBadRequest, pkgerrors.CodeInvalidQuery, "malformed request body")
		return
	}

	result, err := h.exploration.FindPath(r.Context(), agentID, query)
	if err != nil {
		h.respondError(w, agentID, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// EstimateCost handles POST /graph/estimate
func (h *ExplorationHandler) EstimateCost(w http.ResponseWriter, r *http.Request) {
	agentID, ok := common.GetAgentID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing agent identity")
		return
	}

	var query queries.EstimateCostQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		common.RespondError(w, http.StatusBadRequest, pkgerrors.CodeInvalidQuery, "malformed request body")
		return
	}

	cost := h.exploration.EstimateCost(r.Context(), agentID, query)
	common.RespondJSON(w, http.StatusOK, cost)
}

// RateLimitStatus handles GET /limits
func (h *ExplorationHandler) RateLimitStatus(w http.ResponseWriter, r *http.Request) {
	agentID, ok := common.GetAgentID(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing agent identity")
		return
	}

	common.RespondJSON(w, http.StatusOK, h.exploration.RateLimitStatus(agentID))
}

// Events handles GET /events
func (h *ExplorationHandler) Events(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	if agentID := r.URL.Query().Get("agent_id"); agentID != "" {
		common.RespondJSON(w, http.StatusOK, h.exploration.AgentEvents(agentID, limit))
		return
	}
	common.RespondJSON(w, http.StatusOK, h.exploration.RecentEvents(limit))
}

// respondError maps typed engine errors onto HTTP responses
func (h *ExplorationHandler) respondError(w http.ResponseWriter, agentID string, err error) {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		common.RespondErrorWithDetails(w, appErr.HTTPStatus, appErr.Code, appErr.Message, appErr.Details)
		return
	}

	h.logger.Error("unhandled exploration error",
		zap.String("agentID", agentID),
		zap.Error(err),
	)
	common.RespondError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}
