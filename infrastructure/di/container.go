package di

import (
	"go.uber.org/zap"

	appservices "lamad-backend/application/services"
	"lamad-backend/infrastructure/config"
	"lamad-backend/pkg/audit"
	"lamad-backend/pkg/auth"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Exploration  *appservices.ExplorationService
	RateLimiter  *auth.TieredRateLimiter
	EventLog     *audit.EventLog
	JWTValidator *auth.JWTValidator
}
