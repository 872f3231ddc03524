package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"lamad-backend/application/ports"
	appservices "lamad-backend/application/services"
	domainservices "lamad-backend/domain/services"
	"lamad-backend/infrastructure/config"
	"lamad-backend/infrastructure/messaging/eventbridge"
	dynamopersistence "lamad-backend/infrastructure/persistence/dynamodb"
	"lamad-backend/infrastructure/persistence/memory"
	"lamad-backend/pkg/audit"
	"lamad-backend/pkg/auth"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideGraphProvider selects the configured snapshot source
func ProvideGraphProvider(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.GraphProvider {
	if cfg.GraphSource == "memory" {
		return memory.NewGraphProvider()
	}
	return dynamopersistence.NewGraphSnapshotRepository(client, cfg.DynamoDBTable, logger)
}

// ProvideAgentDirectory selects the configured directory source
func ProvideAgentDirectory(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.AgentDirectory {
	if cfg.GraphSource == "memory" {
		return memory.NewAgentDirectory()
	}
	return dynamopersistence.NewAgentDirectory(client, cfg.DynamoDBTable, logger)
}

// ProvideEventPublisher creates the audit event publisher, nil when
// publishing is disabled
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if !cfg.PublishEvents {
		return nil
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideAttestationAuthority creates the attestation authority
func ProvideAttestationAuthority(directory ports.AgentDirectory, logger *zap.Logger) *auth.AttestationAuthority {
	return auth.NewAttestationAuthority(directory, logger)
}

// ProvideRateLimiter creates the tiered rate limiter
func ProvideRateLimiter() *auth.TieredRateLimiter {
	return auth.NewTieredRateLimiter()
}

// ProvideTraversalService creates the BFS traversal service
func ProvideTraversalService(logger *zap.Logger) *domainservices.TraversalService {
	return domainservices.NewTraversalService(logger)
}

// ProvidePathfindingService creates the pathfinding service
func ProvidePathfindingService(logger *zap.Logger) *domainservices.PathfindingService {
	return domainservices.NewPathfindingService(logger)
}

// ProvideCostEstimator creates the cost estimator
func ProvideCostEstimator() *domainservices.CostEstimator {
	return domainservices.NewCostEstimator()
}

// ProvideEventLog creates the bounded audit log
func ProvideEventLog(cfg *config.Config) *audit.EventLog {
	return audit.NewEventLog(cfg.EventLogCapacity)
}

// ProvideJWTValidator creates the bearer-token validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && !cfg.IsProduction() {
		secret = "development-secret-change-in-production"
	}
	return auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: secret,
		Issuer:    cfg.JWTIssuer,
	})
}

// ProvideExplorationService wires the orchestration facade
func ProvideExplorationService(
	graphs ports.GraphProvider,
	authority *auth.AttestationAuthority,
	limiter *auth.TieredRateLimiter,
	traversal *domainservices.TraversalService,
	pathfinder *domainservices.PathfindingService,
	estimator *domainservices.CostEstimator,
	events *audit.EventLog,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *appservices.ExplorationService {
	return appservices.NewExplorationService(
		graphs,
		authority,
		limiter,
		traversal,
		pathfinder,
		estimator,
		events,
		publisher,
		logger,
	)
}
