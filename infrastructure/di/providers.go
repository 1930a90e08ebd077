package di

import (
	"context"

	"go.uber.org/zap"

	"flowforge-backend/application/commands/bus"
	commandhandlers "flowforge-backend/application/commands/handlers"
	"flowforge-backend/application/ports"
	querybus "flowforge-backend/application/queries/bus"
	queryhandlers "flowforge-backend/application/queries/handlers"
	"flowforge-backend/application/services"
	domainconfig "flowforge-backend/domain/config"
	"flowforge-backend/domain/identity"
	"flowforge-backend/infrastructure/config"
	ddb "flowforge-backend/infrastructure/persistence/dynamodb"
	"flowforge-backend/infrastructure/persistence/memory"
	"flowforge-backend/pkg/auth"
	pkgerrors "flowforge-backend/pkg/errors"
)

// devJWTSecret keeps local development working without configuration. The
// config validator refuses an empty secret in production.
const devJWTSecret = "development-secret-change-in-production"

// Storage bundles the persistence ports a driver provides
type Storage struct {
	Repo     ports.FlowRepository
	Counter  ports.CounterStore
	Notifier ports.ChangeNotifier
}

// ProvideLogger creates the zap logger for the configured environment
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideDomainConfig supplies the flow-engine tunables
func ProvideDomainConfig() *domainconfig.DomainConfig {
	return domainconfig.DefaultDomainConfig()
}

// ProvideStorage selects the persistence driver
func ProvideStorage(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Storage, error) {
	switch cfg.StorageDriver {
	case config.StorageDynamoDB:
		client, err := ddb.NewClient(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Repo:    ddb.NewFlowRepository(client, cfg.DynamoDBTable, logger),
			Counter: ddb.NewCounterStore(client, cfg.DynamoDBTable, logger),
			// Remote-change signals for the durable backend arrive out of
			// band; nothing is wired in-process.
			Notifier: noopNotifier{},
		}, nil

	case config.StorageMemory:
		store := memory.NewStore(cfg.MemoryQuotaBytes)
		return &Storage{Repo: store, Counter: store, Notifier: store}, nil

	default:
		return nil, pkgerrors.NewInternalError("unknown storage driver " + cfg.StorageDriver)
	}
}

// noopNotifier is a ChangeNotifier that never fires
type noopNotifier struct{}

func (noopNotifier) Subscribe(func(flowID string)) func() {
	return func() {}
}

// ProvideAllocator seeds the node-id allocator from the persisted counter
func ProvideAllocator(ctx context.Context, storage *Storage, logger *zap.Logger) (*identity.Allocator, error) {
	return identity.NewAllocator(ctx, storage.Counter, logger)
}

// ProvideSessionManager creates the per-flow editor engine and subscribes it
// to remote-change signals
func ProvideSessionManager(
	storage *Storage,
	allocator *identity.Allocator,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *services.SessionManager {
	sessions := services.NewSessionManager(storage.Repo, allocator, domainCfg, logger)
	storage.Notifier.Subscribe(sessions.HandleRemoteChange)
	return sessions
}

// ProvideSearchService creates the content search service
func ProvideSearchService(storage *Storage, sessions *services.SessionManager, logger *zap.Logger) *services.SearchService {
	return services.NewSearchService(storage.Repo, sessions, logger)
}

// ProvideJWTValidator creates the session token validator
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && cfg.IsDevelopment() {
		secret = devJWTSecret
	}
	return auth.NewJWTValidator(auth.JWTConfig{SecretKey: secret, Issuer: cfg.JWTIssuer})
}

// ProvideCommandBus creates the command bus with every handler registered
func ProvideCommandBus(sessions *services.SessionManager, logger *zap.Logger) (*bus.CommandBus, error) {
	b := bus.NewCommandBus()
	logging := bus.LoggingMiddleware(logger)

	type registrar interface {
		Commands() []bus.Command
		Handle(ctx context.Context, cmd bus.Command) error
	}

	for _, h := range []registrar{
		commandhandlers.NewGraphCommandHandler(sessions, logger),
		commandhandlers.NewVersionCommandHandler(sessions, logger),
		commandhandlers.NewCommentCommandHandler(sessions, logger),
		commandhandlers.NewFlowCommandHandler(sessions, logger),
	} {
		wrapped := bus.Chain(h, logging)
		for _, cmd := range h.Commands() {
			if err := b.Register(cmd, wrapped); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// ProvideQueryBus creates the query bus with every handler registered
func ProvideQueryBus(
	sessions *services.SessionManager,
	search *services.SearchService,
	storage *Storage,
	logger *zap.Logger,
) (*querybus.QueryBus, error) {
	b := querybus.NewQueryBus()
	logging := querybus.LoggingMiddleware(logger)

	handler := queryhandlers.NewFlowQueryHandler(sessions, search, storage.Repo, logger)
	wrapped := logging(handler)
	for _, q := range handler.Queries() {
		if err := b.Register(q, wrapped); err != nil {
			return nil, err
		}
	}
	return b, nil
}
