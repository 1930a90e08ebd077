package di

import (
	"go.uber.org/zap"

	"flowforge-backend/application/commands/bus"
	querybus "flowforge-backend/application/queries/bus"
	"flowforge-backend/application/services"
	domainconfig "flowforge-backend/domain/config"
	"flowforge-backend/domain/identity"
	"flowforge-backend/infrastructure/config"
	"flowforge-backend/pkg/auth"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	DomainConfig *domainconfig.DomainConfig
	Storage      *Storage
	Allocator    *identity.Allocator
	Sessions     *services.SessionManager
	Search       *services.SearchService
	Validator    *auth.JWTValidator
	CommandBus   *bus.CommandBus
	QueryBus     *querybus.QueryBus
}
