package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flowforge-backend/application/commands"
	"flowforge-backend/application/commands/bus"
	"flowforge-backend/application/services"
)

// VersionCommandHandler executes snapshot, restore and import commands
type VersionCommandHandler struct {
	sessions *services.SessionManager
	logger   *zap.Logger
}

// NewVersionCommandHandler creates a version command handler
func NewVersionCommandHandler(sessions *services.SessionManager, logger *zap.Logger) *VersionCommandHandler {
	return &VersionCommandHandler{sessions: sessions, logger: logger}
}

// Commands lists the command types this handler serves
func (h *VersionCommandHandler) Commands() []bus.Command {
	return []bus.Command{
		&commands.SaveVersionCommand{},
		&commands.RestoreVersionCommand{},
		&commands.ImportFlowCommand{},
	}
}

// Handle implements bus.CommandHandler
func (h *VersionCommandHandler) Handle(ctx context.Context, cmd bus.Command) error {
	switch c := cmd.(type) {
	case *commands.SaveVersionCommand:
		version, err := h.sessions.SaveVersion(ctx, c.FlowID, c.Message, c.Actor)
		if err != nil {
			return err
		}
		c.Result = version
		return nil

	case *commands.RestoreVersionCommand:
		result, err := h.sessions.RestoreVersion(ctx, c.FlowID, c.VersionID, c.Actor)
		if err != nil {
			return err
		}
		c.Result = result
		return nil

	case *commands.ImportFlowCommand:
		result, err := h.sessions.Import(ctx, c.FlowID, c.Payload, c.Actor)
		if err != nil {
			return err
		}
		c.Result = result
		return nil

	default:
		return fmt.Errorf("unexpected command type %T", cmd)
	}
}
