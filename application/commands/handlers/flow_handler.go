package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flowforge-backend/application/commands"
	"flowforge-backend/application/commands/bus"
	"flowforge-backend/application/services"
)

// FlowCommandHandler executes flow lifecycle commands
type FlowCommandHandler struct {
	sessions *services.SessionManager
	logger   *zap.Logger
}

// NewFlowCommandHandler creates a flow command handler
func NewFlowCommandHandler(sessions *services.SessionManager, logger *zap.Logger) *FlowCommandHandler {
	return &FlowCommandHandler{sessions: sessions, logger: logger}
}

// Commands lists the command types this handler serves
func (h *FlowCommandHandler) Commands() []bus.Command {
	return []bus.Command{
		&commands.ReloadFlowCommand{},
		&commands.DeleteFlowCommand{},
		&commands.UpdateFlowInfoCommand{},
	}
}

// Handle implements bus.CommandHandler
func (h *FlowCommandHandler) Handle(ctx context.Context, cmd bus.Command) error {
	switch c := cmd.(type) {
	case *commands.ReloadFlowCommand:
		h.sessions.Reload(c.FlowID)
		return nil

	case *commands.DeleteFlowCommand:
		return h.sessions.DeleteFlow(ctx, c.FlowID)

	case *commands.UpdateFlowInfoCommand:
		return h.sessions.UpdateFlowInfo(ctx, c.Info)

	default:
		return fmt.Errorf("unexpected command type %T", cmd)
	}
}
