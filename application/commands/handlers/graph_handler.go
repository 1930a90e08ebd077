// Package handlers wires mutation commands to the session engine
package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flowforge-backend/application/commands"
	"flowforge-backend/application/commands/bus"
	"flowforge-backend/application/services"
)

// GraphCommandHandler executes node and edge mutation commands
type GraphCommandHandler struct {
	sessions *services.SessionManager
	logger   *zap.Logger
}

// NewGraphCommandHandler creates a graph command handler
func NewGraphCommandHandler(sessions *services.SessionManager, logger *zap.Logger) *GraphCommandHandler {
	return &GraphCommandHandler{sessions: sessions, logger: logger}
}

// Commands lists the command types this handler serves
func (h *GraphCommandHandler) Commands() []bus.Command {
	return []bus.Command{
		&commands.AddNodeCommand{},
		&commands.DeleteNodeCommand{},
		&commands.UpdateNodeDataCommand{},
		&commands.UpdateNodeStyleCommand{},
		&commands.MoveNodeCommand{},
		&commands.SelectNodeCommand{},
		&commands.ConnectNodesCommand{},
		&commands.DisconnectEdgeCommand{},
		&commands.UpdateEdgeCommand{},
	}
}

// Handle implements bus.CommandHandler
func (h *GraphCommandHandler) Handle(ctx context.Context, cmd bus.Command) error {
	switch c := cmd.(type) {
	case *commands.AddNodeCommand:
		result, err := h.sessions.AddNode(ctx, c.FlowID, c.Kind, c.Position, c.Actor)
		if err != nil {
			return err
		}
		c.Result = result
		return nil

	case *commands.DeleteNodeCommand:
		result, err := h.sessions.DeleteNode(ctx, c.FlowID, c.NodeID, c.Actor)
		if err != nil {
			return err
		}
		c.Result = result
		return nil

	case *commands.UpdateNodeDataCommand:
		result, err := h.sessions.UpdateNodeData(ctx, c.FlowID, c.NodeID, c.Patch, c.Actor)
		if err != nil {
			return err
		}
		c.Result = result
		return nil

	case *commands.UpdateNodeStyleCommand:
		result, err := h.sessions.UpdateNodeStyle(ctx, c.FlowID, c.NodeID, c.Style, c.Actor)
		if err != nil {
			return err
		}
		c.Result = result
		return nil

	case *commands.MoveNodeCommand:
		result, err := h.sessions.MoveNode(ctx, c.FlowID, c.NodeID, c.Position, c.Actor)
		if err != nil {
			return err
		}
		c.Result = result
		return nil

	case *commands.SelectNodeCommand:
		return h.sessions.SelectNode(ctx, c.FlowID, c.NodeID)

	case *commands.ConnectNodesCommand:
		result, err := h.sessions.ConnectNodes(ctx, c.FlowID, c.SourceID, c.TargetID, c.Handle, c.Actor)
		if err != nil {
			return err
		}
		c.Result = result
		return nil

	case *commands.DisconnectEdgeCommand:
		result, err := h.sessions.DisconnectEdge(ctx, c.FlowID, c.EdgeID, c.Actor)
		if err != nil {
			return err
		}
		c.Result = result
		return nil

	case *commands.UpdateEdgeCommand:
		result, err := h.sessions.UpdateEdge(ctx, c.FlowID, c.EdgeID, c.Patch, c.Actor)
		if err != nil {
			return err
		}
		c.Result = result
		return nil

	default:
		return fmt.Errorf("unexpected command type %T", cmd)
	}
}
