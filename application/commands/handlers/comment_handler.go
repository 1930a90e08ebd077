package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flowforge-backend/application/commands"
	"flowforge-backend/application/commands/bus"
	"flowforge-backend/application/services"
)

// CommentCommandHandler executes comment thread commands
type CommentCommandHandler struct {
	sessions *services.SessionManager
	logger   *zap.Logger
}

// NewCommentCommandHandler creates a comment command handler
func NewCommentCommandHandler(sessions *services.SessionManager, logger *zap.Logger) *CommentCommandHandler {
	return &CommentCommandHandler{sessions: sessions, logger: logger}
}

// Commands lists the command types this handler serves
func (h *CommentCommandHandler) Commands() []bus.Command {
	return []bus.Command{
		&commands.AddCommentCommand{},
		&commands.AddReplyCommand{},
		&commands.DeleteCommentCommand{},
		&commands.DeleteReplyCommand{},
	}
}

// Handle implements bus.CommandHandler
func (h *CommentCommandHandler) Handle(ctx context.Context, cmd bus.Command) error {
	switch c := cmd.(type) {
	case *commands.AddCommentCommand:
		comment, warning, err := h.sessions.AddComment(ctx, c.FlowID, c.NodeID, c.Text, c.Actor)
		if err != nil {
			return err
		}
		c.Result = comment
		c.StorageWarning = warning
		return nil

	case *commands.AddReplyCommand:
		reply, warning, err := h.sessions.AddReply(ctx, c.FlowID, c.CommentID, c.Text, c.Actor)
		if err != nil {
			return err
		}
		c.Result = reply
		c.StorageWarning = warning
		return nil

	case *commands.DeleteCommentCommand:
		return h.sessions.DeleteComment(ctx, c.FlowID, c.CommentID, c.Actor)

	case *commands.DeleteReplyCommand:
		return h.sessions.DeleteReply(ctx, c.FlowID, c.CommentID, c.ReplyID, c.Actor)

	default:
		return fmt.Errorf("unexpected command type %T", cmd)
	}
}
