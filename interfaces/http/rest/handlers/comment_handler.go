package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flowforge-backend/application/commands"
	"flowforge-backend/application/commands/bus"
	"flowforge-backend/application/queries"
	querybus "flowforge-backend/application/queries/bus"
	"flowforge-backend/pkg/common"
	pkgerrors "flowforge-backend/pkg/errors"
	"flowforge-backend/pkg/utils"
)

// CommentHandler handles comment thread requests
type CommentHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewCommentHandler creates a comment handler
func NewCommentHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{commandBus: commandBus, queryBus: queryBus, logger: logger}
}

// ListComments handles GET /flows/{flowID}/comments
func (h *CommentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	result, err := h.queryBus.Ask(r.Context(), queries.ListCommentsQuery{FlowID: flowID})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// CommentCounts handles GET /flows/{flowID}/comments/counts
func (h *CommentHandler) CommentCounts(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	result, err := h.queryBus.Ask(r.Context(), queries.CommentCountsQuery{FlowID: flowID})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// AddCommentRequest is the request body for creating a comment
type AddCommentRequest struct {
	NodeID string `json:"nodeId" validate:"required"`
	Text   string `json:"text" validate:"required,min=1,max=4000"`
}

// AddComment handles POST /flows/{flowID}/comments
func (h *CommentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	var req AddCommentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError(err.Error()))
		return
	}

	cmd := &commands.AddCommentCommand{
		FlowID: flowID,
		NodeID: req.NodeID,
		Text:   req.Text,
		Actor:  actorFrom(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"comment":        cmd.Result,
		"storageWarning": cmd.StorageWarning,
	})
}

// AddReplyRequest is the request body for replying to a comment
type AddReplyRequest struct {
	Text string `json:"text" validate:"required,min=1,max=4000"`
}

// AddReply handles POST /flows/{flowID}/comments/{commentID}/replies
func (h *CommentHandler) AddReply(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	commentID := chi.URLParam(r, "commentID")

	var req AddReplyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError(err.Error()))
		return
	}

	cmd := &commands.AddReplyCommand{
		FlowID:    flowID,
		CommentID: commentID,
		Text:      req.Text,
		Actor:     actorFrom(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"reply":          cmd.Result,
		"storageWarning": cmd.StorageWarning,
	})
}

// DeleteComment handles DELETE /flows/{flowID}/comments/{commentID}
func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	commentID := chi.URLParam(r, "commentID")

	cmd := &commands.DeleteCommentCommand{FlowID: flowID, CommentID: commentID, Actor: actorFrom(r)}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"deleted": commentID})
}

// DeleteReply handles DELETE /flows/{flowID}/comments/{commentID}/replies/{replyID}
func (h *CommentHandler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	commentID := chi.URLParam(r, "commentID")
	replyID := chi.URLParam(r, "replyID")

	cmd := &commands.DeleteReplyCommand{
		FlowID:    flowID,
		CommentID: commentID,
		ReplyID:   replyID,
		Actor:     actorFrom(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"deleted": replyID})
}
