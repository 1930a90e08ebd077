package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flowforge-backend/application/commands"
	"flowforge-backend/application/commands/bus"
	"flowforge-backend/domain/core/aggregates"
	"flowforge-backend/pkg/common"
	pkgerrors "flowforge-backend/pkg/errors"
	"flowforge-backend/pkg/utils"
)

// EdgeHandler handles edge mutation requests
type EdgeHandler struct {
	commandBus *bus.CommandBus
	logger     *zap.Logger
}

// NewEdgeHandler creates an edge handler
func NewEdgeHandler(commandBus *bus.CommandBus, logger *zap.Logger) *EdgeHandler {
	return &EdgeHandler{commandBus: commandBus, logger: logger}
}

// ConnectRequest is the request body for connecting two nodes
type ConnectRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Handle string `json:"handle,omitempty"`
}

// Connect handles POST /flows/{flowID}/edges
func (h *EdgeHandler) Connect(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	var req ConnectRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError(err.Error()))
		return
	}

	cmd := &commands.ConnectNodesCommand{
		FlowID:   flowID,
		SourceID: req.Source,
		TargetID: req.Target,
		Handle:   req.Handle,
		Actor:    actorFrom(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, cmd.Result)
}

// UpdateEdgeRequest is the request body for an edge patch
type UpdateEdgeRequest struct {
	Animated *bool                  `json:"animated,omitempty"`
	Handle   *string                `json:"handle,omitempty"`
	Style    map[string]interface{} `json:"style,omitempty"`
}

// UpdateEdge handles PATCH /flows/{flowID}/edges/{edgeID}
func (h *EdgeHandler) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	edgeID := chi.URLParam(r, "edgeID")

	var req UpdateEdgeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cmd := &commands.UpdateEdgeCommand{
		FlowID: flowID,
		EdgeID: edgeID,
		Patch: aggregates.EdgePatch{
			Animated: req.Animated,
			Handle:   req.Handle,
			Style:    req.Style,
		},
		Actor: actorFrom(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, cmd.Result)
}

// Disconnect handles DELETE /flows/{flowID}/edges/{edgeID}
func (h *EdgeHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	edgeID := chi.URLParam(r, "edgeID")

	cmd := &commands.DisconnectEdgeCommand{FlowID: flowID, EdgeID: edgeID, Actor: actorFrom(r)}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, cmd.Result)
}
