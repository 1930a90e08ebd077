package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flowforge-backend/application/commands"
	"flowforge-backend/application/commands/bus"
	"flowforge-backend/application/services"
	"flowforge-backend/domain/core/valueobjects"
	"flowforge-backend/pkg/common"
	pkgerrors "flowforge-backend/pkg/errors"
	"flowforge-backend/pkg/utils"
)

// NodeHandler handles node mutation requests
type NodeHandler struct {
	commandBus *bus.CommandBus
	logger     *zap.Logger
}

// NewNodeHandler creates a node handler
func NewNodeHandler(commandBus *bus.CommandBus, logger *zap.Logger) *NodeHandler {
	return &NodeHandler{commandBus: commandBus, logger: logger}
}

// AddNodeRequest is the request body for creating a node
type AddNodeRequest struct {
	Type     string `json:"type" validate:"required"`
	Position *struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	} `json:"position,omitempty"`
}

// AddNode handles POST /flows/{flowID}/nodes
func (h *NodeHandler) AddNode(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	var req AddNodeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError(err.Error()))
		return
	}

	var position *valueobjects.Position
	if req.Position != nil {
		p := valueobjects.NewPosition(req.Position.X, req.Position.Y)
		position = &p
	}

	cmd := &commands.AddNodeCommand{
		FlowID:   flowID,
		Kind:     valueobjects.NodeKind(req.Type),
		Position: position,
		Actor:    actorFrom(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}

	if cmd.Result.Status == services.StatusRejectedTerminal {
		common.RespondError(w, http.StatusConflict,
			string(services.StatusRejectedTerminal),
			"flow already has a terminal node")
		return
	}
	common.RespondJSON(w, http.StatusCreated, cmd.Result)
}

// UpdateNodeDataRequest is the request body for a node data patch
type UpdateNodeDataRequest struct {
	Data map[string]interface{} `json:"data" validate:"required"`
}

// UpdateNodeData handles PATCH /flows/{flowID}/nodes/{nodeID}
func (h *NodeHandler) UpdateNodeData(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	nodeID := chi.URLParam(r, "nodeID")

	var req UpdateNodeDataRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cmd := &commands.UpdateNodeDataCommand{
		FlowID: flowID,
		NodeID: nodeID,
		Patch:  req.Data,
		Actor:  actorFrom(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, cmd.Result)
}

// UpdateNodeStyleRequest is the request body for a cosmetic style patch
type UpdateNodeStyleRequest struct {
	Style map[string]interface{} `json:"style" validate:"required"`
}

// UpdateNodeStyle handles PATCH /flows/{flowID}/nodes/{nodeID}/style
func (h *NodeHandler) UpdateNodeStyle(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	nodeID := chi.URLParam(r, "nodeID")

	var req UpdateNodeStyleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cmd := &commands.UpdateNodeStyleCommand{
		FlowID: flowID,
		NodeID: nodeID,
		Style:  req.Style,
		Actor:  actorFrom(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, cmd.Result)
}

// MoveNodeRequest is the request body for a position change
type MoveNodeRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MoveNode handles PATCH /flows/{flowID}/nodes/{nodeID}/position
func (h *NodeHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	nodeID := chi.URLParam(r, "nodeID")

	var req MoveNodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cmd := &commands.MoveNodeCommand{
		FlowID:   flowID,
		NodeID:   nodeID,
		Position: valueobjects.NewPosition(req.X, req.Y),
		Actor:    actorFrom(r),
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, cmd.Result)
}

// DeleteNode handles DELETE /flows/{flowID}/nodes/{nodeID}
func (h *NodeHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	nodeID := chi.URLParam(r, "nodeID")

	cmd := &commands.DeleteNodeCommand{FlowID: flowID, NodeID: nodeID, Actor: actorFrom(r)}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, cmd.Result)
}

// SelectNode handles POST /flows/{flowID}/nodes/{nodeID}/select
func (h *NodeHandler) SelectNode(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	nodeID := chi.URLParam(r, "nodeID")

	cmd := &commands.SelectNodeCommand{FlowID: flowID, NodeID: nodeID}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"selected": nodeID})
}
