// Package handlers exposes the flow engine over HTTP. Handlers translate
// requests into commands and queries; all engine behavior lives behind the
// buses.
package handlers

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"flowforge-backend/application/commands"
	"flowforge-backend/application/commands/bus"
	"flowforge-backend/application/queries"
	querybus "flowforge-backend/application/queries/bus"
	"flowforge-backend/domain/core/entities"
	"flowforge-backend/pkg/common"
	pkgerrors "flowforge-backend/pkg/errors"
	"flowforge-backend/pkg/utils"
)

// maxImportBytes bounds import uploads
const maxImportBytes = 8 << 20

// FlowHandler handles flow lifecycle requests
type FlowHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewFlowHandler creates a flow handler
func NewFlowHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *FlowHandler {
	return &FlowHandler{commandBus: commandBus, queryBus: queryBus, logger: logger}
}

// ListFlows handles GET /flows
func (h *FlowHandler) ListFlows(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListFlowsQuery{})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetFlow handles GET /flows/{flowID}
func (h *FlowHandler) GetFlow(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	result, err := h.queryBus.Ask(r.Context(), queries.GetFlowQuery{FlowID: flowID})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// UpdateFlowRequest is the request body for updating flow metadata
type UpdateFlowRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	DNIS        []string `json:"dnis" validate:"omitempty,dive,min=1,max=32"`
}

// UpdateFlow handles PUT /flows/{flowID}
func (h *FlowHandler) UpdateFlow(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	var req UpdateFlowRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError(err.Error()))
		return
	}

	cmd := &commands.UpdateFlowInfoCommand{Info: entities.FlowInfo{
		ID:          flowID,
		Name:        req.Name,
		Description: req.Description,
		DNIS:        req.DNIS,
	}}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, cmd.Info)
}

// DeleteFlow handles DELETE /flows/{flowID}
func (h *FlowHandler) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	if err := h.commandBus.Send(r.Context(), &commands.DeleteFlowCommand{FlowID: flowID}); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"deleted": flowID})
}

// ReloadFlow handles POST /flows/{flowID}/reload
func (h *FlowHandler) ReloadFlow(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	if err := h.commandBus.Send(r.Context(), &commands.ReloadFlowCommand{FlowID: flowID}); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]string{"reloaded": flowID})
}

// ExportFlow handles GET /flows/{flowID}/export, returning the raw document
// rather than the envelope so the response can be saved as a file
func (h *FlowHandler) ExportFlow(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	result, err := h.queryBus.Ask(r.Context(), queries.ExportFlowQuery{FlowID: flowID})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	doc, ok := result.([]byte)
	if !ok {
		common.RespondAppError(w, pkgerrors.NewInternalError("unexpected export result"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="flow-`+flowID+`.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

// ImportFlow handles POST /flows/{flowID}/import
func (h *FlowHandler) ImportFlow(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	actor := actorFrom(r)

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		common.RespondAppError(w, pkgerrors.NewValidationError("could not read import payload"))
		return
	}

	cmd := &commands.ImportFlowCommand{FlowID: flowID, Payload: payload, Actor: actor}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, cmd.Result)
}

// ValidateFlow handles GET /flows/{flowID}/validate
func (h *FlowHandler) ValidateFlow(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	result, err := h.queryBus.Ask(r.Context(), queries.ValidateFlowQuery{FlowID: flowID})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
