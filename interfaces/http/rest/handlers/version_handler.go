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
)

// VersionHandler handles snapshot history requests
type VersionHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewVersionHandler creates a version handler
func NewVersionHandler(commandBus *bus.CommandBus, queryBus *querybus.QueryBus, logger *zap.Logger) *VersionHandler {
	return &VersionHandler{commandBus: commandBus, queryBus: queryBus, logger: logger}
}

// ListVersions handles GET /flows/{flowID}/versions
func (h *VersionHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	result, err := h.queryBus.Ask(r.Context(), queries.ListVersionsQuery{FlowID: flowID})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// SaveVersionRequest is the request body for an explicit snapshot
type SaveVersionRequest struct {
	Message string `json:"message,omitempty"`
}

// SaveVersion handles POST /flows/{flowID}/versions
func (h *VersionHandler) SaveVersion(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")

	var req SaveVersionRequest
	if r.ContentLength > 0 && !decodeBody(w, r, &req) {
		return
	}

	cmd := &commands.SaveVersionCommand{FlowID: flowID, Message: req.Message, Actor: actorFrom(r)}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, cmd.Result)
}

// RestoreVersion handles POST /flows/{flowID}/versions/{versionID}/restore
func (h *VersionHandler) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	flowID := chi.URLParam(r, "flowID")
	versionID := chi.URLParam(r, "versionID")

	cmd := &commands.RestoreVersionCommand{FlowID: flowID, VersionID: versionID, Actor: actorFrom(r)}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, cmd.Result)
}
