package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"flowforge-backend/application/queries"
	querybus "flowforge-backend/application/queries/bus"
	"flowforge-backend/pkg/common"
)

// SearchHandler handles content search requests
type SearchHandler struct {
	queryBus *querybus.QueryBus
	logger   *zap.Logger
}

// NewSearchHandler creates a search handler
func NewSearchHandler(queryBus *querybus.QueryBus, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{queryBus: queryBus, logger: logger}
}

// SearchNodes handles GET /search/nodes?q=...&flowId=...
// An empty flowId scans every known flow.
func (h *SearchHandler) SearchNodes(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.SearchNodesQuery{
		Query:  r.URL.Query().Get("q"),
		FlowID: r.URL.Query().Get("flowId"),
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// SearchFlows handles GET /search/flows?q=...
func (h *SearchHandler) SearchFlows(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.SearchFlowsQuery{
		Query: r.URL.Query().Get("q"),
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// SearchByDNIS handles GET /search/dnis?number=...
func (h *SearchHandler) SearchByDNIS(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.SearchByDNISQuery{
		DNIS: r.URL.Query().Get("number"),
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}
