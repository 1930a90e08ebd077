// Package handlers wires read queries to the session engine and search
// service
package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"flowforge-backend/application/ports"
	"flowforge-backend/application/queries"
	"flowforge-backend/application/queries/bus"
	"flowforge-backend/application/services"
)

// FlowQueryHandler serves every read query of the flow engine
type FlowQueryHandler struct {
	sessions *services.SessionManager
	search   *services.SearchService
	repo     ports.FlowRepository
	logger   *zap.Logger
}

// NewFlowQueryHandler creates a flow query handler
func NewFlowQueryHandler(
	sessions *services.SessionManager,
	search *services.SearchService,
	repo ports.FlowRepository,
	logger *zap.Logger,
) *FlowQueryHandler {
	return &FlowQueryHandler{sessions: sessions, search: search, repo: repo, logger: logger}
}

// Queries lists the query types this handler serves
func (h *FlowQueryHandler) Queries() []bus.Query {
	return []bus.Query{
		queries.GetFlowQuery{},
		queries.ListFlowsQuery{},
		queries.ListVersionsQuery{},
		queries.ValidateFlowQuery{},
		queries.ExportFlowQuery{},
		queries.ListCommentsQuery{},
		queries.CommentCountsQuery{},
		queries.SearchNodesQuery{},
		queries.SearchFlowsQuery{},
		queries.SearchByDNISQuery{},
	}
}

// Handle implements bus.QueryHandler
func (h *FlowQueryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	switch q := query.(type) {
	case queries.GetFlowQuery:
		flow, lastActive, err := h.sessions.Graph(ctx, q.FlowID)
		if err != nil {
			return nil, err
		}
		info, err := h.sessions.FlowInfo(ctx, q.FlowID)
		if err != nil {
			return nil, err
		}
		return queries.GetFlowResult{Info: info, Flow: flow, LastActive: lastActive}, nil

	case queries.ListFlowsQuery:
		return h.repo.ListFlows(ctx)

	case queries.ListVersionsQuery:
		return h.sessions.Versions(ctx, q.FlowID)

	case queries.ValidateFlowQuery:
		return h.sessions.Validate(ctx, q.FlowID)

	case queries.ExportFlowQuery:
		return h.sessions.Export(ctx, q.FlowID)

	case queries.ListCommentsQuery:
		return h.sessions.Comments(ctx, q.FlowID)

	case queries.CommentCountsQuery:
		return h.sessions.CommentCounts(ctx, q.FlowID)

	case queries.SearchNodesQuery:
		return h.search.SearchNodes(ctx, q.Query, q.FlowID)

	case queries.SearchFlowsQuery:
		return h.search.SearchFlows(ctx, q.Query)

	case queries.SearchByDNISQuery:
		return h.search.SearchByDNIS(ctx, q.DNIS)

	default:
		return nil, fmt.Errorf("unexpected query type %T", query)
	}
}
