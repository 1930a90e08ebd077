package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"flowforge-backend/application/ports"
	"flowforge-backend/domain/core/aggregates"
	"flowforge-backend/domain/core/entities"
	"flowforge-backend/domain/core/valueobjects"
	pkgerrors "flowforge-backend/pkg/errors"
)

// NodeMatch is one matching field inside a node
type NodeMatch struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// NodeSearchResult is one matching node. A node reports every field that
// matched; a node with zero matching fields is excluded entirely.
type NodeSearchResult struct {
	FlowID   string                `json:"flowId"`
	FlowName string                `json:"flowName"`
	NodeID   string                `json:"nodeId"`
	NodeType valueobjects.NodeKind `json:"nodeType"`
	Matches  []NodeMatch           `json:"matches"`
}

// SearchService answers content queries over node payloads and the flow
// catalog. Matching is case-insensitive substring containment, never fuzzy,
// via a linear scan; the domain size is per-operator, not web-scale.
type SearchService struct {
	repo     ports.FlowRepository
	sessions *SessionManager
	logger   *zap.Logger
}

// NewSearchService creates a search service
func NewSearchService(repo ports.FlowRepository, sessions *SessionManager, logger *zap.Logger) *SearchService {
	return &SearchService{repo: repo, sessions: sessions, logger: logger}
}

// SearchNodes scans node content for a substring. With a flow id the live
// session graph is scanned; without one every known flow's persisted graph
// is scanned and results carry the owning flow's id and name.
func (s *SearchService) SearchNodes(ctx context.Context, query, flowID string) ([]NodeSearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, pkgerrors.NewValidationError("search query is required")
	}
	needle := strings.ToLower(query)

	if flowID != "" {
		flow, _, err := s.sessions.Graph(ctx, flowID)
		if err != nil {
			return nil, err
		}
		info, err := s.sessions.FlowInfo(ctx, flowID)
		if err != nil {
			return nil, err
		}
		return scanFlow(flow, info, needle), nil
	}

	infos, err := s.repo.ListFlows(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list flows")
	}

	results := []NodeSearchResult{}
	for _, info := range infos {
		flow, err := s.repo.LoadGraph(ctx, info.ID)
		if err != nil {
			if pkgerrors.IsNotFound(err) {
				continue
			}
			s.logger.Warn("skipping unreadable flow in search",
				zap.String("flowId", info.ID),
				zap.Error(err),
			)
			continue
		}
		results = append(results, scanFlow(flow, info, needle)...)
	}
	return results, nil
}

// scanFlow collects matches for every node in one flow
func scanFlow(flow aggregates.Flow, info entities.FlowInfo, needle string) []NodeSearchResult {
	results := []NodeSearchResult{}
	for _, node := range flow.Nodes {
		matches := matchNode(node, needle)
		if len(matches) == 0 {
			continue
		}
		results = append(results, NodeSearchResult{
			FlowID:   info.ID,
			FlowName: info.Name,
			NodeID:   node.ID,
			NodeType: node.Type,
			Matches:  matches,
		})
	}
	return results
}

// matchNode checks the node's type plus its payload's searchable fields
func matchNode(node entities.Node, needle string) []NodeMatch {
	fields := []entities.SearchField{{Name: "type", Value: node.Type.String()}}
	if node.Data != nil {
		fields = append(fields, node.Data.SearchFields()...)
	}

	matches := []NodeMatch{}
	for _, f := range fields {
		if f.Value == "" {
			continue
		}
		if strings.Contains(strings.ToLower(f.Value), needle) {
			matches = append(matches, NodeMatch{Field: f.Name, Value: f.Value})
		}
	}
	return matches
}

// SearchFlows returns catalog records whose name contains the query
func (s *SearchService) SearchFlows(ctx context.Context, query string) ([]entities.FlowInfo, error) {
	if strings.TrimSpace(query) == "" {
		return nil, pkgerrors.NewValidationError("search query is required")
	}
	needle := strings.ToLower(query)

	infos, err := s.repo.ListFlows(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list flows")
	}

	out := []entities.FlowInfo{}
	for _, info := range infos {
		if strings.Contains(strings.ToLower(info.Name), needle) {
			out = append(out, info)
		}
	}
	return out, nil
}

// SearchByDNIS returns catalog records with a dialed number containing the
// query
func (s *SearchService) SearchByDNIS(ctx context.Context, dnis string) ([]entities.FlowInfo, error) {
	if strings.TrimSpace(dnis) == "" {
		return nil, pkgerrors.NewValidationError("dnis is required")
	}

	infos, err := s.repo.ListFlows(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "list flows")
	}

	out := []entities.FlowInfo{}
	for _, info := range infos {
		for _, number := range info.DNIS {
			if strings.Contains(number, dnis) {
				out = append(out, info)
				break
			}
		}
	}
	return out, nil
}
