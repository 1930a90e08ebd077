// Package queries defines the read side of the flow engine
package queries

import (
	"flowforge-backend/domain/core/aggregates"
	"flowforge-backend/domain/core/entities"
	pkgerrors "flowforge-backend/pkg/errors"
)

// GetFlowQuery reads a flow's graph and catalog record
type GetFlowQuery struct {
	FlowID string
}

// Validate implements bus.Query
func (q GetFlowQuery) Validate() error {
	if q.FlowID == "" {
		return pkgerrors.NewValidationError("flow id is required")
	}
	return nil
}

// GetFlowResult is the result of GetFlowQuery
type GetFlowResult struct {
	Info       entities.FlowInfo `json:"info"`
	Flow       aggregates.Flow   `json:"flow"`
	LastActive string            `json:"lastActiveNodeId,omitempty"`
}

// ListFlowsQuery reads every catalog record
type ListFlowsQuery struct{}

// Validate implements bus.Query
func (q ListFlowsQuery) Validate() error { return nil }

// ListVersionsQuery reads a flow's snapshot history, newest first
type ListVersionsQuery struct {
	FlowID string
}

// Validate implements bus.Query
func (q ListVersionsQuery) Validate() error {
	if q.FlowID == "" {
		return pkgerrors.NewValidationError("flow id is required")
	}
	return nil
}

// ValidateFlowQuery runs the referential-integrity pass
type ValidateFlowQuery struct {
	FlowID string
}

// Validate implements bus.Query
func (q ValidateFlowQuery) Validate() error {
	if q.FlowID == "" {
		return pkgerrors.NewValidationError("flow id is required")
	}
	return nil
}

// ExportFlowQuery serializes the graph to an indented JSON document
type ExportFlowQuery struct {
	FlowID string
}

// Validate implements bus.Query
func (q ExportFlowQuery) Validate() error {
	if q.FlowID == "" {
		return pkgerrors.NewValidationError("flow id is required")
	}
	return nil
}

// ListCommentsQuery reads a flow's comment threads
type ListCommentsQuery struct {
	FlowID string
}

// Validate implements bus.Query
func (q ListCommentsQuery) Validate() error {
	if q.FlowID == "" {
		return pkgerrors.NewValidationError("flow id is required")
	}
	return nil
}

// CommentCountsQuery reads per-node comment activity
type CommentCountsQuery struct {
	FlowID string
}

// Validate implements bus.Query
func (q CommentCountsQuery) Validate() error {
	if q.FlowID == "" {
		return pkgerrors.NewValidationError("flow id is required")
	}
	return nil
}

// SearchNodesQuery scans node content for a substring. FlowID empty means
// every known flow is scanned.
type SearchNodesQuery struct {
	Query  string
	FlowID string
}

// Validate implements bus.Query
func (q SearchNodesQuery) Validate() error {
	if q.Query == "" {
		return pkgerrors.NewValidationError("search query is required")
	}
	return nil
}

// SearchFlowsQuery scans catalog names for a substring
type SearchFlowsQuery struct {
	Query string
}

// Validate implements bus.Query
func (q SearchFlowsQuery) Validate() error {
	if q.Query == "" {
		return pkgerrors.NewValidationError("search query is required")
	}
	return nil
}

// SearchByDNISQuery finds flows by dialed number
type SearchByDNISQuery struct {
	DNIS string
}

// Validate implements bus.Query
func (q SearchByDNISQuery) Validate() error {
	if q.DNIS == "" {
		return pkgerrors.NewValidationError("dnis is required")
	}
	return nil
}
