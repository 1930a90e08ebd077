package ports

import (
	"context"

	"flowforge-backend/domain/comments"
	"flowforge-backend/domain/core/aggregates"
	"flowforge-backend/domain/core/entities"
	"flowforge-backend/domain/identity"
	"flowforge-backend/domain/versioning"
)

// FlowRepository is the persistence port for one flow's worth of state: the
// graph, the version history, the comment threads, and the catalog record.
// Implementations return NOT_FOUND AppErrors for missing flows and
// STORAGE_FULL AppErrors when a write exceeds the storage quota.
type FlowRepository interface {
	// LoadGraph retrieves the node and edge collections
	LoadGraph(ctx context.Context, flowID string) (aggregates.Flow, error)

	// SaveGraph persists the node and edge collections
	SaveGraph(ctx context.Context, flowID string, flow aggregates.Flow) error

	// LoadHistory retrieves the version list, newest first
	LoadHistory(ctx context.Context, flowID string) ([]versioning.Version, error)

	// SaveHistory persists the version list
	SaveHistory(ctx context.Context, flowID string, versions []versioning.Version) error

	// LoadComments retrieves the comment threads
	LoadComments(ctx context.Context, flowID string) ([]comments.Comment, error)

	// SaveComments persists the comment threads
	SaveComments(ctx context.Context, flowID string, threads []comments.Comment) error

	// GetFlowInfo retrieves the catalog record
	GetFlowInfo(ctx context.Context, flowID string) (entities.FlowInfo, error)

	// PutFlowInfo creates or updates the catalog record
	PutFlowInfo(ctx context.Context, info entities.FlowInfo) error

	// ListFlows returns every catalog record
	ListFlows(ctx context.Context) ([]entities.FlowInfo, error)

	// DeleteFlow removes the graph, history, comments and catalog record
	DeleteFlow(ctx context.Context, flowID string) error
}

// CounterStore persists the global node-id counter shared across flows
type CounterStore = identity.CounterStore

// ChangeNotifier signals that a flow's persisted data changed outside the
// current session. Delivery may be out of order or duplicated; subscribers
// react by reloading, never by merging.
type ChangeNotifier interface {
	// Subscribe registers a handler and returns an unsubscribe function
	Subscribe(handler func(flowID string)) func()
}
