// Package versioning implements the append-only snapshot history of a flow:
// capped FIFO ledger, time-gated auto-save policy, and restore with edge-id
// repair.
package versioning

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"flowforge-backend/domain/core/aggregates"
	"flowforge-backend/domain/core/entities"
	"flowforge-backend/domain/core/valueobjects"
	pkgerrors "flowforge-backend/pkg/errors"
)

// Version is an immutable, timestamped deep copy of a flow's node and edge
// collections
type Version struct {
	ID        string               `json:"id"`
	Timestamp time.Time            `json:"timestamp"`
	Nodes     []entities.Node      `json:"nodes"`
	Edges     []entities.Edge      `json:"edges"`
	Message   string               `json:"message"`
	User      valueobjects.UserRef `json:"user"`
}

// Ledger holds one flow's snapshot history, newest first
type Ledger struct {
	maxVersions int
	versions    []Version
}

// NewLedger creates a ledger over existing history. The cap applies
// immediately: oversized history is truncated from the oldest end.
func NewLedger(maxVersions int, existing []Version) *Ledger {
	versions := make([]Version, len(existing))
	copy(versions, existing)
	if len(versions) > maxVersions {
		versions = versions[:maxVersions]
	}
	return &Ledger{maxVersions: maxVersions, versions: versions}
}

// Snapshot deep-copies the flow and prepends a new version. The oldest entry
// is evicted once the cap is reached.
func (l *Ledger) Snapshot(flow aggregates.Flow, message string, user valueobjects.UserRef, now time.Time) (Version, error) {
	copied, err := flow.Clone()
	if err != nil {
		return Version{}, pkgerrors.Wrap(err, "snapshot flow")
	}

	version := Version{
		ID:        uuid.New().String(),
		Timestamp: now,
		Nodes:     copied.Nodes,
		Edges:     copied.Edges,
		Message:   message,
		User:      user,
	}

	l.versions = append([]Version{version}, l.versions...)
	if len(l.versions) > l.maxVersions {
		l.versions = l.versions[:l.maxVersions]
	}

	return version, nil
}

// Versions returns the history, newest first
func (l *Ledger) Versions() []Version {
	out := make([]Version, len(l.versions))
	copy(out, l.versions)
	return out
}

// Len returns the number of stored versions
func (l *Ledger) Len() int {
	return len(l.versions)
}

// Find returns the version with the given id
func (l *Ledger) Find(id string) (Version, bool) {
	for _, v := range l.versions {
		if v.ID == id {
			return v, true
		}
	}
	return Version{}, false
}

// RestoreMessage is the snapshot message recorded when a version is restored
func RestoreMessage(v Version) string {
	return fmt.Sprintf("Restored version from %s", v.Timestamp.Format(time.RFC3339))
}

// Restore materializes a version back into a flow value. The copy is deep,
// missing collections become empty (corrupted versions never fail the whole
// restore), and every edge is guaranteed a non-empty unique id before the
// graph is handed back.
func Restore(v Version) (aggregates.Flow, error) {
	source := aggregates.Flow{Nodes: v.Nodes, Edges: v.Edges}
	if source.Nodes == nil {
		source.Nodes = []entities.Node{}
	}
	if source.Edges == nil {
		source.Edges = []entities.Edge{}
	}

	restored, err := source.Clone()
	if err != nil {
		return aggregates.Flow{}, pkgerrors.Wrap(err, "restore version")
	}

	seen := map[string]bool{}
	for i := range restored.Edges {
		edge := &restored.Edges[i]
		if !usableEdgeID(edge.ID) || seen[edge.ID] {
			edge.ID = fmt.Sprintf("edge-%s-%s-%d", edge.Source, edge.Target, i)
		}
		seen[edge.ID] = true
	}

	return restored, nil
}

// usableEdgeID rejects empty ids and the literal placeholders a rendering
// layer may have written during an interrupted restore
func usableEdgeID(id string) bool {
	switch id {
	case "", "null", "undefined":
		return false
	}
	return true
}

// SnapshotPolicy gates time-based auto snapshots
type SnapshotPolicy struct {
	Interval time.Duration
}

// ShouldAutoSnapshot reports whether a structural change should record an
// "Auto-saved" snapshot: the interval has elapsed since the last snapshot
// and the flow has at least one node.
func (p SnapshotPolicy) ShouldAutoSnapshot(lastSnapshotAt time.Time, nodeCount int, now time.Time) bool {
	if nodeCount < 1 {
		return false
	}
	return now.Sub(lastSnapshotAt) > p.Interval
}
