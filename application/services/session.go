// Package services hosts the editor session engine: per-flow in-memory graph
// state, the mutation protocol, snapshot cadence, and the persistence
// write boundary.
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"flowforge-backend/application/ports"
	"flowforge-backend/domain/comments"
	domainconfig "flowforge-backend/domain/config"
	"flowforge-backend/domain/core/aggregates"
	"flowforge-backend/domain/core/entities"
	"flowforge-backend/domain/core/validators"
	"flowforge-backend/domain/core/valueobjects"
	"flowforge-backend/domain/identity"
	"flowforge-backend/domain/schema"
	"flowforge-backend/domain/versioning"
	pkgerrors "flowforge-backend/pkg/errors"
)

// MutationStatus is the result code of a mutation command
type MutationStatus string

const (
	// StatusOK means the mutation was applied
	StatusOK MutationStatus = "ok"

	// StatusRejectedTerminal means the add was refused because the flow
	// already contains a terminator/end node. Collections are unchanged and
	// the rejection is reported, not thrown.
	StatusRejectedTerminal MutationStatus = "rejected_terminal"
)

// MutationResult reports the outcome of a mutation command
type MutationResult struct {
	Status MutationStatus   `json:"status"`
	Node   *entities.Node   `json:"node,omitempty"`
	Edge   *entities.Edge   `json:"edge,omitempty"`
	Flow   *aggregates.Flow `json:"flow,omitempty"`

	// StorageWarning carries a storage-full message when the mutation was
	// applied in memory but could not be durably saved
	StorageWarning string `json:"storageWarning,omitempty"`
}

// session is one flow's live editing state. The in-memory graph is
// authoritative for the session; persistence is a fire-and-forget side
// effect after each accepted mutation.
type session struct {
	mu             sync.Mutex
	flowID         string
	graph          aggregates.Flow
	threads        []comments.Comment
	ledger         *versioning.Ledger
	lastActive     string
	lastSnapshotAt time.Time
}

// SessionManager owns one session per flow. Flows are created implicitly on
// first access. A single logical editor per flow is assumed; the manager's
// locking protects against accidental concurrent HTTP requests, not against
// true multi-user editing.
type SessionManager struct {
	mu        sync.Mutex
	sessions  map[string]*session
	repo      ports.FlowRepository
	allocator *identity.Allocator
	cfg       *domainconfig.DomainConfig
	policy    versioning.SnapshotPolicy
	logger    *zap.Logger
	now       func() time.Time
}

// NewSessionManager creates a session manager
func NewSessionManager(
	repo ports.FlowRepository,
	allocator *identity.Allocator,
	cfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*session),
		repo:      repo,
		allocator: allocator,
		cfg:       cfg,
		policy:    versioning.SnapshotPolicy{Interval: cfg.AutoSnapshotInterval},
		logger:    logger,
		now:       time.Now,
	}
}

// session returns the live session for a flow, loading persisted state on
// first access. Missing flows start empty and get a catalog record.
func (m *SessionManager) session(ctx context.Context, flowID string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[flowID]; ok {
		return s, nil
	}

	graph, err := m.repo.LoadGraph(ctx, flowID)
	if err != nil {
		if !pkgerrors.IsNotFound(err) {
			return nil, pkgerrors.Wrap(err, "load flow graph")
		}
		graph = aggregates.NewFlow()
	}

	history, err := m.repo.LoadHistory(ctx, flowID)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.Wrap(err, "load flow history")
	}

	threads, err := m.repo.LoadComments(ctx, flowID)
	if err != nil && !pkgerrors.IsNotFound(err) {
		return nil, pkgerrors.Wrap(err, "load flow comments")
	}
	if threads == nil {
		threads = []comments.Comment{}
	}

	if err := m.ensureFlowInfo(ctx, flowID); err != nil {
		return nil, err
	}

	s := &session{
		flowID:         flowID,
		graph:          graph,
		threads:        threads,
		ledger:         versioning.NewLedger(m.cfg.MaxVersions, history),
		lastActive:     graph.LatestNodeID(),
		lastSnapshotAt: m.now(),
	}
	m.sessions[flowID] = s
	return s, nil
}

func (m *SessionManager) ensureFlowInfo(ctx context.Context, flowID string) error {
	_, err := m.repo.GetFlowInfo(ctx, flowID)
	if err == nil {
		return nil
	}
	if !pkgerrors.IsNotFound(err) {
		return pkgerrors.Wrap(err, "load flow info")
	}

	info := entities.FlowInfo{ID: flowID, Name: "Flow " + flowID, DNIS: []string{}}
	if err := m.repo.PutFlowInfo(ctx, info); err != nil {
		m.logger.Warn("failed to create flow catalog record",
			zap.String("flowId", flowID),
			zap.Error(err),
		)
	}
	return nil
}

// persistGraph writes the graph behind the mutation boundary. Errors never
// propagate: storage exhaustion becomes a warning for the command result,
// everything else is logged. The in-memory graph stays authoritative.
func (m *SessionManager) persistGraph(ctx context.Context, s *session) string {
	err := m.repo.SaveGraph(ctx, s.flowID, s.graph)
	if err == nil {
		return ""
	}
	if pkgerrors.IsStorageFull(err) {
		m.logger.Warn("storage full, flow kept in memory only",
			zap.String("flowId", s.flowID),
			zap.Error(err),
		)
		return "storage full: the flow could not be durably saved"
	}
	m.logger.Error("failed to persist flow graph",
		zap.String("flowId", s.flowID),
		zap.Error(err),
	)
	return ""
}

func (m *SessionManager) persistComments(ctx context.Context, s *session) string {
	err := m.repo.SaveComments(ctx, s.flowID, s.threads)
	if err == nil {
		return ""
	}
	if pkgerrors.IsStorageFull(err) {
		m.logger.Warn("storage full, comments kept in memory only",
			zap.String("flowId", s.flowID),
			zap.Error(err),
		)
		return "storage full: comments could not be durably saved"
	}
	m.logger.Error("failed to persist flow comments",
		zap.String("flowId", s.flowID),
		zap.Error(err),
	)
	return ""
}

// record takes a snapshot with the given message and persists the history.
// Snapshot failures are logged, never surfaced; a mutation is never held
// hostage by its snapshot.
func (m *SessionManager) record(ctx context.Context, s *session, message string, actor valueobjects.UserRef) {
	now := m.now()
	if _, err := s.ledger.Snapshot(s.graph, message, actor, now); err != nil {
		m.logger.Error("failed to snapshot flow",
			zap.String("flowId", s.flowID),
			zap.Error(err),
		)
		return
	}
	s.lastSnapshotAt = now

	if err := m.repo.SaveHistory(ctx, s.flowID, s.ledger.Versions()); err != nil {
		m.logger.Warn("failed to persist flow history",
			zap.String("flowId", s.flowID),
			zap.Error(err),
		)
	}
}

// maybeAutoSnapshot applies the time-gated snapshot policy after
// non-structural changes
func (m *SessionManager) maybeAutoSnapshot(ctx context.Context, s *session, actor valueobjects.UserRef) {
	if m.policy.ShouldAutoSnapshot(s.lastSnapshotAt, s.graph.NodeCount(), m.now()) {
		m.record(ctx, s, "Auto-saved", actor)
	}
}

// AddNode runs the add-node protocol: terminal guard, registry defaults,
// audit stamp, placement heuristic, allocator id, auto-chain edge from the
// last-active pointer, pointer move, snapshot.
func (m *SessionManager) AddNode(
	ctx context.Context,
	flowID string,
	kind valueobjects.NodeKind,
	position *valueobjects.Position,
	actor valueobjects.UserRef,
) (MutationResult, error) {
	if !kind.IsValid() {
		return MutationResult{}, pkgerrors.NewValidationError("unknown node kind " + kind.String())
	}

	s, err := m.session(ctx, flowID)
	if err != nil {
		return MutationResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.graph.HasTerminal() {
		m.logger.Warn("add node rejected, flow already has a terminal node",
			zap.String("flowId", flowID),
			zap.String("kind", kind.String()),
		)
		return MutationResult{Status: StatusRejectedTerminal}, nil
	}

	data, err := schema.DefaultsFor(kind)
	if err != nil {
		return MutationResult{}, err
	}

	pos := m.placeNode(s, position)
	now := m.now()
	node := entities.Node{
		ID:             m.allocator.NextID(ctx),
		Type:           kind,
		Position:       pos,
		CreatedBy:      actor,
		LastModifiedBy: actor,
		CreatedAt:      now,
		LastModifiedAt: now,
		Data:           data,
	}
	s.graph = s.graph.WithNode(node)

	var chained *entities.Edge
	if s.lastActive != "" && s.graph.HasNode(s.lastActive) {
		edge := entities.Edge{
			ID:     fmt.Sprintf("edge-%s-%s", s.lastActive, node.ID),
			Source: s.lastActive,
			Target: node.ID,
		}
		if !s.graph.HasEdge(edge.ID) {
			s.graph = s.graph.WithEdge(edge)
			chained = &edge
		}
	}
	s.lastActive = node.ID

	m.record(ctx, s, fmt.Sprintf("Added %s node", kind), actor)
	warning := m.persistGraph(ctx, s)

	return MutationResult{Status: StatusOK, Node: &node, Edge: chained, StorageWarning: warning}, nil
}

// placeNode applies the layout heuristic: offset from the last-active node,
// otherwise the default origin
func (m *SessionManager) placeNode(s *session, requested *valueobjects.Position) valueobjects.Position {
	if requested != nil {
		return *requested
	}
	if s.lastActive != "" {
		if last, ok := s.graph.Node(s.lastActive); ok {
			return last.Position.Offset(m.cfg.PlacementOffsetX, m.cfg.PlacementOffsetY)
		}
	}
	return valueobjects.NewPosition(m.cfg.DefaultOriginX, m.cfg.DefaultOriginY)
}

// DeleteNode removes a node, cascades edge cleanup and recomputes the
// last-active pointer. Dangling route targets inside other nodes' payloads
// stay untouched; the validator surfaces them.
func (m *SessionManager) DeleteNode(ctx context.Context, flowID, nodeID string, actor valueobjects.UserRef) (MutationResult, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return MutationResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.graph.HasNode(nodeID) {
		return MutationResult{}, pkgerrors.NewNotFoundError("node " + nodeID)
	}

	s.graph = s.graph.WithoutNode(nodeID).WithoutEdgesTouching(nodeID)
	s.lastActive = s.graph.LatestNodeID()

	m.record(ctx, s, "Deleted node", actor)
	warning := m.persistGraph(ctx, s)

	return MutationResult{Status: StatusOK, StorageWarning: warning}, nil
}

// UpdateNodeData shallow-merges a data patch and refreshes audit fields
func (m *SessionManager) UpdateNodeData(
	ctx context.Context,
	flowID, nodeID string,
	patch map[string]interface{},
	actor valueobjects.UserRef,
) (MutationResult, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return MutationResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.graph.WithNodeData(nodeID, patch, actor, m.now())
	if err != nil {
		return MutationResult{}, err
	}
	s.graph = updated

	m.maybeAutoSnapshot(ctx, s, actor)
	warning := m.persistGraph(ctx, s)

	node, _ := s.graph.Node(nodeID)
	return MutationResult{Status: StatusOK, Node: &node, StorageWarning: warning}, nil
}

// UpdateNodeStyle merges cosmetic overrides without touching audit fields
func (m *SessionManager) UpdateNodeStyle(
	ctx context.Context,
	flowID, nodeID string,
	style map[string]interface{},
	actor valueobjects.UserRef,
) (MutationResult, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return MutationResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.graph.WithNodeStyle(nodeID, style)
	if err != nil {
		return MutationResult{}, err
	}
	s.graph = updated

	m.maybeAutoSnapshot(ctx, s, actor)
	warning := m.persistGraph(ctx, s)

	node, _ := s.graph.Node(nodeID)
	return MutationResult{Status: StatusOK, Node: &node, StorageWarning: warning}, nil
}

// MoveNode updates a node's canvas position
func (m *SessionManager) MoveNode(
	ctx context.Context,
	flowID, nodeID string,
	pos valueobjects.Position,
	actor valueobjects.UserRef,
) (MutationResult, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return MutationResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.graph.WithNodePosition(nodeID, pos)
	if err != nil {
		return MutationResult{}, err
	}
	s.graph = updated

	m.maybeAutoSnapshot(ctx, s, actor)
	warning := m.persistGraph(ctx, s)

	return MutationResult{Status: StatusOK, StorageWarning: warning}, nil
}

// ConnectNodes creates an edge between two existing nodes. Handle tags
// per-option edges; parallel edges between the same pair are allowed.
func (m *SessionManager) ConnectNodes(
	ctx context.Context,
	flowID, sourceID, targetID, handle string,
	actor valueobjects.UserRef,
) (MutationResult, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return MutationResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.graph.HasNode(sourceID) {
		return MutationResult{}, pkgerrors.NewNotFoundError("node " + sourceID)
	}
	if !s.graph.HasNode(targetID) {
		return MutationResult{}, pkgerrors.NewNotFoundError("node " + targetID)
	}

	edge := entities.Edge{
		ID:     uuid.New().String(),
		Source: sourceID,
		Target: targetID,
		Handle: handle,
	}
	s.graph = s.graph.WithEdge(edge)

	m.maybeAutoSnapshot(ctx, s, actor)
	warning := m.persistGraph(ctx, s)

	return MutationResult{Status: StatusOK, Edge: &edge, StorageWarning: warning}, nil
}

// DisconnectEdge removes an edge
func (m *SessionManager) DisconnectEdge(ctx context.Context, flowID, edgeID string, actor valueobjects.UserRef) (MutationResult, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return MutationResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.graph.HasEdge(edgeID) {
		return MutationResult{}, pkgerrors.NewNotFoundError("edge " + edgeID)
	}
	s.graph = s.graph.WithoutEdge(edgeID)

	m.maybeAutoSnapshot(ctx, s, actor)
	warning := m.persistGraph(ctx, s)

	return MutationResult{Status: StatusOK, StorageWarning: warning}, nil
}

// UpdateEdge shallow-merges an edge patch
func (m *SessionManager) UpdateEdge(
	ctx context.Context,
	flowID, edgeID string,
	patch aggregates.EdgePatch,
	actor valueobjects.UserRef,
) (MutationResult, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return MutationResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated, err := s.graph.WithEdgePatch(edgeID, patch)
	if err != nil {
		return MutationResult{}, err
	}
	s.graph = updated

	m.maybeAutoSnapshot(ctx, s, actor)
	warning := m.persistGraph(ctx, s)

	return MutationResult{Status: StatusOK, StorageWarning: warning}, nil
}

// SelectNode moves the last-active pointer. Issued by the rendering layer on
// node selection; session state only, nothing is persisted.
func (m *SessionManager) SelectNode(ctx context.Context, flowID, nodeID string) error {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.graph.HasNode(nodeID) {
		return pkgerrors.NewNotFoundError("node " + nodeID)
	}
	s.lastActive = nodeID
	return nil
}

// Graph returns the flow's current node/edge collections and the last-active
// pointer
func (m *SessionManager) Graph(ctx context.Context, flowID string) (aggregates.Flow, string, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return aggregates.Flow{}, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph, s.lastActive, nil
}

// Validate runs the referential-integrity pass over the flow
func (m *SessionManager) Validate(ctx context.Context, flowID string) (validators.Report, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return validators.Report{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return validators.ValidateFlow(s.graph), nil
}

// Versions returns the flow's snapshot history, newest first
func (m *SessionManager) Versions(ctx context.Context, flowID string) ([]versioning.Version, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Versions(), nil
}

// SaveVersion records an explicit snapshot
func (m *SessionManager) SaveVersion(ctx context.Context, flowID, message string, actor valueobjects.UserRef) (versioning.Version, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return versioning.Version{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if message == "" {
		message = "Manual save"
	}
	version, err := s.ledger.Snapshot(s.graph, message, actor, m.now())
	if err != nil {
		return versioning.Version{}, err
	}
	s.lastSnapshotAt = version.Timestamp

	if err := m.repo.SaveHistory(ctx, s.flowID, s.ledger.Versions()); err != nil {
		m.logger.Warn("failed to persist flow history",
			zap.String("flowId", s.flowID),
			zap.Error(err),
		)
	}
	return version, nil
}

// RestoreVersion replaces the live graph with a historical snapshot. Restore
// is recorded as a new snapshot, so restoring never destroys prior history.
func (m *SessionManager) RestoreVersion(ctx context.Context, flowID, versionID string, actor valueobjects.UserRef) (MutationResult, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return MutationResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	version, ok := s.ledger.Find(versionID)
	if !ok {
		return MutationResult{}, pkgerrors.NewNotFoundError("version " + versionID)
	}

	restored, err := versioning.Restore(version)
	if err != nil {
		return MutationResult{}, err
	}
	s.graph = restored
	s.lastActive = restored.LatestNodeID()

	m.record(ctx, s, versioning.RestoreMessage(version), actor)
	warning := m.persistGraph(ctx, s)

	return MutationResult{Status: StatusOK, Flow: &restored, StorageWarning: warning}, nil
}

// exportDocument is the file-exchange shape
type exportDocument struct {
	Nodes []entities.Node `json:"nodes"`
	Edges []entities.Edge `json:"edges"`
}

// Export serializes the flow's graph to an indented JSON document
func (m *SessionManager) Export(ctx context.Context, flowID string) ([]byte, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := exportDocument{Nodes: s.graph.Nodes, Edges: s.graph.Edges}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, pkgerrors.Wrap(err, "export flow")
	}
	return raw, nil
}

// Import replaces the live graph wholesale with a parsed document. Missing
// collections default to empty; an unparseable document is rejected with the
// graph untouched.
func (m *SessionManager) Import(ctx context.Context, flowID string, payload []byte, actor valueobjects.UserRef) (MutationResult, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return MutationResult{}, err
	}

	var doc exportDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return MutationResult{}, pkgerrors.NewValidationError("import document is not valid JSON").WithCause(err)
	}
	if doc.Nodes == nil {
		doc.Nodes = []entities.Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []entities.Edge{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.graph = aggregates.Flow{Nodes: doc.Nodes, Edges: doc.Edges}
	s.lastActive = s.graph.LatestNodeID()

	m.record(ctx, s, "Imported flow", actor)
	warning := m.persistGraph(ctx, s)

	flow := s.graph
	return MutationResult{Status: StatusOK, Flow: &flow, StorageWarning: warning}, nil
}

// Comments returns the flow's comment threads
func (m *SessionManager) Comments(ctx context.Context, flowID string) ([]comments.Comment, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]comments.Comment, len(s.threads))
	copy(out, s.threads)
	return out, nil
}

// AddComment anchors a new thread to a node
func (m *SessionManager) AddComment(ctx context.Context, flowID, nodeID, text string, actor valueobjects.UserRef) (comments.Comment, string, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return comments.Comment{}, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.graph.HasNode(nodeID) {
		return comments.Comment{}, "", pkgerrors.NewNotFoundError("node " + nodeID)
	}

	comment := comments.NewComment(nodeID, text, actor, m.now())
	s.threads = comments.Append(s.threads, comment)
	warning := m.persistComments(ctx, s)
	return comment, warning, nil
}

// AddReply appends a reply to an existing thread
func (m *SessionManager) AddReply(ctx context.Context, flowID, commentID, text string, actor valueobjects.UserRef) (comments.Reply, string, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return comments.Reply{}, "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reply := comments.NewReply(text, actor, m.now())
	threads, err := comments.AppendReply(s.threads, commentID, reply)
	if err != nil {
		return comments.Reply{}, "", err
	}
	s.threads = threads
	warning := m.persistComments(ctx, s)
	return reply, warning, nil
}

// DeleteComment removes a thread. Only the authoring user may delete it.
func (m *SessionManager) DeleteComment(ctx context.Context, flowID, commentID string, actor valueobjects.UserRef) error {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := comments.Find(s.threads, commentID)
	if !ok {
		return pkgerrors.NewNotFoundError("comment " + commentID)
	}
	if comment.UserID != actor.ID {
		return pkgerrors.NewForbiddenError("only the author can delete a comment")
	}

	s.threads, _ = comments.Remove(s.threads, commentID)
	m.persistComments(ctx, s)
	return nil
}

// DeleteReply removes a reply. Only the authoring user may delete it.
func (m *SessionManager) DeleteReply(ctx context.Context, flowID, commentID, replyID string, actor valueobjects.UserRef) error {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := comments.Find(s.threads, commentID)
	if !ok {
		return pkgerrors.NewNotFoundError("comment " + commentID)
	}

	authored := false
	for _, r := range comment.Replies {
		if r.ID == replyID {
			if r.UserID != actor.ID {
				return pkgerrors.NewForbiddenError("only the author can delete a reply")
			}
			authored = true
			break
		}
	}
	if !authored {
		return pkgerrors.NewNotFoundError("reply " + replyID)
	}

	s.threads, _ = comments.RemoveReply(s.threads, commentID, replyID)
	m.persistComments(ctx, s)
	return nil
}

// CommentCounts returns per-node comment activity (comments plus replies)
func (m *SessionManager) CommentCounts(ctx context.Context, flowID string) (map[string]int, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[string]int)
	for _, c := range s.threads {
		counts[c.NodeID] += 1 + len(c.Replies)
	}
	return counts, nil
}

// CountFor returns one node's comment activity
func (m *SessionManager) CountFor(ctx context.Context, flowID, nodeID string) (int, error) {
	s, err := m.session(ctx, flowID)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return comments.CountFor(s.threads, nodeID), nil
}

// Reload drops the in-memory session so the next access re-reads the
// persisted copy. This is the cross-tab consistency mechanism: an external
// change signal triggers a full reload, never a merge.
func (m *SessionManager) Reload(flowID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, flowID)
}

// HandleRemoteChange reacts to a change notification for a flow. Delivery
// may be duplicated or out of order; dropping the session is idempotent.
func (m *SessionManager) HandleRemoteChange(flowID string) {
	m.logger.Info("remote change detected, reloading flow",
		zap.String("flowId", flowID),
	)
	m.Reload(flowID)
}

// DeleteFlow removes the flow's persisted state and live session
func (m *SessionManager) DeleteFlow(ctx context.Context, flowID string) error {
	m.mu.Lock()
	delete(m.sessions, flowID)
	m.mu.Unlock()

	if err := m.repo.DeleteFlow(ctx, flowID); err != nil {
		return pkgerrors.Wrap(err, "delete flow")
	}
	return nil
}

// FlowInfo returns the catalog record, creating it implicitly if needed
func (m *SessionManager) FlowInfo(ctx context.Context, flowID string) (entities.FlowInfo, error) {
	if err := m.ensureFlowInfo(ctx, flowID); err != nil {
		return entities.FlowInfo{}, err
	}
	return m.repo.GetFlowInfo(ctx, flowID)
}

// UpdateFlowInfo replaces the catalog record
func (m *SessionManager) UpdateFlowInfo(ctx context.Context, info entities.FlowInfo) error {
	if info.ID == "" {
		return pkgerrors.NewValidationError("flow id is required")
	}
	return m.repo.PutFlowInfo(ctx, info)
}
