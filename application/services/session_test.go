package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domainconfig "flowforge-backend/domain/config"
	"flowforge-backend/domain/core/entities"
	"flowforge-backend/domain/core/valueobjects"
	"flowforge-backend/domain/identity"
	"flowforge-backend/infrastructure/persistence/memory"
	pkgerrors "flowforge-backend/pkg/errors"
)

var testActor = valueobjects.UserRef{ID: "user-1", Name: "Jane Operator", Email: "jane@example.com"}

func newTestManager(t *testing.T, quotaBytes int) (*SessionManager, *memory.Store) {
	t.Helper()
	store := memory.NewStore(quotaBytes)
	allocator, err := identity.NewAllocator(context.Background(), store, zap.NewNop())
	require.NoError(t, err)
	return NewSessionManager(store, allocator, domainconfig.DefaultDomainConfig(), zap.NewNop()), store
}

func TestSessionManager_AddNode_DefaultOriginAndChaining(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	first, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)
	require.Equal(t, StatusOK, first.Status)
	require.NotNil(t, first.Node)
	assert.Equal(t, "1", first.Node.ID)
	assert.Equal(t, 250.0, first.Node.Position.X)
	assert.Equal(t, 60.0, first.Node.Position.Y)
	assert.Nil(t, first.Edge, "nothing to chain from on an empty flow")

	second, err := m.AddNode(ctx, "f1", valueobjects.KindMenu, nil, testActor)
	require.NoError(t, err)
	require.NotNil(t, second.Node)
	assert.Equal(t, "2", second.Node.ID)
	assert.Equal(t, 300.0, second.Node.Position.X, "offset from last-active node")
	assert.Equal(t, 210.0, second.Node.Position.Y)

	require.NotNil(t, second.Edge)
	assert.Equal(t, "edge-1-2", second.Edge.ID)
	assert.Equal(t, "1", second.Edge.Source)
	assert.Equal(t, "2", second.Edge.Target)

	flow, lastActive, err := m.Graph(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 2, flow.NodeCount())
	assert.Equal(t, 1, flow.EdgeCount())
	assert.Equal(t, "2", lastActive)
}

func TestSessionManager_AddNode_ExplicitPositionWins(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	pos := valueobjects.NewPosition(17, 23)
	result, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, &pos, testActor)
	require.NoError(t, err)
	assert.Equal(t, pos, result.Node.Position)
}

func TestSessionManager_AddNode_SelectionChangesChainSource(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	_, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)
	_, err = m.AddNode(ctx, "f1", valueobjects.KindMenu, nil, testActor)
	require.NoError(t, err)

	require.NoError(t, m.SelectNode(ctx, "f1", "1"))

	third, err := m.AddNode(ctx, "f1", valueobjects.KindCollect, nil, testActor)
	require.NoError(t, err)
	require.NotNil(t, third.Edge)
	assert.Equal(t, "edge-1-3", third.Edge.ID)
	assert.Equal(t, 300.0, third.Node.Position.X, "placed relative to the selected node")
	assert.Equal(t, 210.0, third.Node.Position.Y)
}

func TestSessionManager_AddNode_TerminalGuard(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	_, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)
	_, err = m.AddNode(ctx, "f1", valueobjects.KindTerminator, nil, testActor)
	require.NoError(t, err)

	before, _, err := m.Graph(ctx, "f1")
	require.NoError(t, err)

	rejected, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err, "the rejection is a status, not an error")
	assert.Equal(t, StatusRejectedTerminal, rejected.Status)
	assert.Nil(t, rejected.Node)
	assert.Nil(t, rejected.Edge)

	after, _, err := m.Graph(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, before.NodeCount(), after.NodeCount())
	assert.Equal(t, before.EdgeCount(), after.EdgeCount())
}

func TestSessionManager_AddNode_UnknownKind(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	_, err := m.AddNode(ctx, "f1", valueobjects.NodeKind("hologram"), nil, testActor)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestSessionManager_DeleteNode_CascadesEdges(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	_, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)
	_, err = m.AddNode(ctx, "f1", valueobjects.KindMenu, nil, testActor)
	require.NoError(t, err)
	_, err = m.AddNode(ctx, "f1", valueobjects.KindCollect, nil, testActor)
	require.NoError(t, err)

	// A manual edge on top of the auto-chained ones
	_, err = m.ConnectNodes(ctx, "f1", "1", "3", "", testActor)
	require.NoError(t, err)

	result, err := m.DeleteNode(ctx, "f1", "2", testActor)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)

	flow, lastActive, err := m.Graph(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 2, flow.NodeCount())
	for _, e := range flow.Edges {
		assert.NotEqual(t, "2", e.Source)
		assert.NotEqual(t, "2", e.Target)
	}
	assert.Equal(t, 1, flow.EdgeCount(), "only the 1->3 edge survives")
	assert.Equal(t, "3", lastActive)
}

func TestSessionManager_DeleteNode_Missing(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	_, err := m.DeleteNode(ctx, "f1", "ghost", testActor)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSessionManager_UpdateNodeData(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	added, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)

	editor := valueobjects.UserRef{ID: "user-2", Name: "Sam", Email: "sam@example.com"}
	result, err := m.UpdateNodeData(ctx, "f1", added.Node.ID, map[string]interface{}{"text": "Welcome"}, editor)
	require.NoError(t, err)

	data := result.Node.Data.(*entities.PlayData)
	assert.Equal(t, "Welcome", data.Text)
	assert.True(t, data.BargeIn, "registry default survives the patch")
	assert.Equal(t, editor, result.Node.LastModifiedBy)
	assert.Equal(t, testActor, result.Node.CreatedBy)
}

func TestSessionManager_ConnectAndDisconnect(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	_, err := m.AddNode(ctx, "f1", valueobjects.KindMenu, nil, testActor)
	require.NoError(t, err)
	_, err = m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)

	connected, err := m.ConnectNodes(ctx, "f1", "1", "2", "option-1", testActor)
	require.NoError(t, err)
	require.NotNil(t, connected.Edge)
	assert.NotEmpty(t, connected.Edge.ID)
	assert.Equal(t, "option-1", connected.Edge.Handle)

	_, err = m.ConnectNodes(ctx, "f1", "1", "ghost", "", testActor)
	assert.True(t, pkgerrors.IsNotFound(err))

	_, err = m.DisconnectEdge(ctx, "f1", connected.Edge.ID, testActor)
	require.NoError(t, err)

	flow, _, err := m.Graph(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 1, flow.EdgeCount(), "the auto-chained edge remains")
}

func TestSessionManager_VersionsAndRestore(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	_, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)
	_, err = m.AddNode(ctx, "f1", valueobjects.KindMenu, nil, testActor)
	require.NoError(t, err)

	versions, err := m.Versions(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "Added menu node", versions[0].Message)
	assert.Equal(t, "Added play node", versions[1].Message)

	// Restore the single-node snapshot
	result, err := m.RestoreVersion(ctx, "f1", versions[1].ID, testActor)
	require.NoError(t, err)
	require.NotNil(t, result.Flow)
	assert.Equal(t, 1, result.Flow.NodeCount())

	flow, lastActive, err := m.Graph(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 1, flow.NodeCount())
	assert.Equal(t, "1", lastActive)

	// The restore itself is recorded, history grows
	versions, err = m.Versions(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.True(t, strings.HasPrefix(versions[0].Message, "Restored version from "))
}

func TestSessionManager_RestoreVersion_Missing(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	_, err := m.RestoreVersion(ctx, "f1", "ghost", testActor)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestSessionManager_SaveVersion_DefaultMessage(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	_, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)

	version, err := m.SaveVersion(ctx, "f1", "", testActor)
	require.NoError(t, err)
	assert.Equal(t, "Manual save", version.Message)

	named, err := m.SaveVersion(ctx, "f1", "before rework", testActor)
	require.NoError(t, err)
	assert.Equal(t, "before rework", named.Message)
}

func TestSessionManager_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	_, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)
	_, err = m.AddNode(ctx, "f1", valueobjects.KindMenu, nil, testActor)
	require.NoError(t, err)
	_, err = m.UpdateNodeData(ctx, "f1", "1", map[string]interface{}{"text": "Welcome to the call flow"}, testActor)
	require.NoError(t, err)

	exported, err := m.Export(ctx, "f1")
	require.NoError(t, err)
	assert.True(t, json.Valid(exported))
	assert.Contains(t, string(exported), "\n  \"nodes\"", "export is indented")

	result, err := m.Import(ctx, "f2", exported, testActor)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, result.Status)

	reExported, err := m.Export(ctx, "f2")
	require.NoError(t, err)
	assert.JSONEq(t, string(exported), string(reExported))
}

func TestSessionManager_Import_InvalidDocumentLeavesGraphUntouched(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	_, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)

	_, err = m.Import(ctx, "f1", []byte("{not json"), testActor)
	assert.True(t, pkgerrors.IsValidation(err))

	flow, _, err := m.Graph(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 1, flow.NodeCount())
}

func TestSessionManager_Import_MissingCollectionsDefaultEmpty(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	result, err := m.Import(ctx, "f1", []byte(`{}`), testActor)
	require.NoError(t, err)
	require.NotNil(t, result.Flow)
	assert.NotNil(t, result.Flow.Nodes)
	assert.NotNil(t, result.Flow.Edges)
	assert.Equal(t, 0, result.Flow.NodeCount())
}

func TestSessionManager_StorageFullIsAWarningNotARollback(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 32)

	result, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err, "the mutation itself succeeds")
	assert.Equal(t, StatusOK, result.Status)
	assert.NotEmpty(t, result.StorageWarning)

	flow, _, err := m.Graph(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 1, flow.NodeCount(), "in-memory state keeps the node")
}

func TestSessionManager_Comments(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	added, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)
	nodeID := added.Node.ID

	comment, warning, err := m.AddComment(ctx, "f1", nodeID, "looks wrong @Sam.Lee", testActor)
	require.NoError(t, err)
	assert.Empty(t, warning)
	assert.Equal(t, []string{"Sam.Lee"}, comment.Mentions)

	_, _, err = m.AddComment(ctx, "f1", "ghost", "anchored nowhere", testActor)
	assert.True(t, pkgerrors.IsNotFound(err))

	_, _, err = m.AddReply(ctx, "f1", comment.ID, "agreed", testActor)
	require.NoError(t, err)
	_, _, err = m.AddReply(ctx, "f1", comment.ID, "fixed now", testActor)
	require.NoError(t, err)

	count, err := m.CountFor(ctx, "f1", nodeID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	counts, err := m.CommentCounts(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 3, counts[nodeID])
}

func TestSessionManager_DeleteComment_AuthorOnly(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	added, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)

	comment, _, err := m.AddComment(ctx, "f1", added.Node.ID, "mine", testActor)
	require.NoError(t, err)

	intruder := valueobjects.UserRef{ID: "user-2", Name: "Sam", Email: "sam@example.com"}
	err = m.DeleteComment(ctx, "f1", comment.ID, intruder)
	assert.True(t, pkgerrors.IsForbidden(err))

	require.NoError(t, m.DeleteComment(ctx, "f1", comment.ID, testActor))

	threads, err := m.Comments(ctx, "f1")
	require.NoError(t, err)
	assert.Empty(t, threads)
}

func TestSessionManager_DeleteReply(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	added, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)
	comment, _, err := m.AddComment(ctx, "f1", added.Node.ID, "thread", testActor)
	require.NoError(t, err)
	reply, _, err := m.AddReply(ctx, "f1", comment.ID, "reply", testActor)
	require.NoError(t, err)

	err = m.DeleteReply(ctx, "f1", comment.ID, "ghost", testActor)
	assert.True(t, pkgerrors.IsNotFound(err))

	intruder := valueobjects.UserRef{ID: "user-2", Name: "Sam", Email: "sam@example.com"}
	err = m.DeleteReply(ctx, "f1", comment.ID, reply.ID, intruder)
	assert.True(t, pkgerrors.IsForbidden(err))

	require.NoError(t, m.DeleteReply(ctx, "f1", comment.ID, reply.ID, testActor))
	count, err := m.CountFor(ctx, "f1", added.Node.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSessionManager_AutoSnapshotAfterInterval(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	current := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	_, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)

	// Inside the interval: position changes do not snapshot
	_, err = m.MoveNode(ctx, "f1", "1", valueobjects.NewPosition(10, 10), testActor)
	require.NoError(t, err)
	versions, err := m.Versions(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, versions, 1)

	// Past the interval the next change auto-saves
	current = current.Add(m.cfg.AutoSnapshotInterval + time.Second)
	_, err = m.MoveNode(ctx, "f1", "1", valueobjects.NewPosition(20, 20), testActor)
	require.NoError(t, err)

	versions, err = m.Versions(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "Auto-saved", versions[0].Message)
}

func TestSessionManager_ReloadRereadsPersistedState(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t, 0)

	_, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)

	// Simulate another editor writing directly to storage
	flow, _, err := m.Graph(ctx, "f1")
	require.NoError(t, err)
	external := flow.WithNode(entities.Node{ID: "99", Type: valueobjects.KindLabel, Data: &entities.LabelData{Label: "note"}})
	require.NoError(t, store.SaveGraph(ctx, "f1", external))

	// Without a reload the session keeps serving its own copy
	flow, _, err = m.Graph(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 1, flow.NodeCount())

	store.NotifyChange("f1")

	flow, _, err = m.Graph(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 1, flow.NodeCount(), "change feed is not wired in this test")

	m.HandleRemoteChange("f1")
	flow, _, err = m.Graph(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 2, flow.NodeCount())
}

func TestSessionManager_DeleteFlow(t *testing.T) {
	ctx := context.Background()
	m, store := newTestManager(t, 0)

	_, err := m.AddNode(ctx, "f1", valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)

	require.NoError(t, m.DeleteFlow(ctx, "f1"))

	_, err = store.LoadGraph(ctx, "f1")
	assert.True(t, pkgerrors.IsNotFound(err))

	// A fresh session starts empty
	flow, _, err := m.Graph(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 0, flow.NodeCount())
}

func TestSessionManager_FlowInfoCreatedImplicitly(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager(t, 0)

	info, err := m.FlowInfo(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "f1", info.ID)
	assert.Equal(t, "Flow f1", info.Name)
	assert.NotNil(t, info.DNIS)

	info.Name = "Billing IVR"
	info.DNIS = []string{"8005551234"}
	require.NoError(t, m.UpdateFlowInfo(ctx, info))

	got, err := m.FlowInfo(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Billing IVR", got.Name)
	assert.Equal(t, []string{"8005551234"}, got.DNIS)
}
