package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowforge-backend/domain/comments"
	"flowforge-backend/domain/core/aggregates"
	"flowforge-backend/domain/core/entities"
	"flowforge-backend/domain/core/valueobjects"
	"flowforge-backend/domain/versioning"
	pkgerrors "flowforge-backend/pkg/errors"
)

func sampleFlow() aggregates.Flow {
	return aggregates.NewFlow().
		WithNode(entities.Node{ID: "1", Type: valueobjects.KindPlay, Data: &entities.PlayData{Text: "hello"}}).
		WithNode(entities.Node{ID: "2", Type: valueobjects.KindMenu, Data: &entities.MenuData{PromptText: "press one"}}).
		WithEdge(entities.Edge{ID: "edge-1-2", Source: "1", Target: "2"})
}

func TestStore_GraphRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(0)

	require.NoError(t, store.SaveGraph(ctx, "f1", sampleFlow()))

	loaded, err := store.LoadGraph(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.NodeCount())
	assert.Equal(t, 1, loaded.EdgeCount())

	node, ok := loaded.Node("1")
	require.True(t, ok)
	assert.Equal(t, "hello", node.Data.(*entities.PlayData).Text)
}

func TestStore_LoadGraph_Missing(t *testing.T) {
	_, err := NewStore(0).LoadGraph(context.Background(), "ghost")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestStore_QuotaExceeded(t *testing.T) {
	ctx := context.Background()
	store := NewStore(16)

	err := store.SaveGraph(ctx, "f1", sampleFlow())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsStorageFull(err))
}

func TestStore_CounterBypassesQuota(t *testing.T) {
	ctx := context.Background()
	store := NewStore(1)

	require.NoError(t, store.StoreCounter(ctx, 12345))

	value, err := store.LoadCounter(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(12345), value)
}

func TestStore_LoadCounter_Unset(t *testing.T) {
	value, err := NewStore(0).LoadCounter(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), value)
}

func TestStore_HistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(0)

	versions := []versioning.Version{
		{ID: "v2", Message: "second", Timestamp: time.Now().UTC()},
		{ID: "v1", Message: "first", Timestamp: time.Now().UTC().Add(-time.Minute)},
	}
	require.NoError(t, store.SaveHistory(ctx, "f1", versions))

	loaded, err := store.LoadHistory(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "v2", loaded[0].ID, "newest-first order survives the round trip")
}

func TestStore_CommentsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewStore(0)
	author := valueobjects.UserRef{ID: "u1", Name: "Jane", Email: "jane@example.com"}

	threads := []comments.Comment{comments.NewComment("1", "hello @sam", author, time.Now().UTC())}
	require.NoError(t, store.SaveComments(ctx, "f1", threads))

	loaded, err := store.LoadComments(ctx, "f1")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, []string{"sam"}, loaded[0].Mentions)
}

func TestStore_FlowInfoAndListing(t *testing.T) {
	ctx := context.Background()
	store := NewStore(0)

	require.NoError(t, store.PutFlowInfo(ctx, entities.FlowInfo{ID: "f2", Name: "Support", DNIS: []string{}}))
	require.NoError(t, store.PutFlowInfo(ctx, entities.FlowInfo{ID: "f1", Name: "Billing", DNIS: []string{"8005551234"}}))

	info, err := store.GetFlowInfo(ctx, "f1")
	require.NoError(t, err)
	assert.Equal(t, "Billing", info.Name)

	support, err := store.GetFlowInfo(ctx, "f2")
	require.NoError(t, err)
	assert.NotNil(t, support.DNIS, "empty DNIS list survives the round trip")

	infos, err := store.ListFlows(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "f1", infos[0].ID, "listing is sorted by id")
	assert.Equal(t, "f2", infos[1].ID)
}

func TestStore_DeleteFlow(t *testing.T) {
	ctx := context.Background()
	store := NewStore(0)

	require.NoError(t, store.SaveGraph(ctx, "f1", sampleFlow()))
	require.NoError(t, store.SaveHistory(ctx, "f1", []versioning.Version{{ID: "v1"}}))
	require.NoError(t, store.PutFlowInfo(ctx, entities.FlowInfo{ID: "f1", Name: "Billing"}))

	require.NoError(t, store.DeleteFlow(ctx, "f1"))

	_, err := store.LoadGraph(ctx, "f1")
	assert.True(t, pkgerrors.IsNotFound(err))
	_, err = store.LoadHistory(ctx, "f1")
	assert.True(t, pkgerrors.IsNotFound(err))
	_, err = store.GetFlowInfo(ctx, "f1")
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestStore_ChangeNotification(t *testing.T) {
	store := NewStore(0)

	var got []string
	unsubscribe := store.Subscribe(func(flowID string) {
		got = append(got, flowID)
	})

	store.NotifyChange("f1")
	require.Equal(t, []string{"f1"}, got)

	unsubscribe()
	store.NotifyChange("f2")
	assert.Equal(t, []string{"f1"}, got, "unsubscribed handlers stop firing")
}

func TestStore_UsedBytes(t *testing.T) {
	ctx := context.Background()
	store := NewStore(0)
	assert.Equal(t, 0, store.UsedBytes())

	require.NoError(t, store.SaveGraph(ctx, "f1", sampleFlow()))
	assert.Greater(t, store.UsedBytes(), 0)
}
