package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flowforge-backend/domain/core/entities"
	"flowforge-backend/domain/core/valueobjects"
	"flowforge-backend/infrastructure/persistence/memory"
	pkgerrors "flowforge-backend/pkg/errors"
)

func newTestSearch(t *testing.T) (*SearchService, *SessionManager, *memory.Store) {
	t.Helper()
	m, store := newTestManager(t, 0)
	return NewSearchService(store, m, zap.NewNop()), m, store
}

func seedWelcomeFlow(t *testing.T, m *SessionManager, flowID string) string {
	t.Helper()
	ctx := context.Background()

	added, err := m.AddNode(ctx, flowID, valueobjects.KindPlay, nil, testActor)
	require.NoError(t, err)
	_, err = m.UpdateNodeData(ctx, flowID, added.Node.ID, map[string]interface{}{"text": "Welcome to the call flow"}, testActor)
	require.NoError(t, err)
	return added.Node.ID
}

func TestSearchService_SearchNodes_CaseInsensitiveSubstring(t *testing.T) {
	ctx := context.Background()
	search, m, _ := newTestSearch(t)
	nodeID := seedWelcomeFlow(t, m, "f1")

	results, err := search.SearchNodes(ctx, "welcome", "f1")
	require.NoError(t, err)
	require.Len(t, results, 1)

	got := results[0]
	assert.Equal(t, "f1", got.FlowID)
	assert.Equal(t, nodeID, got.NodeID)
	assert.Equal(t, valueobjects.KindPlay, got.NodeType)
	require.Len(t, got.Matches, 1)
	assert.Equal(t, "text", got.Matches[0].Field)
	assert.Equal(t, "Welcome to the call flow", got.Matches[0].Value)
}

func TestSearchService_SearchNodes_MatchesType(t *testing.T) {
	ctx := context.Background()
	search, m, _ := newTestSearch(t)
	seedWelcomeFlow(t, m, "f1")

	results, err := search.SearchNodes(ctx, "play", "f1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "type", results[0].Matches[0].Field)
}

func TestSearchService_SearchNodes_NoMatches(t *testing.T) {
	ctx := context.Background()
	search, m, _ := newTestSearch(t)
	seedWelcomeFlow(t, m, "f1")

	results, err := search.SearchNodes(ctx, "goodbye", "f1")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchService_SearchNodes_AcrossFlows(t *testing.T) {
	ctx := context.Background()
	search, m, _ := newTestSearch(t)
	seedWelcomeFlow(t, m, "f1")
	seedWelcomeFlow(t, m, "f2")

	results, err := search.SearchNodes(ctx, "WELCOME", "")
	require.NoError(t, err)
	require.Len(t, results, 2)

	flows := map[string]string{}
	for _, r := range results {
		flows[r.FlowID] = r.FlowName
	}
	assert.Equal(t, "Flow f1", flows["f1"])
	assert.Equal(t, "Flow f2", flows["f2"])
}

func TestSearchService_SearchNodes_EmptyQuery(t *testing.T) {
	search, _, _ := newTestSearch(t)
	_, err := search.SearchNodes(context.Background(), "   ", "")
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestSearchService_SearchFlows(t *testing.T) {
	ctx := context.Background()
	search, m, _ := newTestSearch(t)

	require.NoError(t, m.UpdateFlowInfo(ctx, entities.FlowInfo{ID: "f1", Name: "Billing IVR", DNIS: []string{"8005551234"}}))
	require.NoError(t, m.UpdateFlowInfo(ctx, entities.FlowInfo{ID: "f2", Name: "Support Line", DNIS: []string{"8005559999"}}))

	results, err := search.SearchFlows(ctx, "billing")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "f1", results[0].ID)

	results, err = search.SearchFlows(ctx, "zzz")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchService_SearchByDNIS(t *testing.T) {
	ctx := context.Background()
	search, m, _ := newTestSearch(t)

	require.NoError(t, m.UpdateFlowInfo(ctx, entities.FlowInfo{ID: "f1", Name: "Billing IVR", DNIS: []string{"8005551234"}}))
	require.NoError(t, m.UpdateFlowInfo(ctx, entities.FlowInfo{ID: "f2", Name: "Support Line", DNIS: []string{"8885550000", "8005559999"}}))

	results, err := search.SearchByDNIS(ctx, "8005551234")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "f1", results[0].ID)

	// Substring containment, a partial number matches every holder
	results, err = search.SearchByDNIS(ctx, "555")
	require.NoError(t, err)
	assert.Len(t, results, 2)

	_, err = search.SearchByDNIS(ctx, " ")
	assert.True(t, pkgerrors.IsValidation(err))
}
