package aggregates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowforge-backend/domain/core/entities"
	"flowforge-backend/domain/core/valueobjects"
	pkgerrors "flowforge-backend/pkg/errors"
)

var actor = valueobjects.UserRef{ID: "user-1", Name: "Jane", Email: "jane@example.com"}

func playNode(id string, createdAt time.Time) entities.Node {
	return entities.Node{
		ID:        id,
		Type:      valueobjects.KindPlay,
		CreatedAt: createdAt,
		CreatedBy: actor,
		Data:      &entities.PlayData{Text: "hello", BargeIn: true},
	}
}

func TestFlow_WithNode_DoesNotMutateReceiver(t *testing.T) {
	base := NewFlow()
	next := base.WithNode(playNode("1", time.Now()))

	assert.Equal(t, 0, base.NodeCount())
	assert.Equal(t, 1, next.NodeCount())
}

func TestFlow_WithoutEdgesTouching(t *testing.T) {
	now := time.Now()
	flow := NewFlow().
		WithNode(playNode("1", now)).
		WithNode(playNode("2", now)).
		WithNode(playNode("3", now)).
		WithEdge(entities.Edge{ID: "a", Source: "1", Target: "2"}).
		WithEdge(entities.Edge{ID: "b", Source: "2", Target: "3"}).
		WithEdge(entities.Edge{ID: "c", Source: "1", Target: "3"})

	next := flow.WithoutNode("2").WithoutEdgesTouching("2")

	assert.Equal(t, 2, next.NodeCount())
	require.Equal(t, 1, next.EdgeCount())
	assert.Equal(t, "c", next.Edges[0].ID)
	assert.Equal(t, 3, flow.EdgeCount(), "source flow untouched")
}

func TestFlow_WithNodeData_MergesAndStampsAudit(t *testing.T) {
	created := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	modified := created.Add(time.Hour)
	editor := valueobjects.UserRef{ID: "user-2", Name: "Sam", Email: "sam@example.com"}

	flow := NewFlow().WithNode(playNode("1", created))

	next, err := flow.WithNodeData("1", map[string]interface{}{"text": "updated prompt"}, editor, modified)
	require.NoError(t, err)

	node, ok := next.Node("1")
	require.True(t, ok)
	data := node.Data.(*entities.PlayData)
	assert.Equal(t, "updated prompt", data.Text)
	assert.True(t, data.BargeIn, "unpatched fields survive the merge")
	assert.Equal(t, editor, node.LastModifiedBy)
	assert.Equal(t, modified, node.LastModifiedAt)
	assert.Equal(t, actor, node.CreatedBy)
	assert.Equal(t, created, node.CreatedAt)

	original, _ := flow.Node("1")
	assert.Equal(t, "hello", original.Data.(*entities.PlayData).Text)
}

func TestFlow_WithNodeData_RejectsPatchOfWrongShape(t *testing.T) {
	flow := NewFlow().WithNode(entities.Node{
		ID:   "1",
		Type: valueobjects.KindMenu,
		Data: &entities.MenuData{Retries: 3},
	})

	_, err := flow.WithNodeData("1", map[string]interface{}{"retries": "three"}, actor, time.Now())
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestFlow_WithNodeData_MissingNode(t *testing.T) {
	_, err := NewFlow().WithNodeData("ghost", map[string]interface{}{"text": "x"}, actor, time.Now())
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestFlow_WithNodeStyle_LeavesAuditAlone(t *testing.T) {
	created := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	flow := NewFlow().WithNode(playNode("1", created))

	next, err := flow.WithNodeStyle("1", map[string]interface{}{"color": "#ff0000"})
	require.NoError(t, err)

	node, _ := next.Node("1")
	assert.Equal(t, "#ff0000", node.Style["color"])
	assert.True(t, node.LastModifiedBy.IsZero(), "style changes are cosmetic")
	assert.True(t, node.LastModifiedAt.IsZero())
}

func TestFlow_WithEdgePatch(t *testing.T) {
	now := time.Now()
	flow := NewFlow().
		WithNode(playNode("1", now)).
		WithNode(playNode("2", now)).
		WithEdge(entities.Edge{ID: "e", Source: "1", Target: "2", Style: map[string]interface{}{"width": 2.0}})

	animated := true
	handle := "option-1"
	next, err := flow.WithEdgePatch("e", EdgePatch{
		Animated: &animated,
		Handle:   &handle,
		Style:    map[string]interface{}{"color": "blue"},
	})
	require.NoError(t, err)

	edge := next.Edges[0]
	assert.True(t, edge.Animated)
	assert.Equal(t, "option-1", edge.Handle)
	assert.Equal(t, "blue", edge.Style["color"])
	assert.Equal(t, 2.0, edge.Style["width"])

	assert.False(t, flow.Edges[0].Animated, "source edge untouched")
}

func TestFlow_LatestNodeID(t *testing.T) {
	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

	t.Run("newest creation time wins", func(t *testing.T) {
		flow := NewFlow().
			WithNode(playNode("5", base.Add(time.Hour))).
			WithNode(playNode("9", base))
		assert.Equal(t, "5", flow.LatestNodeID())
	})

	t.Run("numeric id breaks timestamp ties", func(t *testing.T) {
		flow := NewFlow().
			WithNode(playNode("9", base)).
			WithNode(playNode("10", base))
		assert.Equal(t, "10", flow.LatestNodeID())
	})

	t.Run("empty flow", func(t *testing.T) {
		assert.Equal(t, "", NewFlow().LatestNodeID())
	})
}

func TestFlow_Clone_IsDeep(t *testing.T) {
	flow := NewFlow().WithNode(entities.Node{
		ID:   "1",
		Type: valueobjects.KindMenu,
		Data: &entities.MenuData{
			PromptText: "press one",
			Options:    []entities.MenuOption{{ID: "o1", Key: "1", Label: "Sales", TargetNodeID: "2"}},
		},
	})

	cloned, err := flow.Clone()
	require.NoError(t, err)

	flow.Nodes[0].Data.(*entities.MenuData).Options[0].Label = "changed"

	got := cloned.Nodes[0].Data.(*entities.MenuData)
	assert.Equal(t, "Sales", got.Options[0].Label)
}

func TestFlow_HasTerminal(t *testing.T) {
	now := time.Now()
	flow := NewFlow().WithNode(playNode("1", now))
	assert.False(t, flow.HasTerminal())

	flow = flow.WithNode(entities.Node{ID: "2", Type: valueobjects.KindEnd, Data: &entities.EndData{Label: "End"}})
	assert.True(t, flow.HasTerminal())
}
