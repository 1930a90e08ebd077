package entities

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowforge-backend/domain/core/valueobjects"
)

func TestNode_MarshalJSON_FlattensDataObject(t *testing.T) {
	created := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	node := Node{
		ID:             "7",
		Type:           valueobjects.KindPlay,
		Position:       valueobjects.NewPosition(250, 60),
		Style:          map[string]interface{}{"color": "#123456"},
		CreatedBy:      valueobjects.UserRef{ID: "u1", Name: "Jane", Email: "jane@example.com"},
		LastModifiedBy: valueobjects.UserRef{ID: "u1", Name: "Jane", Email: "jane@example.com"},
		CreatedAt:      created,
		LastModifiedAt: created,
		Data:           &PlayData{Text: "Welcome", BargeIn: true},
	}

	raw, err := json.Marshal(node)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	assert.Equal(t, "7", decoded["id"])
	assert.Equal(t, "play", decoded["type"])

	data, ok := decoded["data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Welcome", data["text"])
	assert.Equal(t, true, data["bargeIn"])
	assert.NotNil(t, data["style"])
	assert.NotNil(t, data["createdBy"])
}

func TestNode_UnmarshalJSON_DispatchesPayloadByType(t *testing.T) {
	raw := []byte(`{
		"id": "9",
		"type": "menu",
		"position": {"x": 300, "y": 210},
		"data": {
			"promptText": "Press one for sales",
			"retries": 2,
			"options": [{"id": "o1", "key": "1", "label": "Sales", "targetNodeId": "10"}],
			"createdBy": {"id": "u1", "name": "Jane", "email": "jane@example.com"}
		}
	}`)

	var node Node
	require.NoError(t, json.Unmarshal(raw, &node))

	assert.Equal(t, "9", node.ID)
	assert.Equal(t, valueobjects.KindMenu, node.Type)
	assert.Equal(t, 300.0, node.Position.X)
	assert.Equal(t, "u1", node.CreatedBy.ID)

	menu, ok := node.Data.(*MenuData)
	require.True(t, ok)
	assert.Equal(t, "Press one for sales", menu.PromptText)
	assert.Equal(t, 2, menu.Retries)
	require.Len(t, menu.Options, 1)
	assert.Equal(t, "10", menu.Options[0].TargetNodeID)
}

func TestNode_UnmarshalJSON_UnknownType(t *testing.T) {
	var node Node
	err := json.Unmarshal([]byte(`{"id": "1", "type": "hologram", "data": {}}`), &node)
	assert.Error(t, err)
}

func TestNode_CloneRoundTrip(t *testing.T) {
	node := Node{
		ID:   "3",
		Type: valueobjects.KindDecision,
		Data: &DecisionData{Variable: "accountType", Mapping: "gold=>5;silver=>6"},
	}

	cloned, err := node.Clone()
	require.NoError(t, err)

	cloned.Data.(*DecisionData).Mapping = "changed"
	assert.Equal(t, "gold=>5;silver=>6", node.Data.(*DecisionData).Mapping)
}
