package entities

import (
	"time"

	"github.com/goccy/go-json"

	"flowforge-backend/domain/core/valueobjects"
	pkgerrors "flowforge-backend/pkg/errors"
)

// Node is a single building block in an IVR call flow. The payload union is
// keyed by Type; common visual and audit fields live alongside it and ride
// inside the "data" object on the wire.
type Node struct {
	ID             string
	Type           valueobjects.NodeKind
	Position       valueobjects.Position
	Style          map[string]interface{}
	CreatedBy      valueobjects.UserRef
	LastModifiedBy valueobjects.UserRef
	CreatedAt      time.Time
	LastModifiedAt time.Time
	Data           NodeData
}

// nodeEnvelope is the wire shape of a node
type nodeEnvelope struct {
	ID       string                `json:"id"`
	Type     valueobjects.NodeKind `json:"type"`
	Position valueobjects.Position `json:"position"`
	Data     json.RawMessage       `json:"data"`
}

// dataMeta carries the non-payload fields embedded in the "data" object
type dataMeta struct {
	Style          map[string]interface{} `json:"style,omitempty"`
	CreatedBy      valueobjects.UserRef   `json:"createdBy"`
	LastModifiedBy valueobjects.UserRef   `json:"lastModifiedBy"`
	CreatedAt      time.Time              `json:"createdAt"`
	LastModifiedAt time.Time              `json:"lastModifiedAt"`
}

// MarshalJSON flattens payload and audit fields into a single data object
func (n Node) MarshalJSON() ([]byte, error) {
	data := map[string]interface{}{}

	if n.Data != nil {
		payloadBytes, err := json.Marshal(n.Data)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(payloadBytes, &data); err != nil {
			return nil, err
		}
	}

	metaBytes, err := json.Marshal(dataMeta{
		Style:          n.Style,
		CreatedBy:      n.CreatedBy,
		LastModifiedBy: n.LastModifiedBy,
		CreatedAt:      n.CreatedAt,
		LastModifiedAt: n.LastModifiedAt,
	})
	if err != nil {
		return nil, err
	}
	meta := map[string]interface{}{}
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, err
	}
	for k, v := range meta {
		data[k] = v
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return json.Marshal(nodeEnvelope{
		ID:       n.ID,
		Type:     n.Type,
		Position: n.Position,
		Data:     raw,
	})
}

// UnmarshalJSON decodes the envelope and dispatches the payload by type
func (n *Node) UnmarshalJSON(b []byte) error {
	var env nodeEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	if !env.Type.IsValid() {
		return pkgerrors.NewValidationError("unknown node type: " + string(env.Type))
	}

	n.ID = env.ID
	n.Type = env.Type
	n.Position = env.Position

	if len(env.Data) == 0 {
		env.Data = json.RawMessage("{}")
	}

	var meta dataMeta
	if err := json.Unmarshal(env.Data, &meta); err != nil {
		return err
	}
	n.Style = meta.Style
	n.CreatedBy = meta.CreatedBy
	n.LastModifiedBy = meta.LastModifiedBy
	n.CreatedAt = meta.CreatedAt
	n.LastModifiedAt = meta.LastModifiedAt

	payload, err := EmptyData(env.Type)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(env.Data, payload); err != nil {
		return err
	}
	n.Data = payload

	return nil
}

// Clone returns a deep copy via the JSON codec. Snapshots rely on this so
// ledger entries never alias live graph state.
func (n Node) Clone() (Node, error) {
	raw, err := json.Marshal(n)
	if err != nil {
		return Node{}, err
	}
	var out Node
	if err := json.Unmarshal(raw, &out); err != nil {
		return Node{}, err
	}
	return out, nil
}

// Touch refreshes the audit fields for a user-driven data change. Style-only
// changes are cosmetic and must not call this.
func (n *Node) Touch(actor valueobjects.UserRef, at time.Time) {
	n.LastModifiedBy = actor
	n.LastModifiedAt = at
}

// RouteTargets exposes the payload's routing references, nil-safe
func (n Node) RouteTargets() []RouteTarget {
	if n.Data == nil {
		return nil
	}
	return n.Data.RouteTargets()
}
