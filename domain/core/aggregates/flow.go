package aggregates

import (
	"time"

	"dario.cat/mergo"
	"github.com/goccy/go-json"

	"flowforge-backend/domain/core/entities"
	"flowforge-backend/domain/core/valueobjects"
	pkgerrors "flowforge-backend/pkg/errors"
)

// Flow is the graph value for one call flow: the node and edge collections.
// Every operation returns a new Flow instead of mutating in place, so change
// detection and undo infrastructure can be layered on top by identity
// comparison.
type Flow struct {
	Nodes []entities.Node `json:"nodes"`
	Edges []entities.Edge `json:"edges"`
}

// NewFlow returns an empty flow value
func NewFlow() Flow {
	return Flow{Nodes: []entities.Node{}, Edges: []entities.Edge{}}
}

// Node returns the node with the given id
func (f Flow) Node(id string) (entities.Node, bool) {
	for _, n := range f.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return entities.Node{}, false
}

// HasNode reports whether a node with the given id exists
func (f Flow) HasNode(id string) bool {
	_, ok := f.Node(id)
	return ok
}

// HasEdge reports whether an edge with the given id exists
func (f Flow) HasEdge(id string) bool {
	for _, e := range f.Edges {
		if e.ID == id {
			return true
		}
	}
	return false
}

// HasTerminal reports whether the flow already contains a hard stop. At most
// one terminator/end node may exist, and no nodes may be appended while one
// does.
func (f Flow) HasTerminal() bool {
	for _, n := range f.Nodes {
		if n.Type.IsTerminal() {
			return true
		}
	}
	return false
}

// NodeCount returns the number of nodes
func (f Flow) NodeCount() int {
	return len(f.Nodes)
}

// EdgeCount returns the number of edges
func (f Flow) EdgeCount() int {
	return len(f.Edges)
}

// WithNode returns a new flow with the node appended
func (f Flow) WithNode(node entities.Node) Flow {
	nodes := make([]entities.Node, len(f.Nodes), len(f.Nodes)+1)
	copy(nodes, f.Nodes)
	nodes = append(nodes, node)
	return Flow{Nodes: nodes, Edges: f.copyEdges()}
}

// WithoutNode returns a new flow with the node removed. Edges are untouched;
// cascading cleanup is the mutation engine's responsibility via
// WithoutEdgesTouching.
func (f Flow) WithoutNode(id string) Flow {
	nodes := make([]entities.Node, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	return Flow{Nodes: nodes, Edges: f.copyEdges()}
}

// WithEdge returns a new flow with the edge appended
func (f Flow) WithEdge(edge entities.Edge) Flow {
	edges := make([]entities.Edge, len(f.Edges), len(f.Edges)+1)
	copy(edges, f.Edges)
	edges = append(edges, edge)
	return Flow{Nodes: f.copyNodes(), Edges: edges}
}

// WithoutEdge returns a new flow with the edge removed
func (f Flow) WithoutEdge(id string) Flow {
	edges := make([]entities.Edge, 0, len(f.Edges))
	for _, e := range f.Edges {
		if e.ID != id {
			edges = append(edges, e)
		}
	}
	return Flow{Nodes: f.copyNodes(), Edges: edges}
}

// WithoutEdgesTouching returns a new flow without any edge whose source or
// target equals nodeID
func (f Flow) WithoutEdgesTouching(nodeID string) Flow {
	edges := make([]entities.Edge, 0, len(f.Edges))
	for _, e := range f.Edges {
		if !e.Touches(nodeID) {
			edges = append(edges, e)
		}
	}
	return Flow{Nodes: f.copyNodes(), Edges: edges}
}

// WithNodeData shallow-merges a patch into the node's payload and refreshes
// the audit fields. Style changes go through WithNodeStyle instead, which
// leaves audit untouched.
func (f Flow) WithNodeData(id string, patch map[string]interface{}, actor valueobjects.UserRef, now time.Time) (Flow, error) {
	idx := f.nodeIndex(id)
	if idx < 0 {
		return Flow{}, pkgerrors.NewNotFoundError("node " + id)
	}

	node := f.Nodes[idx]

	payloadMap := map[string]interface{}{}
	if node.Data != nil {
		raw, err := json.Marshal(node.Data)
		if err != nil {
			return Flow{}, pkgerrors.Wrap(err, "encode node data")
		}
		if err := json.Unmarshal(raw, &payloadMap); err != nil {
			return Flow{}, pkgerrors.Wrap(err, "decode node data")
		}
	}

	if err := mergo.Merge(&payloadMap, patch, mergo.WithOverride); err != nil {
		return Flow{}, pkgerrors.Wrap(err, "merge node data patch")
	}

	merged, err := json.Marshal(payloadMap)
	if err != nil {
		return Flow{}, pkgerrors.Wrap(err, "encode merged data")
	}
	fresh, err := entities.EmptyData(node.Type)
	if err != nil {
		return Flow{}, err
	}
	if err := json.Unmarshal(merged, fresh); err != nil {
		return Flow{}, pkgerrors.NewValidationError("node data patch does not fit node type " + node.Type.String()).WithCause(err)
	}

	node.Data = fresh
	node.Touch(actor, now)

	nodes := f.copyNodes()
	nodes[idx] = node
	return Flow{Nodes: nodes, Edges: f.copyEdges()}, nil
}

// WithNodeStyle merges visual overrides into the node's style. Cosmetic
// only; audit fields are not refreshed.
func (f Flow) WithNodeStyle(id string, style map[string]interface{}) (Flow, error) {
	idx := f.nodeIndex(id)
	if idx < 0 {
		return Flow{}, pkgerrors.NewNotFoundError("node " + id)
	}

	node := f.Nodes[idx]
	merged := map[string]interface{}{}
	for k, v := range node.Style {
		merged[k] = v
	}
	if err := mergo.Merge(&merged, style, mergo.WithOverride); err != nil {
		return Flow{}, pkgerrors.Wrap(err, "merge style patch")
	}
	node.Style = merged

	nodes := f.copyNodes()
	nodes[idx] = node
	return Flow{Nodes: nodes, Edges: f.copyEdges()}, nil
}

// WithNodePosition moves a node. Layout only; audit fields untouched.
func (f Flow) WithNodePosition(id string, pos valueobjects.Position) (Flow, error) {
	idx := f.nodeIndex(id)
	if idx < 0 {
		return Flow{}, pkgerrors.NewNotFoundError("node " + id)
	}
	node := f.Nodes[idx]
	node.Position = pos

	nodes := f.copyNodes()
	nodes[idx] = node
	return Flow{Nodes: nodes, Edges: f.copyEdges()}, nil
}

// EdgePatch carries the mutable edge fields for an update
type EdgePatch struct {
	Animated *bool
	Handle   *string
	Style    map[string]interface{}
}

// WithEdgePatch shallow-merges a patch into an edge
func (f Flow) WithEdgePatch(id string, patch EdgePatch) (Flow, error) {
	idx := -1
	for i, e := range f.Edges {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Flow{}, pkgerrors.NewNotFoundError("edge " + id)
	}

	edge := f.Edges[idx]
	if patch.Animated != nil {
		edge.Animated = *patch.Animated
	}
	if patch.Handle != nil {
		edge.Handle = *patch.Handle
	}
	if patch.Style != nil {
		merged := map[string]interface{}{}
		for k, v := range edge.Style {
			merged[k] = v
		}
		if err := mergo.Merge(&merged, patch.Style, mergo.WithOverride); err != nil {
			return Flow{}, pkgerrors.Wrap(err, "merge edge style patch")
		}
		edge.Style = merged
	}

	edges := f.copyEdges()
	edges[idx] = edge
	return Flow{Nodes: f.copyNodes(), Edges: edges}, nil
}

// LatestNodeID returns the id of the most recently added node, judged by
// creation timestamp with the allocator's monotonic id as tie-breaker.
// Returns empty when the flow has no nodes.
func (f Flow) LatestNodeID() string {
	latest := ""
	var latestAt time.Time
	for _, n := range f.Nodes {
		if latest == "" || n.CreatedAt.After(latestAt) ||
			(n.CreatedAt.Equal(latestAt) && numericID(n.ID) > numericID(latest)) {
			latest = n.ID
			latestAt = n.CreatedAt
		}
	}
	return latest
}

// Clone returns a deep copy of the flow with no shared state
func (f Flow) Clone() (Flow, error) {
	nodes := make([]entities.Node, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		cloned, err := n.Clone()
		if err != nil {
			return Flow{}, err
		}
		nodes = append(nodes, cloned)
	}

	raw, err := json.Marshal(f.Edges)
	if err != nil {
		return Flow{}, err
	}
	edges := []entities.Edge{}
	if err := json.Unmarshal(raw, &edges); err != nil {
		return Flow{}, err
	}

	return Flow{Nodes: nodes, Edges: edges}, nil
}

func (f Flow) nodeIndex(id string) int {
	for i, n := range f.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (f Flow) copyNodes() []entities.Node {
	nodes := make([]entities.Node, len(f.Nodes))
	copy(nodes, f.Nodes)
	return nodes
}

func (f Flow) copyEdges() []entities.Edge {
	edges := make([]entities.Edge, len(f.Edges))
	copy(edges, f.Edges)
	return edges
}

// numericID parses an allocator-issued decimal id; non-numeric ids sort
// lowest
func numericID(id string) uint64 {
	var v uint64
	for _, r := range id {
		if r < '0' || r > '9' {
			return 0
		}
		v = v*10 + uint64(r-'0')
	}
	return v
}
