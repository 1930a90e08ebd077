package entities

// Edge is a directed connection between two nodes in a flow. Handle names
// the source output (a menu option or classifier function id) when the
// source kind exposes multiple outputs; parallel edges between the same pair
// are allowed and distinguished by Handle.
type Edge struct {
	ID       string                 `json:"id"`
	Source   string                 `json:"source"`
	Target   string                 `json:"target"`
	Handle   string                 `json:"handle,omitempty"`
	Animated bool                   `json:"animated"`
	Style    map[string]interface{} `json:"style,omitempty"`
}

// Touches reports whether the edge references the given node on either end
func (e Edge) Touches(nodeID string) bool {
	return e.Source == nodeID || e.Target == nodeID
}
