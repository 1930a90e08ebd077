package valueobjects

// Position is a node's canvas placement
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPosition creates a position
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

// Offset returns a position shifted by dx, dy
func (p Position) Offset(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Equals compares two positions
func (p Position) Equals(other Position) bool {
	return p.X == other.X && p.Y == other.Y
}
