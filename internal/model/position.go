package model

import "math"

// Position is a point on the 2D battlefield.
// Value type, passed by value.
type Position struct {
	X float64
	Y float64
}

// NewPosition creates Position with given coordinates.
func NewPosition(x, y float64) Position {
	return Position{X: x, Y: y}
}

// DistanceSquared returns squared distance to other point (no sqrt).
func (p Position) DistanceSquared(other Position) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return dx*dx + dy*dy
}

// Distance returns Euclidean distance to other point.
func (p Position) Distance(other Position) float64 {
	return math.Sqrt(p.DistanceSquared(other))
}
