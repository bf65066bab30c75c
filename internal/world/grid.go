package world

import (
	"math"

	"github.com/edgarsdzgz/dragonChronicles-sub003/internal/model"
)

// DefaultCellSize is the side of one grid cell in world units.
const DefaultCellSize = 100.0

// maxCellCoord keeps floor(coord / cellSize) inside int32.
const maxCellCoord = math.MaxInt32 - 1

// CellKey addresses one grid cell.
type CellKey struct {
	X int32
	Y int32
}

// CoordToCell converts world coordinates to cell key.
// Formula: floor(coord / cellSize)
func CoordToCell(x, y, cellSize float64) CellKey {
	return CellKey{
		X: int32(math.Floor(x / cellSize)),
		Y: int32(math.Floor(y / cellSize)),
	}
}

// CellCenter returns world coordinates of the cell center.
func CellCenter(k CellKey, cellSize float64) (x, y float64) {
	x = (float64(k.X) + 0.5) * cellSize
	y = (float64(k.Y) + 0.5) * cellSize
	return x, y
}

// gridEntry keeps the entity together with its position in the input slice,
// so queries can restore input order.
type gridEntry struct {
	index  int
	entity *model.Entity
}

// Grid buckets live entities by cell for radius queries.
// Not safe for concurrent use; rebuilt once per tick by its owner.
type Grid struct {
	cellSize float64
	cells    map[CellKey][]gridEntry
	count    int
	outside  int
}

// NewGrid creates an empty grid. Non-positive cellSize falls back to DefaultCellSize.
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 || math.IsNaN(cellSize) || math.IsInf(cellSize, 0) {
		cellSize = DefaultCellSize
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[CellKey][]gridEntry),
	}
}

// CellSize returns grid cell size.
func (g *Grid) CellSize() float64 {
	return g.cellSize
}

// InBounds reports whether (x, y) maps to a representable cell.
// NaN and infinite coordinates never do.
func (g *Grid) InBounds(x, y float64) bool {
	return math.Abs(x/g.cellSize) < maxCellCoord && math.Abs(y/g.cellSize) < maxCellCoord
}

// Rebuild clears the grid and inserts all live entities.
// Entities outside the cell space are skipped and counted by Outside.
// Cell slices are reused between rebuilds to avoid allocations per tick.
func (g *Grid) Rebuild(entities []*model.Entity) {
	g.Clear()

	for i, e := range entities {
		if e == nil || !e.Alive {
			continue
		}
		if !g.InBounds(e.Position.X, e.Position.Y) {
			g.outside++
			continue
		}
		k := CoordToCell(e.Position.X, e.Position.Y, g.cellSize)
		g.cells[k] = append(g.cells[k], gridEntry{index: i, entity: e})
		g.count++
	}
}

// Clear drops every entity reference while keeping bucket capacity.
// Cells left empty since the previous Clear are removed.
func (g *Grid) Clear() {
	for k, bucket := range g.cells {
		if len(bucket) == 0 {
			delete(g.cells, k)
			continue
		}
		clear(bucket)
		g.cells[k] = bucket[:0]
	}
	g.count = 0
	g.outside = 0
}

// Len returns number of indexed entities.
func (g *Grid) Len() int {
	return g.count
}

// Outside returns number of live entities the last Rebuild could not index.
func (g *Grid) Outside() int {
	return g.outside
}

// CellCount returns number of non-empty cells.
func (g *Grid) CellCount() int {
	n := 0
	for _, bucket := range g.cells {
		if len(bucket) > 0 {
			n++
		}
	}
	return n
}

// QueryRadius calls fn for every indexed entity whose cell intersects the
// square enclosing the circle (x, y, radius). Callers must still apply the
// exact distance check. fn receives the entity's index in the slice passed
// to Rebuild. Iteration stops when fn returns false.
func (g *Grid) QueryRadius(x, y, radius float64, fn func(index int, e *model.Entity) bool) {
	if radius < 0 || math.IsNaN(radius) {
		return
	}
	minK := CoordToCell(x-radius, y-radius, g.cellSize)
	maxK := CoordToCell(x+radius, y+radius, g.cellSize)

	// Huge radius: scanning every bucket is cheaper than walking empty cells.
	span := (int64(maxK.X) - int64(minK.X) + 1) * (int64(maxK.Y) - int64(minK.Y) + 1)
	if span > int64(len(g.cells)) {
		for k, bucket := range g.cells {
			if k.X < minK.X || k.X > maxK.X || k.Y < minK.Y || k.Y > maxK.Y {
				continue
			}
			for _, ge := range bucket {
				if !fn(ge.index, ge.entity) {
					return
				}
			}
		}
		return
	}

	for cx := minK.X; cx <= maxK.X; cx++ {
		for cy := minK.Y; cy <= maxK.Y; cy++ {
			for _, ge := range g.cells[CellKey{X: cx, Y: cy}] {
				if !fn(ge.index, ge.entity) {
					return
				}
			}
		}
	}
}
