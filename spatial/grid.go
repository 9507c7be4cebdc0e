package spatial

import (
	"math"
	"math/bits"
	"sort"

	"github.com/akmonengine/reach/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// CellKey is the integer coordinate of a cell in 3D space
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of the candidates touching it
type Cell struct {
	indices []int
}

// Grid is a uniform hashed grid over candidate bounding volumes.
// Candidates are referenced by their index in the caller's ordered slice,
// so queries can preserve the caller's ordering.
type Grid struct {
	cellSize float64
	cells    []Cell
	cellMask int

	seen []bool
}

// NewGrid creates a grid; numCells is rounded up to a power of two
func NewGrid(cellSize float64, numCells int) *Grid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].indices = make([]int, 0, 8)
	}

	return &Grid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

// Insert adds a candidate index to every cell its volume touches
func (g *Grid) Insert(index int, aabb scene.AABB) {
	g.forEachCell(aabb, func(cellIdx int) {
		g.cells[cellIdx].indices = append(g.cells[cellIdx].indices, index)
	})
}

func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i].indices = g.cells[i].indices[:0]
	}
}

// Query returns, in ascending order and without duplicates, the indices
// sharing at least one cell with aabb. Hash collisions may add indices whose
// volume does not overlap; callers still run the exact overlap test.
func (g *Grid) Query(aabb scene.AABB) []int {
	var result []int

	g.forEachCell(aabb, func(cellIdx int) {
		for _, idx := range g.cells[cellIdx].indices {
			if idx >= len(g.seen) {
				g.seen = append(g.seen, make([]bool, idx+1-len(g.seen))...)
			}
			if g.seen[idx] {
				continue
			}
			g.seen[idx] = true
			result = append(result, idx)
		}
	})

	for _, idx := range result {
		g.seen[idx] = false
	}
	sort.Ints(result)

	return result
}

// forEachCell calls fn for the bucket of every cell aabb spans. A span with
// more cells than there are buckets visits each bucket once instead, which
// keeps the cost bounded by len(g.cells) whatever the volume's size.
func (g *Grid) forEachCell(aabb scene.AABB, fn func(cellIdx int)) {
	minCell := g.worldToCell(aabb.Min)
	maxCell := g.worldToCell(aabb.Max)

	if g.spanExceedsBuckets(minCell, maxCell) {
		for i := range g.cells {
			fn(i)
		}
		return
	}

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				fn(g.hashCell(CellKey{x, y, z}))
			}
		}
	}
}

func (g *Grid) spanExceedsBuckets(minCell, maxCell CellKey) bool {
	limit := len(g.cells)
	count := 1
	for _, span := range [3]int{
		maxCell.X - minCell.X + 1,
		maxCell.Y - minCell.Y + 1,
		maxCell.Z - minCell.Z + 1,
	} {
		if span <= 0 || span > limit {
			return true
		}
		count *= span
		if count > limit {
			return true
		}
	}
	return false
}

func (g *Grid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / g.cellSize)),
		Y: int(math.Floor(pos.Y() / g.cellSize)),
		Z: int(math.Floor(pos.Z() / g.cellSize)),
	}
}

func (g *Grid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & g.cellMask
}
