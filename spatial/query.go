// Package spatial finds the interactable a controller's grip volume touches.
//
// The first candidate in input order whose world AABB overlaps the grip volume
// wins. There is no attempt to pick the closest or deepest overlap.
package spatial

import "github.com/akmonengine/reach/scene"

// FindOverlap tests candidates in order against the current world AABB of grip.
// It returns nil when grip has no shape or no candidate overlaps.
func FindOverlap(grip *scene.Node, candidates []*scene.Node) *scene.Node {
	box, ok := grip.WorldAABB()
	if !ok {
		return nil
	}
	return FindOverlapBox(box, candidates, nil)
}

// FindOverlapBox returns the first candidate overlapping box.
// Candidates without a shape, and candidates for which skip reports true,
// are ignored.
func FindOverlapBox(box scene.AABB, candidates []*scene.Node, skip func(*scene.Node) bool) *scene.Node {
	for _, candidate := range candidates {
		if hit(box, candidate, skip) {
			return candidate
		}
	}
	return nil
}

func hit(box scene.AABB, candidate *scene.Node, skip func(*scene.Node) bool) bool {
	if candidate == nil || (skip != nil && skip(candidate)) {
		return false
	}
	aabb, ok := candidate.WorldAABB()
	return ok && box.Overlaps(aabb)
}

// Index answers the same query as FindOverlapBox, switching to a hashed grid
// once the candidate set reaches the threshold. The grid is rebuilt on every
// call from the candidates' current world AABBs, so it never serves stale
// poses; it narrows the exact tests, not the volume computations.
type Index struct {
	grid      *Grid
	threshold int
}

// NewIndex creates an index; a threshold <= 0 always uses the grid
func NewIndex(cellSize float64, numCells int, threshold int) *Index {
	return &Index{
		grid:      NewGrid(cellSize, numCells),
		threshold: threshold,
	}
}

func (ix *Index) FindOverlap(box scene.AABB, candidates []*scene.Node, skip func(*scene.Node) bool) *scene.Node {
	if len(candidates) < ix.threshold {
		return FindOverlapBox(box, candidates, skip)
	}

	ix.grid.Clear()
	for i, candidate := range candidates {
		if candidate == nil {
			continue
		}
		if aabb, ok := candidate.WorldAABB(); ok {
			ix.grid.Insert(i, aabb)
		}
	}

	// ascending indices keep first-in-input-order semantics
	for _, i := range ix.grid.Query(box) {
		if hit(box, candidates[i], skip) {
			return candidates[i]
		}
	}
	return nil
}
