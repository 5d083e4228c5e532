// Package pathfind implements A* search over the static grid: 4-connected,
// unit step cost, Manhattan heuristic. The open set is a binary min-heap
// ordered by (f, h, tie-break cell) exactly as the retrieved multi-agent
// pathfinding reference implements its own space-time A* open set with
// container/heap, generalized here to a tick-agnostic static search — the
// reservation table (internal/reservation) is the layer that adds the time
// dimension back in, per the scheduler's plan/reserve split.
package pathfind

import (
	"container/heap"

	"github.com/scottdwilson/fleetsim/internal/grid"
)

// Traversability answers whether a cell can be entered by the requesting
// robot. It is the single narrow capability the pathfinder needs from the
// grid plus whatever shelf-ownership exception applies this tick, so
// alternative obstacle policies can be swapped in without touching the
// search itself.
type Traversability interface {
	TraversableFor(c grid.Cell, ownedShelf grid.Cell, hasException bool) bool
}

// Request bundles a single plan() call's inputs: the requester's id is
// carried through so the traversability check can apply that robot's own
// shelf exception, never another robot's.
type Request struct {
	Start, Goal  grid.Cell
	OwnedShelf   grid.Cell
	HasException bool
}

// node is a single A* search node. index is maintained by container/heap for
// O(log n) updates; parent is used to reconstruct the winning path.
type node struct {
	cell   grid.Cell
	g, h   int
	parent *node
	index  int
}

func (n *node) f() int { return n.g + n.h }

// openSet is a binary min-heap ordered by (f, h, cell) so that, per the
// spec's tie-break rule, equal f-scores prefer lower h (closer to goal) and
// then deterministic row-then-column ordering.
type openSet []*node

func (pq openSet) Len() int { return len(pq) }

func (pq openSet) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	if a.f() != b.f() {
		return a.f() < b.f()
	}
	if a.h != b.h {
		return a.h < b.h
	}
	if a.cell.Row != b.cell.Row {
		return a.cell.Row < b.cell.Row
	}
	return a.cell.Col < b.cell.Col
}

func (pq openSet) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *openSet) Push(x any) {
	n := x.(*node)
	n.index = len(*pq)
	*pq = append(*pq, n)
}

func (pq *openSet) Pop() any {
	old := *pq
	last := len(old) - 1
	n := old[last]
	n.index = -1
	*pq = old[:last]
	return n
}

// Plan runs A* from req.Start to req.Goal over g, honoring the requester's
// shelf-traversal exception. It returns the ordered sequence of cells from
// Start to Goal inclusive, or (nil, false) if no path exists. It never
// returns a partial path: a search that exhausts its frontier without
// reaching the goal yields exactly (nil, false).
func Plan(g Traversability, req Request) ([]grid.Cell, bool) {
	if req.Start == req.Goal {
		return []grid.Cell{req.Start}, true
	}

	start := &node{cell: req.Start, g: 0, h: req.Start.Manhattan(req.Goal)}

	open := &openSet{}
	heap.Init(open)
	heap.Push(open, start)

	// best tracks the lowest g seen so far for a cell, so stale heap entries
	// (pushed before a cheaper route to the same cell was found) are skipped
	// rather than re-expanded. closed marks cells whose shortest route is
	// final, acting as the bitset closed-set the spec calls for; a map keyed
	// by cell is the idiomatic Go equivalent for a grid of unknown bounds.
	best := map[grid.Cell]int{req.Start: 0}
	closed := map[grid.Cell]bool{}

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)

		if closed[current.cell] {
			continue
		}
		closed[current.cell] = true

		if current.cell == req.Goal {
			return reconstruct(current), true
		}

		for _, next := range grid.Neighbors4(current.cell) {
			if closed[next] {
				continue
			}
			if !g.TraversableFor(next, req.OwnedShelf, req.HasException) {
				continue
			}
			tentativeG := current.g + 1
			if prev, ok := best[next]; ok && tentativeG >= prev {
				continue
			}
			best[next] = tentativeG
			heap.Push(open, &node{
				cell:   next,
				g:      tentativeG,
				h:      next.Manhattan(req.Goal),
				parent: current,
			})
		}
	}

	return nil, false
}

// reconstruct walks n's parent chain back to the root and reverses it into a
// start-to-goal ordered path.
func reconstruct(n *node) []grid.Cell {
	var path []grid.Cell
	for cur := n; cur != nil; cur = cur.parent {
		path = append(path, cur.cell)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
