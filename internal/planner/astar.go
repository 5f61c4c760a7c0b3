package planner

import (
	"container/heap"
)

// searchNode represents a node in one A* search. It is discarded once the path is rebuilt.
type searchNode[K comparable] struct {
	Key    K
	G      float64 // Cost from start to this node
	H      float64 // Heuristic cost from this node to the goal
	F      float64 // Total cost (G + H)
	Parent *searchNode[K]
	Index  int // Index in the heap
}

// priorityQueue implements heap.Interface ordered by F. Ties fall to heap order.
type priorityQueue[K comparable] []*searchNode[K]

func (pq priorityQueue[K]) Len() int { return len(pq) }

func (pq priorityQueue[K]) Less(i, j int) bool {
	return pq[i].F < pq[j].F
}

func (pq priorityQueue[K]) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *priorityQueue[K]) Push(x interface{}) {
	n := len(*pq)
	node := x.(*searchNode[K])
	node.Index = n
	*pq = append(*pq, node)
}

func (pq *priorityQueue[K]) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.Index = -1
	*pq = old[0 : n-1]
	return node
}

// step is an outgoing move from a node.
type step[K comparable] struct {
	To   K
	Cost float64
}

// searchSpace describes the graph a single A* call explores.
type searchSpace[K comparable] struct {
	neighbors func(K) []step[K]
	heuristic func(K) float64
	isGoal    func(K) bool
}

// searchStats reports how much work a search did.
type searchStats struct {
	Explored int
	Cost     float64
}

// aStar runs A* from start and returns the path of keys, or false when the open set empties.
func aStar[K comparable](start K, space searchSpace[K]) ([]K, searchStats, bool) {
	openSet := &priorityQueue[K]{}
	heap.Init(openSet)

	h := space.heuristic(start)
	startNode := &searchNode[K]{Key: start, H: h, F: h}
	heap.Push(openSet, startNode)

	closedSet := make(map[K]bool)
	openSetMap := map[K]*searchNode[K]{start: startNode}

	stats := searchStats{}
	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*searchNode[K])
		delete(openSetMap, current.Key)
		stats.Explored++

		if space.isGoal(current.Key) {
			stats.Cost = current.G
			return reconstruct(current), stats, true
		}

		closedSet[current.Key] = true

		for _, edge := range space.neighbors(current.Key) {
			if closedSet[edge.To] {
				continue
			}

			tentativeG := current.G + edge.Cost

			neighbor, exists := openSetMap[edge.To]
			if !exists {
				neighbor = &searchNode[K]{
					Key:    edge.To,
					G:      tentativeG,
					H:      space.heuristic(edge.To),
					Parent: current,
				}
				neighbor.F = neighbor.G + neighbor.H
				heap.Push(openSet, neighbor)
				openSetMap[edge.To] = neighbor
			} else if tentativeG < neighbor.G {
				neighbor.G = tentativeG
				neighbor.F = neighbor.G + neighbor.H
				neighbor.Parent = current
				heap.Fix(openSet, neighbor.Index)
			}
		}
	}

	return nil, stats, false
}

func reconstruct[K comparable](goal *searchNode[K]) []K {
	n := 0
	for node := goal; node != nil; node = node.Parent {
		n++
	}
	path := make([]K, n)
	for node := goal; node != nil; node = node.Parent {
		n--
		path[n] = node.Key
	}
	return path
}
