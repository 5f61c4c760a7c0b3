package planner

// OptimizePath reduces a grid path with greedy line-of-sight shortcuts. From each kept
// waypoint it keeps the farthest later waypoint reachable by a clear straight line, or the
// immediate next one when none is. The result is a subsequence of path with the same
// endpoints.
func OptimizePath(path []Cell, grid *Grid) []Cell {
	if len(path) <= 2 {
		return path
	}

	optimized := []Cell{path[0]}
	last := len(path) - 1

	for i := 0; i < last; {
		next := i + 1
		for j := last; j > i+1; j-- {
			if grid.LineClear(path[i], path[j]) {
				next = j
				break
			}
		}
		optimized = append(optimized, path[next])
		i = next
	}

	return optimized
}
