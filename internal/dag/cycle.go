package dag

// WouldCreateCycle reports whether making dependentID depend on prerequisiteID
// would close a loop. It never mutates the graph.
//
// The candidate edge closes a loop exactly when prerequisiteID already depends,
// directly or transitively, on dependentID. A self-edge is always a cycle.
func (g *Graph) WouldCreateCycle(prerequisiteID, dependentID string) (bool, error) {
	path, err := g.CyclePath(prerequisiteID, dependentID)
	if err != nil {
		return false, err
	}
	return path != nil, nil
}

// CyclePath returns the existing dependency chain that the candidate edge
// dependentID → prerequisiteID would close, starting at prerequisiteID and
// ending at dependentID. It returns nil when no cycle would result.
func (g *Graph) CyclePath(prerequisiteID, dependentID string) ([]string, error) {
	if _, err := g.get(prerequisiteID); err != nil {
		return nil, err
	}
	if _, err := g.get(dependentID); err != nil {
		return nil, err
	}
	if prerequisiteID == dependentID {
		return []string{prerequisiteID}, nil
	}
	return g.dependencyPath(prerequisiteID, dependentID), nil
}

// dependencyPath walks dependency edges depth-first from `from` and returns the
// first path that reaches `to`, or nil. Each node is expanded at most once.
func (g *Graph) dependencyPath(from, to string) []string {
	parent := map[string]string{from: ""}
	stack := []string{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == to {
			var path []string
			for id := cur; id != ""; id = parent[id] {
				path = append(path, id)
			}
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}
		n, ok := g.nodes[cur]
		if !ok {
			continue
		}
		// Push in reverse so the first-listed dependency is explored first.
		for i := len(n.deps) - 1; i >= 0; i-- {
			next := n.deps[i]
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = cur
			stack = append(stack, next)
		}
	}
	return nil
}

// FindCycle returns a dependency cycle if one exists, or nil if the graph is acyclic.
// The returned ids follow dependency edges and repeat the first id at the end.
// Uses DFS with coloring: white (unvisited), gray (on the stack), black (done).
func (g *Graph) FindCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int, len(g.nodes))
	parent := make(map[string]string)

	var dfs func(id string) []string
	dfs = func(id string) []string {
		color[id] = gray
		for _, next := range g.nodes[id].deps {
			if _, ok := g.nodes[next]; !ok {
				continue // dangling reference, not a cycle
			}
			switch color[next] {
			case gray:
				cycle := []string{id}
				for cur := id; cur != next; {
					cur = parent[cur]
					cycle = append(cycle, cur)
				}
				for i, j := 0, len(cycle)-1; i < j; i, j = i+1, j-1 {
					cycle[i], cycle[j] = cycle[j], cycle[i]
				}
				return append(cycle, next)
			case white:
				parent[next] = id
				if cycle := dfs(next); cycle != nil {
					return cycle
				}
			}
		}
		color[id] = black
		return nil
	}

	for _, id := range g.order {
		if color[id] == white {
			if cycle := dfs(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
