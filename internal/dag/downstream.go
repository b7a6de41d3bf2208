package dag

import "github.com/gyaneshwarpardhi/depgraph/internal/task"

// DownstreamIDs returns every node that depends on id, directly or transitively,
// in graph insertion order. id itself is never included.
func (g *Graph) DownstreamIDs(id string) ([]string, error) {
	if _, err := g.get(id); err != nil {
		return nil, err
	}
	reached := g.downstream(id, g.dependentsIndex())
	out := make([]string, 0, len(reached))
	for _, oid := range g.order {
		if _, ok := reached[oid]; ok {
			out = append(out, oid)
		}
	}
	return out, nil
}

// Downstream returns copies of the tasks of every node downstream of id.
func (g *Graph) Downstream(id string) ([]task.Task, error) {
	ids, err := g.DownstreamIDs(id)
	if err != nil {
		return nil, err
	}
	out := make([]task.Task, 0, len(ids))
	for _, oid := range ids {
		out = append(out, g.nodes[oid].task.Clone())
	}
	return out, nil
}

// Blockers returns the unfinished nodes that at least one other node waits on.
func (g *Graph) Blockers() []string {
	index := g.dependentsIndex()
	var out []string
	for _, id := range g.order {
		if g.nodes[id].task.Done() {
			continue
		}
		if len(index[id]) > 0 {
			out = append(out, id)
		}
	}
	return out
}

// dependentsIndex inverts the dependency lists: prerequisite id → dependent ids.
func (g *Graph) dependentsIndex() map[string][]string {
	index := make(map[string][]string, len(g.nodes))
	for _, id := range g.order {
		for _, dep := range g.nodes[id].deps {
			index[dep] = append(index[dep], id)
		}
	}
	return index
}

// downstream does a breadth-first walk over the dependents index. The visited
// set keeps it terminating even if a cycle slipped into the graph.
func (g *Graph) downstream(id string, index map[string][]string) map[string]struct{} {
	visited := map[string]struct{}{id: {}}
	reached := make(map[string]struct{})
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range index[cur] {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			reached[next] = struct{}{}
			queue = append(queue, next)
		}
	}
	return reached
}
