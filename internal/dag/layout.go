package dag

// LayoutSpacing controls where AutoLayout places columns and rows.
type LayoutSpacing struct {
	OriginX, OriginY float64
	ColumnGap        float64
	RowGap           float64
}

// Layers assigns every node a column so that each task sits strictly to the
// right of all its prerequisites. Nodes without prerequisites are in layer 0.
//
// It is a longest-path layering over Kahn's algorithm; O(V+E). Nodes caught in
// a cycle never reach in-degree zero and keep layer 0.
func (g *Graph) Layers() map[string]int {
	index := g.dependentsIndex()
	inDegree := make(map[string]int, len(g.nodes))
	layers := make(map[string]int, len(g.nodes))
	queue := make([]string, 0, len(g.nodes))

	for _, id := range g.order {
		d := 0
		for _, dep := range g.nodes[id].deps {
			if _, ok := g.nodes[dep]; ok {
				d++
			}
		}
		inDegree[id] = d
		layers[id] = 0
		if d == 0 {
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range index[cur] {
			if l := layers[cur] + 1; l > layers[next] {
				layers[next] = l
			}
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return layers
}

// AutoLayout repositions every node by layer, stacking a layer's nodes top to
// bottom in insertion order.
func (g *Graph) AutoLayout(sp LayoutSpacing) {
	for id, pos := range g.layoutPositions(sp) {
		g.nodes[id].pos = pos
	}
}

func (g *Graph) layoutPositions(sp LayoutSpacing) map[string]Position {
	layers := g.Layers()
	rows := make(map[int]int)
	out := make(map[string]Position, len(g.order))
	for _, id := range g.order {
		l := layers[id]
		out[id] = Position{
			X: sp.OriginX + float64(l)*sp.ColumnGap,
			Y: sp.OriginY + float64(rows[l])*sp.RowGap,
		}
		rows[l]++
	}
	return out
}
