package cell

// topoOrder lists unique cells of the tree so that root goes first
// and every cell goes before all cells it references.
// Returned index maps cell hash to its position.
func topoOrder(root *Cell) ([]*Cell, map[string]int) {
	visited := map[string]bool{}
	var post []*Cell

	var visit func(c *Cell)
	visit = func(c *Cell) {
		h := string(c.hash)
		if visited[h] {
			return
		}
		visited[h] = true

		for _, ref := range c.refs {
			visit(ref)
		}
		post = append(post, c)
	}
	visit(root)

	// reversed post order is topological
	order := make([]*Cell, len(post))
	index := make(map[string]int, len(post))
	for i, c := range post {
		pos := len(post) - 1 - i
		order[pos] = c
		index[string(c.hash)] = pos
	}

	return order, index
}
