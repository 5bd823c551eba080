package modtree

// findCycles runs Kosaraju's algorithm over the depends_on edge set and
// returns every strongly connected component of size > 1, used to
// forbid circular module dependencies.
func findCycles(modules []resolvedModule) [][]string {
	adj := map[string][]string{}
	for _, m := range modules {
		for _, dep := range m.cfg.DependsOn {
			adj[m.cfg.Path] = append(adj[m.cfg.Path], dep.Path)
		}
		if _, ok := adj[m.cfg.Path]; !ok {
			adj[m.cfg.Path] = nil
		}
	}

	order := kosarajuOrder(adj)
	radj := reverseGraph(adj)

	visited := map[string]bool{}
	var sccs [][]string
	for i := len(order) - 1; i >= 0; i-- {
		node := order[i]
		if visited[node] {
			continue
		}
		var component []string
		stack := []string{node}
		visited[node] = true
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, n)
			for _, next := range radj[n] {
				if !visited[next] {
					visited[next] = true
					stack = append(stack, next)
				}
			}
		}
		if len(component) > 1 {
			sccs = append(sccs, component)
		}
	}
	return sccs
}

func kosarajuOrder(adj map[string][]string) []string {
	visited := map[string]bool{}
	var order []string

	var visit func(node string)
	visit = func(node string) {
		if visited[node] {
			return
		}
		visited[node] = true
		for _, next := range adj[node] {
			visit(next)
		}
		order = append(order, node)
	}

	for node := range adj {
		visit(node)
	}
	return order
}

func reverseGraph(adj map[string][]string) map[string][]string {
	radj := map[string][]string{}
	for node := range adj {
		if _, ok := radj[node]; !ok {
			radj[node] = nil
		}
	}
	for node, neighbors := range adj {
		for _, n := range neighbors {
			radj[n] = append(radj[n], node)
		}
	}
	return radj
}
