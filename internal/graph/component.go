package graph

// typeQueue is a FIFO of type names for breadth-first walks over the graph.
type typeQueue struct {
	items []string
}

func (q *typeQueue) push(name string) {
	q.items = append(q.items, name)
}

func (q *typeQueue) pop() (string, bool) {
	if len(q.items) == 0 {
		return "", false
	}
	name := q.items[0]
	q.items = q.items[1:]
	return name, true
}

// Component returns every type connected to start when edges are treated as
// undirected, start included, in breadth-first order. It returns nil when
// start is not in the graph.
func (g *Graph) Component(start string) []string {
	if !g.HasNode(start) {
		return nil
	}

	visited := map[string]bool{start: true}
	order := []string{start}
	q := &typeQueue{}
	q.push(start)

	for {
		current, ok := q.pop()
		if !ok {
			break
		}
		for _, next := range g.Neighbors(current) {
			if visited[next] {
				continue
			}
			visited[next] = true
			order = append(order, next)
			q.push(next)
		}
	}
	return order
}

// Components partitions all types into undirected connected components.
// Components are ordered by their smallest type name.
func (g *Graph) Components() [][]string {
	seen := make(map[string]bool)
	var out [][]string
	for _, name := range g.AllNodes() {
		if seen[name] {
			continue
		}
		comp := g.Component(name)
		for _, t := range comp {
			seen[t] = true
		}
		out = append(out, comp)
	}
	return out
}
