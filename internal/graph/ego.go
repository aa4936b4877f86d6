package graph

// Ego returns every PID reachable from root within depth hops, treating
// edges as undirected, mapped to its hop distance. The root is always
// present at distance 0.
func Ego(edges []Edge, root string, depth int) map[string]int {
	adjacency := make(map[string][]string)
	for _, e := range edges {
		adjacency[e.From] = append(adjacency[e.From], e.To)
		adjacency[e.To] = append(adjacency[e.To], e.From)
	}

	dist := map[string]int{root: 0}
	frontier := []string{root}
	for hop := 1; hop <= depth && len(frontier) > 0; hop++ {
		var next []string
		for _, pid := range frontier {
			for _, peer := range adjacency[pid] {
				if _, seen := dist[peer]; seen {
					continue
				}
				dist[peer] = hop
				next = append(next, peer)
			}
		}
		frontier = next
	}
	return dist
}
