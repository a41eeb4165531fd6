package graph

// Evaluate recomputes every node's cached outputs in topological order.
// Evaluation is idempotent: with no intervening mutation, a second run
// reproduces the same cached outputs.
func Evaluate(g *Graph) {
	evaluate(g, nil)
}

// EvaluateFrom recomputes only the downstream closure of seed, preserving
// the topological order of the restricted subset. Nodes outside the closure
// are skipped and keep their cached outputs untouched.
func EvaluateFrom(g *Graph, seed NodeID) error {
	closure, err := g.DownstreamClosure(seed)
	if err != nil {
		return err
	}
	evaluate(g, closure)
	return nil
}

func evaluate(g *Graph, restrict map[NodeID]struct{}) {
	for _, id := range topoOrder(g) {
		if restrict != nil {
			if _, ok := restrict[id]; !ok {
				continue
			}
		}
		n := g.nodes[id]
		kinds := n.InputKinds()
		inputs := make([]*Value, len(kinds))
		for port := range kinds {
			// Bounds are valid by construction, so the error is impossible.
			v, _ := g.InputValue(PortRef{Node: id, Port: port})
			inputs[port] = v
		}
		n.Recompute(inputs)
	}
}

// topoOrder returns every node id so that each edge points from an earlier
// to a later position. Nodes that become ready in the same sweep are emitted
// in insertion order, which makes the order deterministic. Acyclicity is an
// invariant of Graph, so the order always covers all nodes.
func topoOrder(g *Graph) []NodeID {
	indeg := make(map[NodeID]int, len(g.nodes))
	for _, id := range g.order {
		indeg[id] = 0
	}
	for in := range g.edges {
		indeg[in.Node]++
	}

	emitted := make(map[NodeID]bool, len(g.nodes))
	out := make([]NodeID, 0, len(g.nodes))
	for len(out) < len(g.order) {
		progress := false
		for _, id := range g.order {
			if emitted[id] || indeg[id] != 0 {
				continue
			}
			emitted[id] = true
			out = append(out, id)
			for in, src := range g.edges {
				if src.Node == id {
					indeg[in.Node]--
				}
			}
			progress = true
		}
		if !progress {
			break // unreachable while the acyclicity invariant holds
		}
	}
	return out
}
