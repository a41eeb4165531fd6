package graph

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeID uniquely identifies a node within a Graph for its lifetime.
type NodeID string

// PortRef addresses one port on one node. Direction is implied by use:
// Connect takes (output, input).
type PortRef struct {
	Node NodeID `json:"node"`
	Port int    `json:"port"`
}

// Edge is a committed connection from an output port to an input port.
type Edge struct {
	From PortRef `json:"from"`
	To   PortRef `json:"to"`
}

// Graph owns a set of typed nodes and the edges between their ports.
// Invariants held after every committed operation:
//   - the node-level digraph is acyclic
//   - each input port has at most one incoming edge
//   - every edge connects compatible port kinds
//   - no edge references a removed node
//
// A rejected mutation leaves the graph untouched. Graph is not safe for
// concurrent use; callers serialize mutation behind a single writer.
type Graph struct {
	nodes map[NodeID]Node
	order []NodeID            // insertion order, for deterministic traversal
	edges map[PortRef]PortRef // input port → connected output port
}

// New allocates an empty Graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[NodeID]Node),
		edges: make(map[PortRef]PortRef),
	}
}

// InsertNode stores n under a fresh identifier. It always succeeds.
func (g *Graph) InsertNode(n Node) NodeID {
	id := NodeID(uuid.New().String())
	g.nodes[id] = n
	g.order = append(g.order, id)
	return id
}

// RemoveNode deletes the node and every edge incident to it, in both
// directions.
func (g *Graph) RemoveNode(id NodeID) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("remove node %s: %w", id, ErrUnknownNode)
	}
	delete(g.nodes, id)
	for i, nid := range g.order {
		if nid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	for in, out := range g.edges {
		if in.Node == id || out.Node == id {
			delete(g.edges, in)
		}
	}
	return nil
}

// Connect wires the output port src into the input port dst. An existing
// edge on dst is displaced first (input ports hold at most one edge). If the
// new edge would close a cycle the whole operation rolls back, displaced
// edge included, and the graph is exactly as it was before the call.
func (g *Graph) Connect(src, dst PortRef) error {
	srcNode, ok := g.nodes[src.Node]
	if !ok {
		return fmt.Errorf("connect: source node %s: %w", src.Node, ErrUnknownNode)
	}
	dstNode, ok := g.nodes[dst.Node]
	if !ok {
		return fmt.Errorf("connect: destination node %s: %w", dst.Node, ErrUnknownNode)
	}
	if src.Port < 0 || src.Port >= len(srcNode.OutputKinds()) {
		return fmt.Errorf("connect: output port %d of %s: %w", src.Port, srcNode.Name(), ErrPortOutOfRange)
	}
	if dst.Port < 0 || dst.Port >= len(dstNode.InputKinds()) {
		return fmt.Errorf("connect: input port %d of %s: %w", dst.Port, dstNode.Name(), ErrPortOutOfRange)
	}

	srcKind := srcNode.OutputKinds()[src.Port]
	dstKind := dstNode.InputKinds()[dst.Port]
	if !CompatibleWith(srcKind, dstKind) {
		return fmt.Errorf("connect: %s output into %s input: %w", srcKind, dstKind, ErrTypeMismatch)
	}

	displaced, hadEdge := g.edges[dst]
	g.edges[dst] = src
	if g.hasCycle() {
		if hadEdge {
			g.edges[dst] = displaced
		} else {
			delete(g.edges, dst)
		}
		return fmt.Errorf("connect %s -> %s: %w", srcNode.Name(), dstNode.Name(), ErrWouldCreateCycle)
	}
	return nil
}

// Disconnect removes the edge from src to dst. It is a no-op if that exact
// edge is not present.
func (g *Graph) Disconnect(src, dst PortRef) {
	if cur, ok := g.edges[dst]; ok && cur == src {
		delete(g.edges, dst)
	}
}

// DownstreamClosure returns every node reachable by following edges forward
// from id, inclusive of id itself.
func (g *Graph) DownstreamClosure(id NodeID) (map[NodeID]struct{}, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("downstream closure of %s: %w", id, ErrUnknownNode)
	}
	closure := map[NodeID]struct{}{id: {}}
	queue := []NodeID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for in, out := range g.edges {
			if out.Node != cur {
				continue
			}
			if _, seen := closure[in.Node]; !seen {
				closure[in.Node] = struct{}{}
				queue = append(queue, in.Node)
			}
		}
	}
	return closure, nil
}

// InputValue resolves the value arriving on an input port: the connected
// upstream output's cached value, or nil if the port is unconnected or the
// upstream node has not produced one.
func (g *Graph) InputValue(dst PortRef) (*Value, error) {
	n, ok := g.nodes[dst.Node]
	if !ok {
		return nil, fmt.Errorf("input value of %s: %w", dst.Node, ErrUnknownNode)
	}
	if dst.Port < 0 || dst.Port >= len(n.InputKinds()) {
		return nil, fmt.Errorf("input port %d of %s: %w", dst.Port, n.Name(), ErrPortOutOfRange)
	}
	src, ok := g.edges[dst]
	if !ok {
		return nil, nil
	}
	return g.nodes[src.Node].OutputValue(src.Port), nil
}

// Node returns a node by id.
func (g *Graph) Node(id NodeID) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// NodeIDs returns all node ids in insertion order.
func (g *Graph) NodeIDs() []NodeID {
	out := make([]NodeID, len(g.order))
	copy(out, g.order)
	return out
}

// Edges returns the committed edges in deterministic order: by destination
// node insertion order, then destination port.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, len(g.edges))
	for _, id := range g.order {
		n := g.nodes[id]
		for port := range n.InputKinds() {
			in := PortRef{Node: id, Port: port}
			if src, ok := g.edges[in]; ok {
				out = append(out, Edge{From: src, To: in})
			}
		}
	}
	return out
}

// Predecessors returns the distinct nodes feeding id's input ports, in input
// port order.
func (g *Graph) Predecessors(id NodeID) []NodeID {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	var preds []NodeID
	seen := make(map[NodeID]struct{})
	for port := range n.InputKinds() {
		if src, ok := g.edges[PortRef{Node: id, Port: port}]; ok {
			if _, dup := seen[src.Node]; !dup {
				seen[src.Node] = struct{}{}
				preds = append(preds, src.Node)
			}
		}
	}
	return preds
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of committed edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// hasCycle runs a three-color DFS over the node-level digraph. Recomputed
// wholesale after each tentative mutation; fine at editor scale.
func (g *Graph) hasCycle() bool {
	succs := make(map[NodeID][]NodeID, len(g.nodes))
	for in, out := range g.edges {
		succs[out.Node] = append(succs[out.Node], in.Node)
	}

	permanent := make(map[NodeID]bool, len(g.nodes))
	temporary := make(map[NodeID]bool)

	var visit func(id NodeID) bool
	visit = func(id NodeID) bool {
		if permanent[id] {
			return false
		}
		if temporary[id] {
			return true // back edge: id is already on the recursion stack
		}
		temporary[id] = true
		for _, next := range succs[id] {
			if visit(next) {
				return true
			}
		}
		delete(temporary, id)
		permanent[id] = true
		return false
	}

	for _, id := range g.order {
		if !permanent[id] && visit(id) {
			return true
		}
	}
	return false
}
