// Package editor is the single logical actor that drives all graph
// mutation. Each operation validates, commits, and propagates recomputation
// before returning; a rejected mutation leaves the graph untouched.
package editor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gyaneshwarpardhi/nodeflow/internal/graph"
	"github.com/gyaneshwarpardhi/nodeflow/internal/metrics"
	"github.com/gyaneshwarpardhi/nodeflow/internal/tracker"
)

// ErrNoSnapshot reports a tracker operation before any snapshot was taken.
var ErrNoSnapshot = errors.New("no task snapshot")

// Editor owns one Graph and at most one Tracker. A mutex serializes every
// operation: the core's invariants are check-then-act, so the one-writer
// rule has to hold even though the HTTP listener may interleave requests.
type Editor struct {
	mu sync.Mutex
	g  *graph.Graph
	tr *tracker.Tracker
}

// NodeSummary is the pull-based view of one node for rendering.
type NodeSummary struct {
	ID      graph.NodeID     `json:"id"`
	Name    string           `json:"name"`
	Inputs  []graph.DataType `json:"inputs"`
	Outputs []graph.DataType `json:"outputs"`
	Values  []*graph.Value   `json:"values"` // one per output port
}

// New creates an Editor over g.
func New(g *graph.Graph) *Editor {
	e := &Editor{g: g}
	e.syncGauges()
	return e
}

// ReplaceGraph swaps in a freshly built graph (hot reload). An existing
// tracker keeps running on its old snapshot; it never re-reads the graph.
func (e *Editor) ReplaceGraph(g *graph.Graph) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.g = g
	e.syncGauges()
}

// InsertNode creates a catalog node by kind name and returns its id.
func (e *Editor) InsertNode(kind string) (graph.NodeID, error) {
	n, err := graph.NewNode(kind)
	if err != nil {
		return "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.g.InsertNode(n)
	metrics.NodesInserted.Inc()
	e.syncGauges()
	return id, nil
}

// RemoveNode deletes a node and its incident edges, then recomputes the
// rest of the graph so former successors drop the lost input.
func (e *Editor) RemoveNode(id graph.NodeID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.g.RemoveNode(id); err != nil {
		return err
	}
	metrics.NodesRemoved.Inc()
	e.syncGauges()
	e.evaluateAll()
	return nil
}

// Connect wires an output port into an input port and, on success,
// propagates recomputation through the destination's downstream closure.
func (e *Editor) Connect(src, dst graph.PortRef) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.g.Connect(src, dst); err != nil {
		metrics.ConnectsRejected.WithLabelValues(rejectReason(err)).Inc()
		return err
	}
	metrics.EdgesConnected.Inc()
	e.syncGauges()
	e.evaluateFrom(dst.Node)
	return nil
}

// Disconnect removes an edge if present and recomputes downstream of the
// destination so stale values do not linger.
func (e *Editor) Disconnect(src, dst graph.PortRef) {
	e.mu.Lock()
	defer e.mu.Unlock()
	before := e.g.EdgeCount()
	e.g.Disconnect(src, dst)
	if e.g.EdgeCount() == before {
		return
	}
	metrics.EdgesDisconnected.Inc()
	e.syncGauges()
	e.evaluateFrom(dst.Node)
}

// SetLiteral updates a source node's literal and propagates recomputation
// through its downstream closure.
func (e *Editor) SetLiteral(id graph.NodeID, v *graph.Value) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.g.Node(id)
	if !ok {
		return fmt.Errorf("set value on %s: %w", id, graph.ErrUnknownNode)
	}
	switch src := n.(type) {
	case *graph.NumberSource:
		if v == nil || v.Kind != graph.Number {
			return fmt.Errorf("set value on %s: want %s: %w", id, graph.Number, graph.ErrTypeMismatch)
		}
		src.SetValue(v.Num)
	case *graph.StringSource:
		if v == nil || v.Kind != graph.String {
			return fmt.Errorf("set value on %s: want %s: %w", id, graph.String, graph.ErrTypeMismatch)
		}
		src.SetValue(v.Str)
	default:
		return fmt.Errorf("set value on %s: %w", id, graph.ErrNotSource)
	}
	e.evaluateFrom(id)
	return nil
}

// OutputValue returns the cached value on one output port.
func (e *Editor) OutputValue(id graph.NodeID, port int) (*graph.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.g.Node(id)
	if !ok {
		return nil, fmt.Errorf("output value of %s: %w", id, graph.ErrUnknownNode)
	}
	if port < 0 || port >= len(n.OutputKinds()) {
		return nil, fmt.Errorf("output port %d of %s: %w", port, n.Name(), graph.ErrPortOutOfRange)
	}
	return n.OutputValue(port), nil
}

// Display resolves what a node's input port shows: the connected upstream
// output's value, read through the graph. This is how sinks render.
func (e *Editor) Display(id graph.NodeID, port int) (*graph.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.g.InputValue(graph.PortRef{Node: id, Port: port})
}

// Closure returns the downstream closure of id in insertion order.
func (e *Editor) Closure(id graph.NodeID) ([]graph.NodeID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	closure, err := e.g.DownstreamClosure(id)
	if err != nil {
		return nil, err
	}
	out := make([]graph.NodeID, 0, len(closure))
	for _, nid := range e.g.NodeIDs() {
		if _, ok := closure[nid]; ok {
			out = append(out, nid)
		}
	}
	return out, nil
}

// Topology lists all nodes with their port kinds and cached outputs, plus
// the committed edges.
func (e *Editor) Topology() ([]NodeSummary, []graph.Edge) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := e.g.NodeIDs()
	nodes := make([]NodeSummary, 0, len(ids))
	for _, id := range ids {
		n, _ := e.g.Node(id)
		outs := n.OutputKinds()
		vals := make([]*graph.Value, len(outs))
		for i := range outs {
			vals[i] = n.OutputValue(i)
		}
		nodes = append(nodes, NodeSummary{
			ID:      id,
			Name:    n.Name(),
			Inputs:  n.InputKinds(),
			Outputs: outs,
			Values:  vals,
		})
	}
	return nodes, e.g.Edges()
}

// DOT renders the current topology in Graphviz form.
func (e *Editor) DOT() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return graph.ExportDOT(e.g)
}

// SnapshotTracker constructs a fresh tracker from the current topology,
// replacing any previous one.
func (e *Editor) SnapshotTracker() (ready, blocked []tracker.TaskID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tr = tracker.FromGraph(e.g)
	return e.tr.Ready(), e.tr.Blocked()
}

// TrackerState returns the current ready/blocked classification.
func (e *Editor) TrackerState() (ready, blocked []tracker.TaskID, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tr == nil {
		return nil, nil, ErrNoSnapshot
	}
	return e.tr.Ready(), e.tr.Blocked(), nil
}

// CompleteTask reports a completion and returns the newly unblocked tasks.
func (e *Editor) CompleteTask(id tracker.TaskID) ([]tracker.TaskID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.tr == nil {
		return nil, ErrNoSnapshot
	}
	newlyReady, err := e.tr.Complete(id)
	if err != nil {
		return nil, err
	}
	metrics.TasksCompleted.Inc()
	return newlyReady, nil
}

// Stats returns current node and edge counts.
func (e *Editor) Stats() (nodes, edges int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.g.NodeCount(), e.g.EdgeCount()
}

func (e *Editor) evaluateFrom(id graph.NodeID) {
	start := time.Now()
	// The seed was just validated by the committed mutation.
	_ = graph.EvaluateFrom(e.g, id)
	metrics.Evaluations.Inc()
	metrics.EvaluationDuration.Observe(float64(time.Since(start).Microseconds()))
}

func (e *Editor) evaluateAll() {
	start := time.Now()
	graph.Evaluate(e.g)
	metrics.Evaluations.Inc()
	metrics.EvaluationDuration.Observe(float64(time.Since(start).Microseconds()))
}

func (e *Editor) syncGauges() {
	metrics.GraphNodes.Set(float64(e.g.NodeCount()))
	metrics.GraphEdges.Set(float64(e.g.EdgeCount()))
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, graph.ErrWouldCreateCycle):
		return "cycle"
	case errors.Is(err, graph.ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, graph.ErrPortOutOfRange):
		return "port_out_of_range"
	case errors.Is(err, graph.ErrUnknownNode):
		return "unknown_node"
	}
	return "other"
}
