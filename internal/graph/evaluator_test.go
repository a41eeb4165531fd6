package graph_test

import (
	"reflect"
	"testing"

	"github.com/gyaneshwarpardhi/nodeflow/internal/graph"
)

func outputNum(t *testing.T, g *graph.Graph, id graph.NodeID) float64 {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %s missing", id)
	}
	v := n.OutputValue(0)
	if v == nil {
		t.Fatalf("node %s has no output value", id)
	}
	return v.Num
}

func TestEvaluate_SumScenario(t *testing.T) {
	g, _, _, sum, sink := sumChain(t)
	graph.Evaluate(g)

	if got := outputNum(t, g, sum); got != 7 {
		t.Errorf("Sum output = %v, want 7", got)
	}
	// The sink displays whatever feeds its input.
	v, err := g.InputValue(graph.PortRef{Node: sink, Port: 0})
	if err != nil {
		t.Fatalf("InputValue error: %v", err)
	}
	if v == nil || v.Num != 7 {
		t.Errorf("sink displays %+v, want 7", v)
	}
}

func TestEvaluate_PartialInputsSumToConnectedOperands(t *testing.T) {
	g := graph.New()
	a := g.InsertNode(graph.NewNumberSource(5))
	sum := g.InsertNode(graph.NewSumNode())
	mustConnect(t, g, a, 0, sum, 0) // in1 left unconnected
	graph.Evaluate(g)

	if got := outputNum(t, g, sum); got != 5 {
		t.Errorf("Sum with one operand = %v, want 5 (absent input counts as 0)", got)
	}

	// Fully unconnected sum reports 0, not absent.
	g2 := graph.New()
	lone := g2.InsertNode(graph.NewSumNode())
	graph.Evaluate(g2)
	if got := outputNum(t, g2, lone); got != 0 {
		t.Errorf("unconnected Sum = %v, want 0", got)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	g, _, _, _, _ := sumChain(t)
	graph.Evaluate(g)
	first := snapshotOutputs(g)
	graph.Evaluate(g)
	second := snapshotOutputs(g)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("re-evaluation changed cached outputs:\n first  %v\n second %v", first, second)
	}
}

func TestEvaluateFrom_ScopedPropagation(t *testing.T) {
	// Two independent chains; mutating one must not touch the other.
	g := graph.New()
	a := g.InsertNode(graph.NewNumberSource(1))
	sumA := g.InsertNode(graph.NewSumNode())
	b := g.InsertNode(graph.NewNumberSource(10))
	sumB := g.InsertNode(graph.NewSumNode())
	mustConnect(t, g, a, 0, sumA, 0)
	mustConnect(t, g, b, 0, sumB, 0)
	graph.Evaluate(g)

	// Change a's literal behind the evaluator's back, then reevaluate only
	// b's closure: sumA must keep its stale cache, proving the restriction.
	na, _ := g.Node(a)
	na.(*graph.NumberSource).SetValue(100)
	if err := graph.EvaluateFrom(g, b); err != nil {
		t.Fatalf("EvaluateFrom error: %v", err)
	}
	if got := outputNum(t, g, sumA); got != 1 {
		t.Errorf("node outside closure recomputed: sumA = %v, want stale 1", got)
	}

	if err := graph.EvaluateFrom(g, a); err != nil {
		t.Fatalf("EvaluateFrom error: %v", err)
	}
	if got := outputNum(t, g, sumA); got != 100 {
		t.Errorf("seeded evaluation missed sumA: got %v, want 100", got)
	}
}

func TestEvaluate_ChainedSumsInTopologicalOrder(t *testing.T) {
	// n1 → s1 → s2 → s3: each sum feeds the next, so a wrong visitation
	// order would propagate stale values.
	g := graph.New()
	n1 := g.InsertNode(graph.NewNumberSource(2))
	s1 := g.InsertNode(graph.NewSumNode())
	s2 := g.InsertNode(graph.NewSumNode())
	s3 := g.InsertNode(graph.NewSumNode())
	mustConnect(t, g, n1, 0, s1, 0)
	mustConnect(t, g, s1, 0, s2, 0)
	mustConnect(t, g, s2, 0, s3, 0)

	n, _ := g.Node(n1)
	n.(*graph.NumberSource).SetValue(9)
	graph.Evaluate(g)

	if got := outputNum(t, g, s3); got != 9 {
		t.Errorf("chain tail = %v, want 9", got)
	}
}

func snapshotOutputs(g *graph.Graph) map[graph.NodeID][]*graph.Value {
	snap := make(map[graph.NodeID][]*graph.Value)
	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		outs := make([]*graph.Value, len(n.OutputKinds()))
		for i := range outs {
			outs[i] = n.OutputValue(i)
		}
		snap[id] = outs
	}
	return snap
}
