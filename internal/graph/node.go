package graph

import "fmt"

// Value is a typed datum produced on an output port. A nil *Value marks an
// absent value (unconnected input or output not yet computed) — a normal
// state, not an error.
type Value struct {
	Kind DataType `json:"kind"`
	Num  float64  `json:"num,omitempty"`
	Str  string   `json:"str,omitempty"`
}

// NumberValue wraps a float as a Number-kinded value.
func NumberValue(v float64) *Value { return &Value{Kind: Number, Num: v} }

// StringValue wraps a string as a String-kinded value.
func StringValue(s string) *Value { return &Value{Kind: String, Str: s} }

// Node is the common interface for all graph nodes.
// Port counts and kinds are fixed for a node's lifetime.
type Node interface {
	Name() string
	InputKinds() []DataType
	OutputKinds() []DataType
	// OutputValue returns the cached value on an output port, or nil if the
	// node has not produced one. Out-of-range indices return nil.
	OutputValue(port int) *Value
	// Recompute updates cached outputs from a full-width input slice: one
	// entry per declared input port, nil marking an absent input. Each node
	// kind defines its own partial-input policy.
	Recompute(inputs []*Value)
}

// Node kind names accepted by NewNode.
const (
	KindNumber = "number"
	KindString = "string"
	KindSum    = "sum"
	KindSink   = "sink"
)

// NewNode constructs a catalog node by kind name. Source nodes start with
// their zero literal; use SetValue to change it.
func NewNode(kind string) (Node, error) {
	switch kind {
	case KindNumber:
		return NewNumberSource(0), nil
	case KindString:
		return NewStringSource(""), nil
	case KindSum:
		return NewSumNode(), nil
	case KindSink:
		return NewSinkNode(), nil
	}
	return nil, fmt.Errorf("unknown node kind %q", kind)
}

// -----------------------------------------------------------------------
// NumberSource
// -----------------------------------------------------------------------

// NumberSource emits an externally settable number on its single output.
type NumberSource struct {
	value float64
}

func NewNumberSource(v float64) *NumberSource { return &NumberSource{value: v} }

func (n *NumberSource) Name() string           { return "Number" }
func (n *NumberSource) InputKinds() []DataType { return nil }
func (n *NumberSource) OutputKinds() []DataType {
	return []DataType{Number}
}

func (n *NumberSource) OutputValue(port int) *Value {
	if port != 0 {
		return nil
	}
	return NumberValue(n.value)
}

// Recompute is a no-op: a source has no inputs.
func (n *NumberSource) Recompute(inputs []*Value) {}

func (n *NumberSource) SetValue(v float64) { n.value = v }
func (n *NumberSource) Value() float64     { return n.value }

// -----------------------------------------------------------------------
// StringSource
// -----------------------------------------------------------------------

// StringSource emits an externally settable string on its single output.
type StringSource struct {
	value string
}

func NewStringSource(s string) *StringSource { return &StringSource{value: s} }

func (n *StringSource) Name() string           { return "String" }
func (n *StringSource) InputKinds() []DataType { return nil }
func (n *StringSource) OutputKinds() []DataType {
	return []DataType{String}
}

func (n *StringSource) OutputValue(port int) *Value {
	if port != 0 {
		return nil
	}
	return StringValue(n.value)
}

func (n *StringSource) Recompute(inputs []*Value) {}

func (n *StringSource) SetValue(s string) { n.value = s }
func (n *StringSource) Value() string     { return n.value }

// -----------------------------------------------------------------------
// SumNode
// -----------------------------------------------------------------------

// SumNode adds its two number inputs. An absent input contributes zero, so
// the output is the sum over whichever operands are connected; a fully
// unconnected sum reports 0, not absent.
type SumNode struct {
	res float64
}

func NewSumNode() *SumNode { return &SumNode{} }

func (n *SumNode) Name() string { return "Sum" }
func (n *SumNode) InputKinds() []DataType {
	return []DataType{Number, Number}
}
func (n *SumNode) OutputKinds() []DataType {
	return []DataType{Number}
}

func (n *SumNode) OutputValue(port int) *Value {
	if port != 0 {
		return nil
	}
	return NumberValue(n.res)
}

func (n *SumNode) Recompute(inputs []*Value) {
	sum := 0.0
	for _, in := range inputs {
		if in != nil {
			sum += in.Num
		}
	}
	n.res = sum
}

// -----------------------------------------------------------------------
// SinkNode
// -----------------------------------------------------------------------

// SinkNode is a display terminus: one wildcard input, no outputs, no cached
// value of its own. What it shows is read through the graph from whatever
// output feeds its input (see Graph.InputValue).
type SinkNode struct{}

func NewSinkNode() *SinkNode { return &SinkNode{} }

func (n *SinkNode) Name() string { return "Sink" }
func (n *SinkNode) InputKinds() []DataType {
	return []DataType{Unknown}
}
func (n *SinkNode) OutputKinds() []DataType     { return nil }
func (n *SinkNode) OutputValue(port int) *Value { return nil }
func (n *SinkNode) Recompute(inputs []*Value)   {}
