package graph

import (
	"fmt"
	"strings"
)

// ExportDOT renders the graph topology in Graphviz DOT form. It is a pure
// read-only serialization: nodes in insertion order, edges labelled with
// their port indices.
func ExportDOT(g *Graph) string {
	var b strings.Builder
	b.WriteString("digraph nodeflow {\n")
	b.WriteString("  rankdir=LR;\n")
	for _, id := range g.order {
		fmt.Fprintf(&b, "  %q [label=%q];\n", string(id), g.nodes[id].Name())
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&b, "  %q -> %q [taillabel=\"out%d\",headlabel=\"in%d\"];\n",
			string(e.From.Node), string(e.To.Node), e.From.Port, e.To.Port)
	}
	b.WriteString("}\n")
	return b.String()
}
