package graph

import (
	"fmt"

	"github.com/gyaneshwarpardhi/nodeflow/internal/config"
)

// Build constructs a live graph from a validated seed document. Nodes are
// inserted in document order and edges go through the validated Connect
// path, so a bad document surfaces the same rejections an editor session
// would. On success every node's cached outputs are up to date.
// The returned map translates document refs to live node ids.
func Build(cfg *config.GraphConfig) (*Graph, map[string]NodeID, error) {
	g := New()
	refs := make(map[string]NodeID, len(cfg.Nodes))

	for _, nd := range cfg.Nodes {
		n, err := NewNode(nd.Kind)
		if err != nil {
			return nil, nil, fmt.Errorf("node %s: %w", nd.Ref, err)
		}
		switch src := n.(type) {
		case *NumberSource:
			if nd.Number != nil {
				src.SetValue(*nd.Number)
			}
		case *StringSource:
			if nd.Text != nil {
				src.SetValue(*nd.Text)
			}
		}
		refs[nd.Ref] = g.InsertNode(n)
	}

	for _, ed := range cfg.Edges {
		from, ok := refs[ed.From]
		if !ok {
			return nil, nil, fmt.Errorf("edge %s -> %s: unknown ref %q", ed.From, ed.To, ed.From)
		}
		to, ok := refs[ed.To]
		if !ok {
			return nil, nil, fmt.Errorf("edge %s -> %s: unknown ref %q", ed.From, ed.To, ed.To)
		}
		src := PortRef{Node: from, Port: ed.FromPort}
		dst := PortRef{Node: to, Port: ed.ToPort}
		if err := g.Connect(src, dst); err != nil {
			return nil, nil, fmt.Errorf("edge %s -> %s: %w", ed.From, ed.To, err)
		}
	}

	Evaluate(g)
	return g, refs, nil
}
