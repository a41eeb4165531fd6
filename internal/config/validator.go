package config

import (
	"fmt"
	"strings"
)

var validKinds = map[string]struct{}{
	"number": {},
	"string": {},
	"sum":    {},
	"sink":   {},
}

// Validate checks the config for:
//   - Missing or duplicate node refs
//   - Unknown node kinds and literals on non-source kinds
//   - Edges referencing unknown refs or negative ports
//
// Type compatibility and cycle rejection are enforced again when the graph
// is built, through the same validated connect path the editor uses.
func Validate(cfg *Config) error {
	if cfg.Version == "" {
		return fmt.Errorf("config: version is required")
	}
	refs := make(map[string]struct{})
	var errs []string

	for i, nd := range cfg.Graph.Nodes {
		if nd.Ref == "" {
			errs = append(errs, fmt.Sprintf("nodes[%d]: ref is required", i))
			continue
		}
		if _, dup := refs[nd.Ref]; dup {
			errs = append(errs, fmt.Sprintf("duplicate node ref %q", nd.Ref))
		} else {
			refs[nd.Ref] = struct{}{}
		}
		if _, ok := validKinds[nd.Kind]; !ok {
			errs = append(errs, fmt.Sprintf("node %s: unknown kind %q", nd.Ref, nd.Kind))
			continue
		}
		if nd.Number != nil && nd.Kind != "number" {
			errs = append(errs, fmt.Sprintf("node %s: number literal on kind %q", nd.Ref, nd.Kind))
		}
		if nd.Text != nil && nd.Kind != "string" {
			errs = append(errs, fmt.Sprintf("node %s: text literal on kind %q", nd.Ref, nd.Kind))
		}
	}

	for j, ed := range cfg.Graph.Edges {
		if _, ok := refs[ed.From]; !ok {
			errs = append(errs, fmt.Sprintf("edges[%d]: unknown from ref %q", j, ed.From))
		}
		if _, ok := refs[ed.To]; !ok {
			errs = append(errs, fmt.Sprintf("edges[%d]: unknown to ref %q", j, ed.To))
		}
		if ed.FromPort < 0 || ed.ToPort < 0 {
			errs = append(errs, fmt.Sprintf("edges[%d]: port indices must be non-negative", j))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
