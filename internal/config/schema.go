package config

// Config is the top-level YAML structure.
type Config struct {
	Version string      `yaml:"version"`
	Server  ServerConf  `yaml:"server"`
	Graph   GraphConfig `yaml:"graph"`
}

// ServerConf holds HTTP server tunables.
type ServerConf struct {
	Addr           string `yaml:"addr"`
	ReadTimeoutMs  int    `yaml:"read_timeout_ms"`
	WriteTimeoutMs int    `yaml:"write_timeout_ms"`
	IdleTimeoutMs  int    `yaml:"idle_timeout_ms"`
}

// GraphConfig is a declarative seed graph: the nodes and edges loaded into
// the editor at startup (and on hot reload).
type GraphConfig struct {
	Nodes []NodeDef `yaml:"nodes"`
	Edges []EdgeDef `yaml:"edges"`
}

// NodeDef declares one node. Ref is a document-local key used only for edge
// wiring; live node ids are allocated at build time. At most one of
// Number/Text may be set, and only on the matching source kind.
type NodeDef struct {
	Ref    string   `yaml:"ref"`
	Kind   string   `yaml:"kind"` // number | string | sum | sink
	Number *float64 `yaml:"number,omitempty"`
	Text   *string  `yaml:"text,omitempty"`
}

// EdgeDef declares one connection between two node refs.
type EdgeDef struct {
	From     string `yaml:"from"`
	FromPort int    `yaml:"from_port"`
	To       string `yaml:"to"`
	ToPort   int    `yaml:"to_port"`
}
