package graph

// DataType is the kind of value a port carries.
type DataType string

const (
	Number  DataType = "number"
	String  DataType = "string"
	Unknown DataType = "unknown" // wildcard: accepts any kind
)

// CompatibleWith reports whether a value of kind src may flow into a port
// declared as kind dst. The relation is directional: an Unknown destination
// accepts anything, but an Unknown source does not match a typed destination.
// It is checked pairwise at connect time; port kinds never change afterwards.
func CompatibleWith(src, dst DataType) bool {
	return src == dst || dst == Unknown
}
