package graph

import "errors"

// Sentinel errors for rejected graph operations. All are recoverable and
// reported synchronously; a rejected mutation leaves the graph exactly as it
// was. Cycle and type rejections are expected user-facing outcomes; the rest
// indicate a stale identifier on the caller's side.
var (
	ErrUnknownNode      = errors.New("unknown node")
	ErrPortOutOfRange   = errors.New("port index out of range")
	ErrTypeMismatch     = errors.New("incompatible port kinds")
	ErrWouldCreateCycle = errors.New("connection would create a cycle")
	ErrNotSource        = errors.New("node has no settable literal")
)
