package mwhc

import "errors"

// ErrConstructionFailed is returned when the reseed-and-retry budget is
// exhausted without finding a peelable hypergraph.
var ErrConstructionFailed = errors.New("mwhc: construction failed: reseed budget exhausted")
