// Package formconfig defines declarative form configurations and merges them.
//
// A BaseConfig is pure data: it loads from JSON or YAML, survives
// serialisation unchanged and never carries functions. Overrides are the
// code-level patch applied on top of it and may carry render, compute, submit
// and validator callbacks. Merge is the single seam where the two combine
// into a MergedConfig, which is live (visibility conditions are predicates)
// and is not meant to be serialised; View projects it back to its
// serialisable parts for inspection.
package formconfig
