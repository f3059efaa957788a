// Package chartconfig composes chart configuration documents for the embedded
// tile engine.
//
// A chart configuration is a YAML mapping that may extend other documents
// through a `base` keyword. This package loads documents, resolves the base
// chain, deep-merges child documents into their ancestors, reconciles the two
// layer representations (sequence of named entries vs name-keyed mapping),
// derives the layer to cache mapping consumed by the status API, and persists
// the merged result atomically next to its mode sibling.
//
// # Merge Semantics
//
// Merging is directional: the child document is merged INTO the accumulated
// base. Keys present only in the child are copied in; keys present on both
// sides with the same shape are overridden by the child (mappings recurse,
// everything else is replaced); keys with different shapes conflict, except
// the top-level `layers` key, which is reconciled by name regardless of the
// representation either side uses.
//
// All merge operations are pure: inputs are never mutated and the result is a
// freshly built document. A base document can therefore be merged into by any
// number of children.
//
// # Basic Usage
//
//	doc, err := chartconfig.Load("charts/avnav.yaml")
//	if err != nil {
//	    return err
//	}
//	merged, err := chartconfig.ResolveBases(doc, "charts")
//	if err != nil {
//	    return err
//	}
//	final, mapping, err := chartconfig.Prepare(chartconfig.PrepareOptions{
//	    Document: merged,
//	    Offline:  true,
//	})
//	if err != nil {
//	    return err
//	}
//	if err := chartconfig.Persist(final, chartconfig.EffectivePath(workdir, true)); err != nil {
//	    return err
//	}
//
// # Offline Mode
//
// When prepared for offline use, every entry of the top-level `sources`
// mapping is marked `seed_only: true` so the engine treats upstream sources
// as cache-fill metadata rather than live endpoints. Exactly one of the two
// effective files (`.normal` or `.offline`) exists after a successful
// persist; the alternate mode file is removed so a stale mode cannot be
// reloaded by mistake.
package chartconfig
