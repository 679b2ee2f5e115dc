// Package smart implements the smart playlist generation engine.
//
// A smart playlist is not a fixed track list but the result of evaluating
// a rule set, an ordering, and a size limit against a user's track pool
// pulled from the remote catalog.
//
// # Pipeline
//
// [Generator] runs a linear pipeline per request:
//
//	retrieve → filter → order → limit → enrich → (create) → done
//
// [Pipeline] pages through a [TrackSource], supporting both offset and
// cursor paging. Each page is folded in retrieval order: tracks passing
// every [Rule] enter the candidate pool, and an enabled [OrderSpec]
// inserts their indices into a [SortedIndexSeq] via binary search, giving
// a total order in O(n log n) without re-sorting after every page. The
// [LimitSpec] truncates the ordered result by count or cumulative
// duration, and the [Enricher] best-effort fills missing image dimensions.
//
// # Validation and failure
//
// Untyped user input (rules, order, limit) is resolved by Parse functions
// that default to disabled/fail-closed variants instead of returning
// errors. Only retrieval failures abort a run; zero matched tracks is an
// ordinary empty result so callers can distinguish "no tracks found" from
// a hard failure.
//
// All pipeline state is request-scoped. Page fetches and image probes are
// the only suspension points and may run concurrently, but results are
// always folded in retrieval order to keep generation deterministic.
package smart
