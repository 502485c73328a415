// Package ecs implements a data-oriented entity-component-system runtime.
//
// Components live in packed, sparse-set-indexed pools. Systems declare the
// components they read and write; Progress analyzes those declarations,
// groups non-conflicting systems into stages, and dispatches each stage
// either serially or across a configured taskpool.Pool, slicing the
// matching entities of each system across worker tasks. Structural
// mutations (adding/removing components, destroying entities) performed
// from inside a running stage are deferred into per-task command buffers
// and replayed, in a deterministic order, at the following stage boundary.
//
// # Concurrency contract
//
// Progress and RunSystem are not safe to call concurrently on the same
// World from multiple goroutines; the World's control path is
// single-threaded by design (see the package-level documentation in
// scheduler.go). Parallelism happens only within a stage, across the
// tasks Progress itself enqueues.
package ecs
