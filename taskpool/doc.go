// Package taskpool implements a bounded MPMC ring queue feeding a small
// worker pool, the concurrency backbone spec'd for the ECS scheduler but
// independently usable by anything wanting bounded, inline-fallback task
// dispatch.
//
// The ring itself is the "two-phase turn" algorithm: a producer reserves a
// slot by winning a CAS on the head counter, then stamps the slot's turn
// field to publish its payload; a consumer does the symmetric dance on the
// tail counter. This is a direct port of
// original_source/include/mpmc_tpool.h's try_enqueue/try_dequeue, adapted
// from C11 atomics + pthreads to sync/atomic + sync.Cond.
package taskpool
