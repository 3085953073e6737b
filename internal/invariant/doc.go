// Package invariant checks the cluster-wide safety properties of
// Viewstamped Replication against a snapshot of every replica.
//
// Every check is a pure, synchronous scan: it never mutates or retains
// the snapshot, never panics, and returns either nil or exactly one
// *violation.Violation. Scan order matters where documented.
package invariant
