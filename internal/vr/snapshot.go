package vr

import "fmt"

// Entry is a single client operation as it appears in a replica's log.
type Entry struct {
	ClientID   string
	RequestNum uint64
	Op         string
}

// String returns a compact representation used in violation reports.
func (e Entry) String() string {
	return fmt.Sprintf("%s#%d:%q", e.ClientID, e.RequestNum, e.Op)
}

// Context is the state of one replica at the snapshot instant.
// Log is borrowed: consumers must neither modify nor retain it.
type Context[E comparable] struct {
	Epoch     uint64
	View      uint64
	CommitNum uint64 // 0 means nothing committed
	Log       []E
}

// Replica pairs a role with the replica's context.
type Replica[E comparable] struct {
	ID   string // optional, only used in reports
	Role Role
	Ctx  Context[E]
}

// Describe names the replica for reports, e.g. "replica[2](n3)".
func (r Replica[E]) Describe(index int) string {
	if r.ID == "" {
		return fmt.Sprintf("replica[%d]", index)
	}
	return fmt.Sprintf("replica[%d](%s)", index, r.ID)
}

// Snapshot holds one Replica per cluster member, captured at the same
// logical instant. Slice order is the scan order used by the checks.
type Snapshot[E comparable] []Replica[E]

// Prefix returns log[0:n] if the log holds at least n entries. The
// returned slice has its capacity clipped so appends cannot write into
// the caller's backing array.
func Prefix[E comparable](log []E, n uint64) ([]E, bool) {
	if uint64(len(log)) < n {
		return nil, false
	}
	return log[:n:n], true
}
