package viewstamp

import "fmt"

// Viewstamp identifies a leadership term.
type Viewstamp struct {
	Epoch uint64
	View  uint64
}

// New creates a viewstamp.
func New(epoch, view uint64) Viewstamp {
	return Viewstamp{Epoch: epoch, View: view}
}

// CompareResult represents the result of comparing two viewstamps.
type CompareResult int

const (
	// Before indicates this viewstamp precedes the other.
	Before CompareResult = iota
	// After indicates this viewstamp follows the other.
	After
	// Equal indicates both name the same term.
	Equal
)

// String returns the string representation of CompareResult.
func (c CompareResult) String() string {
	switch c {
	case Before:
		return "BEFORE"
	case After:
		return "AFTER"
	case Equal:
		return "EQUAL"
	default:
		return "UNKNOWN"
	}
}

// Compare orders by epoch first, then by view.
func (vs Viewstamp) Compare(other Viewstamp) CompareResult {
	switch {
	case vs.Epoch < other.Epoch:
		return Before
	case vs.Epoch > other.Epoch:
		return After
	case vs.View < other.View:
		return Before
	case vs.View > other.View:
		return After
	default:
		return Equal
	}
}

// Less reports whether vs precedes other.
func (vs Viewstamp) Less(other Viewstamp) bool {
	return vs.Compare(other) == Before
}

// String returns e.g. "e1.v3".
func (vs Viewstamp) String() string {
	return fmt.Sprintf("e%d.v%d", vs.Epoch, vs.View)
}
