package violation

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a violation.
type Kind int

const (
	// Condition means a boolean safety predicate evaluated false.
	Condition Kind = iota + 1
	// Equality means two values expected to be equal were not.
	Equality
	// MalformedSnapshot means a structural precondition of the input was
	// broken, e.g. a log shorter than the prefix being compared.
	MalformedSnapshot
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case Condition:
		return "condition"
	case Equality:
		return "equality"
	case MalformedSnapshot:
		return "malformed_snapshot"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String. Unknown names return 0.
func ParseKind(s string) Kind {
	switch s {
	case "condition":
		return Condition
	case "equality":
		return Equality
	case "malformed_snapshot":
		return MalformedSnapshot
	default:
		return 0
	}
}

// Sentinels for errors.Is matching on the kind of a violation.
var (
	ErrCondition         = errors.New("condition violation")
	ErrEquality          = errors.New("equality violation")
	ErrMalformedSnapshot = errors.New("malformed snapshot")
)

// NoIndex marks a violation that carries no element index.
const NoIndex = -1

// Violation is the single failure value produced by an invariant check.
// All fields are comparable so two reports can be compared with ==.
type Violation struct {
	Kind      Kind
	Invariant string // name of the failing check, set by Annotate
	Message   string // the expected relation, or what was malformed
	Left      string // rendering of the reference value (Equality only)
	Right     string // rendering of the compared value (Equality only)
	Index     int    // first differing index, NoIndex if not applicable
}

// Error implements error.
func (v *Violation) Error() string {
	var b strings.Builder
	if v.Invariant != "" {
		b.WriteString(v.Invariant)
		b.WriteString(": ")
	}
	b.WriteString(v.Kind.String())
	if v.Message != "" {
		b.WriteString(": ")
		b.WriteString(v.Message)
	}
	if v.Kind == Equality {
		fmt.Fprintf(&b, " (left: %s, right: %s", v.Left, v.Right)
		if v.Index != NoIndex {
			fmt.Fprintf(&b, ", first difference at index %d", v.Index)
		}
		b.WriteString(")")
	}
	return b.String()
}

// Is reports whether target is the sentinel for this violation's kind.
func (v *Violation) Is(target error) bool {
	switch v.Kind {
	case Condition:
		return target == ErrCondition
	case Equality:
		return target == ErrEquality
	case MalformedSnapshot:
		return target == ErrMalformedSnapshot
	}
	return false
}

// As extracts a *Violation from err, if there is one.
func As(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// Annotate returns a copy of the violation err with its invariant name
// set. Only a bare *Violation is annotated; nil, wrapped violations and
// other errors are returned unchanged.
func Annotate(invariant string, err error) error {
	v, ok := err.(*Violation)
	if !ok {
		return err
	}
	out := *v
	out.Invariant = invariant
	return &out
}
