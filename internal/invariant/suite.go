package invariant

import (
	"go.uber.org/multierr"

	"vrcheck/internal/vr"
)

// Check is a named snapshot check bound to a quorum size.
type Check[E comparable] struct {
	Name string
	Run  func(vr.Snapshot[E]) error
}

// Suite returns the snapshot checks in their canonical order.
func Suite[E comparable](quorum int) []Check[E] {
	return []Check[E]{
		{Name: SinglePrimary, Run: CheckSinglePrimary[E]},
		{Name: MinorityRecovering, Run: func(s vr.Snapshot[E]) error {
			return CheckMinorityRecovering(quorum, s)
		}},
		{Name: QuorumLogAgreement, Run: func(s vr.Snapshot[E]) error {
			return CheckQuorumLogAgreement(quorum, s)
		}},
	}
}

// CheckAll runs every check in Suite and combines the failures. Use
// multierr.Errors to recover the individual violations.
func CheckAll[E comparable](quorum int, s vr.Snapshot[E]) error {
	var err error
	for _, c := range Suite[E](quorum) {
		err = multierr.Append(err, c.Run(s))
	}
	return err
}
