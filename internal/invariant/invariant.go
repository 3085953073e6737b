package invariant

import (
	"vrcheck/internal/viewstamp"
	"vrcheck/internal/violation"
	"vrcheck/internal/vr"
)

// Names reported in Violation.Invariant.
const (
	SinglePrimary      = "single_primary_per_epoch_view"
	MinorityRecovering = "minority_of_replicas_recovering"
	QuorumLogAgreement = "quorum_of_logs_equal_up_to_smallest_commit"
	Monotonic          = "monotonic_epoch_view"
)

// CheckSinglePrimary verifies that no two primaries share an
// (epoch, view). Only the first two primaries in scan order are compared:
// once a second primary is found the check returns, so a third primary
// is never inspected.
func CheckSinglePrimary[E comparable](s vr.Snapshot[E]) error {
	first := -1
	for i, r := range s {
		if r.Role != vr.RolePrimary {
			continue
		}
		if first < 0 {
			first = i
			continue
		}
		a := viewstamp.New(s[first].Ctx.Epoch, s[first].Ctx.View)
		b := viewstamp.New(r.Ctx.Epoch, r.Ctx.View)
		return violation.Annotate(SinglePrimary, violation.Assert(
			a != b,
			"%s at %s and %s at %s must not both be primary for the same epoch and view",
			s[first].Describe(first), a, r.Describe(i), b,
		))
	}
	return nil
}

// CheckMinorityRecovering verifies that fewer than quorum replicas are
// in recovery.
func CheckMinorityRecovering[E comparable](quorum int, s vr.Snapshot[E]) error {
	recovering := 0
	for _, r := range s {
		if r.Role == vr.RoleRecovery {
			recovering++
		}
	}
	return violation.Annotate(MinorityRecovering, violation.Assert(
		recovering < quorum,
		"recovering replicas (%d) < quorum (%d)", recovering, quorum,
	))
}

// CheckQuorumLogAgreement verifies that every replica agrees on the log
// prefix up to the smallest commit number in the snapshot, and that at
// least quorum replicas took part in the comparison.
func CheckQuorumLogAgreement[E comparable](quorum int, s vr.Snapshot[E]) error {
	return violation.Annotate(QuorumLogAgreement, quorumLogAgreement(quorum, s))
}

func quorumLogAgreement[E comparable](quorum int, s vr.Snapshot[E]) error {
	var (
		floor    uint64
		observed bool
	)
	for _, r := range s {
		if !observed || r.Ctx.CommitNum < floor {
			floor = r.Ctx.CommitNum
			observed = true
		}
	}
	if !observed || floor == 0 {
		return nil
	}

	var (
		reference []E
		refIndex  int
		count     int
	)
	for i, r := range s {
		if r.Ctx.CommitNum < floor {
			continue
		}
		prefix, ok := vr.Prefix(r.Ctx.Log, floor)
		if !ok {
			return violation.Malformed(
				"%s has %d log entries but commit_num %d requires a prefix of %d",
				r.Describe(i), len(r.Ctx.Log), r.Ctx.CommitNum, floor,
			)
		}
		count++
		if count == 1 {
			reference, refIndex = prefix, i
			continue
		}
		if err := violation.AssertPrefixEqual(reference, prefix); err != nil {
			v, _ := violation.As(err)
			v.Message = s[refIndex].Describe(refIndex) + " and " + r.Describe(i) + " " + v.Message
			return err
		}
	}
	return violation.Assert(
		count >= quorum,
		"replicas compared (%d) >= quorum (%d)", count, quorum,
	)
}
