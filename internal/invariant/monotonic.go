package invariant

import (
	"vrcheck/internal/viewstamp"
	"vrcheck/internal/violation"
	"vrcheck/internal/vr"
)

// CheckMonotonic compares two consecutive snapshots of the same cluster.
// Each replica's epoch must not decrease, and its view must not decrease
// unless the epoch advanced. Snapshots must list the same replicas in the
// same positions.
func CheckMonotonic[E comparable](prev, cur vr.Snapshot[E]) error {
	return violation.Annotate(Monotonic, monotonic(prev, cur))
}

func monotonic[E comparable](prev, cur vr.Snapshot[E]) error {
	if len(prev) != len(cur) {
		return violation.Malformed("cluster size changed from %d to %d replicas", len(prev), len(cur))
	}
	for i := range cur {
		if prev[i].ID != cur[i].ID {
			return violation.Malformed("%s was %s in the previous snapshot", cur[i].Describe(i), prev[i].Describe(i))
		}
		before := viewstamp.New(prev[i].Ctx.Epoch, prev[i].Ctx.View)
		after := viewstamp.New(cur[i].Ctx.Epoch, cur[i].Ctx.View)
		if err := violation.Assert(
			!after.Less(before),
			"%s moved from %s back to %s", cur[i].Describe(i), before, after,
		); err != nil {
			return err
		}
	}
	return nil
}
