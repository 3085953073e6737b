package invariant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"vrcheck/internal/violation"
	"vrcheck/internal/vr"
)

func TestSuite_Order(t *testing.T) {
	var names []string
	for _, c := range Suite[string](2) {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{SinglePrimary, MinorityRecovering, QuorumLogAgreement}, names)
}

func TestCheckAll_Healthy(t *testing.T) {
	s := vr.Snapshot[string]{
		replica("n1", vr.RolePrimary, 0, 2, 2, "a", "b"),
		replica("n2", vr.RoleBackup, 0, 2, 2, "a", "b"),
		replica("n3", vr.RoleRecovery, 0, 1, 2, "a", "b", "c"),
	}
	assert.NoError(t, CheckAll(2, s))
}

func TestCheckAll_CollectsEveryFailure(t *testing.T) {
	s := vr.Snapshot[string]{
		replica("n1", vr.RolePrimary, 0, 2, 1, "a"),
		replica("n2", vr.RolePrimary, 0, 2, 1, "b"),
		replica("n3", vr.RoleRecovery, 0, 1, 1, "a"),
		replica("n4", vr.RoleRecovery, 0, 1, 1, "a"),
		replica("n5", vr.RoleRecovery, 0, 1, 1, "a"),
	}

	errs := multierr.Errors(CheckAll(3, s))
	require.Len(t, errs, 3)

	var got []string
	for _, err := range errs {
		v, ok := violation.As(err)
		require.True(t, ok)
		got = append(got, v.Invariant)
	}
	assert.Equal(t, []string{SinglePrimary, MinorityRecovering, QuorumLogAgreement}, got)
}

func TestCheckMonotonic(t *testing.T) {
	prev := vr.Snapshot[string]{
		replica("n1", vr.RolePrimary, 1, 3, 0),
		replica("n2", vr.RoleBackup, 1, 3, 0),
	}

	tests := []struct {
		name     string
		cur      vr.Snapshot[string]
		wantKind violation.Kind
	}{
		{"unchanged", prev, 0},
		{"view advanced", vr.Snapshot[string]{
			replica("n1", vr.RoleViewChange, 1, 4, 0),
			replica("n2", vr.RolePrimary, 1, 4, 0),
		}, 0},
		{"epoch advanced and view reset", vr.Snapshot[string]{
			replica("n1", vr.RoleRecovery, 2, 0, 0),
			replica("n2", vr.RoleBackup, 1, 3, 0),
		}, 0},
		{"view went back", vr.Snapshot[string]{
			replica("n1", vr.RolePrimary, 1, 3, 0),
			replica("n2", vr.RoleBackup, 1, 2, 0),
		}, violation.Condition},
		{"epoch went back", vr.Snapshot[string]{
			replica("n1", vr.RolePrimary, 0, 9, 0),
			replica("n2", vr.RoleBackup, 1, 3, 0),
		}, violation.Condition},
		{"replica missing", vr.Snapshot[string]{
			replica("n1", vr.RolePrimary, 1, 3, 0),
		}, violation.MalformedSnapshot},
		{"replicas reordered", vr.Snapshot[string]{
			replica("n2", vr.RoleBackup, 1, 3, 0),
			replica("n1", vr.RolePrimary, 1, 3, 0),
		}, violation.MalformedSnapshot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckMonotonic(prev, tt.cur)
			if tt.wantKind == 0 {
				assert.NoError(t, err)
				return
			}
			requireViolation(t, err, tt.wantKind, Monotonic)
		})
	}
}
