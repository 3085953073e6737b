package vr

// Role identifies the state a replica reported at snapshot time.
type Role int

const (
	// RoleUnrecognized covers any label outside the known vocabulary.
	RoleUnrecognized Role = iota
	RolePrimary
	RoleBackup
	RoleViewChange
	RoleRecovery
	RoleStateTransfer
)

var roleLabels = map[Role]string{
	RolePrimary:       "primary",
	RoleBackup:        "backup",
	RoleViewChange:    "view-change",
	RoleRecovery:      "recovery",
	RoleStateTransfer: "state-transfer",
}

// ParseRole maps a label to a Role. Matching is exact and case-sensitive;
// "Primary" or "primary " parse as RoleUnrecognized.
func ParseRole(label string) Role {
	for role, l := range roleLabels {
		if l == label {
			return role
		}
	}
	return RoleUnrecognized
}

// String returns the protocol label for the role.
func (r Role) String() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return "unrecognized"
}
