package role

import (
	"fmt"
	"strings"
)

type Role string

const (
	Patient Role = "PATIENT"
	Doctor  Role = "DOCTOR"
	Admin   Role = "ADMIN"
)

func Parse(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case Patient, Doctor, Admin:
		return r, true
	default:
		return "", false
	}
}

func (r Role) String() string {
	return string(r)
}

// Identity is the verified (user, role) pair attached to a request.
type Identity struct {
	UserID uint
	Role   Role
}

func (i Identity) Is(r Role) bool {
	return i.Role == r
}

type PermissionResult struct {
	Allowed bool
	Reason  string
}

// Requirement is a capability check shared by every role-scoped route.
type Requirement struct {
	allowed []Role
}

func Requires(roles ...Role) Requirement {
	return Requirement{allowed: roles}
}

func (r Requirement) Check(actual Role) PermissionResult {
	for _, want := range r.allowed {
		if actual == want {
			return PermissionResult{Allowed: true}
		}
	}
	return PermissionResult{
		Allowed: false,
		Reason:  fmt.Sprintf("role %s is not permitted here", actual),
	}
}
