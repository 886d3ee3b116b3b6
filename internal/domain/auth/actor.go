package auth

// Role is the caller's role as asserted by the external identity system.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

// ActorContext identifies who is invoking an engine operation. It is passed
// explicitly into every call instead of living in ambient request state.
type ActorContext struct {
	EmployeeID string
	Role       Role
}

func (a ActorContext) CanApprove() bool {
	return a.Role == RoleManager || a.Role == RoleHR || a.Role == RoleAdmin
}

func (a ActorContext) CanAdminister() bool {
	return a.Role == RoleHR || a.Role == RoleAdmin
}

func ValidRole(role Role) bool {
	switch role {
	case RoleEmployee, RoleManager, RoleHR, RoleAdmin:
		return true
	}
	return false
}
