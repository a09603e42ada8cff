package user

type Role string

const (
	RoleOwner    Role = "owner"    // Full access
	RoleManager  Role = "manager"  // Approves leave, edits attendance, runs payroll
	RoleEmployee Role = "employee" // Own attendance and leave only
)

var RoleValues = []string{
	string(RoleOwner),
	string(RoleManager),
	string(RoleEmployee),
}

// Principal is the authenticated caller, read from the access token.
type Principal struct {
	UserID  string
	StaffID string
	Role    Role
}

// IsManager checks if the caller is a manager or owner
func (p Principal) IsManager() bool {
	return p.Role == RoleManager || p.Role == RoleOwner
}

// Can checks if the caller's role grants permission
func (p Principal) Can(permission Permission) bool {
	return HasPermission(p.Role, permission)
}
