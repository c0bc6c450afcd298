package models

// Role is the caller's role as supplied by the identity provider
type Role string

const (
	RoleClient   Role = "client"
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
)

// ParseRole converts a claim value into a Role
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleClient, RoleEmployee, RoleManager:
		return Role(s), true
	}
	return "", false
}

// Identity is the authenticated caller. It is resolved once per request and
// passed explicitly into every scheduling operation.
type Identity struct {
	UserID uint `json:"user_id"`
	Role   Role `json:"role"`
}

// IsStaff reports whether the caller is an employee or a manager
func (i Identity) IsStaff() bool {
	return i.Role == RoleEmployee || i.Role == RoleManager
}

// IsClient reports whether the caller is a client
func (i Identity) IsClient() bool {
	return i.Role == RoleClient
}

// Owns reports whether the caller is the client with the given id
func (i Identity) Owns(clientID uint) bool {
	return i.Role == RoleClient && i.UserID == clientID
}
