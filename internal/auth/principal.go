package auth

// Role is the closed set of roles a claim token may carry.
type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a claim value to a Role. Absent or unknown values get the
// lowest privilege.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleOrganizer:
		return RoleOrganizer
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Principal is the identity of one request, projected from token claims.
// It is never persisted and never re-checked against a user store, so a
// demoted or deleted account keeps its claimed role until the token expires.
type Principal struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
}
