package domain

// Role is the authorization role carried by an authenticated principal.
type Role string

const (
	RoleUser                       Role = "user"
	RoleAuthorizer                 Role = "authorizer"
	RoleAdmin                      Role = "admin"
	RoleFrontOffice                Role = "front_office"
	RoleBackOfficeVerifier         Role = "back_office_verifier"
	RoleBackOfficeFinal            Role = "back_office_final"
	RoleLimitsAllocatingUser       Role = "limits_allocating_user"
	RoleLimitsAllocatingAuthorizer Role = "limits_allocating_authorizer"
)

// Principal is the authenticated identity attached to every request by the
// auth middleware. Authentication itself is an external collaborator; the core
// only consumes the resolved identity and role.
type Principal struct {
	UserID   string `json:"userID"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAuthorizer reports whether the principal may drive the approval workflow.
func (p Principal) IsAuthorizer() bool {
	switch p.Role {
	case RoleAuthorizer, RoleAdmin, RoleBackOfficeVerifier, RoleBackOfficeFinal:
		return true
	}
	return false
}

// User is a stored operator account. PasswordHash is a bcrypt hash and never
// leaves the repository layer except for comparison at login.
type User struct {
	UserID       string `json:"userID"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	IsActive     bool   `json:"isActive"`
	AuditFields
}

// Principal derives the request identity from a stored user.
func (u *User) Principal() Principal {
	return Principal{UserID: u.UserID, Username: u.Username, Role: u.Role}
}
