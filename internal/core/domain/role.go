package domain

// Role represents account role in the system. Every self-registered
// account is a USER; the ADMIN account is created by the seeder.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) String() string {
	return string(r)
}

// IsAdmin reports whether the role grants admin access
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
