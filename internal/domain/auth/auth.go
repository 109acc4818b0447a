package auth

// Role identifies a user's access level. Values mirror the role table
// the employee directory is provisioned with.
type Role int

const (
	RoleSuperAdmin Role = 1
	RoleAdmin      Role = 2
	RoleEmployee   Role = 3
)

// Context carries the acting user into every workflow call. It replaces
// ambient session state so permission checks stay explicit and testable.
type Context struct {
	UserID uint64
	Role   Role
}

// CanAdminister reports whether the role may author, distribute, and
// manage safety talks and library documents.
func CanAdminister(r Role) bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// CanDelete reports whether the role may run destructive cascade deletes.
func CanDelete(r Role) bool {
	return r == RoleSuperAdmin
}
