package models

type UserRole string

const (
	RoleEmployee UserRole = "employee"
	RoleEmployer UserRole = "employer"
	RoleAdmin    UserRole = "admin"
)

// Profile is the authenticated user as seen by the portal.
type Profile struct {
	ID       int64    `json:"id"`
	FullName string   `json:"full_name"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
}

// CanManageApplications reports whether the user may change application statuses.
func (p Profile) CanManageApplications() bool {
	return p.Role == RoleEmployer || p.Role == RoleAdmin
}
