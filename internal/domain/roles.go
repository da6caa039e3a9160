package domain

// Role tiers carried on the auth token. The role catalog itself is owned by
// the identity service.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// IsAdminTier reports whether the role may act on any employee in the company.
func IsAdminTier(role string) bool {
	return role == RoleAdmin || role == RoleSuperAdmin
}
