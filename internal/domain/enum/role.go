package enum

// Role is the backend's user role string.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleCashier    Role = "cashier"
)

// IsAdmin reports whether the role may use the administration screens.
func (r Role) IsAdmin() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

func (r Role) IsCashier() bool {
	return r == RoleCashier
}

// Home returns the landing page for the role after login.
func (r Role) Home() string {
	if r.IsCashier() {
		return "/store"
	}
	return "/dashboard"
}

func (r Role) String() string {
	switch r {
	case RoleSuperAdmin:
		return "Super Admin"
	case RoleAdmin:
		return "Admin"
	case RoleCashier:
		return "Cashier"
	}
	return string(r)
}
