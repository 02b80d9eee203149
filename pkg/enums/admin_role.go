package enums

// AdminRole is the role carried in access tokens.
type AdminRole string

const AdminRoleAdmin AdminRole = "admin"

func (r AdminRole) String() string {
	return string(r)
}

func (r AdminRole) IsValid() bool {
	return r == AdminRoleAdmin
}
