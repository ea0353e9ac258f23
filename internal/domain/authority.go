package domain

// Authority is a named role label referenced by users.
type Authority struct {
	Name string
}

const (
	RoleUser  = "ROLE_USER"
	RoleAdmin = "ROLE_ADMIN"
)
