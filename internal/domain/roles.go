package domain

type Role string

const (
	// User can manage their own profile and reservations.
	RoleUser Role = "user"
	// Admin can read and write every collection, including the admin-only ones.
	RoleAdmin Role = "admin"
)

func IsValidRole(r string) bool {
	return r == string(RoleUser) || r == string(RoleAdmin)
}

// RoleOrDefault maps a missing role to "user", the way stored profiles are read.
func RoleOrDefault(r string) string {
	if r == "" {
		return string(RoleUser)
	}
	return r
}

type UserStatus string

const (
	StatusActive  UserStatus = "active"
	StatusBlocked UserStatus = "blocked"
)

func StatusOrDefault(s string) string {
	if s == "" {
		return string(StatusActive)
	}
	return s
}
