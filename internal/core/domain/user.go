package domain

import "time"

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// ValidRole reports whether r is one of the roles the platform recognises.
func ValidRole(r Role) bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
