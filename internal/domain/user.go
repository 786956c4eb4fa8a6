package domain

import "time"

// User is the stored account an Identity is derived from.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is a verified subject together with its roles.
type Identity struct {
	Subject string
	Roles   []string
}

// Identity projects the user onto its authentication identity.
func (u *User) Identity() Identity {
	roles := make([]string, len(u.Roles))
	copy(roles, u.Roles)
	return Identity{Subject: u.Username, Roles: roles}
}
