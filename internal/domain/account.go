package domain

import "time"

// Account models an authenticated caller: citizen, field engineer, or
// council staff. The triage core only consumes id, role and name.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
