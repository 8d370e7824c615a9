package domain

import "time"

// Roles a user can hold.
const (
	RoleVolunteer = "volunteer"
	RoleOrganizer = "organizer"
)

type User struct {
	ID           string
	Username     string
	DisplayName  string
	PasswordHash string // argon2id PHC string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
