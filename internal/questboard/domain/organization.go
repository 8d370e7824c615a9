package domain

import "time"

// Organization runs quests. Only organizers create them.
type Organization struct {
	ID          string
	Name        string
	Description string
	CreatedBy   string // user id
	CreatedAt   time.Time
}
