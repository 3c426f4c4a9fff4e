package models

import "time"

// ChatContestMapping binds a bot chat to the contest it manages, so
// organizer commands can omit the contest identifier.
type ChatContestMapping struct {
	ContestID       string    `json:"contest_id"`
	Name            string    `json:"name"`
	Comment         string    `json:"comment"`
	AssociationTime time.Time `json:"association_time"`
	RegisteredBy    int64     `json:"registered_by"`
}
