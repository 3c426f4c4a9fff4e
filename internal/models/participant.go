package models

// ParticipationStatus is the persisted single-character code. Unjoin
// flips the status to Not-active instead of deleting the row, so join
// history survives.
type ParticipationStatus string

const (
	ParticipationActive    ParticipationStatus = "A"
	ParticipationNotActive ParticipationStatus = "N"
)

type Participant struct {
	ID        string              `db:"id" json:"id"`
	UserID    string              `db:"user_id" json:"user_id"`
	ContestID string              `db:"contest_id" json:"contest_id"`
	JoinedAt  int64               `db:"joined_at" json:"joined_at"`
	Status    ParticipationStatus `db:"participation_status" json:"participation_status"`
}
