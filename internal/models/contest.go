package models

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// ContestStatus is the persisted single-character status code. Phase
// (Upcoming/Ongoing/Completed) is computed from dates, never stored.
type ContestStatus string

const (
	ContestUnarchived ContestStatus = "U"
	ContestArchived   ContestStatus = "A"
	ContestDeleted    ContestStatus = "D"
)

type Phase string

const (
	PhaseUpcoming  Phase = "Upcoming"
	PhaseOngoing   Phase = "Ongoing"
	PhaseCompleted Phase = "Completed"
)

type Contest struct {
	ID          string        `db:"id" json:"id"`
	Title       string        `db:"title" json:"title" validate:"required"`
	Subtitle    string        `db:"subtitle" json:"subtitle"`
	Description string        `db:"description" json:"description"`
	Tags        string        `db:"tags" json:"tags"`
	BannerURL   string        `db:"banner_url" json:"banner_url" validate:"omitempty,url"`
	Difficulty  Difficulty    `db:"difficulty" json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
	Status      ContestStatus `db:"status" json:"status" validate:"required,oneof=U A D"`
	StartDate   int64         `db:"start_date" json:"start_date" validate:"required"`
	EndDate     int64         `db:"end_date" json:"end_date" validate:"required,gtefield=StartDate"`
	CreatedAt   int64         `db:"created_at" json:"created_at"`
	UpdatedAt   int64         `db:"updated_at" json:"updated_at"`
}

func (c *Contest) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.StartDate > c.EndDate {
		return fmt.Errorf("start_date %d is after end_date %d", c.StartDate, c.EndDate)
	}
	return nil
}

// PhaseAt derives the date-based phase at the given instant.
func (c *Contest) PhaseAt(now time.Time) Phase {
	ts := now.Unix()
	switch {
	case ts < c.StartDate:
		return PhaseUpcoming
	case ts > c.EndDate:
		return PhaseCompleted
	default:
		return PhaseOngoing
	}
}

// ContestPage is an organizer-authored page attached to a contest. The
// body is an opaque rich-document blob rendered elsewhere.
type ContestPage struct {
	ID        int64  `db:"id" json:"id"`
	ContestID string `db:"contest_id" json:"contest_id" validate:"required"`
	Title     string `db:"title" json:"title" validate:"required"`
	Body      string `db:"body" json:"body"`
}

func (p *ContestPage) Validate() error {
	validate := validator.New()
	return validate.Struct(p)
}
