package models

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// SubmissionStatus codes: 'A' draft, 'S' submitted, 'D' deleted. Deletion
// is a status flip; deleted rows are excluded from every read path.
type SubmissionStatus string

const (
	SubmissionDraft     SubmissionStatus = "A"
	SubmissionSubmitted SubmissionStatus = "S"
	SubmissionDeleted   SubmissionStatus = "D"
)

type Submission struct {
	ID             string           `db:"id" json:"id"`
	UserID         string           `db:"user_id" json:"user_id"`
	ContestID      string           `db:"contest_id" json:"contest_id"`
	Description    string           `db:"description" json:"description"`
	TeamMembers    []string         `db:"-" json:"team_members" validate:"dive,required"`
	TeamMembersRaw string           `db:"team_members" json:"-"`
	SourceCodeLink string           `db:"source_code_link" json:"source_code_link" validate:"required,url"`
	DeploymentLink string           `db:"deployment_link" json:"deployment_link" validate:"omitempty,url"`
	Status         SubmissionStatus `db:"submission_status" json:"submission_status" validate:"required,oneof=A S D"`
	CreatedAt      int64            `db:"created_at" json:"created_at"`
	UpdatedAt      int64            `db:"updated_at" json:"updated_at"`
}

// Validate checks URL fields and team member names. URL fields are the
// only strictly validated inputs; free-text fields accept anything.
func (s *Submission) Validate() error {
	validate := validator.New()
	return validate.Struct(s)
}

// EncodeTeamMembers serializes TeamMembers into TeamMembersRaw for
// storage. A missing list means an individual submission and is stored
// as an empty JSON array.
func (s *Submission) EncodeTeamMembers() error {
	members := s.TeamMembers
	if members == nil {
		members = []string{}
	}
	raw, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("failed to encode team members: %w", err)
	}
	s.TeamMembersRaw = string(raw)
	return nil
}

func (s *Submission) DecodeTeamMembers() error {
	if s.TeamMembersRaw == "" {
		s.TeamMembers = []string{}
		return nil
	}
	if err := json.Unmarshal([]byte(s.TeamMembersRaw), &s.TeamMembers); err != nil {
		return fmt.Errorf("failed to decode team members: %w", err)
	}
	return nil
}
