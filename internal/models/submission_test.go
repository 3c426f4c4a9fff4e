package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unixTime(ts int64) time.Time {
	return time.Unix(ts, 0)
}

func validSubmission() *Submission {
	return &Submission{
		ID:             "sub-1",
		UserID:         "user-1",
		ContestID:      "contest-1",
		SourceCodeLink: "https://github.com/jane/project",
		Status:         SubmissionDraft,
	}
}

func TestSubmissionValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Submission)
		wantErr bool
	}{
		{
			name:   "minimal valid submission",
			mutate: func(s *Submission) {},
		},
		{
			name: "deployment link optional",
			mutate: func(s *Submission) {
				s.DeploymentLink = ""
			},
		},
		{
			name: "valid deployment link",
			mutate: func(s *Submission) {
				s.DeploymentLink = "https://demo.example.com"
			},
		},
		{
			name: "missing source link",
			mutate: func(s *Submission) {
				s.SourceCodeLink = ""
			},
			wantErr: true,
		},
		{
			name: "source link not a url",
			mutate: func(s *Submission) {
				s.SourceCodeLink = "not a url"
			},
			wantErr: true,
		},
		{
			name: "deployment link not a url",
			mutate: func(s *Submission) {
				s.DeploymentLink = "garbage"
			},
			wantErr: true,
		},
		{
			name: "empty team member name",
			mutate: func(s *Submission) {
				s.TeamMembers = []string{"alice", ""}
			},
			wantErr: true,
		},
		{
			name: "bogus status code",
			mutate: func(s *Submission) {
				s.Status = "X"
			},
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := validSubmission()
			tc.mutate(s)
			err := s.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTeamMembersRoundTrip(t *testing.T) {
	t.Run("nil list stores as empty array", func(t *testing.T) {
		s := validSubmission()
		require.NoError(t, s.EncodeTeamMembers())
		assert.Equal(t, "[]", s.TeamMembersRaw)
	})

	t.Run("names survive the trip", func(t *testing.T) {
		s := validSubmission()
		s.TeamMembers = []string{"alice", "bob"}
		require.NoError(t, s.EncodeTeamMembers())

		decoded := validSubmission()
		decoded.TeamMembersRaw = s.TeamMembersRaw
		require.NoError(t, decoded.DecodeTeamMembers())
		assert.Equal(t, []string{"alice", "bob"}, decoded.TeamMembers)
	})

	t.Run("empty raw decodes to empty list", func(t *testing.T) {
		s := validSubmission()
		s.TeamMembersRaw = ""
		require.NoError(t, s.DecodeTeamMembers())
		assert.Equal(t, []string{}, s.TeamMembers)
	})
}

func TestContestPhaseAt(t *testing.T) {
	contest := &Contest{
		StartDate: 1000,
		EndDate:   2000,
	}

	assert.Equal(t, PhaseUpcoming, contest.PhaseAt(unixTime(999)))
	assert.Equal(t, PhaseOngoing, contest.PhaseAt(unixTime(1000)))
	assert.Equal(t, PhaseOngoing, contest.PhaseAt(unixTime(1500)))
	assert.Equal(t, PhaseOngoing, contest.PhaseAt(unixTime(2000)))
	assert.Equal(t, PhaseCompleted, contest.PhaseAt(unixTime(2001)))
}

func TestContestValidateDates(t *testing.T) {
	contest := &Contest{
		ID:         "c1",
		Title:      "Test",
		Difficulty: DifficultyEasy,
		Status:     ContestUnarchived,
		StartDate:  2000,
		EndDate:    1000,
	}
	assert.Error(t, contest.Validate(), "End before start should not validate")

	contest.EndDate = 3000
	assert.NoError(t, contest.Validate())
}
