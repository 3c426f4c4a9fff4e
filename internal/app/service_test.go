package app

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piparkaq/hackboard/internal/models"
	"github.com/piparkaq/hackboard/internal/store"
)

// setupTestService wires a Service over an in-memory SQLite store, auth
// disabled. Covers the service-level stamping and lookup paths the store
// suites bypass.
func setupTestService(t *testing.T) (*Service, func()) {
	st, err := NewStore(":memory:", "../../migrations")
	require.NoError(t, err, "Failed to create store")

	cfg := &Config{}
	cfg.Scoring.SubmissionBaseXP = 50

	svc := &Service{
		Config: cfg,
		Store:  st,
		Auth:   &Auth{},
	}

	cleanup := func() {
		require.NoError(t, st.Close(), "Failed to close database")
	}

	return svc, cleanup
}

func makeContest(t *testing.T, svc *Service, title string) *models.Contest {
	contest := &models.Contest{
		Title:      title,
		Difficulty: models.DifficultyMedium,
		StartDate:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC).Unix(),
		EndDate:    time.Date(2024, 1, 20, 23, 59, 59, 0, time.UTC).Unix(),
	}
	require.NoError(t, svc.CreateContest(contest))
	return contest
}

func makeUser(t *testing.T, svc *Service, username string) *models.User {
	user := &models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: time.Now().Unix(),
	}
	require.NoError(t, svc.Store.CreateUser(user))
	return user
}

func TestEditSubmissionTimestamps(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	user := makeUser(t, svc, "jane.doe")
	contest := makeContest(t, svc, "Winter Hack")

	submission := &models.Submission{
		UserID:         user.ID,
		ContestID:      contest.ID,
		Description:    "first draft",
		SourceCodeLink: "https://github.com/jane/project",
	}
	require.NoError(t, svc.CreateSubmission(submission))
	assert.Equal(t, submission.CreatedAt, submission.UpdatedAt, "Fresh submissions carry equal timestamps")

	desc := "edited right away"
	edited, err := svc.EditSubmission(submission.ID, SubmissionEdit{Description: &desc})
	require.NoError(t, err)

	// The edit lands within the creation second; the stamp must still
	// come out strictly later.
	assert.Greater(t, edited.UpdatedAt, edited.CreatedAt)

	detail, err := svc.Store.GetSubmission(submission.ID)
	require.NoError(t, err)
	assert.Equal(t, desc, detail.Description)
	assert.Greater(t, detail.UpdatedAt, detail.CreatedAt)
}

func TestUpdateContestTimestamps(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	contest := makeContest(t, svc, "Winter Hack")

	update := &models.Contest{
		ID:         contest.ID,
		Title:      "Winter Hack 2024",
		Difficulty: contest.Difficulty,
		Status:     models.ContestUnarchived,
		StartDate:  contest.StartDate,
		EndDate:    contest.EndDate,
	}
	require.NoError(t, svc.UpdateContest(update))

	assert.Equal(t, contest.CreatedAt, update.CreatedAt, "created_at survives updates")
	assert.Greater(t, update.UpdatedAt, update.CreatedAt)

	got, err := svc.Store.GetContest(contest.ID)
	require.NoError(t, err)
	assert.Equal(t, "Winter Hack 2024", got.Title)
	assert.Greater(t, got.UpdatedAt, got.CreatedAt)
}

func TestUpdateContestMissing(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	missing := &models.Contest{
		ID:         uuid.NewString(),
		Title:      "Ghost",
		Difficulty: models.DifficultyEasy,
		Status:     models.ContestUnarchived,
		StartDate:  1000,
		EndDate:    2000,
	}
	assert.ErrorIs(t, svc.UpdateContest(missing), store.ErrNotFound)
}

func TestJoinContestUnknownUser(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	contest := makeContest(t, svc, "Winter Hack")

	_, err := svc.JoinContest(uuid.NewString(), contest.ID, time.Now())
	assert.ErrorIs(t, err, store.ErrNotFound)
}
