package bot

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piparkaq/hackboard/internal/models"
	"github.com/piparkaq/hackboard/internal/store/sqlite"
)

func setupTestBot(t *testing.T) (*Bot, *sqlite.SQLiteStore, func()) {
	st, err := sqlite.NewSQLiteStore(":memory:", "../../migrations")
	require.NoError(t, err, "Failed to create store")

	b := &Bot{
		store:  st,
		admins: map[int64]bool{},
	}

	cleanup := func() {
		require.NoError(t, st.Close(), "Failed to close database")
	}

	return b, st, cleanup
}

func TestRecordWinner(t *testing.T) {
	b, st, cleanup := setupTestBot(t)
	defer cleanup()

	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	user := &models.User{
		ID:        uuid.NewString(),
		Username:  "jane.doe",
		Email:     "jane.doe@example.com",
		CreatedAt: now.Unix(),
	}
	require.NoError(t, st.CreateUser(user))

	newContest := func(title string) *models.Contest {
		c := &models.Contest{
			ID:         uuid.NewString(),
			Title:      title,
			Difficulty: models.DifficultyMedium,
			Status:     models.ContestUnarchived,
			StartDate:  now.Unix(),
			EndDate:    now.Add(240 * time.Hour).Unix(),
			CreatedAt:  now.Unix(),
			UpdatedAt:  now.Unix(),
		}
		require.NoError(t, st.CreateContest(c))
		return c
	}
	contest := newContest("Winter Hack")
	other := newContest("Spring Hack")

	addAward := func(c *models.Contest, typeName string, value int64) *models.ContestAward {
		awardType, err := st.GetAwardTypeByName(typeName)
		require.NoError(t, err)
		award := &models.ContestAward{
			ID:          uuid.NewString(),
			ContestID:   c.ID,
			AwardTypeID: awardType.ID,
			Position:    1,
			Value:       value,
		}
		require.NoError(t, st.CreateContestAward(award))
		return award
	}
	points := addAward(contest, models.AwardTypePts, 500)
	foreign := addAward(other, models.AwardTypePts, 9000)

	winnerCount := func() int {
		var count int
		require.NoError(t, st.DB.Get(&count, "SELECT COUNT(*) FROM winners"))
		return count
	}

	t.Run("award from another contest is rejected", func(t *testing.T) {
		_, err := b.recordWinner(contest.ID, user.Username, foreign.ID)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not belong")
		assert.Zero(t, winnerCount(), "Rejected pair must not leave a winner row behind")
	})

	t.Run("unknown username is rejected", func(t *testing.T) {
		_, err := b.recordWinner(contest.ID, "nobody", points.ID)
		require.Error(t, err)
		assert.Zero(t, winnerCount())
	})

	t.Run("matching pair records the winner", func(t *testing.T) {
		winner, err := b.recordWinner(contest.ID, user.Username, points.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, winner.UserID)
		assert.Equal(t, contest.ID, winner.ContestID)
		assert.Equal(t, points.ID, winner.ContestAwardID)
		assert.Equal(t, 1, winnerCount())
	})
}
