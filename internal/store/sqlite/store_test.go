// internal/store/sqlite/store_test.go
package sqlite

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piparkaq/hackboard/internal/models"
	"github.com/piparkaq/hackboard/internal/store"
)

// setupTestDB creates an in-memory SQLite database with the real
// migrations applied, translated to the SQLite dialect.
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(":memory:", "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

type testData struct {
	store   *SQLiteStore
	now     time.Time
	user    *models.User
	contest *models.Contest
}

func setupTestData(t *testing.T) (*testData, func()) {
	s, cleanup := setupTestDB(t)
	now := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	user := &models.User{
		ID:        uuid.NewString(),
		Username:  "jane.doe",
		Email:     "jane.doe@example.com",
		CreatedAt: now.Unix(),
	}
	require.NoError(t, s.CreateUser(user), "Failed to insert test user")

	contest := &models.Contest{
		ID:         uuid.NewString(),
		Title:      "Winter Hack",
		Difficulty: models.DifficultyMedium,
		Status:     models.ContestUnarchived,
		StartDate:  time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC).Unix(),
		EndDate:    time.Date(2024, 1, 20, 23, 59, 59, 0, time.UTC).Unix(),
		CreatedAt:  now.Unix(),
		UpdatedAt:  now.Unix(),
	}
	require.NoError(t, s.CreateContest(contest), "Failed to insert test contest")

	return &testData{
		store:   s,
		now:     now,
		user:    user,
		contest: contest,
	}, cleanup
}

func (td *testData) addUser(t *testing.T, username string) *models.User {
	user := &models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: td.now.Unix(),
	}
	require.NoError(t, td.store.CreateUser(user))
	return user
}

func (td *testData) join(t *testing.T, user *models.User, contest *models.Contest) *models.Participant {
	p := &models.Participant{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ContestID: contest.ID,
		JoinedAt:  td.now.Unix(),
		Status:    models.ParticipationActive,
	}
	require.NoError(t, td.store.CreateParticipant(p))
	return p
}

func (td *testData) submit(t *testing.T, user *models.User, contest *models.Contest, status models.SubmissionStatus) *models.Submission {
	sub := &models.Submission{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		ContestID:      contest.ID,
		Description:    "test submission",
		TeamMembersRaw: "[]",
		SourceCodeLink: "https://github.com/jane/project",
		Status:         status,
		CreatedAt:      td.now.Unix(),
		UpdatedAt:      td.now.Unix(),
	}
	require.NoError(t, td.store.CreateSubmission(sub))
	return sub
}

// addAward attaches an award of the named type and returns its row.
func (td *testData) addAward(t *testing.T, contest *models.Contest, typeName string, position int, value int64) *models.ContestAward {
	awardType, err := td.store.GetAwardTypeByName(typeName)
	require.NoError(t, err, "Award type should be seeded by migrations")

	award := &models.ContestAward{
		ID:          uuid.NewString(),
		ContestID:   contest.ID,
		AwardTypeID: awardType.ID,
		Position:    position,
		Value:       value,
	}
	require.NoError(t, td.store.CreateContestAward(award))
	return award
}

func (td *testData) win(t *testing.T, user *models.User, award *models.ContestAward) {
	winner := &models.Winner{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		ContestID:      award.ContestID,
		ContestAwardID: award.ID,
		CreatedAt:      td.now.Unix(),
	}
	require.NoError(t, td.store.CreateWinner(winner))
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestUserOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("get by email", func(t *testing.T) {
		got, err := td.store.GetUserByEmail(td.user.Email)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, td.user.ID, got.ID)
		assert.Equal(t, td.user.Username, got.Username)
	})

	t.Run("get by missing email returns nil without error", func(t *testing.T) {
		got, err := td.store.GetUserByEmail("nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("get by username", func(t *testing.T) {
		got, err := td.store.GetUserByUsername(td.user.Username)
		require.NoError(t, err)
		assert.Equal(t, td.user.ID, got.ID)
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		err := td.store.CreateUser(&models.User{
			ID:        uuid.NewString(),
			Username:  td.user.Username,
			Email:     "other@example.com",
			CreatedAt: td.now.Unix(),
		})
		require.Error(t, err)
		assert.True(t, store.IsConflict(err))
		assert.Equal(t, "Username already taken", err.Error())
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		err := td.store.CreateUser(&models.User{
			ID:        uuid.NewString(),
			Username:  "someone.else",
			Email:     td.user.Email,
			CreatedAt: td.now.Unix(),
		})
		require.Error(t, err)
		assert.True(t, store.IsConflict(err))
		assert.Equal(t, "Email already registered", err.Error())
	})
}

func TestContestLifecycle(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("get contest", func(t *testing.T) {
		got, err := td.store.GetContest(td.contest.ID)
		require.NoError(t, err)
		assert.Equal(t, td.contest.Title, got.Title)
		assert.Equal(t, models.ContestUnarchived, got.Status)
	})

	t.Run("update contest", func(t *testing.T) {
		td.contest.Title = "Winter Hack 2024"
		td.contest.UpdatedAt = td.now.Add(time.Hour).Unix()
		require.NoError(t, td.store.UpdateContest(td.contest))

		got, err := td.store.GetContest(td.contest.ID)
		require.NoError(t, err)
		assert.Equal(t, "Winter Hack 2024", got.Title)
	})

	t.Run("update missing contest", func(t *testing.T) {
		missing := *td.contest
		missing.ID = uuid.NewString()
		err := td.store.UpdateContest(&missing)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("archive keeps contest visible", func(t *testing.T) {
		require.NoError(t, td.store.SetContestStatus(td.contest.ID, models.ContestArchived))

		got, err := td.store.GetContest(td.contest.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ContestArchived, got.Status)
	})

	t.Run("soft delete hides contest", func(t *testing.T) {
		require.NoError(t, td.store.SetContestStatus(td.contest.ID, models.ContestDeleted))

		_, err := td.store.GetContest(td.contest.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)

		contests, err := td.store.ListContests()
		require.NoError(t, err)
		assert.Empty(t, contests)
	})
}

func TestContestStats(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("zero counts without activity", func(t *testing.T) {
		stats, err := td.store.ListContestStats()
		require.NoError(t, err)
		require.Len(t, stats, 1)
		assert.EqualValues(t, 0, stats[0].ParticipantCount)
		assert.EqualValues(t, 0, stats[0].PrizeTotal)
	})

	t.Run("aggregates reflect joins and awards", func(t *testing.T) {
		td.join(t, td.user, td.contest)
		other := td.addUser(t, "john.roe")
		td.join(t, other, td.contest)

		td.addAward(t, td.contest, models.AwardTypeCash, 1, 1000)
		td.addAward(t, td.contest, models.AwardTypePts, 1, 500)

		stats, err := td.store.ListContestStats()
		require.NoError(t, err)
		require.Len(t, stats, 1)
		assert.EqualValues(t, 2, stats[0].ParticipantCount)
		assert.EqualValues(t, 1500, stats[0].PrizeTotal)
	})
}

func TestContestPages(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	page := &models.ContestPage{
		ContestID: td.contest.ID,
		Title:     "Rules",
		Body:      "{\"blocks\":[]}",
	}

	t.Run("create and list", func(t *testing.T) {
		require.NoError(t, td.store.CreateContestPage(page))

		pages, err := td.store.ListContestPages(td.contest.ID)
		require.NoError(t, err)
		require.Len(t, pages, 1)
		assert.Equal(t, "Rules", pages[0].Title)
		assert.NotZero(t, pages[0].ID)
	})

	t.Run("delete", func(t *testing.T) {
		pages, err := td.store.ListContestPages(td.contest.ID)
		require.NoError(t, err)
		require.Len(t, pages, 1)

		require.NoError(t, td.store.DeleteContestPage(pages[0].ID))

		pages, err = td.store.ListContestPages(td.contest.ID)
		require.NoError(t, err)
		assert.Empty(t, pages)

		assert.ErrorIs(t, td.store.DeleteContestPage(9999), store.ErrNotFound)
	})
}

func TestParticipationLifecycle(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	participant := td.join(t, td.user, td.contest)

	t.Run("double join conflicts", func(t *testing.T) {
		err := td.store.CreateParticipant(&models.Participant{
			ID:        uuid.NewString(),
			UserID:    td.user.ID,
			ContestID: td.contest.ID,
			JoinedAt:  td.now.Add(time.Minute).Unix(),
			Status:    models.ParticipationActive,
		})
		require.Error(t, err)
		assert.True(t, store.IsConflict(err))
		assert.Equal(t, "Already joined this contest", err.Error())
	})

	t.Run("list user participations", func(t *testing.T) {
		details, err := td.store.ListUserParticipations(td.user.ID)
		require.NoError(t, err)
		require.Len(t, details, 1)
		assert.Equal(t, participant.ID, details[0].ParticipantID)
		assert.Equal(t, td.contest.Title, details[0].ContestTitle)
	})

	t.Run("retire then rejoin", func(t *testing.T) {
		require.NoError(t, td.store.RetireParticipant(participant.ID))

		details, err := td.store.ListUserParticipations(td.user.ID)
		require.NoError(t, err)
		assert.Empty(t, details, "Retired participation should not be listed")

		// The partial unique index only guards active rows, so a fresh
		// join after retiring must go through.
		rejoined := td.join(t, td.user, td.contest)
		assert.NotEqual(t, participant.ID, rejoined.ID)
	})

	t.Run("retire is idempotent-hostile", func(t *testing.T) {
		err := td.store.RetireParticipant(participant.ID)
		assert.ErrorIs(t, err, store.ErrNotFound, "Retiring an already retired row should report not found")
	})

	t.Run("contest participants lists active only", func(t *testing.T) {
		other := td.addUser(t, "john.roe")
		retired := td.join(t, other, td.contest)
		require.NoError(t, td.store.RetireParticipant(retired.ID))

		participants, err := td.store.ListContestParticipants(td.contest.ID)
		require.NoError(t, err)
		require.Len(t, participants, 1)
		assert.Equal(t, td.user.Username, participants[0].Username)
	})
}

func TestSubmissionLifecycle(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	td.join(t, td.user, td.contest)
	sub := td.submit(t, td.user, td.contest, models.SubmissionDraft)

	t.Run("get submission", func(t *testing.T) {
		got, err := td.store.GetSubmission(sub.ID)
		require.NoError(t, err)
		assert.Equal(t, sub.Description, got.Description)
		assert.Equal(t, td.contest.Title, got.ContestTitle)
		assert.Equal(t, "[]", got.TeamMembersRaw)
	})

	t.Run("update submission", func(t *testing.T) {
		sub.Description = "now with docs"
		sub.Status = models.SubmissionSubmitted
		sub.UpdatedAt = td.now.Add(2 * time.Hour).Unix()
		require.NoError(t, td.store.UpdateSubmission(sub))

		got, err := td.store.GetSubmission(sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "now with docs", got.Description)
		assert.Equal(t, string(models.SubmissionSubmitted), got.Status)
		assert.Greater(t, got.UpdatedAt, got.CreatedAt)
	})

	t.Run("soft delete hides submission", func(t *testing.T) {
		require.NoError(t, td.store.SoftDeleteSubmission(sub.ID))

		_, err := td.store.GetSubmission(sub.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)

		listed, err := td.store.ListUserSubmissions(td.user.ID)
		require.NoError(t, err)
		assert.Empty(t, listed)
	})

	t.Run("deleted submission rejects updates", func(t *testing.T) {
		sub.Description = "should not land"
		err := td.store.UpdateSubmission(sub)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("double delete reports not found", func(t *testing.T) {
		err := td.store.SoftDeleteSubmission(sub.ID)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("contest submissions exclude deleted", func(t *testing.T) {
		live := td.submit(t, td.user, td.contest, models.SubmissionSubmitted)

		listed, err := td.store.ListContestSubmissions(td.contest.ID)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.Equal(t, live.ID, listed[0].ID)
	})
}

func TestPrizeListing(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	td.addAward(t, td.contest, models.AwardTypePts, 2, 300)
	td.addAward(t, td.contest, models.AwardTypeCash, 1, 1000)
	td.addAward(t, td.contest, models.AwardTypePts, 1, 500)

	t.Run("rows ordered by position then type name", func(t *testing.T) {
		rows, err := td.store.ListContestPrizes(td.contest.ID)
		require.NoError(t, err)
		require.Len(t, rows, 3)

		assert.Equal(t, 1, rows[0].Position)
		assert.Equal(t, models.AwardTypeCash, rows[0].AwardTypeName)
		assert.Equal(t, 1, rows[1].Position)
		assert.Equal(t, models.AwardTypePts, rows[1].AwardTypeName)
		assert.Equal(t, 2, rows[2].Position)
	})

	t.Run("award rows carry ids", func(t *testing.T) {
		awards, err := td.store.ListContestAwards(td.contest.ID)
		require.NoError(t, err)
		require.Len(t, awards, 3)
		for _, award := range awards {
			assert.NotEmpty(t, award.ID)
		}
	})
}

func TestContestWinners(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	points := td.addAward(t, td.contest, models.AwardTypePts, 1, 500)
	swag := td.addAward(t, td.contest, models.AwardTypeSwag, 1, 1)

	bothUser := td.addUser(t, "alice")
	td.win(t, bothUser, points)
	td.win(t, bothUser, swag)

	pointsOnlyUser := td.addUser(t, "bob")
	td.win(t, pointsOnlyUser, points)

	t.Run("requires both points and swag", func(t *testing.T) {
		winners, err := td.store.ListContestWinners(td.contest.ID)
		require.NoError(t, err)
		require.Len(t, winners, 1)
		assert.Equal(t, "alice", winners[0].Username)
		assert.EqualValues(t, 500, winners[0].Points)
		assert.EqualValues(t, 1, winners[0].Swag)
	})

	t.Run("empty for unknown contest", func(t *testing.T) {
		winners, err := td.store.ListContestWinners(uuid.NewString())
		require.NoError(t, err)
		assert.Empty(t, winners)
	})
}

func TestSeasonLeaderboard(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	season := &models.Season{
		ID:        uuid.NewString(),
		Name:      "Winter 2024",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Unix(),
		EndDate:   time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC).Unix(),
	}
	_, err := td.store.DB.NamedExec(`
		INSERT INTO seasons (id, name, start_date, end_date)
		VALUES (:id, :name, :start_date, :end_date)
	`, season)
	require.NoError(t, err, "Failed to insert test season")

	t.Run("get season", func(t *testing.T) {
		got, err := td.store.GetSeason(season.ID)
		require.NoError(t, err)
		assert.Equal(t, "Winter 2024", got.Name)

		_, err = td.store.GetSeason(uuid.NewString())
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("list seasons", func(t *testing.T) {
		seasons, err := td.store.ListSeasons()
		require.NoError(t, err)
		require.Len(t, seasons, 1)
		assert.Equal(t, season.ID, seasons[0].ID)
		assert.Equal(t, "Winter 2024", seasons[0].Name)
	})

	t.Run("upsert overwrites aggregates", func(t *testing.T) {
		row := &models.LeaderboardRow{
			UserID:          td.user.ID,
			ContestID:       td.contest.ID,
			SeasonID:        season.ID,
			Experience:      100,
			SubmissionCount: 2,
		}
		require.NoError(t, td.store.UpsertLeaderboardRow(row))

		row.Experience = 650
		row.WinCount = 1
		require.NoError(t, td.store.UpsertLeaderboardRow(row))

		entries, err := td.store.SeasonLeaderboard(season.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.EqualValues(t, 650, entries[0].Experience)
		assert.EqualValues(t, 1, entries[0].WinCount)
	})

	t.Run("ordering breaks ties by username", func(t *testing.T) {
		second := td.addUser(t, "aaron")
		require.NoError(t, td.store.UpsertLeaderboardRow(&models.LeaderboardRow{
			UserID:     second.ID,
			ContestID:  td.contest.ID,
			SeasonID:   season.ID,
			Experience: 650,
		}))

		entries, err := td.store.SeasonLeaderboard(season.ID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "aaron", entries[0].Username)
		assert.Equal(t, "jane.doe", entries[1].Username)
	})

	t.Run("submission facts count submitted only", func(t *testing.T) {
		td.join(t, td.user, td.contest)
		td.submit(t, td.user, td.contest, models.SubmissionSubmitted)
		td.submit(t, td.user, td.contest, models.SubmissionSubmitted)
		td.submit(t, td.user, td.contest, models.SubmissionDraft)

		facts, err := td.store.SeasonSubmissionCounts(season.ID)
		require.NoError(t, err)
		require.Len(t, facts, 1)
		assert.Equal(t, 2, facts[0].SubmissionCount)
	})

	t.Run("win facts sum points values", func(t *testing.T) {
		points := td.addAward(t, td.contest, models.AwardTypePts, 1, 500)
		cash := td.addAward(t, td.contest, models.AwardTypeCash, 1, 1000)
		td.win(t, td.user, points)
		td.win(t, td.user, cash)

		facts, err := td.store.SeasonWinFacts(season.ID)
		require.NoError(t, err)
		require.Len(t, facts, 1)
		assert.Equal(t, 2, facts[0].WinCount)
		assert.EqualValues(t, 500, facts[0].Points, "Only Points award values should count towards XP")
	})
}

func TestPurgeContestCascades(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	td.join(t, td.user, td.contest)
	td.submit(t, td.user, td.contest, models.SubmissionSubmitted)
	award := td.addAward(t, td.contest, models.AwardTypePts, 1, 500)
	td.win(t, td.user, award)

	require.NoError(t, td.store.PurgeContest(td.contest.ID))

	var count int
	for _, table := range []string{"participants", "submissions", "contest_awards", "winners"} {
		err := td.store.DB.Get(&count, "SELECT COUNT(*) FROM "+table)
		require.NoError(t, err)
		assert.Zero(t, count, "table %s should be empty after purge", table)
	}

	assert.ErrorIs(t, td.store.PurgeContest(td.contest.ID), store.ErrNotFound)
}
