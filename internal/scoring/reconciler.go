package scoring

import (
	"fmt"

	"github.com/piparkaq/hackboard/internal/models"
	"github.com/piparkaq/hackboard/internal/store"
)

// Reconciler rebuilds the derived leaderboard rows for a season from the
// authoritative submission and winner facts. The leaderboard table is a
// cache: nothing maintains it transactionally, this recomputation is the
// only writer.
type Reconciler struct {
	store            store.ContestStore
	submissionBaseXP int64
}

func NewReconciler(s store.ContestStore, submissionBaseXP int64) *Reconciler {
	return &Reconciler{
		store:            s,
		submissionBaseXP: submissionBaseXP,
	}
}

type userContest struct {
	userID    string
	contestID string
}

// Run recomputes and upserts every (user, contest) row of the season.
// Experience is the summed "Points" award values plus a flat base per
// submitted entry. Returns the number of rows written.
func (r *Reconciler) Run(seasonID string) (int, error) {
	if _, err := r.store.GetSeason(seasonID); err != nil {
		return 0, fmt.Errorf("failed to resolve season: %w", err)
	}

	submissionFacts, err := r.store.SeasonSubmissionCounts(seasonID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch submission facts: %w", err)
	}

	winFacts, err := r.store.SeasonWinFacts(seasonID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch win facts: %w", err)
	}

	rows := make(map[userContest]*models.LeaderboardRow)
	for _, fact := range submissionFacts {
		key := userContest{fact.UserID, fact.ContestID}
		rows[key] = &models.LeaderboardRow{
			UserID:          fact.UserID,
			ContestID:       fact.ContestID,
			SeasonID:        seasonID,
			SubmissionCount: fact.SubmissionCount,
			Experience:      int64(fact.SubmissionCount) * r.submissionBaseXP,
		}
	}

	for _, fact := range winFacts {
		key := userContest{fact.UserID, fact.ContestID}
		row, ok := rows[key]
		if !ok {
			row = &models.LeaderboardRow{
				UserID:    fact.UserID,
				ContestID: fact.ContestID,
				SeasonID:  seasonID,
			}
			rows[key] = row
		}
		row.WinCount = fact.WinCount
		row.Experience += fact.Points
	}

	written := 0
	for _, row := range rows {
		if err := r.store.UpsertLeaderboardRow(row); err != nil {
			return written, fmt.Errorf("failed to upsert leaderboard row for user %s: %w", row.UserID, err)
		}
		written++
	}

	return written, nil
}
