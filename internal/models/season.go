package models

// Season is a named date range grouping contests for leaderboard scoring.
type Season struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	StartDate int64  `db:"start_date" json:"start_date"`
	EndDate   int64  `db:"end_date" json:"end_date"`
}

// LeaderboardRow is a derived per-(user, contest, season) aggregate. It is
// recomputed from participant/submission/winner facts, never edited by
// hand.
type LeaderboardRow struct {
	UserID          string `db:"user_id" json:"user_id"`
	ContestID       string `db:"contest_id" json:"contest_id"`
	SeasonID        string `db:"season_id" json:"season_id"`
	Experience      int64  `db:"experience" json:"experience"`
	SubmissionCount int    `db:"submission_count" json:"submission_count"`
	WinCount        int    `db:"win_count" json:"win_count"`
}
