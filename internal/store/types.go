package store

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

type DBConfig struct {
	DSN  string
	Type DatabaseType
}

// ContestStats is a contest row joined with its aggregate counts. The
// aggregations COALESCE to zero when nothing matches.
type ContestStats struct {
	ID               string `db:"id"`
	Title            string `db:"title"`
	Subtitle         string `db:"subtitle"`
	BannerURL        string `db:"banner_url"`
	Difficulty       string `db:"difficulty"`
	Status           string `db:"status"`
	StartDate        int64  `db:"start_date"`
	EndDate          int64  `db:"end_date"`
	ParticipantCount int64  `db:"participant_count"`
	PrizeTotal       int64  `db:"prize_total"`
}

// ParticipationDetail is a participation row joined with contest display
// fields, for a user's "my contests" view.
type ParticipationDetail struct {
	ParticipantID string `db:"participant_id"`
	ContestID     string `db:"contest_id"`
	ContestTitle  string `db:"contest_title"`
	BannerURL     string `db:"banner_url"`
	StartDate     int64  `db:"start_date"`
	EndDate       int64  `db:"end_date"`
	JoinedAt      int64  `db:"joined_at"`
}

// ParticipantDetail is a participation row with the username resolved,
// for a contest's participant list.
type ParticipantDetail struct {
	ParticipantID string `db:"participant_id"`
	UserID        string `db:"user_id"`
	Username      string `db:"username"`
	JoinedAt      int64  `db:"joined_at"`
}

// SubmissionDetail is a submission joined with contest display fields.
type SubmissionDetail struct {
	ID             string `db:"id"`
	UserID         string `db:"user_id"`
	ContestID      string `db:"contest_id"`
	ContestTitle   string `db:"contest_title"`
	BannerURL      string `db:"banner_url"`
	ContestEndDate int64  `db:"contest_end_date"`
	Description    string `db:"description"`
	TeamMembersRaw string `db:"team_members"`
	SourceCodeLink string `db:"source_code_link"`
	DeploymentLink string `db:"deployment_link"`
	Status         string `db:"submission_status"`
	CreatedAt      int64  `db:"created_at"`
	UpdatedAt      int64  `db:"updated_at"`
}

// PrizeRow is one (position, award type, value) tuple of a contest's
// prize table, ordered by position then award type name.
type PrizeRow struct {
	Position      int    `db:"position"`
	AwardTypeName string `db:"award_type_name"`
	Value         int64  `db:"award_value"`
}

// WinnerRow is a user's summed award values for one contest. Points and
// Swag are zero when the user won nothing in that category.
type WinnerRow struct {
	UserID   string `db:"user_id"`
	Username string `db:"username"`
	Points   int64  `db:"points"`
	Swag     int64  `db:"swag"`
}

// LeaderboardEntry is one row of a season leaderboard.
type LeaderboardEntry struct {
	Username        string `db:"username"`
	Experience      int64  `db:"experience"`
	WinCount        int64  `db:"win_count"`
	SubmissionCount int64  `db:"submission_count"`
}

// SubmissionFact and WinFact feed the leaderboard reconciler. Facts are
// scoped to contests whose start date falls inside the season range.
type SubmissionFact struct {
	UserID          string `db:"user_id"`
	ContestID       string `db:"contest_id"`
	SubmissionCount int    `db:"submission_count"`
}

type WinFact struct {
	UserID    string `db:"user_id"`
	ContestID string `db:"contest_id"`
	WinCount  int    `db:"win_count"`
	Points    int64  `db:"points"`
}
