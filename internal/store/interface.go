package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/piparkaq/hackboard/internal/models"
)

type ContestStore interface {
	Close() error
	ApplyMigrations(dir string) error

	CreateUser(user *models.User) error
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	GetUserByUsername(username string) (*models.User, error)

	CreateContest(contest *models.Contest) error
	UpdateContest(contest *models.Contest) error
	GetContest(id string) (*models.Contest, error)
	ListContests() ([]models.Contest, error)
	ListContestStats() ([]ContestStats, error)
	SetContestStatus(id string, status models.ContestStatus) error
	PurgeContest(id string) error

	CreateContestPage(page *models.ContestPage) error
	ListContestPages(contestID string) ([]models.ContestPage, error)
	DeleteContestPage(id int64) error

	CreateParticipant(participant *models.Participant) error
	RetireParticipant(participantID string) error
	ListUserParticipations(userID string) ([]ParticipationDetail, error)
	ListContestParticipants(contestID string) ([]ParticipantDetail, error)

	CreateSubmission(submission *models.Submission) error
	UpdateSubmission(submission *models.Submission) error
	SoftDeleteSubmission(id string) error
	GetSubmission(id string) (*SubmissionDetail, error)
	ListUserSubmissions(userID string) ([]SubmissionDetail, error)
	ListContestSubmissions(contestID string) ([]models.Submission, error)

	ListAwardTypes() ([]models.AwardType, error)
	GetAwardTypeByName(name string) (*models.AwardType, error)
	CreateContestAward(award *models.ContestAward) error
	ListContestAwards(contestID string) ([]models.ContestAward, error)
	ListContestPrizes(contestID string) ([]PrizeRow, error)
	CreateWinner(winner *models.Winner) error
	ListContestWinners(contestID string) ([]WinnerRow, error)

	GetSeason(id string) (*models.Season, error)
	ListSeasons() ([]models.Season, error)
	UpsertLeaderboardRow(row *models.LeaderboardRow) error
	SeasonLeaderboard(seasonID string) ([]LeaderboardEntry, error)
	SeasonSubmissionCounts(seasonID string) ([]SubmissionFact, error)
	SeasonWinFacts(seasonID string) ([]WinFact, error)
}

// BaseStore provides the dialect-independent parts of ContestStore.
// Converter rewrites `?` placeholders for the target dialect and
// TranslateError maps driver unique-violation errors onto ConflictError.
type BaseStore struct {
	DB             *sqlx.DB
	Converter      func(string) string
	TranslateError func(error) error
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) translate(err error) error {
	if s.TranslateError != nil {
		return s.TranslateError(err)
	}
	return err
}

func (s *BaseStore) CreateUser(user *models.User) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO users (id, username, email, created_at)
		VALUES (:id, :username, :email, :created_at)
	`, user)
	if err != nil {
		if mapped := s.translate(err); IsConflict(mapped) {
			return mapped
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *BaseStore) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	query := s.Converter(`
		SELECT id, username, email, created_at
		FROM users
		WHERE email = ?
	`)

	err := s.DB.Get(&user, query, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

func (s *BaseStore) GetUserByID(id string) (*models.User, error) {
	var user models.User
	query := s.Converter(`
		SELECT id, username, email, created_at
		FROM users
		WHERE id = ?
	`)

	err := s.DB.Get(&user, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *BaseStore) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	query := s.Converter(`
		SELECT id, username, email, created_at
		FROM users
		WHERE username = ?
	`)

	err := s.DB.Get(&user, query, username)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return &user, nil
}

func (s *BaseStore) CreateContest(contest *models.Contest) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO contests (
			id, title, subtitle, description, tags, banner_url,
			difficulty, status, start_date, end_date, created_at, updated_at
		)
		VALUES (
			:id, :title, :subtitle, :description, :tags, :banner_url,
			:difficulty, :status, :start_date, :end_date, :created_at, :updated_at
		)
	`, contest)
	if err != nil {
		return fmt.Errorf("failed to create contest: %w", err)
	}
	return nil
}

func (s *BaseStore) UpdateContest(contest *models.Contest) error {
	res, err := s.DB.NamedExec(`
		UPDATE contests SET
			title = :title,
			subtitle = :subtitle,
			description = :description,
			tags = :tags,
			banner_url = :banner_url,
			difficulty = :difficulty,
			status = :status,
			start_date = :start_date,
			end_date = :end_date,
			updated_at = :updated_at
		WHERE id = :id
	`, contest)
	if err != nil {
		return fmt.Errorf("failed to update contest: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BaseStore) GetContest(id string) (*models.Contest, error) {
	var contest models.Contest
	query := s.Converter(`
		SELECT id, title, subtitle, description, tags, banner_url,
		       difficulty, status, start_date, end_date, created_at, updated_at
		FROM contests
		WHERE id = ?
		AND status != 'D'
	`)

	err := s.DB.Get(&contest, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contest: %w", err)
	}
	return &contest, nil
}

func (s *BaseStore) ListContests() ([]models.Contest, error) {
	var contests []models.Contest
	err := s.DB.Select(&contests, `
		SELECT id, title, subtitle, description, tags, banner_url,
		       difficulty, status, start_date, end_date, created_at, updated_at
		FROM contests
		WHERE status != 'D'
		ORDER BY start_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contests: %w", err)
	}
	return contests, nil
}

func (s *BaseStore) ListContestStats() ([]ContestStats, error) {
	var stats []ContestStats
	err := s.DB.Select(&stats, `
		SELECT
			c.id,
			c.title,
			c.subtitle,
			c.banner_url,
			c.difficulty,
			c.status,
			c.start_date,
			c.end_date,
			COALESCE(p.participant_count, 0) AS participant_count,
			COALESCE(a.prize_total, 0) AS prize_total
		FROM contests c
		LEFT JOIN (
			SELECT contest_id, COUNT(*) AS participant_count
			FROM participants
			WHERE participation_status = 'A'
			GROUP BY contest_id
		) p ON p.contest_id = c.id
		LEFT JOIN (
			SELECT contest_id, SUM(award_value) AS prize_total
			FROM contest_awards
			GROUP BY contest_id
		) a ON a.contest_id = c.id
		WHERE c.status != 'D'
		ORDER BY c.start_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list contest stats: %w", err)
	}
	return stats, nil
}

func (s *BaseStore) SetContestStatus(id string, status models.ContestStatus) error {
	query := s.Converter(`
		UPDATE contests SET status = ? WHERE id = ?
	`)
	res, err := s.DB.Exec(query, status, id)
	if err != nil {
		return fmt.Errorf("failed to set contest status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// PurgeContest physically removes a contest. Awards, pages, participants,
// submissions, winners and leaderboard rows go with it via FK cascades.
func (s *BaseStore) PurgeContest(id string) error {
	query := s.Converter(`DELETE FROM contests WHERE id = ?`)
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to purge contest: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BaseStore) CreateContestPage(page *models.ContestPage) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO contest_pages (contest_id, title, body)
		VALUES (:contest_id, :title, :body)
	`, page)
	if err != nil {
		return fmt.Errorf("failed to create contest page: %w", err)
	}
	return nil
}

func (s *BaseStore) ListContestPages(contestID string) ([]models.ContestPage, error) {
	var pages []models.ContestPage
	query := s.Converter(`
		SELECT id, contest_id, title, body
		FROM contest_pages
		WHERE contest_id = ?
		ORDER BY id
	`)
	err := s.DB.Select(&pages, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contest pages: %w", err)
	}
	return pages, nil
}

func (s *BaseStore) DeleteContestPage(id int64) error {
	query := s.Converter(`DELETE FROM contest_pages WHERE id = ?`)
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete contest page: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateParticipant inserts an Active row. A second active join for the
// same (user, contest) pair trips the partial unique index and comes back
// as a ConflictError; the race between two simultaneous joins is settled
// by that index, not here.
func (s *BaseStore) CreateParticipant(participant *models.Participant) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO participants (id, user_id, contest_id, joined_at, participation_status)
		VALUES (:id, :user_id, :contest_id, :joined_at, :participation_status)
	`, participant)
	if err != nil {
		if mapped := s.translate(err); IsConflict(mapped) {
			return mapped
		}
		return fmt.Errorf("failed to create participant: %w", err)
	}
	return nil
}

func (s *BaseStore) RetireParticipant(participantID string) error {
	query := s.Converter(`
		UPDATE participants
		SET participation_status = 'N'
		WHERE id = ?
		AND participation_status = 'A'
	`)
	res, err := s.DB.Exec(query, participantID)
	if err != nil {
		return fmt.Errorf("failed to retire participant: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BaseStore) ListUserParticipations(userID string) ([]ParticipationDetail, error) {
	var details []ParticipationDetail
	query := s.Converter(`
		SELECT
			p.id AS participant_id,
			c.id AS contest_id,
			c.title AS contest_title,
			c.banner_url,
			c.start_date,
			c.end_date,
			p.joined_at
		FROM participants p
		JOIN contests c ON c.id = p.contest_id
		WHERE p.user_id = ?
		AND p.participation_status = 'A'
		ORDER BY p.joined_at DESC
	`)
	err := s.DB.Select(&details, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participations: %w", err)
	}
	return details, nil
}

func (s *BaseStore) ListContestParticipants(contestID string) ([]ParticipantDetail, error) {
	var details []ParticipantDetail
	query := s.Converter(`
		SELECT
			p.id AS participant_id,
			u.id AS user_id,
			u.username,
			p.joined_at
		FROM participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.contest_id = ?
		AND p.participation_status = 'A'
		ORDER BY p.joined_at DESC
	`)
	err := s.DB.Select(&details, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return details, nil
}

func (s *BaseStore) CreateSubmission(submission *models.Submission) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO submissions (
			id, user_id, contest_id, description, team_members,
			source_code_link, deployment_link, submission_status,
			created_at, updated_at
		)
		VALUES (
			:id, :user_id, :contest_id, :description, :team_members,
			:source_code_link, :deployment_link, :submission_status,
			:created_at, :updated_at
		)
	`, submission)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

func (s *BaseStore) UpdateSubmission(submission *models.Submission) error {
	res, err := s.DB.NamedExec(`
		UPDATE submissions SET
			description = :description,
			team_members = :team_members,
			source_code_link = :source_code_link,
			deployment_link = :deployment_link,
			submission_status = :submission_status,
			updated_at = :updated_at
		WHERE id = :id
		AND submission_status != 'D'
	`, submission)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// SoftDeleteSubmission flips the status flag to 'D'. The row stays; every
// read path filters it out.
func (s *BaseStore) SoftDeleteSubmission(id string) error {
	query := s.Converter(`
		UPDATE submissions
		SET submission_status = 'D'
		WHERE id = ?
		AND submission_status != 'D'
	`)
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BaseStore) GetSubmission(id string) (*SubmissionDetail, error) {
	var detail SubmissionDetail
	query := s.Converter(`
		SELECT
			s.id,
			s.user_id,
			s.contest_id,
			c.title AS contest_title,
			c.banner_url,
			c.end_date AS contest_end_date,
			s.description,
			s.team_members,
			s.source_code_link,
			s.deployment_link,
			s.submission_status,
			s.created_at,
			s.updated_at
		FROM submissions s
		JOIN contests c ON c.id = s.contest_id
		WHERE s.id = ?
		AND s.submission_status != 'D'
	`)
	err := s.DB.Get(&detail, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &detail, nil
}

func (s *BaseStore) ListUserSubmissions(userID string) ([]SubmissionDetail, error) {
	var details []SubmissionDetail
	query := s.Converter(`
		SELECT
			s.id,
			s.user_id,
			s.contest_id,
			c.title AS contest_title,
			c.banner_url,
			c.end_date AS contest_end_date,
			s.description,
			s.team_members,
			s.source_code_link,
			s.deployment_link,
			s.submission_status,
			s.created_at,
			s.updated_at
		FROM submissions s
		JOIN contests c ON c.id = s.contest_id
		WHERE s.user_id = ?
		AND s.submission_status != 'D'
		ORDER BY s.created_at DESC
	`)
	err := s.DB.Select(&details, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user submissions: %w", err)
	}
	return details, nil
}

// ListContestSubmissions returns a contest's live submissions, restricted
// to contests that still have at least one active participant.
func (s *BaseStore) ListContestSubmissions(contestID string) ([]models.Submission, error) {
	var submissions []models.Submission
	query := s.Converter(`
		SELECT
			id, user_id, contest_id, description, team_members,
			source_code_link, deployment_link, submission_status,
			created_at, updated_at
		FROM submissions s
		WHERE s.contest_id = ?
		AND s.submission_status != 'D'
		AND EXISTS (
			SELECT 1 FROM participants p
			WHERE p.contest_id = s.contest_id
			AND p.participation_status = 'A'
		)
	`)
	err := s.DB.Select(&submissions, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contest submissions: %w", err)
	}
	return submissions, nil
}

func (s *BaseStore) ListAwardTypes() ([]models.AwardType, error) {
	var types []models.AwardType
	err := s.DB.Select(&types, `
		SELECT id, name FROM award_types ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list award types: %w", err)
	}
	return types, nil
}

func (s *BaseStore) GetAwardTypeByName(name string) (*models.AwardType, error) {
	var awardType models.AwardType
	query := s.Converter(`
		SELECT id, name FROM award_types WHERE name = ?
	`)
	err := s.DB.Get(&awardType, query, name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get award type: %w", err)
	}
	return &awardType, nil
}

func (s *BaseStore) CreateContestAward(award *models.ContestAward) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO contest_awards (id, contest_id, award_type_id, position, award_value)
		VALUES (:id, :contest_id, :award_type_id, :position, :award_value)
	`, award)
	if err != nil {
		return fmt.Errorf("failed to create contest award: %w", err)
	}
	return nil
}

func (s *BaseStore) ListContestAwards(contestID string) ([]models.ContestAward, error) {
	var awards []models.ContestAward
	query := s.Converter(`
		SELECT id, contest_id, award_type_id, position, award_value
		FROM contest_awards
		WHERE contest_id = ?
		ORDER BY position, id
	`)
	err := s.DB.Select(&awards, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contest awards: %w", err)
	}
	return awards, nil
}

func (s *BaseStore) ListContestPrizes(contestID string) ([]PrizeRow, error) {
	var rows []PrizeRow
	query := s.Converter(`
		SELECT
			ca.position,
			at.name AS award_type_name,
			ca.award_value
		FROM contest_awards ca
		JOIN award_types at ON at.id = ca.award_type_id
		WHERE ca.contest_id = ?
		ORDER BY ca.position, at.name
	`)
	err := s.DB.Select(&rows, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contest prizes: %w", err)
	}
	return rows, nil
}

func (s *BaseStore) CreateWinner(winner *models.Winner) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO winners (id, user_id, contest_id, contest_award_id, created_at)
		VALUES (:id, :user_id, :contest_id, :contest_award_id, :created_at)
	`, winner)
	if err != nil {
		return fmt.Errorf("failed to create winner: %w", err)
	}
	return nil
}

func (s *BaseStore) GetSeason(id string) (*models.Season, error) {
	var season models.Season
	query := s.Converter(`
		SELECT id, name, start_date, end_date
		FROM seasons
		WHERE id = ?
	`)
	err := s.DB.Get(&season, query, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get season: %w", err)
	}
	return &season, nil
}

func (s *BaseStore) ListSeasons() ([]models.Season, error) {
	var seasons []models.Season
	err := s.DB.Select(&seasons, `
		SELECT id, name, start_date, end_date
		FROM seasons
		ORDER BY start_date DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons: %w", err)
	}
	return seasons, nil
}

func (s *BaseStore) UpsertLeaderboardRow(row *models.LeaderboardRow) error {
	_, err := s.DB.NamedExec(`
		INSERT INTO leaderboard (user_id, contest_id, season_id, experience, submission_count, win_count)
		VALUES (:user_id, :contest_id, :season_id, :experience, :submission_count, :win_count)
		ON CONFLICT(user_id, contest_id, season_id) DO UPDATE SET
		experience = :experience,
		submission_count = :submission_count,
		win_count = :win_count
	`, row)
	if err != nil {
		return fmt.Errorf("failed to upsert leaderboard row: %w", err)
	}
	return nil
}

func (s *BaseStore) SeasonLeaderboard(seasonID string) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	query := s.Converter(`
		SELECT
			u.username,
			SUM(l.experience) AS experience,
			SUM(l.win_count) AS win_count,
			SUM(l.submission_count) AS submission_count
		FROM leaderboard l
		JOIN users u ON u.id = l.user_id
		WHERE l.season_id = ?
		GROUP BY u.id, u.username
		ORDER BY experience DESC, u.username ASC
	`)
	err := s.DB.Select(&entries, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch season leaderboard: %w", err)
	}
	return entries, nil
}

// SeasonSubmissionCounts counts submitted entries per (user, contest) for
// contests starting inside the season range.
func (s *BaseStore) SeasonSubmissionCounts(seasonID string) ([]SubmissionFact, error) {
	var facts []SubmissionFact
	query := s.Converter(`
		SELECT
			sub.user_id,
			sub.contest_id,
			COUNT(*) AS submission_count
		FROM submissions sub
		JOIN contests c ON c.id = sub.contest_id
		JOIN seasons sn ON sn.id = ?
		WHERE sub.submission_status = 'S'
		AND c.start_date >= sn.start_date
		AND c.start_date <= sn.end_date
		GROUP BY sub.user_id, sub.contest_id
	`)
	err := s.DB.Select(&facts, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch season submission counts: %w", err)
	}
	return facts, nil
}

// SeasonWinFacts sums win counts and Points award values per
// (user, contest) for contests starting inside the season range.
func (s *BaseStore) SeasonWinFacts(seasonID string) ([]WinFact, error) {
	var facts []WinFact
	query := s.Converter(`
		SELECT
			w.user_id,
			w.contest_id,
			COUNT(*) AS win_count,
			COALESCE(SUM(CASE WHEN at.name = 'Points' THEN ca.award_value ELSE 0 END), 0) AS points
		FROM winners w
		JOIN contest_awards ca ON ca.id = w.contest_award_id
		JOIN award_types at ON at.id = ca.award_type_id
		JOIN contests c ON c.id = w.contest_id
		JOIN seasons sn ON sn.id = ?
		WHERE c.start_date >= sn.start_date
		AND c.start_date <= sn.end_date
		GROUP BY w.user_id, w.contest_id
	`)
	err := s.DB.Select(&facts, query, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch season win facts: %w", err)
	}
	return facts, nil
}
