package app

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/piparkaq/hackboard/internal/models"
	"github.com/piparkaq/hackboard/internal/scoring"
	"github.com/piparkaq/hackboard/internal/store"
)

type Service struct {
	Config *Config
	Store  store.ContestStore
	Auth   *Auth
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	return &Service{
		Config: config,
		Store:  store,
		Auth:   auth,
	}, nil
}

func (s *Service) ValidateHeaders(headers map[string][]string) bool {
	for _, required := range s.Config.API.RequiredHeaders {
		value := headers[http.CanonicalHeaderKey(required.Name)]
		if len(value) == 0 || !strings.EqualFold(value[0], required.Value) {
			return false
		}
	}
	return true
}

// IdentityFromRequest resolves the request's bearer token into the user
// behind it, creating the user row lazily on first sign-in.
func (s *Service) IdentityFromRequest(r *http.Request) (*models.User, error) {
	if !s.Config.Server.EnableAuth {
		return nil, fmt.Errorf("auth is disabled")
	}

	authHeader := r.Header.Get(s.Auth.tokenHeader)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, fmt.Errorf("Invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	email, err := s.Auth.ResolveEmail(r.Context(), token)
	if err != nil {
		return nil, err
	}

	return s.EnsureUser(email, usernameFromEmail(email))
}

// EnsureUser returns the user matching the email, inserting a fresh row
// when no match exists. Username and email collisions come back as
// ConflictError with the field-level message already set.
func (s *Service) EnsureUser(email, username string) (*models.User, error) {
	existing, err := s.Store.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	user := &models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		CreatedAt: time.Now().Unix(),
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.Store.CreateUser(user); err != nil {
		// A racing first sign-in may have inserted the same email; the
		// constraint decides, we just re-read.
		if store.IsConflict(err) {
			if again, lookupErr := s.Store.GetUserByEmail(email); lookupErr == nil && again != nil {
				return again, nil
			}
		}
		return nil, err
	}

	return user, nil
}

func usernameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// laterThan returns the current unix timestamp, nudged forward when
// needed so it is strictly later than the reference. Timestamps are
// second-granular; an edit inside the creation second must still read
// as later than creation.
func laterThan(ref int64) int64 {
	now := time.Now().Unix()
	if now <= ref {
		return ref + 1
	}
	return now
}

func (s *Service) CreateContest(contest *models.Contest) error {
	now := time.Now().Unix()
	if contest.ID == "" {
		contest.ID = uuid.NewString()
	}
	if contest.Status == "" {
		contest.Status = models.ContestUnarchived
	}
	contest.CreatedAt = now
	contest.UpdatedAt = now

	if err := contest.Validate(); err != nil {
		return err
	}

	return s.Store.CreateContest(contest)
}

func (s *Service) UpdateContest(contest *models.Contest) error {
	existing, err := s.Store.GetContest(contest.ID)
	if err != nil {
		return err
	}
	contest.CreatedAt = existing.CreatedAt
	contest.UpdatedAt = laterThan(existing.CreatedAt)
	if err := contest.Validate(); err != nil {
		return err
	}
	return s.Store.UpdateContest(contest)
}

func (s *Service) ArchiveContest(id string) error {
	return s.Store.SetContestStatus(id, models.ContestArchived)
}

func (s *Service) RemoveContest(id string) error {
	return s.Store.SetContestStatus(id, models.ContestDeleted)
}

// JoinContest inserts an Active participation. A concurrent double-join
// resolves at the unique index, surfacing here as a ConflictError; a
// bogus user id comes back as NotFound instead of an FK error.
func (s *Service) JoinContest(userID, contestID string, joinedAt time.Time) (*models.Participant, error) {
	if _, err := s.Store.GetUserByID(userID); err != nil {
		return nil, err
	}

	participant := &models.Participant{
		ID:        uuid.NewString(),
		UserID:    userID,
		ContestID: contestID,
		JoinedAt:  joinedAt.Unix(),
		Status:    models.ParticipationActive,
	}

	if err := s.Store.CreateParticipant(participant); err != nil {
		return nil, err
	}
	return participant, nil
}

func (s *Service) LeaveContest(participantID string) error {
	return s.Store.RetireParticipant(participantID)
}

// CreateSubmission validates before any store write: bad URLs and empty
// team member names never reach the database.
func (s *Service) CreateSubmission(submission *models.Submission) error {
	now := time.Now().Unix()
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	if submission.Status == "" {
		submission.Status = models.SubmissionDraft
	}
	submission.CreatedAt = now
	submission.UpdatedAt = now

	if err := submission.Validate(); err != nil {
		return err
	}
	if err := submission.EncodeTeamMembers(); err != nil {
		return err
	}

	return s.Store.CreateSubmission(submission)
}

// SubmissionEdit carries the editable fields; nil means leave unchanged.
type SubmissionEdit struct {
	Description    *string
	TeamMembers    []string
	SourceCodeLink *string
	DeploymentLink *string
	Status         *models.SubmissionStatus
}

// EditSubmission applies the edit in place and stamps updated_at. The
// merged result is re-validated as a whole before the write.
func (s *Service) EditSubmission(id string, edit SubmissionEdit) (*models.Submission, error) {
	detail, err := s.Store.GetSubmission(id)
	if err != nil {
		return nil, err
	}

	submission := &models.Submission{
		ID:             detail.ID,
		UserID:         detail.UserID,
		ContestID:      detail.ContestID,
		Description:    detail.Description,
		TeamMembersRaw: detail.TeamMembersRaw,
		SourceCodeLink: detail.SourceCodeLink,
		DeploymentLink: detail.DeploymentLink,
		Status:         models.SubmissionStatus(detail.Status),
		CreatedAt:      detail.CreatedAt,
	}
	if err := submission.DecodeTeamMembers(); err != nil {
		return nil, err
	}

	if edit.Description != nil {
		submission.Description = *edit.Description
	}
	if edit.TeamMembers != nil {
		submission.TeamMembers = edit.TeamMembers
	}
	if edit.SourceCodeLink != nil {
		submission.SourceCodeLink = *edit.SourceCodeLink
	}
	if edit.DeploymentLink != nil {
		submission.DeploymentLink = *edit.DeploymentLink
	}
	if edit.Status != nil {
		submission.Status = *edit.Status
	}
	submission.UpdatedAt = laterThan(submission.CreatedAt)

	if err := submission.Validate(); err != nil {
		return nil, err
	}
	if err := submission.EncodeTeamMembers(); err != nil {
		return nil, err
	}

	if err := s.Store.UpdateSubmission(submission); err != nil {
		return nil, err
	}
	return submission, nil
}

func (s *Service) DeleteSubmission(id string) error {
	return s.Store.SoftDeleteSubmission(id)
}

// ContestPrizes returns the contest's award rows folded into ordered
// position groups.
func (s *Service) ContestPrizes(contestID string) ([]scoring.PrizeGroup, error) {
	rows, err := s.Store.ListContestPrizes(contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contest prizes: %w", err)
	}
	return scoring.GroupPrizes(rows), nil
}

func (s *Service) ContestWinners(contestID string) ([]store.WinnerRow, error) {
	return s.Store.ListContestWinners(contestID)
}

func (s *Service) SeasonLeaderboard(seasonID string) ([]store.LeaderboardEntry, error) {
	if _, err := s.Store.GetSeason(seasonID); err != nil {
		return nil, err
	}
	return s.Store.SeasonLeaderboard(seasonID)
}

func (s *Service) SeasonName(seasonID string) (string, error) {
	season, err := s.Store.GetSeason(seasonID)
	if err != nil {
		return "", err
	}
	return season.Name, nil
}

// RebuildSeasonLeaderboard recomputes the derived leaderboard rows from
// submission/winner facts. Rows are upserted, reads never recompute.
func (s *Service) RebuildSeasonLeaderboard(seasonID string) (int, error) {
	reconciler := scoring.NewReconciler(s.Store, s.Config.Scoring.SubmissionBaseXP)
	return reconciler.Run(seasonID)
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
