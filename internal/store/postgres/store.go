package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/piparkaq/hackboard/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn, migrationsDir string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			out := query
			for i := 1; strings.Contains(out, "?"); i++ {
				out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
			}
			return out
		},
		TranslateError: translateError,
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, nil)
}

// translateError maps unique_violation onto the Conflict taxonomy using
// the violated constraint's name. Anything else passes through untouched.
func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return store.ConflictFor(pqErr.Constraint)
	}
	return err
}

// ListContestWinners sums each user's "Points" and "Swag Bag" award
// values for a contest and keeps only users with both sums positive. A
// user who won a single category is excluded.
func (s *PostgresStore) ListContestWinners(contestID string) ([]store.WinnerRow, error) {
	query := `
        SELECT
            u.id AS user_id,
            u.username,
            COALESCE(SUM(ca.award_value) FILTER (WHERE at.name = 'Points'), 0) AS points,
            COALESCE(SUM(ca.award_value) FILTER (WHERE at.name = 'Swag Bag'), 0) AS swag
        FROM winners w
        JOIN users u ON u.id = w.user_id
        JOIN contest_awards ca ON ca.id = w.contest_award_id
        JOIN award_types at ON at.id = ca.award_type_id
        WHERE w.contest_id = $1
        GROUP BY u.id, u.username
        HAVING COALESCE(SUM(ca.award_value) FILTER (WHERE at.name = 'Points'), 0) > 0
        AND COALESCE(SUM(ca.award_value) FILTER (WHERE at.name = 'Swag Bag'), 0) > 0
        ORDER BY points DESC, u.username
    `

	var rows []store.WinnerRow
	err := s.DB.Select(&rows, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contest winners: %w", err)
	}

	return rows, nil
}
