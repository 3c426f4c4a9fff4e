package sqlite

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"

	"github.com/piparkaq/hackboard/internal/store"
)

type SQLiteStore struct {
	store.BaseStore
}

func NewSQLiteStore(dsn, migrationsDir string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return query
		},
		TranslateError: translateError,
	}}

	if err := s.BaseStore.ApplyMigrations(migrationsDir, translateToSQLite); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, translateToSQLite)
}

// translateToSQLite converts Postgres SQL to SQLite dialect. Longer
// patterns come first so the serial forms rewrite before plain BIGINT.
func translateToSQLite(sql string) string {
	replacements := []struct{ from, to string }{
		{"BIGSERIAL PRIMARY KEY", "INTEGER PRIMARY KEY AUTOINCREMENT"},
		{"SERIAL PRIMARY KEY", "INTEGER PRIMARY KEY AUTOINCREMENT"},
		{"BIGINT", "INTEGER"},
		{"UUID", "TEXT"},
		{"CHAR(1)", "TEXT"},
		{"TRUE", "1"},
		{"FALSE", "0"},
		{"now()", "CURRENT_TIMESTAMP"},
	}
	result := sql
	for _, r := range replacements {
		result = strings.ReplaceAll(result, r.from, r.to)
	}
	return result
}

// translateError maps unique-constraint violations onto the Conflict
// taxonomy. SQLite only exposes the violated columns in the message
// ("UNIQUE constraint failed: users.username"), so that suffix stands in
// for the constraint name.
func translateError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		msg := sqliteErr.Error()
		if _, detail, found := strings.Cut(msg, "UNIQUE constraint failed: "); found {
			return store.ConflictFor(detail)
		}
		return store.ConflictFor(msg)
	}
	return err
}

// ListContestWinners mirrors the Postgres aggregation with CASE WHEN in
// place of FILTER, which SQLite lacks.
func (s *SQLiteStore) ListContestWinners(contestID string) ([]store.WinnerRow, error) {
	query := `
		SELECT
			u.id AS user_id,
			u.username,
			COALESCE(SUM(CASE WHEN at.name = 'Points' THEN ca.award_value ELSE 0 END), 0) AS points,
			COALESCE(SUM(CASE WHEN at.name = 'Swag Bag' THEN ca.award_value ELSE 0 END), 0) AS swag
		FROM winners w
		JOIN users u ON u.id = w.user_id
		JOIN contest_awards ca ON ca.id = w.contest_award_id
		JOIN award_types at ON at.id = ca.award_type_id
		WHERE w.contest_id = ?
		GROUP BY u.id, u.username
		HAVING COALESCE(SUM(CASE WHEN at.name = 'Points' THEN ca.award_value ELSE 0 END), 0) > 0
		AND COALESCE(SUM(CASE WHEN at.name = 'Swag Bag' THEN ca.award_value ELSE 0 END), 0) > 0
		ORDER BY points DESC, u.username
	`

	var rows []store.WinnerRow
	err := s.DB.Select(&rows, query, contestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contest winners: %w", err)
	}

	return rows, nil
}
