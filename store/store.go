// Package store persists plotting sessions in a SQL database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver (pgx)
	_ "github.com/mattn/go-sqlite3"    // SQLite driver

	"github.com/shibukawa/snapplot/session"
)

// Store reads and writes saved sessions.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

// Saved is a stored session.
type Saved struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	Rows      []session.Row
	Variables map[string]float64
}

// Summary is one line of List.
type Summary struct {
	ID          uuid.UUID
	Name        string
	CreatedAt   time.Time
	Expressions int
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS plot_sessions (
		id VARCHAR(36) PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS plot_expressions (
		session_id VARCHAR(36) NOT NULL,
		ordinal INTEGER NOT NULL,
		row_id VARCHAR(36) NOT NULL,
		expr_text TEXT NOT NULL,
		color VARCHAR(32) NOT NULL,
		PRIMARY KEY (session_id, ordinal)
	)`,
	`CREATE TABLE IF NOT EXISTS plot_variables (
		session_id VARCHAR(36) NOT NULL,
		var_name VARCHAR(64) NOT NULL,
		var_value DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (session_id, var_name)
	)`,
}

// Open connects to databaseURL (see ParseURL) and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	dialect, dsn, err := ParseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.Driver(), dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	if dialect == SQLite {
		// every ":memory:" connection is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	return New(db, dialect), nil
}

// New wraps an open connection.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Dialect returns the store's dialect.
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}

	return nil
}

// Save stores the rows and variable values of snap under name and returns
// the new session ID.
func (s *Store) Save(ctx context.Context, name string, snap session.Snapshot) (uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, ErrEmptyName
	}

	id := uuid.New()

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, s.dialect.Rebind(
			`INSERT INTO plot_sessions (id, name, created_at) VALUES (?, ?, ?)`),
			id.String(), name, time.Now().UnixMilli()); err != nil {
			return err
		}

		for i, row := range snap.Rows {
			if _, err := tx.ExecContext(ctx, s.dialect.Rebind(
				`INSERT INTO plot_expressions (session_id, ordinal, row_id, expr_text, color) VALUES (?, ?, ?, ?, ?)`),
				id.String(), i, row.ID.String(), row.Text, row.Color); err != nil {
				return err
			}
		}

		for _, varName := range snap.Env.Names() {
			value, _ := snap.Env.Get(varName)
			if _, err := tx.ExecContext(ctx, s.dialect.Rebind(
				`INSERT INTO plot_variables (session_id, var_name, var_value) VALUES (?, ?, ?)`),
				id.String(), varName, value); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save session %q: %w", name, err)
	}

	return id, nil
}

// Load reads a saved session.
func (s *Store) Load(ctx context.Context, id uuid.UUID) (*Saved, error) {
	saved := &Saved{ID: id, Variables: map[string]float64{}}

	var createdAt int64

	err := s.db.QueryRowContext(ctx, s.dialect.Rebind(
		`SELECT name, created_at FROM plot_sessions WHERE id = ?`), id.String()).Scan(&saved.Name, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	saved.CreatedAt = time.UnixMilli(createdAt)

	if saved.Rows, err = s.loadRows(ctx, id); err != nil {
		return nil, err
	}

	if err := s.loadVariables(ctx, id, saved.Variables); err != nil {
		return nil, err
	}

	return saved, nil
}

func (s *Store) loadRows(ctx context.Context, id uuid.UUID) ([]session.Row, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(
		`SELECT row_id, expr_text, color FROM plot_expressions WHERE session_id = ? ORDER BY ordinal`), id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to load expressions: %w", err)
	}
	defer rows.Close()

	var result []session.Row

	for rows.Next() {
		var (
			row   session.Row
			rowID string
		)

		if err := rows.Scan(&rowID, &row.Text, &row.Color); err != nil {
			return nil, fmt.Errorf("failed to load expressions: %w", err)
		}

		if row.ID, err = uuid.Parse(rowID); err != nil {
			return nil, fmt.Errorf("failed to load expressions: %w", err)
		}

		result = append(result, row)
	}

	return result, rows.Err()
}

func (s *Store) loadVariables(ctx context.Context, id uuid.UUID, into map[string]float64) error {
	rows, err := s.db.QueryContext(ctx, s.dialect.Rebind(
		`SELECT var_name, var_value FROM plot_variables WHERE session_id = ?`), id.String())
	if err != nil {
		return fmt.Errorf("failed to load variables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name  string
			value float64
		)

		if err := rows.Scan(&name, &value); err != nil {
			return fmt.Errorf("failed to load variables: %w", err)
		}

		into[name] = value
	}

	return rows.Err()
}

// List returns every saved session, newest first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.name, s.created_at, COUNT(e.ordinal)
		FROM plot_sessions s
		LEFT JOIN plot_expressions e ON e.session_id = s.id
		GROUP BY s.id, s.name, s.created_at
		ORDER BY s.created_at DESC, s.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var result []Summary

	for rows.Next() {
		var (
			summary   Summary
			id        string
			createdAt int64
		)

		if err := rows.Scan(&id, &summary.Name, &createdAt, &summary.Expressions); err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}

		if summary.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}

		summary.CreatedAt = time.UnixMilli(createdAt)
		result = append(result, summary)
	}

	return result, rows.Err()
}

// Delete removes a saved session.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	var affected int64

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"plot_expressions", "plot_variables"} {
			if _, err := tx.ExecContext(ctx, s.dialect.Rebind(
				"DELETE FROM "+table+" WHERE session_id = ?"), id.String()); err != nil {
				return err
			}
		}

		result, err := tx.ExecContext(ctx, s.dialect.Rebind(`DELETE FROM plot_sessions WHERE id = ?`), id.String())
		if err != nil {
			return err
		}

		affected, err = result.RowsAffected()

		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
