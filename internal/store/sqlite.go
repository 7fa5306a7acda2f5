package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/adaptutor/internal/learner"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const (
	studentsTable    = "students"
	transitionsTable = "transitions"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id         TEXT PRIMARY KEY,
		version    INTEGER NOT NULL,
		level      TEXT NOT NULL,
		data       BLOB NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS transitions (
		seq          INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id   TEXT NOT NULL REFERENCES students(id),
		kind         TEXT NOT NULL,
		subject      TEXT NOT NULL,
		from_value   TEXT NOT NULL,
		to_value     TEXT NOT NULL,
		trigger_name TEXT NOT NULL,
		at           TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS transitions_student_seq ON transitions(student_id, seq)`,
}

// SQLite stores students as JSON documents with a version column used for
// compare-and-set. Every transition is also appended to an unbounded log
// table in the same transaction.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite connects to the SQLite database at dsn, applies pragmas and
// creates the tables.
func OpenSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer at a time; the version check and write share a connection.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

// DB returns the underlying *sql.DB for raw queries.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (s *SQLite) Get(ctx context.Context, id string) (*learner.Student, error) {
	query, args := builder().
		Select("data", "version").
		From(entsql.Table(studentsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	var (
		data    []byte
		version int64
	)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get student %s: %w", id, err)
	}

	st, err := learner.Decode(data)
	if err != nil {
		return nil, err
	}
	st.Version = version
	return st, nil
}

func (s *SQLite) Put(ctx context.Context, st *learner.Student) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, exists, err := currentVersion(ctx, tx, st.ID)
	if err != nil {
		return err
	}
	if current != st.Version {
		return conflict(st.ID)
	}

	next := *st
	next.Version = st.Version + 1
	data, err := next.Encode()
	if err != nil {
		return err
	}

	var query string
	var args []any
	if !exists {
		query, args = builder().
			Insert(studentsTable).
			Columns("id", "version", "level", "data", "created_at", "updated_at").
			Values(st.ID, next.Version, st.Level.String(), data, formatTime(st.CreatedAt), formatTime(st.UpdatedAt)).
			Query()
	} else {
		query, args = builder().
			Update(studentsTable).
			Set("version", next.Version).
			Set("level", st.Level.String()).
			Set("data", data).
			Set("updated_at", formatTime(st.UpdatedAt)).
			Where(entsql.And(entsql.EQ("id", st.ID), entsql.EQ("version", st.Version))).
			Query()
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("write student %s: %w", st.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n != 1 {
		return conflict(st.ID)
	}

	for _, t := range st.Pending() {
		query, args := builder().
			Insert(transitionsTable).
			Columns("student_id", "kind", "subject", "from_value", "to_value", "trigger_name", "at").
			Values(st.ID, string(t.Kind), t.Subject, t.From, t.To, t.Trigger, formatTime(t.At)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("append transition: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	st.Version = next.Version
	st.TakePending()
	return nil
}

func currentVersion(ctx context.Context, tx *sql.Tx, id string) (int64, bool, error) {
	query, args := builder().
		Select("version").
		From(entsql.Table(studentsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	var v int64
	err := tx.QueryRowContext(ctx, query, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read version for %s: %w", id, err)
	}
	return v, true, nil
}

// Transitions returns up to limit of the student's most recent
// transitions from the full log, oldest first. limit <= 0 means all.
func (s *SQLite) Transitions(ctx context.Context, studentID string, limit int) ([]learner.Transition, error) {
	sel := builder().
		Select("kind", "subject", "from_value", "to_value", "trigger_name", "at").
		From(entsql.Table(transitionsTable)).
		Where(entsql.EQ("student_id", studentID)).
		OrderBy(entsql.Desc("seq"))
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var out []learner.Transition
	for rows.Next() {
		var (
			t    learner.Transition
			kind string
			at   string
		)
		if err := rows.Scan(&kind, &t.Subject, &t.From, &t.To, &t.Trigger, &at); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		t.Kind = learner.TransitionKind(kind)
		if t.At, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("parse transition time: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// applyPragmas configures SQLite for optimal single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
