// Package store persists Student aggregates behind a get/put boundary with
// compare-and-set on the aggregate version.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhisek/adaptutor/internal/apperr"
	"github.com/abhisek/adaptutor/internal/learner"
)

// ErrVersionMismatch is wrapped by the ConflictError returned from Put when
// the stored version moved since the student was read.
var ErrVersionMismatch = errors.New("student version mismatch")

// Store is the persistence boundary used by the progress tracker.
type Store interface {
	// Get returns the student, or a NotFoundError.
	Get(ctx context.Context, id string) (*learner.Student, error)

	// Put writes s if the stored version still equals s.Version (zero for a
	// new student) and increments s.Version on success. A lost race
	// returns a ConflictError and leaves the stored value untouched.
	Put(ctx context.Context, s *learner.Student) error

	Close() error
}

func notFound(id string) error {
	return apperr.NotFound("student", id)
}

func conflict(id string) error {
	return &apperr.ConflictError{StudentID: id, Err: ErrVersionMismatch}
}

// Open returns the store backend named by kind: "memory", "sqlite" (dsn is
// a file path or SQLite DSN) or "redis" (dsn is a redis:// URL).
func Open(ctx context.Context, kind, dsn string) (Store, error) {
	switch kind {
	case "", "sqlite":
		return OpenSQLite(dsn)
	case "memory":
		return NewMemory(), nil
	case "redis":
		return OpenRedis(ctx, dsn)
	}
	return nil, apperr.InvalidValue("store", kind, "unknown store backend (want memory, sqlite or redis)")
}

// DefaultDBPath resolves the database file path in priority order:
// 1. ADAPTUTOR_DB environment variable
// 2. $XDG_DATA_HOME/adaptutor/adaptutor.db
// 3. ~/.local/share/adaptutor/adaptutor.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("ADAPTUTOR_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "adaptutor", "adaptutor.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
