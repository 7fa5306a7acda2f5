package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/adaptutor/internal/apperr"
	"github.com/abhisek/adaptutor/internal/learner"
	"github.com/abhisek/adaptutor/internal/mastery"
	"github.com/abhisek/adaptutor/internal/proficiency"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// backends returns every store implementation available in this
// environment. Redis runs only when ADAPTUTOR_TEST_REDIS_URL is set.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	out := map[string]Store{
		"memory": NewMemory(),
		"sqlite": openTestSQLite(t),
	}
	if url := os.Getenv("ADAPTUTOR_TEST_REDIS_URL"); url != "" {
		opts, err := redis.ParseURL(url)
		if err != nil {
			t.Fatalf("parse redis url: %v", err)
		}
		client := redis.NewClient(opts)
		prefix := "adaptutor-test:" + t.Name() + ":" + time.Now().Format("150405.000000") + ":"
		t.Cleanup(func() { client.Close() })
		out["redis"] = NewRedis(client, prefix)
	}
	return out
}

func testStudent(id string) *learner.Student {
	s := learner.New(id, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	s.Diagnosed = true
	s.Level = proficiency.Intermediate
	s.Module("intro_to_ai").State = mastery.StateInProgress
	return s
}

func TestGetMissing(t *testing.T) {
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Get(context.Background(), "nobody")
			if !apperr.IsNotFound(err) {
				t.Errorf("Get missing: err = %v, want NotFoundError", err)
			}
		})
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := testStudent("s1")
			if err := st.Put(ctx, s); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if s.Version != 1 {
				t.Errorf("version after first put = %d, want 1", s.Version)
			}

			got, err := st.Get(ctx, "s1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Version != 1 {
				t.Errorf("stored version = %d, want 1", got.Version)
			}
			if got.Level != proficiency.Intermediate {
				t.Errorf("level = %s, want intermediate", got.Level)
			}
			if got.Module("intro_to_ai").State != mastery.StateInProgress {
				t.Errorf("module state = %s, want in_progress", got.Module("intro_to_ai").State)
			}
		})
	}
}

func TestPutStaleVersionConflicts(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.Put(ctx, testStudent("s1")); err != nil {
				t.Fatalf("initial Put: %v", err)
			}

			a, err := st.Get(ctx, "s1")
			if err != nil {
				t.Fatalf("Get a: %v", err)
			}
			b, err := st.Get(ctx, "s1")
			if err != nil {
				t.Fatalf("Get b: %v", err)
			}

			a.Level = proficiency.Advanced
			if err := st.Put(ctx, a); err != nil {
				t.Fatalf("Put a: %v", err)
			}
			b.Level = proficiency.Beginner
			err = st.Put(ctx, b)
			if !apperr.IsConflict(err) {
				t.Fatalf("Put stale: err = %v, want ConflictError", err)
			}

			got, err := st.Get(ctx, "s1")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Level != proficiency.Advanced || got.Version != 2 {
				t.Errorf("stored = (%s, v%d), want (advanced, v2)", got.Level, got.Version)
			}
		})
	}
}

func TestPutNewStudentTwiceConflicts(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if err := st.Put(ctx, testStudent("s1")); err != nil {
				t.Fatalf("Put: %v", err)
			}
			if err := st.Put(ctx, testStudent("s1")); !apperr.IsConflict(err) {
				t.Errorf("second create: err = %v, want ConflictError", err)
			}
		})
	}
}

func TestPragmasApplied(t *testing.T) {
	db := openTestSQLite(t).DB()

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSQLiteTransitionLog(t *testing.T) {
	ctx := context.Background()
	st := openTestSQLite(t)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	s := testStudent("s1")
	s.Record(learner.Transition{Kind: learner.TransitionModule, Subject: "intro_to_ai", From: "not_started", To: "diagnosed", Trigger: "diagnostic", At: base})
	if err := st.Put(ctx, s); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n := len(s.Pending()); n != 0 {
		t.Errorf("pending after put = %d, want 0", n)
	}

	s.Record(learner.Transition{Kind: learner.TransitionModule, Subject: "intro_to_ai", From: "diagnosed", To: "in_progress", Trigger: "content-request", At: base.Add(time.Minute)})
	s.Record(learner.Transition{Kind: learner.TransitionLevel, Subject: "s1", From: "intermediate", To: "advanced", Trigger: "quiz-pass", At: base.Add(2 * time.Minute)})
	if err := st.Put(ctx, s); err != nil {
		t.Fatalf("Put: %v", err)
	}

	all, err := st.Transitions(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("Transitions: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	if all[0].To != "diagnosed" || all[2].To != "advanced" {
		t.Errorf("order = %s..%s, want diagnosed..advanced", all[0].To, all[2].To)
	}
	if !all[1].At.Equal(base.Add(time.Minute)) {
		t.Errorf("at = %v, want %v", all[1].At, base.Add(time.Minute))
	}

	last, err := st.Transitions(ctx, "s1", 2)
	if err != nil {
		t.Fatalf("Transitions limit: %v", err)
	}
	if len(last) != 2 || last[0].To != "in_progress" {
		t.Errorf("limited = %+v, want the two newest oldest-first", last)
	}
}

func TestSQLiteConflictDropsTransitions(t *testing.T) {
	ctx := context.Background()
	st := openTestSQLite(t)
	if err := st.Put(ctx, testStudent("s1")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	stale := testStudent("s1")
	stale.Record(learner.Transition{Kind: learner.TransitionLevel, Subject: "s1", To: "advanced", At: time.Now()})
	if err := st.Put(ctx, stale); !apperr.IsConflict(err) {
		t.Fatalf("err = %v, want ConflictError", err)
	}

	got, err := st.Transitions(ctx, "s1", 0)
	if err != nil {
		t.Fatalf("Transitions: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("transitions after failed put = %d, want 0", len(got))
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), "etcd", "")
	if !apperr.IsValidation(err) {
		t.Errorf("err = %v, want ValidationError", err)
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "nested", "x.db")
	t.Setenv("ADAPTUTOR_DB", want)

	got, err := DefaultDBPath()
	if err != nil {
		t.Fatalf("DefaultDBPath: %v", err)
	}
	if got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
	if _, err := os.Stat(filepath.Dir(want)); err != nil {
		t.Errorf("parent dir not created: %v", err)
	}
}
