// Package progress is the single writer of Student aggregates. Each inbound
// event is one locked read-modify-write through the store followed by a
// structured decision for the conversational layer.
package progress

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/abhisek/adaptutor/internal/apperr"
	"github.com/abhisek/adaptutor/internal/config"
	"github.com/abhisek/adaptutor/internal/content"
	"github.com/abhisek/adaptutor/internal/diagnostic"
	"github.com/abhisek/adaptutor/internal/learner"
	"github.com/abhisek/adaptutor/internal/logging"
	"github.com/abhisek/adaptutor/internal/notify"
	"github.com/abhisek/adaptutor/internal/quiz"
	"github.com/abhisek/adaptutor/internal/store"
)

const tracerName = "github.com/abhisek/adaptutor/internal/progress"

// errNoWrite ends an update without writing; the mutation found nothing
// to change.
var errNoWrite = errors.New("no write")

// Tracker orchestrates the diagnostic engine, content adapter and quiz
// grader over the stored Student aggregate.
type Tracker struct {
	store    store.Store
	catalog  *content.Catalog
	cfg      config.Config
	engine   *diagnostic.Engine
	grader   *quiz.Grader
	adapter  *content.Adapter
	locks    *keyedMutex
	notifier notify.Notifier
	logger   *logging.Logger
	tracer   trace.Tracer
	now      func() time.Time
	newID    func() string
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithNotifier publishes committed decisions through n.
func WithNotifier(n notify.Notifier) Option {
	return func(t *Tracker) { t.notifier = n }
}

func WithLogger(l *logging.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithClock replaces time.Now, for cooldown tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func WithTracer(tr trace.Tracer) Option {
	return func(t *Tracker) { t.tracer = tr }
}

// WithIDGenerator replaces the uuid attempt id generator.
func WithIDGenerator(f func() string) Option {
	return func(t *Tracker) { t.newID = f }
}

// New creates a Tracker. The configuration is validated once here.
func New(st store.Store, cat *content.Catalog, cfg config.Config, opts ...Option) (*Tracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t := &Tracker{
		store:    st,
		catalog:  cat,
		cfg:      cfg,
		engine:   diagnostic.NewEngine(cfg.Diagnostic, cfg.Bands),
		grader:   quiz.NewGrader(cfg.Quiz),
		adapter:  content.NewAdapter(cfg.Pacing),
		locks:    newKeyedMutex(),
		notifier: notify.Discard{},
		logger:   logging.Nop(),
		tracer:   otel.Tracer(tracerName),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, o := range opts {
		o(t)
	}
	return t, nil
}

// Catalog returns the module catalog the tracker serves.
func (t *Tracker) Catalog() *content.Catalog {
	return t.catalog
}

// Config returns the active configuration.
func (t *Tracker) Config() config.Config {
	return t.cfg
}

// update runs one read-modify-write for studentID under the student's
// lock. fn may run twice: a ConflictError from Put triggers one retry on a
// fresh read. When create is set, a missing student starts from
// learner.New; otherwise NotFound is returned. fn returning errNoWrite
// skips the write and reports success.
func (t *Tracker) update(ctx context.Context, studentID string, create bool, fn func(s *learner.Student, now time.Time) error) error {
	unlock := t.locks.Lock(studentID)
	defer unlock()

	for attempt := 0; ; attempt++ {
		now := t.now()
		s, err := t.store.Get(ctx, studentID)
		switch {
		case err == nil:
		case create && apperr.IsNotFound(err):
			s = learner.New(studentID, now)
		default:
			return err
		}

		if err := fn(s, now); err != nil {
			if errors.Is(err, errNoWrite) {
				return nil
			}
			return err
		}
		s.UpdatedAt = now

		err = t.store.Put(ctx, s)
		if err == nil {
			return nil
		}
		if apperr.IsConflict(err) && attempt == 0 {
			t.logger.Warn("store conflict, retrying", "student_id", studentID)
			continue
		}
		return err
	}
}

func (t *Tracker) startSpan(ctx context.Context, name, studentID string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("student.id", studentID))
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// publish sends a committed decision. Failures are logged and never undo
// the commit.
func (t *Tracker) publish(ctx context.Context, topic, studentID, moduleID string, at time.Time, decision any) {
	err := t.notifier.Notify(ctx, notify.Event{
		Topic:     topic,
		StudentID: studentID,
		ModuleID:  moduleID,
		At:        at,
		Decision:  decision,
	})
	if err != nil {
		t.logger.Warn("publish decision failed", "topic", topic, "student_id", studentID, "error", err)
	}
}

func validateStudentID(id string) error {
	if id == "" {
		return apperr.Invalid("student_id", "student id is required")
	}
	return nil
}
