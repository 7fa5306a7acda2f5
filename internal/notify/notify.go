// Package notify publishes committed tracker decisions to a message bus.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/abhisek/adaptutor/internal/logging"
)

// Topics, one per inbound event kind.
const (
	TopicDiagnostic = "adaptutor.diagnostic"
	TopicModule     = "adaptutor.module"
	TopicQuiz       = "adaptutor.quiz"
)

const eventVersion = "1"

// Event is a committed decision for one student.
type Event struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	StudentID string    `json:"student_id"`
	ModuleID  string    `json:"module_id,omitempty"`
	At        time.Time `json:"at"`
	Decision  any       `json:"decision"`
}

// Notifier delivers events after the tracker commits them.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
	Close() error
}

// Publisher sends events through a watermill publisher.
type Publisher struct {
	publisher message.Publisher
	logger    *logging.Logger
}

// NewPublisher wraps any watermill publisher.
func NewPublisher(p message.Publisher, logger *logging.Logger) *Publisher {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Publisher{publisher: p, logger: logger}
}

// NewGoChannel returns an in-process publisher together with the pub/sub
// it publishes to, so callers can subscribe to decisions.
func NewGoChannel(logger *logging.Logger) (*Publisher, *gochannel.GoChannel) {
	if logger == nil {
		logger = logging.Nop()
	}
	ps := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, NewWatermillLogger(logger))
	return NewPublisher(ps, logger), ps
}

func (p *Publisher) Notify(ctx context.Context, ev Event) error {
	if ev.ID == "" {
		ev.ID = watermill.NewUUID()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(ev.ID, b)
	msg.SetContext(ctx)
	msg.Metadata.Set("student_id", ev.StudentID)
	msg.Metadata.Set("version", eventVersion)
	msg.Metadata.Set("timestamp", ev.At.Format(time.RFC3339))
	if ev.ModuleID != "" {
		msg.Metadata.Set("module_id", ev.ModuleID)
	}

	if err := p.publisher.Publish(ev.Topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", ev.Topic, err)
	}
	p.logger.Debug("published decision", "topic", ev.Topic, "event_id", ev.ID, "student_id", ev.StudentID)
	return nil
}

func (p *Publisher) Close() error {
	return p.publisher.Close()
}

// Decode reads an Event back from a delivered message. Decision is left as
// the generic JSON value.
func Decode(msg *message.Message) (Event, error) {
	var ev Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return Event{}, fmt.Errorf("decode event %s: %w", msg.UUID, err)
	}
	return ev, nil
}

// Discard drops every event.
type Discard struct{}

func (Discard) Notify(context.Context, Event) error { return nil }
func (Discard) Close() error                        { return nil }
