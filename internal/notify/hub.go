package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/abhisek/adaptutor/internal/logging"
)

// Topics lists every topic the tracker publishes to.
var Topics = []string{TopicDiagnostic, TopicModule, TopicQuiz}

const clientBuffer = 16

// Client receives the events of one student.
type Client struct {
	ID        string
	StudentID string
	events    chan Event
}

// Events is closed when the client is removed or the hub stops.
func (c *Client) Events() <-chan Event { return c.events }

// Hub consumes published decisions and fans them out to the clients
// subscribed to each student.
type Hub struct {
	logger *logging.Logger

	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	closed  bool
}

func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Hub{
		logger:  logger.With("component", "notify.Hub"),
		clients: make(map[string]map[*Client]struct{}),
	}
}

// Start subscribes to every topic on sub and forwards messages until ctx is
// done. Subscriptions are established before Start returns.
func (h *Hub) Start(ctx context.Context, sub message.Subscriber) error {
	var wg sync.WaitGroup
	for _, topic := range Topics {
		msgs, err := sub.Subscribe(ctx, topic)
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", topic, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.consume(ctx, msgs)
		}()
	}
	go func() {
		wg.Wait()
		h.shutdown()
	}()
	return nil
}

func (h *Hub) consume(ctx context.Context, msgs <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			ev, err := Decode(msg)
			msg.Ack()
			if err != nil {
				h.logger.Warn("dropping undecodable event", "error", err)
				continue
			}
			h.Broadcast(ev)
		}
	}
}

// Broadcast hands ev to every client of its student. A client whose buffer
// is full misses the event.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients[ev.StudentID] {
		select {
		case c.events <- ev:
		default:
			h.logger.Warn("dropping event; client buffer full", "client_id", c.ID, "student_id", ev.StudentID)
		}
	}
	h.logger.Debug("event delivered", "topic", ev.Topic, "student_id", ev.StudentID, "clients", len(h.clients[ev.StudentID]))
}

// Subscribe registers a client for studentID. It returns nil once the hub
// has stopped.
func (h *Hub) Subscribe(studentID string) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}

	c := &Client{ID: uuid.NewString(), StudentID: studentID, events: make(chan Event, clientBuffer)}
	set, ok := h.clients[studentID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[studentID] = set
	}
	set[c] = struct{}{}
	return c
}

// Unsubscribe removes c and closes its channel. Safe to call twice.
func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.clients[c.StudentID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.StudentID)
	}
	close(c.events)
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.clients {
		for c := range set {
			close(c.events)
		}
		delete(h.clients, id)
	}
	h.closed = true
}
