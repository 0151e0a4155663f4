package board

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"carol/internal/logging"
	"carol/internal/storage"
)

// TimestampLayout is the human-readable creation timestamp format used for
// greetings and replies.
const TimestampLayout = "Jan 2, 2006 3:04:05 PM"

// Board holds the greeting collection in memory and persists it whole after
// every mutation.
type Board struct {
	store  *storage.Store
	logger *slog.Logger

	mu        sync.Mutex
	greetings []Greeting

	now   func() time.Time
	newID func() string
}

// Open loads the persisted collection. Absent, unreadable, or malformed
// data degrades to an empty collection and is never returned as an error.
func Open(ctx context.Context, store *storage.Store, logger *slog.Logger) *Board {
	b := &Board{
		store:  store,
		logger: logging.NewComponentLogger(logger, "board"),
		now:    time.Now,
		newID:  uuid.NewString,
	}

	raw, ok, err := store.Get(ctx, storage.KeyGreetings)
	if err != nil {
		b.logger.Warn("greeting collection unreadable, starting empty", logging.Error(err))
		return b
	}
	if !ok {
		return b
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		b.logger.Warn("greeting collection malformed, starting empty", logging.Error(err))
		return b
	}
	b.greetings = env.Greetings
	return b
}

// Append validates and stores a new greeting: a fresh id and creation
// timestamp are assigned, the greeting is prepended (newest first), and the
// whole collection is flushed. On a flush failure the stored greeting is
// returned together with the *storage.WriteError: the in-memory collection
// already holds it, durable storage may not.
func (b *Board) Append(ctx context.Context, draft Draft) (Greeting, error) {
	if strings.TrimSpace(draft.Body) == "" {
		return Greeting{}, ErrEmptyBody
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	greeting := Greeting{
		ID:                  b.newID(),
		AuthorDisplay:       draft.AuthorDisplay,
		AuthorEmail:         draft.AuthorEmail,
		Body:                draft.Body,
		CreatedAt:           b.now().Format(TimestampLayout),
		Photo:               draft.Photo,
		ExternalAudioRef:    draft.ExternalAudioRef,
		ExternalAudioActive: draft.ExternalAudioActive,
		RecordedAudio:       draft.RecordedAudio,
		VideoID:             draft.VideoID,
		Replies:             []Reply{},
	}

	b.greetings = append([]Greeting{greeting}, b.greetings...)
	if err := b.flushLocked(ctx); err != nil {
		b.logger.Warn("greeting stored in memory but not persisted",
			logging.String("greeting_id", greeting.ID),
			logging.Error(err))
		return greeting, err
	}

	b.logger.Info("greeting appended",
		logging.String("greeting_id", greeting.ID),
		logging.String("author", greeting.AuthorDisplay),
		logging.Int("collection_size", len(b.greetings)))
	return greeting, nil
}

// AddReply appends a reply to the greeting with the given id, preserving
// insertion order, and flushes. A missing id yields ErrNotFound with no
// mutation.
func (b *Board) AddReply(ctx context.Context, greetingID string, draft ReplyDraft) (Reply, error) {
	if strings.TrimSpace(draft.Body) == "" {
		return Reply{}, ErrEmptyBody
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOfLocked(greetingID)
	if idx < 0 {
		return Reply{}, fmt.Errorf("reply target %q: %w", greetingID, ErrNotFound)
	}

	reply := Reply{
		Author:    draft.Author,
		Body:      draft.Body,
		CreatedAt: b.now().Format(TimestampLayout),
	}
	b.greetings[idx].Replies = append(b.greetings[idx].Replies, reply)

	if err := b.flushLocked(ctx); err != nil {
		b.logger.Warn("reply stored in memory but not persisted",
			logging.String("greeting_id", greetingID),
			logging.Error(err))
		return reply, err
	}
	return reply, nil
}

// FindByID returns the greeting with the given id, if present.
func (b *Board) FindByID(id string) (Greeting, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	idx := b.indexOfLocked(id)
	if idx < 0 {
		return Greeting{}, false
	}
	return copyGreeting(b.greetings[idx]), true
}

// List returns a snapshot of the collection, newest first.
func (b *Board) List() []Greeting {
	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot := make([]Greeting, len(b.greetings))
	for i, g := range b.greetings {
		snapshot[i] = copyGreeting(g)
	}
	return snapshot
}

// Len returns the number of greetings in the collection.
func (b *Board) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.greetings)
}

func (b *Board) indexOfLocked(id string) int {
	for i := range b.greetings {
		if b.greetings[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Board) flushLocked(ctx context.Context) error {
	env := envelope{Version: envelopeVersion, Greetings: b.greetings}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal greeting collection: %w", err)
	}
	return b.store.Put(ctx, storage.KeyGreetings, raw)
}

func copyGreeting(g Greeting) Greeting {
	cp := g
	cp.Replies = make([]Reply, len(g.Replies))
	copy(cp.Replies, g.Replies)
	return cp
}
