package board_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"carol/internal/board"
	"carol/internal/logging"
	"carol/internal/media"
	"carol/internal/storage"
	"carol/internal/testsupport"
)

func TestAppendOrdersNewestFirst(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	b := board.Open(context.Background(), store, logging.NewNop())

	ctx := context.Background()
	var lastID string
	for i := 0; i < 5; i++ {
		g, err := b.Append(ctx, board.Draft{
			AuthorDisplay: "Ismi",
			Body:          fmt.Sprintf("greeting %d", i),
		})
		if err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		if g.ID == "" || g.CreatedAt == "" {
			t.Fatalf("expected assigned id and timestamp, got %+v", g)
		}
		lastID = g.ID
	}

	list := b.List()
	if len(list) != 5 {
		t.Fatalf("expected 5 greetings, got %d", len(list))
	}
	if list[0].ID != lastID {
		t.Fatalf("expected newest greeting first: got %q want %q", list[0].ID, lastID)
	}
	if list[0].Body != "greeting 4" || list[4].Body != "greeting 0" {
		t.Fatalf("unexpected ordering: first=%q last=%q", list[0].Body, list[4].Body)
	}
}

func TestAppendRejectsEmptyBody(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	b := board.Open(context.Background(), store, logging.NewNop())

	for _, body := range []string{"", "   ", "\n\t"} {
		if _, err := b.Append(context.Background(), board.Draft{Body: body}); !errors.Is(err, board.ErrEmptyBody) {
			t.Fatalf("expected ErrEmptyBody for %q, got %v", body, err)
		}
	}
	if b.Len() != 0 {
		t.Fatalf("expected no greetings stored, got %d", b.Len())
	}
}

func TestAddReplyAppendsInOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	b := board.Open(context.Background(), store, logging.NewNop())

	ctx := context.Background()
	g, err := b.Append(ctx, board.Draft{AuthorDisplay: "Ayu", Body: "selamat natal"})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := b.AddReply(ctx, g.ID, board.ReplyDraft{Author: "Budi", Body: fmt.Sprintf("reply %d", i)}); err != nil {
			t.Fatalf("AddReply failed: %v", err)
		}
	}

	stored, ok := b.FindByID(g.ID)
	if !ok {
		t.Fatal("greeting vanished")
	}
	if len(stored.Replies) != 3 {
		t.Fatalf("expected 3 replies, got %d", len(stored.Replies))
	}
	for i, r := range stored.Replies {
		if r.Body != fmt.Sprintf("reply %d", i) {
			t.Fatalf("reply order broken at %d: %q", i, r.Body)
		}
	}
}

func TestAddReplyMissingGreeting(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	b := board.Open(context.Background(), store, logging.NewNop())

	ctx := context.Background()
	g, err := b.Append(ctx, board.Draft{Body: "hello"})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if _, err := b.AddReply(ctx, "no-such-id", board.ReplyDraft{Author: "X", Body: "hi"}); !errors.Is(err, board.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	stored, _ := b.FindByID(g.ID)
	if len(stored.Replies) != 0 {
		t.Fatalf("reply counts changed: %d", len(stored.Replies))
	}
}

func TestRepliesSurviveReload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	store, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	b := board.Open(ctx, store, logging.NewNop())
	g, err := b.Append(ctx, board.Draft{AuthorDisplay: "Sari", Body: "tahun baru"})
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := b.AddReply(ctx, g.ID, board.ReplyDraft{Author: "Dewi", Body: "sama-sama"}); err != nil {
		t.Fatalf("AddReply failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	reloaded := board.Open(ctx, reopened, logging.NewNop())

	stored, ok := reloaded.FindByID(g.ID)
	if !ok {
		t.Fatal("greeting missing after reload")
	}
	if len(stored.Replies) != 1 || stored.Replies[0].Body != "sama-sama" {
		t.Fatalf("reply missing after reload: %+v", stored.Replies)
	}
}

func TestMalformedCollectionDegradesToEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.Put(ctx, storage.KeyGreetings, []byte("{not json")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	b := board.Open(ctx, store, logging.NewNop())
	if b.Len() != 0 {
		t.Fatalf("expected empty collection, got %d", b.Len())
	}

	// The board stays usable after corruption.
	if _, err := b.Append(ctx, board.Draft{Body: "fresh start"}); err != nil {
		t.Fatalf("Append after corruption failed: %v", err)
	}
}

func TestFlushFailureKeepsInMemoryState(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	store, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	b := board.Open(ctx, store, logging.NewNop())

	// Closing the store makes every flush fail without touching memory.
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	g, err := b.Append(ctx, board.Draft{Body: "unlucky"})
	if err == nil {
		t.Fatal("expected flush error")
	}
	var writeErr *storage.WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected *storage.WriteError, got %T: %v", err, err)
	}
	if !errors.Is(err, storage.ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable classification, got %v", err)
	}
	if g.ID == "" {
		t.Fatal("expected greeting to be returned despite flush failure")
	}
	if b.Len() != 1 {
		t.Fatalf("expected in-memory collection to keep the greeting, got %d", b.Len())
	}
}

func TestDisplayAudioPrecedence(t *testing.T) {
	recorded := media.Encode("audio/wav", []byte("xxx"))

	g := board.Greeting{
		RecordedAudio:       recorded,
		ExternalAudioRef:    "https://example.com/song.mp3",
		ExternalAudioActive: true,
	}
	src, ok := g.DisplayAudio()
	if !ok || src != recorded.String() {
		t.Fatalf("expected recorded audio to win, got (%q, %v)", src, ok)
	}

	g.RecordedAudio = ""
	src, ok = g.DisplayAudio()
	if !ok || src != "https://example.com/song.mp3" {
		t.Fatalf("expected external audio, got (%q, %v)", src, ok)
	}

	g.ExternalAudioActive = false
	if _, ok := g.DisplayAudio(); ok {
		t.Fatal("inactive external audio must not display")
	}
}
