package identity_test

import (
	"context"
	"errors"
	"testing"

	"carol/internal/identity"
	"carol/internal/logging"
	"carol/internal/storage"
	"carol/internal/testsupport"
)

func TestRegisterNormalizesEmail(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	r := identity.Open(context.Background(), store, logging.NewNop())

	ctx := context.Background()
	account, err := r.Register(ctx, "  A@Example.COM ", "secret", "Ayu")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if account.Email != "a@example.com" {
		t.Fatalf("expected normalized email, got %q", account.Email)
	}

	if _, err := r.Register(ctx, "a@example.com ", "other", "Other"); !errors.Is(err, identity.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestLoginCredentials(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	r := identity.Open(context.Background(), store, logging.NewNop())

	ctx := context.Background()
	if _, err := r.Register(ctx, "budi@example.com", "rahasia", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if _, err := r.Login(ctx, "budi@example.com", "salah"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := r.Login(ctx, "nobody@example.com", "rahasia"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}

	account, err := r.Login(ctx, " BUDI@example.com", "rahasia")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if account.Email != "budi@example.com" {
		t.Fatalf("unexpected account: %+v", account)
	}
	if _, ok := r.Current(); !ok {
		t.Fatal("expected active session after login")
	}
}

func TestLogoutKeepsAccount(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	r := identity.Open(context.Background(), store, logging.NewNop())

	ctx := context.Background()
	if _, err := r.Register(ctx, "sari@example.com", "pw", "Sari"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, ok := r.Current(); ok {
		t.Fatal("expected no session after logout")
	}
	if err := r.Logout(ctx); err != nil {
		t.Fatalf("repeated Logout failed: %v", err)
	}

	if _, err := r.Login(ctx, "sari@example.com", "pw"); err != nil {
		t.Fatalf("Login after logout failed: %v", err)
	}
}

func TestSessionSurvivesReload(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	store, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	r := identity.Open(ctx, store, logging.NewNop())
	if _, err := r.Register(ctx, "dewi@example.com", "pw", "Dewi"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	reloaded := identity.Open(ctx, reopened, logging.NewNop())

	account, ok := reloaded.Current()
	if !ok {
		t.Fatal("expected session to survive reload")
	}
	if account.DisplayName != "Dewi" {
		t.Fatalf("unexpected account after reload: %+v", account)
	}
}

func TestMalformedRegistryDegradesToEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if err := store.Put(ctx, storage.KeyAccounts, []byte("][")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := store.Put(ctx, storage.KeySession, []byte("][")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	r := identity.Open(ctx, store, logging.NewNop())
	if _, ok := r.Current(); ok {
		t.Fatal("expected no session from malformed data")
	}
	if _, err := r.Register(ctx, "fresh@example.com", "pw", ""); err != nil {
		t.Fatalf("Register after corruption failed: %v", err)
	}
}

func TestRegisterFlushFailureRollsBackFully(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()
	store, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	r := identity.Open(ctx, store, logging.NewNop())
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	_, err = r.Register(ctx, "gagal@example.com", "pw", "Gagal")
	var writeErr *storage.WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected WriteError, got %v", err)
	}
	if _, ok := r.Current(); ok {
		t.Fatal("failed register must not leave a session")
	}
	// The account was rolled back too: the email is unknown, not unflushed.
	if _, err := r.Login(ctx, "gagal@example.com", "pw"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for rolled-back account, got %v", err)
	}
}

func TestLoginFlushFailureKeepsPreviousSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()
	store, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	r := identity.Open(ctx, store, logging.NewNop())
	if _, err := r.Register(ctx, "intan@example.com", "pw", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	if _, err := r.Login(ctx, "intan@example.com", "pw"); err == nil {
		t.Fatal("expected login to fail when the session cannot be flushed")
	}
	if _, ok := r.Current(); ok {
		t.Fatal("failed login must not activate a session")
	}
}

func TestLogoutFlushFailureKeepsSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()
	store, err := storage.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	r := identity.Open(ctx, store, logging.NewNop())
	if _, err := r.Register(ctx, "tetap@example.com", "pw", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	if err := r.Logout(ctx); err == nil {
		t.Fatal("expected logout to fail when the session cannot be flushed")
	}
	if _, ok := r.Current(); !ok {
		t.Fatal("failed logout must leave the session active")
	}
}

func TestResolveAuthorName(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	r := identity.Open(context.Background(), store, logging.NewNop())
	ctx := context.Background()

	if got := r.ResolveAuthorName(""); got != identity.AnonymousName {
		t.Fatalf("expected anonymous fallback, got %q", got)
	}
	if got := r.ResolveAuthorName("  Tamu  "); got != "Tamu" {
		t.Fatalf("expected trimmed free text, got %q", got)
	}

	if _, err := r.Register(ctx, "ismi@example.com", "pw", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if got := r.ResolveAuthorName("Tamu"); got != "ismi@example.com" {
		t.Fatalf("expected session email to override free text, got %q", got)
	}

	if err := r.Logout(ctx); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := r.Register(ctx, "named@example.com", "pw", "Nama Asli"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if got := r.ResolveAuthorName("Tamu"); got != "Nama Asli" {
		t.Fatalf("expected display name to win, got %q", got)
	}
}
