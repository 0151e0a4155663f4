package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/text/cases"

	"carol/internal/logging"
	"carol/internal/storage"
)

// AnonymousName is attached to greetings composed without a session or a
// usable free-text name.
const AnonymousName = "Anonymous"

// Account is a locally registered author identity. PasswordSecret is stored
// as entered; there is no hashing in this registry, a limitation carried
// over from the data it replaces.
type Account struct {
	Email          string `json:"email"`
	PasswordSecret string `json:"password"`
	DisplayName    string `json:"display_name,omitempty"`
}

// Resolver owns the account registry and the active session. At most one
// session exists at a time; registering or logging in replaces it.
type Resolver struct {
	store  *storage.Store
	logger *slog.Logger
	folder cases.Caser

	mu       sync.Mutex
	accounts map[string]Account
	session  string
}

type registryRecord struct {
	Accounts map[string]Account `json:"accounts"`
}

type sessionRecord struct {
	Email string `json:"email"`
}

// Open loads the registry and session from the store. Malformed or
// unreadable data degrades to an empty registry and no session.
func Open(ctx context.Context, store *storage.Store, logger *slog.Logger) *Resolver {
	r := &Resolver{
		store:    store,
		logger:   logging.NewComponentLogger(logger, "identity"),
		folder:   cases.Fold(),
		accounts: make(map[string]Account),
	}

	if raw, ok, err := store.Get(ctx, storage.KeyAccounts); err != nil {
		r.logger.Warn("account registry unreadable, starting empty", logging.Error(err))
	} else if ok {
		var rec registryRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			r.logger.Warn("account registry malformed, starting empty", logging.Error(err))
		} else if rec.Accounts != nil {
			r.accounts = rec.Accounts
		}
	}

	if raw, ok, err := store.Get(ctx, storage.KeySession); err != nil {
		r.logger.Warn("session unreadable, starting signed out", logging.Error(err))
	} else if ok {
		var rec sessionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			r.logger.Warn("session malformed, starting signed out", logging.Error(err))
		} else if _, known := r.accounts[rec.Email]; known {
			r.session = rec.Email
		}
	}
	return r
}

// Register creates an account under the normalized email and activates a
// session for it. The normalized form is the registry key, so two emails
// differing only in case or surrounding space collide.
func (r *Resolver) Register(ctx context.Context, email, password, displayName string) (Account, error) {
	key := r.normalizeEmail(email)
	if key == "" {
		return Account{}, fmt.Errorf("register: %w", ErrInvalidCredentials)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.accounts[key]; taken {
		return Account{}, fmt.Errorf("register %q: %w", key, ErrAlreadyExists)
	}

	account := Account{
		Email:          key,
		PasswordSecret: password,
		DisplayName:    strings.TrimSpace(displayName),
	}
	previous := r.session
	r.accounts[key] = account
	r.session = key
	if err := r.flushAllLocked(ctx); err != nil {
		delete(r.accounts, key)
		r.session = previous
		return Account{}, err
	}

	r.logger.Info("account registered", logging.String("email", key))
	return account, nil
}

// Login activates a session for an existing account. Unknown email and
// wrong password both yield ErrInvalidCredentials.
func (r *Resolver) Login(ctx context.Context, email, password string) (Account, error) {
	key := r.normalizeEmail(email)

	r.mu.Lock()
	defer r.mu.Unlock()

	account, known := r.accounts[key]
	if !known || !secretMatches(account.PasswordSecret, password) {
		return Account{}, ErrInvalidCredentials
	}

	previous := r.session
	r.session = key
	if err := r.flushSessionLocked(ctx); err != nil {
		r.session = previous
		return Account{}, err
	}

	r.logger.Info("session opened", logging.String("email", key))
	return account, nil
}

// Logout clears the active session. The account stays registered. Logging
// out while signed out is a no-op.
func (r *Resolver) Logout(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == "" {
		return nil
	}
	email := r.session
	r.session = ""
	if err := r.flushSessionLocked(ctx); err != nil {
		r.session = email
		return err
	}

	r.logger.Info("session closed", logging.String("email", email))
	return nil
}

// Current returns the account bound to the active session, if any.
func (r *Resolver) Current() (Account, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == "" {
		return Account{}, false
	}
	account, ok := r.accounts[r.session]
	return account, ok
}

// ResolveAuthorName picks the author name for a new greeting. An active
// session always wins over free text: display name first, then the session
// email. Without a session the trimmed free text is used, and when that is
// empty too the author is AnonymousName.
func (r *Resolver) ResolveAuthorName(freeText string) string {
	if account, ok := r.Current(); ok {
		if account.DisplayName != "" {
			return account.DisplayName
		}
		return account.Email
	}
	if trimmed := strings.TrimSpace(freeText); trimmed != "" {
		return trimmed
	}
	return AnonymousName
}

func (r *Resolver) normalizeEmail(email string) string {
	return r.folder.String(strings.TrimSpace(email))
}

// secretMatches is the whole credential check. Plain string comparison of
// stored secrets; see Account.
func secretMatches(stored, supplied string) bool {
	return stored == supplied
}

// flushAllLocked persists the registry and the session in one transaction.
// Register updates both slots; writing them together means a failed flush
// never leaves the account on disk without its session, or the reverse.
func (r *Resolver) flushAllLocked(ctx context.Context) error {
	registry, err := json.Marshal(registryRecord{Accounts: r.accounts})
	if err != nil {
		return fmt.Errorf("marshal account registry: %w", err)
	}
	session, err := json.Marshal(sessionRecord{Email: r.session})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.store.PutMany(ctx, map[string][]byte{
		storage.KeyAccounts: registry,
		storage.KeySession:  session,
	})
}

func (r *Resolver) flushSessionLocked(ctx context.Context) error {
	if r.session == "" {
		if err := r.store.Delete(ctx, storage.KeySession); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		return nil
	}
	raw, err := json.Marshal(sessionRecord{Email: r.session})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.store.Put(ctx, storage.KeySession, raw)
}
