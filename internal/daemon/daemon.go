package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"

	"carol/internal/board"
	"carol/internal/capture"
	"carol/internal/config"
	"carol/internal/deeplink"
	"carol/internal/identity"
	"carol/internal/logging"
	"carol/internal/media"
	"carol/internal/storage"
)

// Daemon owns every stateful component and serializes mutations so
// concurrent IPC calls observe a consistent board.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *storage.Store
	board    *board.Board
	identity *identity.Resolver
	capture  *capture.Controller
	monitor  *capture.Monitor
	links    deeplink.Resolver
	logPath  string

	lockPath string
	lock     *flock.Flock

	// mu serializes board and identity mutations. Reads and capture
	// toggles bypass it; the capture controller has its own state guard.
	mu sync.Mutex

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running       bool
	PID           int
	GreetingCount int
	Capture       capture.Status
	SessionEmail  string
	DBPath        string
	LockFilePath  string
	SocketPath    string
	MonitorActive bool
}

// ComposeRequest carries everything needed to append a greeting.
type ComposeRequest struct {
	Author              string
	Body                string
	Photo               media.Payload
	ExternalAudioRef    string
	ExternalAudioActive bool
	UseRecording        bool
	VideoURL            string
}

// New constructs a daemon with all components loaded from the store.
func New(ctx context.Context, cfg *config.Config, store *storage.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || logger == nil {
		return nil, errors.New("daemon requires config, store, and logger")
	}

	nodeAvailable := capture.ProbeDeviceNode(cfg.Capture.DeviceNode) == nil
	monitor := capture.NewMonitor(logger, nodeAvailable)

	probe := func() error {
		if monitor.Running() && !monitor.Available() {
			return capture.ErrDeviceUnavailable
		}
		return capture.ProbeDeviceNode(cfg.Capture.DeviceNode)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "carold.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		board:    board.Open(ctx, store, logger),
		identity: identity.Open(ctx, store, logger),
		capture:  capture.NewController(cfg, logger, capture.WithDeviceProbe(probe)),
		monitor:  monitor,
		links:    deeplink.NewResolver(cfg.Share.Param),
		logPath:  filepath.Join(cfg.Paths.LogDir, "carold.log"),
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Start acquires the single-instance lock and starts the device monitor.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another carol daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.monitor.Start(d.ctx); err != nil {
		d.logger.Warn("device monitor failed to start", logging.Error(err))
	}

	d.running.Store(true)
	d.logger.Info("carol daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop halts background work and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.monitor.Stop()
	d.capture.Close()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("carol daemon stopped")
}

// Close stops the daemon and releases the store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Compose resolves the author, collects attachments, appends the greeting,
// and returns it together with its share address. A requested recording
// that is not Ready is an error rather than a silently text-only greeting.
func (d *Daemon) Compose(ctx context.Context, req ComposeRequest) (board.Greeting, string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	draft := board.Draft{
		AuthorDisplay:       d.identity.ResolveAuthorName(req.Author),
		Body:                req.Body,
		Photo:               req.Photo,
		ExternalAudioRef:    req.ExternalAudioRef,
		ExternalAudioActive: req.ExternalAudioActive,
	}
	if account, ok := d.identity.Current(); ok {
		draft.AuthorEmail = account.Email
	}
	if req.UseRecording {
		payload, ok := d.capture.TakePayload()
		if !ok {
			return board.Greeting{}, "", errors.New("no finished recording to attach")
		}
		draft.RecordedAudio = payload
	}
	if raw := strings.TrimSpace(req.VideoURL); raw != "" {
		id, ok := media.ParseVideoID(raw)
		if !ok {
			return board.Greeting{}, "", fmt.Errorf("unrecognized video address %q", raw)
		}
		draft.VideoID = id
	}

	greeting, err := d.board.Append(ctx, draft)
	if err != nil {
		// A flush failure still appended in memory; the greeting and its
		// share link go back to the caller alongside the soft error.
		var writeErr *storage.WriteError
		if !errors.As(err, &writeErr) {
			return board.Greeting{}, "", err
		}
	}

	address, addrErr := d.links.BuildShareAddress(d.cfg.Share.BaseAddress, greeting.ID)
	if addrErr != nil {
		d.logger.Warn("share address unavailable",
			logging.String("greeting_id", greeting.ID),
			logging.Error(addrErr))
		address = ""
	}
	return greeting, address, err
}

// AddReply resolves the reply author and appends the reply.
func (d *Daemon) AddReply(ctx context.Context, greetingID, author, body string) (board.Reply, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.board.AddReply(ctx, greetingID, board.ReplyDraft{
		Author: d.identity.ResolveAuthorName(author),
		Body:   body,
	})
}

// ListGreetings returns the board snapshot, newest first.
func (d *Daemon) ListGreetings() []board.Greeting {
	return d.board.List()
}

// DescribeGreeting returns a single greeting. A deep-link address resolves
// to the greeting it names.
func (d *Daemon) DescribeGreeting(ref string) (board.Greeting, error) {
	id := ref
	if extracted, ok := d.links.ExtractRequestedID(ref); ok {
		id = extracted
	}
	greeting, ok := d.board.FindByID(id)
	if !ok {
		return board.Greeting{}, fmt.Errorf("greeting %q: %w", id, board.ErrNotFound)
	}
	return greeting, nil
}

// ShareGreeting returns the shareable address for an existing greeting.
func (d *Daemon) ShareGreeting(id string) (string, error) {
	if _, ok := d.board.FindByID(id); !ok {
		return "", fmt.Errorf("greeting %q: %w", id, board.ErrNotFound)
	}
	return d.links.BuildShareAddress(d.cfg.Share.BaseAddress, id)
}

// Register creates an account and opens a session for it.
func (d *Daemon) Register(ctx context.Context, email, password, displayName string) (identity.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.identity.Register(ctx, email, password, displayName)
}

// Login opens a session for an existing account.
func (d *Daemon) Login(ctx context.Context, email, password string) (identity.Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.identity.Login(ctx, email, password)
}

// Logout closes the active session.
func (d *Daemon) Logout(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.identity.Logout(ctx)
}

// CurrentAccount reports the account behind the active session.
func (d *Daemon) CurrentAccount() (identity.Account, bool) {
	return d.identity.Current()
}

// ToggleRecording flips the capture session. The daemon's own context backs
// the recorder process so it outlives the IPC call that started it.
func (d *Daemon) ToggleRecording() (capture.Status, error) {
	ctx := d.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	return d.capture.Toggle(ctx)
}

// RecordingStatus reports the capture state machine.
func (d *Daemon) RecordingStatus() capture.Status {
	return d.capture.Status()
}

// StorageHealth runs the database diagnostics.
func (d *Daemon) StorageHealth(ctx context.Context) (storage.Health, error) {
	return d.store.CheckHealth(ctx)
}

// LogPath returns the daemon log file location.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	session := ""
	if account, ok := d.identity.Current(); ok {
		session = account.Email
	}
	return Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		GreetingCount: d.board.Len(),
		Capture:       d.capture.Status(),
		SessionEmail:  session,
		DBPath:        d.store.Path(),
		LockFilePath:  d.lockPath,
		SocketPath:    d.cfg.SocketPath(),
		MonitorActive: d.monitor.Running(),
	}
}
