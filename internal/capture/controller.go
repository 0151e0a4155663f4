package capture

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"carol/internal/config"
	"carol/internal/logging"
	"carol/internal/media"
)

// Status is a point-in-time snapshot of the capture subsystem.
type Status struct {
	State           State  `json:"state"`
	DeviceAvailable bool   `json:"device_available"`
	HasPayload      bool   `json:"has_payload"`
	LastError       string `json:"last_error,omitempty"`
}

// Option configures the controller.
type Option func(*Controller)

// WithDeviceProbe replaces the device availability check. The probe returns
// nil when a session may start, or ErrDeviceUnavailable/ErrPermissionDenied.
func WithDeviceProbe(probe func() error) Option {
	return func(c *Controller) {
		if probe != nil {
			c.probe = probe
		}
	}
}

// Controller owns the single recorder process and the toggle state machine.
type Controller struct {
	cfg    *config.Config
	logger *slog.Logger
	probe  func() error

	mu       sync.Mutex
	state    State
	payload  media.Payload
	lastErr  error
	cmd      *exec.Cmd
	waitDone chan error
	tempPath string
	maxTimer *time.Timer
}

// NewController builds an idle controller. The default device probe checks
// the configured device node.
func NewController(cfg *config.Config, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "capture"),
		state:  StateIdle,
	}
	c.probe = func() error {
		return ProbeDeviceNode(cfg.Capture.DeviceNode)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Toggle flips the session: it starts recording when no session is active
// and stops plus finalizes when one is. A toggle during Requesting or
// Finalizing returns ErrBusy and leaves the session untouched.
func (c *Controller) Toggle(ctx context.Context) (Status, error) {
	c.mu.Lock()
	switch {
	case c.state == StateRecording:
		c.state = StateFinalizing
		c.mu.Unlock()
		return c.finalize()
	case canStart(c.state):
		c.state = StateRequesting
		c.mu.Unlock()
		return c.start(ctx)
	default:
		state := c.state
		c.mu.Unlock()
		return c.snapshot(), fmt.Errorf("toggle during %s: %w", state, ErrBusy)
	}
}

// TakePayload hands the Ready payload to the caller and clears it. The
// second return is false when nothing is held.
func (c *Controller) TakePayload() (media.Payload, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.payload.IsZero() {
		return "", false
	}
	payload := c.payload
	c.payload = ""
	if c.state == StateReady {
		c.state = StateIdle
	}
	return payload, true
}

// Status reports the current state without mutating anything.
func (c *Controller) Status() Status {
	return c.snapshot()
}

// Close stops any running recorder process and discards its output.
func (c *Controller) Close() {
	c.mu.Lock()
	cmd, done, temp := c.cmd, c.waitDone, c.tempPath
	c.clearProcessLocked()
	if c.state == StateRecording || c.state == StateRequesting || c.state == StateFinalizing {
		c.state = StateIdle
	}
	c.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
		<-done
	}
	if temp != "" {
		_ = os.Remove(temp)
	}
}

func (c *Controller) start(ctx context.Context) (Status, error) {
	fail := func(err error) (Status, error) {
		c.mu.Lock()
		c.state = StateFailed
		c.lastErr = err
		c.mu.Unlock()
		return c.snapshot(), err
	}

	binary, err := exec.LookPath(c.cfg.Capture.RecorderBinary)
	if err != nil {
		return fail(fmt.Errorf("recorder binary %q: %w", c.cfg.Capture.RecorderBinary, ErrDeviceUnavailable))
	}
	if err := c.probe(); err != nil {
		return fail(err)
	}

	temp, err := os.CreateTemp("", "carol-capture-*.wav")
	if err != nil {
		return fail(fmt.Errorf("create capture file: %w", err))
	}
	tempPath := temp.Name()
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fail(fmt.Errorf("close capture file: %w", err))
	}

	args := c.recorderArgs(tempPath)
	cmd := exec.CommandContext(ctx, binary, args...)
	if err := cmd.Start(); err != nil {
		_ = os.Remove(tempPath)
		return fail(fmt.Errorf("start recorder: %w", err))
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	c.mu.Lock()
	c.cmd = cmd
	c.waitDone = done
	c.tempPath = tempPath
	c.state = StateRecording
	if max := c.cfg.Capture.MaxSeconds; max > 0 {
		c.maxTimer = time.AfterFunc(time.Duration(max)*time.Second, func() {
			c.logger.Warn("max recording duration reached, stopping recorder")
			_ = cmd.Process.Signal(os.Interrupt)
		})
	}
	c.mu.Unlock()

	c.logger.Info("recording started",
		logging.String("binary", binary),
		logging.String("output", tempPath))
	return c.snapshot(), nil
}

func (c *Controller) finalize() (Status, error) {
	c.mu.Lock()
	cmd, done, tempPath, timer := c.cmd, c.waitDone, c.tempPath, c.maxTimer
	c.clearProcessLocked()
	c.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}

	fail := func(err error) (Status, error) {
		if tempPath != "" {
			_ = os.Remove(tempPath)
		}
		c.mu.Lock()
		c.state = StateFailed
		c.lastErr = err
		c.mu.Unlock()
		return c.snapshot(), err
	}

	if cmd == nil {
		return fail(errors.New("no recorder process to finalize"))
	}

	if err := c.stopProcess(cmd, done); err != nil {
		return fail(err)
	}

	payload, err := media.FromFile(tempPath)
	if err != nil {
		return fail(fmt.Errorf("read recording: %w", err))
	}
	_ = os.Remove(tempPath)

	c.mu.Lock()
	c.payload = payload
	c.state = StateReady
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.Info("recording finalized", logging.Int("payload_bytes", len(payload)))
	return c.snapshot(), nil
}

// stopProcess interrupts the recorder and waits for it to exit, escalating
// to a kill after the configured stop timeout. The process is always reaped
// before returning.
func (c *Controller) stopProcess(cmd *exec.Cmd, done chan error) error {
	_ = cmd.Process.Signal(os.Interrupt)

	timeout := time.Duration(c.cfg.Capture.StopTimeout) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		c.logger.Warn("recorder ignored interrupt, killing process")
		_ = cmd.Process.Kill()
		<-done
		return nil
	}
}

func (c *Controller) recorderArgs(outputPath string) []string {
	var args []string
	if device := c.cfg.Capture.Device; device != "" {
		args = append(args, "-D", device)
	}
	return append(args, outputPath)
}

// ProbeDeviceNode is the default availability check: the device node must
// exist and be readable. An empty node disables the check.
func ProbeDeviceNode(node string) error {
	if node == "" {
		return nil
	}
	if _, err := os.Stat(node); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("device node %q: %w", node, ErrDeviceUnavailable)
		}
		return fmt.Errorf("device node %q: %w", node, err)
	}
	if err := unix.Access(node, unix.R_OK); err != nil {
		if errors.Is(err, unix.EACCES) {
			return fmt.Errorf("device node %q: %w", node, ErrPermissionDenied)
		}
		return fmt.Errorf("device node %q: %w", node, err)
	}
	return nil
}

func (c *Controller) clearProcessLocked() {
	c.cmd = nil
	c.waitDone = nil
	c.tempPath = ""
	if c.maxTimer != nil {
		c.maxTimer.Stop()
		c.maxTimer = nil
	}
}

func (c *Controller) snapshot() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := Status{
		State:           c.state,
		DeviceAvailable: c.probe() == nil,
		HasPayload:      !c.payload.IsZero(),
	}
	if c.lastErr != nil {
		status.LastError = c.lastErr.Error()
	}
	return status
}
