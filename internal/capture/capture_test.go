package capture_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"carol/internal/capture"
	"carol/internal/logging"
	"carol/internal/testsupport"
)

// waitForRecorder gives the stub recorder time to write its output and
// install its signal trap before the stop toggle interrupts it.
func waitForRecorder() {
	time.Sleep(300 * time.Millisecond)
}

func TestToggleRecordsAndFinalizes(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRecorderStub())
	c := capture.NewController(cfg, logging.NewNop())
	defer c.Close()

	ctx := context.Background()
	status, err := c.Toggle(ctx)
	if err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}
	if status.State != capture.StateRecording {
		t.Fatalf("expected recording state, got %s", status.State)
	}
	waitForRecorder()

	status, err = c.Toggle(ctx)
	if err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	if status.State != capture.StateReady {
		t.Fatalf("expected ready state, got %s", status.State)
	}
	if !status.HasPayload {
		t.Fatal("expected a held payload after finalize")
	}

	payload, ok := c.TakePayload()
	if !ok {
		t.Fatal("expected TakePayload to yield the recording")
	}
	if _, data, err := payload.Decode(); err != nil || len(data) == 0 {
		t.Fatalf("payload not decodable: %v", err)
	}
	if _, ok := c.TakePayload(); ok {
		t.Fatal("expected payload to be consumed")
	}
}

// TestToggleCycleStartsRecorderOnce pins the device cost of one session:
// a start/stop toggle pair launches the recorder exactly once, and status
// reads in between do not reach for the device again.
func TestToggleCycleStartsRecorderOnce(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	binDir := filepath.Join(testsupport.BaseDir(cfg), "bin")
	countPath := filepath.Join(testsupport.BaseDir(cfg), "launches")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	script := "#!/bin/sh\n" +
		"echo run >> \"" + countPath + "\"\n" +
		"out=\"\"\n" +
		"for a in \"$@\"; do out=\"$a\"; done\n" +
		"printf 'RIFF....WAVEfmt ' > \"$out\"\n" +
		"trap 'exit 0' INT TERM\n" +
		"while :; do sleep 0.1; done\n"
	if err := os.WriteFile(filepath.Join(binDir, "counting-recorder"), []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	cfg.Capture.RecorderBinary = "counting-recorder"
	cfg.Capture.DeviceNode = testsupport.BaseDir(cfg)

	c := capture.NewController(cfg, logging.NewNop())
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Toggle(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitForRecorder()

	// Status polls while recording must not spawn another process.
	c.Status()
	c.Status()

	status, err := c.Toggle(ctx)
	if err != nil {
		t.Fatalf("stop failed: %v", err)
	}
	if status.State != capture.StateReady {
		t.Fatalf("expected ready state, got %s", status.State)
	}

	data, err := os.ReadFile(countPath)
	if err != nil {
		t.Fatalf("read launch count: %v", err)
	}
	if launches := strings.Count(string(data), "run"); launches != 1 {
		t.Fatalf("expected exactly one recorder launch, got %d", launches)
	}
}

func TestToggleWithMissingRecorder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Capture.RecorderBinary = "definitely-not-installed"
	cfg.Capture.DeviceNode = testsupport.BaseDir(cfg)

	c := capture.NewController(cfg, logging.NewNop())
	defer c.Close()

	status, err := c.Toggle(context.Background())
	if !errors.Is(err, capture.ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
	if status.State != capture.StateFailed {
		t.Fatalf("expected failed state, got %s", status.State)
	}

	// A failed session is a fresh start, not a latch.
	if _, err := c.Toggle(context.Background()); !errors.Is(err, capture.ErrDeviceUnavailable) {
		t.Fatalf("expected retry to re-probe, got %v", err)
	}
}

func TestToggleWithMissingDeviceNode(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRecorderStub())
	cfg.Capture.DeviceNode = testsupport.BaseDir(cfg) + "/no-such-node"

	c := capture.NewController(cfg, logging.NewNop())
	defer c.Close()

	_, err := c.Toggle(context.Background())
	if !errors.Is(err, capture.ErrDeviceUnavailable) {
		t.Fatalf("expected ErrDeviceUnavailable, got %v", err)
	}
}

func TestFailedSessionKeepsPreviousPayload(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRecorderStub())
	c := capture.NewController(cfg, logging.NewNop())
	defer c.Close()

	ctx := context.Background()
	if _, err := c.Toggle(ctx); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitForRecorder()
	if _, err := c.Toggle(ctx); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	// Break the device before the next session.
	cfg.Capture.DeviceNode = testsupport.BaseDir(cfg) + "/gone"
	if _, err := c.Toggle(ctx); !errors.Is(err, capture.ErrDeviceUnavailable) {
		t.Fatalf("expected device failure, got %v", err)
	}

	status := c.Status()
	if status.State != capture.StateFailed {
		t.Fatalf("expected failed state, got %s", status.State)
	}
	if !status.HasPayload {
		t.Fatal("failed session must not discard the previous payload")
	}
	if _, ok := c.TakePayload(); !ok {
		t.Fatal("previous payload should still be consumable")
	}
}

func TestStatusOnIdleController(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRecorderStub())
	c := capture.NewController(cfg, logging.NewNop())
	defer c.Close()

	status := c.Status()
	if status.State != capture.StateIdle {
		t.Fatalf("expected idle state, got %s", status.State)
	}
	if !status.DeviceAvailable {
		t.Fatal("expected stub device node to be available")
	}
	if status.HasPayload {
		t.Fatal("expected no payload before any session")
	}
}

func TestCustomDeviceProbe(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithRecorderStub())
	probeErr := capture.ErrDeviceUnavailable

	c := capture.NewController(cfg, logging.NewNop(), capture.WithDeviceProbe(func() error {
		return probeErr
	}))
	defer c.Close()

	if _, err := c.Toggle(context.Background()); !errors.Is(err, capture.ErrDeviceUnavailable) {
		t.Fatalf("expected probe error to surface, got %v", err)
	}
	if c.Status().DeviceAvailable {
		t.Fatal("expected probe to report unavailable")
	}
}
