package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"carol/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Share.BaseAddress = "https://carol.test/board"
	cfgVal.Capture.StopTimeout = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithShareBase overrides the share base address on the test config.
func WithShareBase(address string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Share.BaseAddress = address
	}
}

// WithStubbedBinaries writes no-op stub executables for the provided names
// and prepends them to PATH.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		writeStubs(b.t, filepath.Join(b.baseDir, "bin"), []byte("#!/bin/sh\nexit 0\n"), names...)
	}
}

// WithRecorderStub installs a fake recorder binary that writes a small
// payload to its final argument and then blocks until interrupted, matching
// how a real capture process behaves. The config's recorder binary is set to
// the stub's name.
func WithRecorderStub() ConfigOption {
	return func(b *configBuilder) {
		script := []byte("#!/bin/sh\n" +
			"out=\"\"\n" +
			"for a in \"$@\"; do out=\"$a\"; done\n" +
			"printf 'RIFF....WAVEfmt ' > \"$out\"\n" +
			"trap 'exit 0' INT TERM\n" +
			"while :; do sleep 0.1; done\n")
		writeStubs(b.t, filepath.Join(b.baseDir, "bin"), script, "fake-recorder")
		b.cfg.Capture.RecorderBinary = "fake-recorder"
		b.cfg.Capture.DeviceNode = b.baseDir
	}
}

func writeStubs(t testing.TB, binDir string, script []byte, names ...string) {
	t.Helper()

	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin dir: %v", err)
	}
	for _, name := range names {
		target := filepath.Join(binDir, name)
		if err := os.WriteFile(target, script, 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}

	oldPath := os.Getenv("PATH")
	if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
		t.Fatalf("set PATH: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Setenv("PATH", oldPath)
	})
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
