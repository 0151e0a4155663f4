// Package daemonrun hosts the carold runtime loop shared by the daemon
// binary and the CLI's foreground daemon command.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"carol/internal/config"
	"carol/internal/daemon"
	"carol/internal/ipc"
	"carol/internal/logging"
	"carol/internal/storage"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the carol daemon runtime loop and blocks until a signal or
// context cancellation shuts it down.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}
	if err := storage.CheckWritable(cfg.Paths.DataDir); err != nil {
		return fmt.Errorf("data directory not writable: %w", err)
	}

	logCfg := *cfg
	if strings.TrimSpace(opts.LogLevel) != "" {
		logCfg.Logging.Level = opts.LogLevel
	}
	logger, err := logging.NewFromConfig(&logCfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)

	pidPath := filepath.Join(cfg.Paths.LogDir, "carold.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := storage.Open(cfg)
	if err != nil {
		logger.Error("open store", logging.Error(err))
		return err
	}
	defer store.Close()

	d, err := daemon.New(signalCtx, cfg, store, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Error("daemon start failed", logging.Error(err))
		return err
	}

	<-signalCtx.Done()
	logger.Info("carol daemon shutting down")
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	recorder := cfg.Capture.RecorderBinary
	clip := cfg.Share.ClipboardHelper
	logger.Info("dependency snapshot",
		logging.Bool("recorder_available", binaryAvailable(recorder)),
		logging.String("recorder_binary", recorder),
		logging.Bool("clipboard_helper_available", binaryAvailable(clip)),
		logging.String("clipboard_helper", clip),
		logging.String("device_node", cfg.Capture.DeviceNode),
	)
}

func binaryAvailable(name string) bool {
	if strings.TrimSpace(name) == "" {
		return false
	}
	_, err := exec.LookPath(name)
	return err == nil
}
