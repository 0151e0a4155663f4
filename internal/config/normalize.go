package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeShare()
	c.normalizeCapture()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SocketPath) != "" {
		if c.Paths.SocketPath, err = expandPath(c.Paths.SocketPath); err != nil {
			return fmt.Errorf("paths.socket_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeShare() {
	c.Share.BaseAddress = strings.TrimSpace(c.Share.BaseAddress)
	if c.Share.BaseAddress == "" {
		if value, ok := os.LookupEnv("CAROL_BASE_ADDRESS"); ok && strings.TrimSpace(value) != "" {
			c.Share.BaseAddress = strings.TrimSpace(value)
		} else {
			c.Share.BaseAddress = defaultShareBaseAddress
		}
	}
	c.Share.Param = strings.TrimSpace(c.Share.Param)
	if c.Share.Param == "" {
		c.Share.Param = defaultShareParam
	}
	c.Share.ClipboardHelper = strings.TrimSpace(c.Share.ClipboardHelper)
}

func (c *Config) normalizeCapture() {
	c.Capture.RecorderBinary = strings.TrimSpace(c.Capture.RecorderBinary)
	if c.Capture.RecorderBinary == "" {
		c.Capture.RecorderBinary = defaultRecorderBinary
	}
	c.Capture.Device = strings.TrimSpace(c.Capture.Device)
	if c.Capture.Device == "" {
		c.Capture.Device = defaultCaptureDevice
	}
	c.Capture.DeviceNode = strings.TrimSpace(c.Capture.DeviceNode)
	if c.Capture.DeviceNode == "" {
		c.Capture.DeviceNode = defaultCaptureDeviceNode
	}
	if c.Capture.MaxSeconds <= 0 {
		c.Capture.MaxSeconds = defaultCaptureMaxSeconds
	}
	if c.Capture.StopTimeout <= 0 {
		c.Capture.StopTimeout = defaultCaptureStopTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
