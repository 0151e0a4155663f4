package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateShare(); err != nil {
		return err
	}
	if err := c.validateCapture(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateShare() error {
	parsed, err := url.Parse(c.Share.BaseAddress)
	if err != nil {
		return fmt.Errorf("share.base_address is not a valid address: %w", err)
	}
	if parsed.Scheme == "" {
		return errors.New("share.base_address must include a scheme (e.g. https://)")
	}
	if strings.ContainsAny(c.Share.Param, "=&?#") {
		return fmt.Errorf("share.param %q must not contain query delimiters", c.Share.Param)
	}
	return nil
}

func (c *Config) validateCapture() error {
	if c.Capture.MaxSeconds <= 0 {
		return errors.New("capture.max_seconds must be positive")
	}
	if c.Capture.StopTimeout <= 0 {
		return errors.New("capture.stop_timeout must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
