// Package config loads, normalizes, and validates Carol configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CAROL_BASE_ADDRESS. The Config type centralizes every knob the daemon and
// CLI need: storage and log directories, the share-link base address, and
// the audio capture settings.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
