package storage

import (
	"errors"
	"fmt"
	"strings"
)

// ErrStorageFull indicates the durable write failed because the underlying
// database or disk is out of space.
var ErrStorageFull = errors.New("storage full")

// ErrStorageUnavailable indicates the durable write failed for reasons other
// than space (locked database, readonly filesystem, I/O error).
var ErrStorageUnavailable = errors.New("storage unavailable")

// WriteError reports a failed durable write. The in-memory state that
// triggered the write has already been mutated; the user-visible contract is
// "your action succeeded locally but may not survive a reload".
type WriteError struct {
	Key  string
	Kind error
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("persist %q: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

const (
	sqliteBusyCode = 5
	sqliteFullCode = 13
)

func classifyWriteError(key string, err error) error {
	if err == nil {
		return nil
	}
	kind := ErrStorageUnavailable
	if isSQLiteFull(err) {
		kind = ErrStorageFull
	}
	return &WriteError{Key: key, Kind: kind, Err: err}
}

func isSQLiteFull(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteFullCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_FULL") || strings.Contains(msg, "disk is full")
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
