// Package ipc carries commands between the carol CLI and the carold daemon
// as JSON-RPC over a Unix domain socket.
package ipc
