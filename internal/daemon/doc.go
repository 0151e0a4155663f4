// Package daemon wires the greeting board, identity registry, and capture
// controller into the single long-running carold process and enforces
// single-instance execution via a file lock.
package daemon
