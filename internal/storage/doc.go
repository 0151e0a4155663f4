// Package storage provides the durable key-value store backing the greeting
// board: three independent entries (greeting collection, account registry,
// active session) persisted in a single local SQLite database.
//
// Write failures are classified so callers can distinguish a full or
// unavailable disk from ordinary errors; by that point the in-memory state
// has already advanced, and the caller owns surfacing that contract.
package storage
