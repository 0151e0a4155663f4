// Package board owns the greeting collection: the in-memory, newest-first
// sequence of greetings with threaded replies, loaded once from durable
// storage and flushed whole after every mutation.
//
// Malformed or missing persisted data degrades to an empty collection.
// Flush failures are surfaced to callers while the in-memory collection
// keeps its post-mutation state; see storage.WriteError.
package board
