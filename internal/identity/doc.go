// Package identity keeps the local account registry and the single active
// session, and resolves the author name to attach to composed greetings.
package identity
