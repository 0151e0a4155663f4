// Package capture runs microphone recording sessions through an external
// recorder process and hands the result over as an inline media payload.
//
// A session is driven by a single toggle: one call starts recording, the
// next stops it and finalizes the payload. The controller owns at most one
// recorder process at a time and reaps it on every exit path.
package capture
