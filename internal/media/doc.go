// Package media converts greeting attachments into storable forms: binary
// resources become self-contained data: URIs that persist and render without
// a separate fetch, and video URLs are reduced to their 11-character ids.
package media
