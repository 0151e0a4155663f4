package media

import (
	"net/url"
	"regexp"
	"strings"
)

// Video ids are exactly 11 characters drawn from the URL-safe base64 set.
const videoIDLength = 11

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtube\.com/embed/)([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/v/([A-Za-z0-9_-]{11})`),
}

// ParseVideoID extracts the 11-character video id from common URL shapes:
// watch?v=<id>, /embed/<id>, youtu.be/<id>, /v/<id>, plus a generic fallback
// that reads a v query parameter of exactly 11 characters. Malformed input
// yields ok=false, never an error.
func ParseVideoID(rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", false
	}

	for _, pattern := range videoIDPatterns {
		if match := pattern.FindStringSubmatch(rawURL); match != nil {
			return match[1], true
		}
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	if v := parsed.Query().Get("v"); len(v) == videoIDLength {
		return v, true
	}
	return "", false
}
