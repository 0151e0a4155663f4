package media

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// Payload is a binary resource encoded inline as a data: URI so it can live
// inside the persisted greeting collection.
type Payload string

// Encode wraps raw bytes in a data: URI. The encoding is lossless: Decode
// returns the exact input bytes.
func Encode(mimeType string, data []byte) Payload {
	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return Payload("data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data))
}

// FromFile reads a binary resource and encodes it inline. The MIME type is
// sniffed from the content. Read failures are returned explicitly, never as
// an empty payload.
func FromFile(path string) (Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read attachment %q: %w", path, err)
	}
	return Encode(http.DetectContentType(data), data), nil
}

// Decode returns the MIME type and the original bytes.
func (p Payload) Decode() (string, []byte, error) {
	raw := string(p)
	if !strings.HasPrefix(raw, "data:") {
		return "", nil, fmt.Errorf("payload is not a data URI")
	}
	rest := raw[len("data:"):]
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return "", nil, fmt.Errorf("payload is not base64 encoded")
	}
	mimeType := rest[:sep]
	data, err := base64.StdEncoding.DecodeString(rest[sep+len(";base64,"):])
	if err != nil {
		return "", nil, fmt.Errorf("decode payload: %w", err)
	}
	return mimeType, data, nil
}

// IsZero reports whether the payload is empty.
func (p Payload) IsZero() bool {
	return p == ""
}

func (p Payload) String() string {
	return string(p)
}
