package board

import (
	"carol/internal/media"
)

// Reply is a threaded follow-up attached to exactly one greeting.
// Immutable once created.
type Reply struct {
	Author    string `json:"author"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at"`
}

// Greeting is a single composed multimedia message.
type Greeting struct {
	ID                  string        `json:"id"`
	AuthorDisplay       string        `json:"author_display"`
	AuthorEmail         string        `json:"author_email,omitempty"`
	Body                string        `json:"body"`
	CreatedAt           string        `json:"created_at"`
	Photo               media.Payload `json:"photo,omitempty"`
	ExternalAudioRef    string        `json:"external_audio_ref,omitempty"`
	ExternalAudioActive bool          `json:"external_audio_active,omitempty"`
	RecordedAudio       media.Payload `json:"recorded_audio,omitempty"`
	VideoID             string        `json:"video_id,omitempty"`
	Replies             []Reply       `json:"replies"`
}

// DisplayAudio returns the single audio source to render. Recorded audio
// takes precedence over an external reference; an external reference is
// shown only when it was explicitly activated at compose time. Both may be
// stored.
func (g Greeting) DisplayAudio() (string, bool) {
	if !g.RecordedAudio.IsZero() {
		return g.RecordedAudio.String(), true
	}
	if g.ExternalAudioActive && g.ExternalAudioRef != "" {
		return g.ExternalAudioRef, true
	}
	return "", false
}

// Draft carries the caller-supplied fields of a new greeting. The store
// assigns id and timestamp; callers never do.
type Draft struct {
	AuthorDisplay       string
	AuthorEmail         string
	Body                string
	Photo               media.Payload
	ExternalAudioRef    string
	ExternalAudioActive bool
	RecordedAudio       media.Payload
	VideoID             string
}

// ReplyDraft carries the caller-supplied fields of a new reply.
type ReplyDraft struct {
	Author string
	Body   string
}

// envelope is the persisted form of the collection. The version field lets
// future formats unmarshal older data in place.
type envelope struct {
	Version   int        `json:"version"`
	Greetings []Greeting `json:"greetings"`
}

const envelopeVersion = 1
