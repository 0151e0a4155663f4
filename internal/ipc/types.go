package ipc

import (
	"carol/internal/board"
	"carol/internal/capture"
	"carol/internal/storage"
)

// ComposeRequest appends a greeting. Attachments arrive fully resolved:
// the photo is already an inline payload (the CLI reads the file), the
// video is still a URL and the daemon extracts the id.
type ComposeRequest struct {
	Author              string `json:"author,omitempty"`
	Body                string `json:"body"`
	Photo               string `json:"photo,omitempty"`
	ExternalAudioRef    string `json:"external_audio_ref,omitempty"`
	ExternalAudioActive bool   `json:"external_audio_active,omitempty"`
	UseRecording        bool   `json:"use_recording,omitempty"`
	VideoURL            string `json:"video_url,omitempty"`
}

// ComposeResponse returns the stored greeting and its share address.
// Unpersisted is set when the greeting was accepted in memory but the
// durable flush failed.
type ComposeResponse struct {
	Greeting     board.Greeting `json:"greeting"`
	ShareAddress string         `json:"share_address,omitempty"`
	Unpersisted  bool           `json:"unpersisted,omitempty"`
	Warning      string         `json:"warning,omitempty"`
}

// AddReplyRequest appends a reply to an existing greeting.
type AddReplyRequest struct {
	GreetingID string `json:"greeting_id"`
	Author     string `json:"author,omitempty"`
	Body       string `json:"body"`
}

// AddReplyResponse returns the stored reply.
type AddReplyResponse struct {
	Reply       board.Reply `json:"reply"`
	Unpersisted bool        `json:"unpersisted,omitempty"`
	Warning     string      `json:"warning,omitempty"`
}

// ListRequest fetches the whole board.
type ListRequest struct{}

// ListResponse carries the board snapshot, newest first.
type ListResponse struct {
	Greetings []board.Greeting `json:"greetings"`
}

// DescribeRequest resolves one greeting by id or deep link.
type DescribeRequest struct {
	Ref string `json:"ref"`
}

// DescribeResponse carries the resolved greeting.
type DescribeResponse struct {
	Greeting board.Greeting `json:"greeting"`
}

// ShareRequest builds the share address for a greeting.
type ShareRequest struct {
	GreetingID string `json:"greeting_id"`
}

// ShareResponse carries the share address.
type ShareResponse struct {
	Address string `json:"address"`
}

// RegisterRequest creates an account and opens a session.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name,omitempty"`
}

// RegisterResponse reports the normalized account.
type RegisterResponse struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// LoginRequest opens a session for an existing account.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse reports the account now bound to the session.
type LoginResponse struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// LogoutRequest closes the active session.
type LogoutRequest struct{}

// LogoutResponse acknowledges the logout.
type LogoutResponse struct {
	LoggedOut bool `json:"logged_out"`
}

// WhoamiRequest asks for the active session.
type WhoamiRequest struct{}

// WhoamiResponse reports the active session, if any.
type WhoamiResponse struct {
	SignedIn    bool   `json:"signed_in"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// RecordToggleRequest flips the capture session.
type RecordToggleRequest struct{}

// RecordToggleResponse carries the capture status after the toggle.
type RecordToggleResponse struct {
	Status capture.Status `json:"status"`
}

// RecordStatusRequest asks for the capture status.
type RecordStatusRequest struct{}

// RecordStatusResponse carries the capture status.
type RecordStatusResponse struct {
	Status capture.Status `json:"status"`
}

// StatusRequest asks for the daemon snapshot.
type StatusRequest struct{}

// StatusResponse mirrors daemon.Status.
type StatusResponse struct {
	Running       bool           `json:"running"`
	PID           int            `json:"pid"`
	GreetingCount int            `json:"greeting_count"`
	Capture       capture.Status `json:"capture"`
	SessionEmail  string         `json:"session_email,omitempty"`
	DBPath        string         `json:"db_path"`
	LockPath      string         `json:"lock_path"`
	SocketPath    string         `json:"socket_path"`
	MonitorActive bool           `json:"monitor_active"`
}

// HealthRequest asks for database diagnostics.
type HealthRequest struct{}

// HealthResponse carries the database diagnostics.
type HealthResponse struct {
	Health storage.Health `json:"health"`
}

// PingRequest checks daemon liveness.
type PingRequest struct{}

// PingResponse acknowledges a ping.
type PingResponse struct {
	Pong bool `json:"pong"`
}
