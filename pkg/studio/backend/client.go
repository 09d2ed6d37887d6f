// Package backend is the REST client for the studio's persistence
// service. The service is a black box; failures here are reported but
// never fatal, callers keep the session locally when the cloud save
// does not land.
package backend

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/monumento/studio/pkg/core/types"
)

// APIError carries the HTTP status of a failed call.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Body)
}

// Config configures the client.
type Config struct {
	BaseURL   string        `json:"base_url"`
	AuthToken string        `json:"auth_token"`
	Timeout   time.Duration `json:"timeout"`
}

// DefaultConfig points at a local service.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080/api/v1",
		Timeout: 15 * time.Second,
	}
}

// Client talks to the persistence service.
type Client struct {
	http *resty.Client
}

// New builds a client from config.
func New(config Config) *Client {
	c := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetHeader("Content-Type", "application/json")
	if config.AuthToken != "" {
		c.SetAuthToken(config.AuthToken)
	}
	return &Client{http: c}
}

// Session is the service's session record. The service speaks its own
// field vocabulary; conversion to the core types happens in callers.
type Session struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId"`
	Vibe            string           `json:"vibe"`
	Mode            string           `json:"mode"`
	DurationMinutes int              `json:"durationMinutes,omitempty"`
	VideoURL        string           `json:"videoUrl,omitempty"`
	Summary         string           `json:"summary,omitempty"`
	Metadata        map[string]any   `json:"metadata,omitempty"`
	CreatedAt       string           `json:"createdAt"`
	UpdatedAt       string           `json:"updatedAt"`
}

// SessionRequest creates or updates a session.
type SessionRequest struct {
	Vibe            string         `json:"vibe"`
	Mode            string         `json:"mode"`
	DurationMinutes int            `json:"durationMinutes,omitempty"`
	VideoURL        string         `json:"videoUrl,omitempty"`
	Metadata        map[string]any `json:"metadata,omitempty"`
}

// Message is the service's message record.
type Message struct {
	ID             string         `json:"id"`
	SessionID      string         `json:"sessionId"`
	Role           string         `json:"role"`
	Text           string         `json:"text"`
	Timestamp      int64          `json:"timestamp"`
	RelativeOffset int64          `json:"relativeOffset"`
	AudioURL       string         `json:"audioUrl,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// MessageRequest appends a message to a session.
type MessageRequest struct {
	Role           string `json:"role"`
	Text           string `json:"text"`
	RelativeOffset int64  `json:"relativeOffset"`
	AudioURL       string `json:"audioUrl,omitempty"`
}

// Page is the service's pagination envelope.
type Page[T any] struct {
	Content       []T  `json:"content"`
	TotalPages    int  `json:"totalPages"`
	TotalElements int  `json:"totalElements"`
	First         bool `json:"first"`
	Last          bool `json:"last"`
}

// WireRole maps a core role onto the service's role vocabulary.
func WireRole(role types.Role) string {
	if role == types.RoleHost {
		return "ai"
	}
	return "user"
}

// CoreRole maps a service role back onto the core vocabulary.
func CoreRole(role string) types.Role {
	if role == "ai" {
		return types.RoleHost
	}
	return types.RoleGuest
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Body: string(resp.Body())}
	}
	return nil
}

// CreateSession registers a new session and returns the service's
// record, including the id that supersedes the local one.
func (c *Client) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	var out Session
	resp, err := c.http.R().SetContext(ctx).SetBody(req).SetResult(&out).Post("/sessions")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &out, nil
}

// GetSession fetches one session.
func (c *Client) GetSession(ctx context.Context, id string) (*Session, error) {
	var out Session
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/sessions/" + id)
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &out, nil
}

// ListSessions fetches a page of the user's sessions.
func (c *Client) ListSessions(ctx context.Context, page, size int) (*Page[Session], error) {
	var out Page[Session]
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("page", fmt.Sprint(page)).
		SetQueryParam("size", fmt.Sprint(size)).
		SetResult(&out).Get("/sessions")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return &out, nil
}

// UpdateSession replaces a session's mutable fields.
func (c *Client) UpdateSession(ctx context.Context, id string, req SessionRequest) (*Session, error) {
	var out Session
	resp, err := c.http.R().SetContext(ctx).SetBody(req).SetResult(&out).Put("/sessions/" + id)
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return &out, nil
}

// MergeMetadata patches extra keys into the session's metadata.
func (c *Client) MergeMetadata(ctx context.Context, id string, metadata map[string]any) (*Session, error) {
	var out Session
	resp, err := c.http.R().SetContext(ctx).SetBody(metadata).SetResult(&out).Patch("/sessions/" + id + "/metadata")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("merge metadata: %w", err)
	}
	return &out, nil
}

// DeleteSession removes a session and its messages.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	resp, err := c.http.R().SetContext(ctx).Delete("/sessions/" + id)
	if err := check(resp, err); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CreateMessage appends one transcript message.
func (c *Client) CreateMessage(ctx context.Context, sessionID string, req MessageRequest) (*Message, error) {
	var out Message
	resp, err := c.http.R().SetContext(ctx).SetBody(req).SetResult(&out).
		Post("/sessions/" + sessionID + "/messages")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return &out, nil
}

// ListMessages fetches a session's full transcript.
func (c *Client) ListMessages(ctx context.Context, sessionID string) ([]Message, error) {
	var out []Message
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).
		Get("/sessions/" + sessionID + "/messages")
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}

// UploadAudio stores one message's synthesized audio and returns its
// URL.
func (c *Client) UploadAudio(ctx context.Context, sessionID, messageID string, wav []byte) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	resp, err := c.http.R().SetContext(ctx).
		SetFileReader("audio", sessionID+"_"+messageID+".wav", bytes.NewReader(wav)).
		SetResult(&out).
		Post("/sessions/" + sessionID + "/audio")
	if err := check(resp, err); err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}
	return out.URL, nil
}

// UpdateMessageAudio attaches an uploaded audio URL to a message.
func (c *Client) UpdateMessageAudio(ctx context.Context, sessionID, messageID, audioURL string) (*Message, error) {
	var out Message
	resp, err := c.http.R().SetContext(ctx).
		SetBody(map[string]string{"audioUrl": audioURL}).
		SetResult(&out).
		Put("/sessions/" + sessionID + "/messages/" + messageID)
	if err := check(resp, err); err != nil {
		return nil, fmt.Errorf("update message audio: %w", err)
	}
	return &out, nil
}

// GenerateSummary asks the service to summarize the session.
func (c *Client) GenerateSummary(ctx context.Context, sessionID string) (string, error) {
	var out struct {
		Summary string `json:"summary"`
		Message string `json:"message"`
	}
	resp, err := c.http.R().SetContext(ctx).SetBody(map[string]any{}).SetResult(&out).
		Post("/sessions/" + sessionID + "/generate-summary")
	if err := check(resp, err); err != nil {
		return "", fmt.Errorf("generate summary: %w", err)
	}
	return out.Summary, nil
}
