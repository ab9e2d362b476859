// Package slides is the HTTP client for the slides backend, which turns a video identifier into generated slides and
// a short comment.
package slides

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/alanbriolat/video-slides"
)

const DefaultBaseURL = "http://127.0.0.1:5000"

// Phase names which of the two backend calls an error came from.
type Phase string

const (
	PhaseSlides  Phase = "slides"
	PhaseComment Phase = "comment"
)

var (
	ErrEmptyIdentifier = errors.New("empty identifier")
	ErrMalformedBody   = errors.New("malformed response body")
)

// Slides is the primary result, kept exactly as the backend sent it.
type Slides = json.RawMessage

// StatusError is returned for any response outside the 2xx range.
type StatusError struct {
	Phase      Phase
	StatusCode int
	// Reason is the backend's own error or message field, if the body had one.
	Reason string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s (HTTP %d)", http.StatusText(e.StatusCode), e.StatusCode)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

type Config struct {
	BaseURL string
	// HTTPClient defaults to a client with no timeout.
	HTTPClient *http.Client
	UserAgent  string
}

var DefaultConfig = Config{
	BaseURL:   DefaultBaseURL,
	UserAgent: "video-slides",
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	log        *zap.SugaredLogger
}

func New(config Config) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(config.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}
	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: config.HTTPClient,
		userAgent:  config.UserAgent,
		log:        zap.S().Named("slides"),
	}, nil
}

// GenerateSlides issues POST /api/generate-slides/{id} and returns the JSON body verbatim.
func (c *Client) GenerateSlides(ctx context.Context, id video_slides.Identifier) (Slides, error) {
	body, err := c.post(ctx, PhaseSlides, "generate-slides", id)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%s: %w", PhaseSlides, ErrMalformedBody)
	}
	return Slides(body), nil
}

// GenerateComment issues POST /api/generate-comment/{id} and returns the "comment" field of the JSON body.
func (c *Client) GenerateComment(ctx context.Context, id video_slides.Identifier) (string, error) {
	body, err := c.post(ctx, PhaseComment, "generate-comment", id)
	if err != nil {
		return "", err
	}
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) {
		return "", fmt.Errorf("%s: %w: not a JSON object", PhaseComment, ErrMalformedBody)
	}
	var resp struct {
		Comment string `json:"comment"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%s: %w: %v", PhaseComment, ErrMalformedBody, err)
	}
	return resp.Comment, nil
}

func (c *Client) post(ctx context.Context, phase Phase, endpoint string, id video_slides.Identifier) ([]byte, error) {
	if id == "" {
		return nil, ErrEmptyIdentifier
	}
	target := fmt.Sprintf("%s/api/%s/%s", c.baseURL, endpoint, url.PathEscape(string(id)))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	log := c.log.With("phase", phase, "identifier", id)
	log.Debugf("POST %s", target)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", phase, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", phase, err)
	}
	log.Debugw("response received", "status", resp.StatusCode, "bytes", len(body))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Phase: phase, StatusCode: resp.StatusCode, Reason: reasonFromBody(body)}
	}
	return body, nil
}

// reasonFromBody picks the "error" (or failing that "message") field out of a JSON error body.
func reasonFromBody(body []byte) string {
	var fields struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return ""
	}
	if fields.Error != "" {
		return fields.Error
	}
	return fields.Message
}
