package filter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	assert_ "github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanbriolat/video-slides"
	"github.com/alanbriolat/video-slides/internal/slides"
	"github.com/alanbriolat/video-slides/provider/youtube"
)

type fakeGenerator struct {
	calls []video_slides.Identifier
	deck  slides.Slides
	err   error
}

func (g *fakeGenerator) GenerateSlides(_ context.Context, id video_slides.Identifier) (slides.Slides, error) {
	g.calls = append(g.calls, id)
	return g.deck, g.err
}

func newTestServer() (*Server, *fakeGenerator) {
	registry := &video_slides.ProviderRegistry{}
	registry.MustAdd(youtube.New())
	g := &fakeGenerator{deck: slides.Slides(`{"0":{"title":"cover"}}`)}
	return NewServer(g, registry), g
}

func serve(t *testing.T, s *Server, method, target, body string) (int, map[string]any) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert_.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded), rec.Body.String())
	return rec.Code, decoded
}

func TestShiftPath(t *testing.T) {
	cases := []struct {
		path, head, tail string
	}{
		{"/", "", "/"},
		{"", "", "/"},
		{"/api", "api", "/"},
		{"/api/", "api", "/"},
		{"/api/tweet", "api", "/tweet"},
		{"api/tweet/extra", "api", "/tweet/extra"},
		{"/a/../api//tweet", "api", "/tweet"},
	}
	for _, c := range cases {
		head, tail := ShiftPath(c.path)
		assert_.Equal(t, c.head, head, c.path)
		assert_.Equal(t, c.tail, tail, c.path)
	}
}

func TestIndexAndNotFound(t *testing.T) {
	assert := assert_.New(t)
	s, _ := newTestServer()

	status, body := serve(t, s, http.MethodGet, "/", "")
	assert.Equal(http.StatusOK, status)
	assert.Equal("video-slides filter server", body["message"])

	status, body = serve(t, s, http.MethodGet, "/nope", "")
	assert.Equal(http.StatusNotFound, status)
	assert.Equal("Not found", body["error"])

	status, _ = serve(t, s, http.MethodPost, "/api/other", `{}`)
	assert.Equal(http.StatusNotFound, status)

	status, _ = serve(t, s, http.MethodGet, "/api/tweet", "")
	assert.Equal(http.StatusMethodNotAllowed, status)
}

func TestTweetInvalidData(t *testing.T) {
	for _, body := range []string{"", "not json", `{}`, `{"tweet_id": 1}`, `{"tweet_content": null}`, `[]`} {
		t.Run(body, func(t *testing.T) {
			s, g := newTestServer()
			status, decoded := serve(t, s, http.MethodPost, "/api/tweet", body)
			assert_.Equal(t, http.StatusBadRequest, status)
			assert_.Equal(t, map[string]any{"error": "Invalid data"}, decoded)
			assert_.Empty(t, g.calls)
		})
	}
}

func TestTweetWithoutLink(t *testing.T) {
	bodies := []string{
		`{"tweet_content": "just some words"}`,
		`{"tweet_content": ""}`,
		// Mentions the domain but has no video ID
		`{"tweet_content": "see https://www.youtube.com/feed/trending"}`,
	}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			s, g := newTestServer()
			status, decoded := serve(t, s, http.MethodPost, "/api/tweet", body)
			assert_.Equal(t, http.StatusOK, status)
			assert_.Equal(t, map[string]any{"message": "No YouTube link found"}, decoded)
			assert_.Empty(t, g.calls)
		})
	}
}

func TestTweetSlidesGenerated(t *testing.T) {
	assert := assert_.New(t)
	s, g := newTestServer()

	status, body := serve(t, s, http.MethodPost, "/api/tweet",
		`{"tweet_content": "watch this https://youtu.be/abc123 now", "tweet_id": 42, "author": "someone"}`)
	assert.Equal(http.StatusOK, status)
	assert.Equal([]video_slides.Identifier{"abc123"}, g.calls)
	assert.Equal("Slides generated successfully", body["message"])
	assert.Equal(float64(42), body["tweet_id"])
	assert.Equal("someone", body["author"])
	assert.Equal("https://youtu.be/abc123", body["youtube_link"])
	assert.Equal(map[string]any{"0": map[string]any{"title": "cover"}}, body["slides"])

	// Links without a scheme, as tweets often have them
	status, body = serve(t, s, http.MethodPost, "/api/tweet", `{"tweet_content": "watch youtu.be/def456 now"}`)
	assert.Equal(http.StatusOK, status)
	assert.Equal("Slides generated successfully", body["message"])
	assert.Equal("youtu.be/def456", body["youtube_link"])
	status, body = serve(t, s, http.MethodPost, "/api/tweet", `{"tweet_content": "watch www.youtube.com/watch?v=xyz789 now"}`)
	assert.Equal(http.StatusOK, status)
	assert.Equal("www.youtube.com/watch?v=xyz789", body["youtube_link"])
	assert.Equal([]video_slides.Identifier{"abc123", "def456", "xyz789"}, g.calls)

	// Missing optional fields come back as null
	status, body = serve(t, s, http.MethodPost, "/api/tweet",
		`{"tweet_content": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`)
	assert.Equal(http.StatusOK, status)
	assert.Contains(body, "tweet_id")
	assert.Nil(body["tweet_id"])
	assert.Nil(body["author"])
}

func TestTweetSlidesFailure(t *testing.T) {
	s, g := newTestServer()
	g.err = errors.New("backend down")

	status, body := serve(t, s, http.MethodPost, "/api/tweet", `{"tweet_content": "https://youtu.be/abc123"}`)
	assert_.Equal(t, http.StatusInternalServerError, status)
	assert_.Equal(t, map[string]any{"error": "Failed to generate slides"}, body)
}

func TestTweetEmptySlides(t *testing.T) {
	for _, deck := range []string{"", "null", "{}", "[]", `""`, "false", "0"} {
		t.Run(deck, func(t *testing.T) {
			s, g := newTestServer()
			g.deck = slides.Slides(deck)

			status, body := serve(t, s, http.MethodPost, "/api/tweet", `{"tweet_content": "https://youtu.be/abc123"}`)
			assert_.Equal(t, http.StatusInternalServerError, status)
			assert_.Equal(t, map[string]any{"error": "Failed to generate slides"}, body)
			assert_.Len(t, g.calls, 1)
		})
	}
}
