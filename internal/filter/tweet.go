package filter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/alanbriolat/video-slides"
	"github.com/alanbriolat/video-slides/internal/session"
	"github.com/alanbriolat/video-slides/provider/youtube"
)

const maxBodySize = 1 << 20

const (
	MessageInvalidData   = "Invalid data"
	MessageNoLink        = "No YouTube link found"
	MessageGenerated     = "Slides generated successfully"
	MessageSlidesFailure = "Failed to generate slides"
)

// Tweet is the payload posted for each new tweet. TweetID and Author are echoed back untouched.
type Tweet struct {
	Content *string         `json:"tweet_content"`
	TweetID json.RawMessage `json:"tweet_id"`
	Author  json.RawMessage `json:"author"`
}

type TweetResponse struct {
	Message     string          `json:"message"`
	TweetID     json.RawMessage `json:"tweet_id"`
	Author      json.RawMessage `json:"author"`
	YoutubeLink string          `json:"youtube_link"`
	Slides      json.RawMessage `json:"slides"`
}

type TweetAPI struct {
	generator SlidesGenerator
	registry  *video_slides.ProviderRegistry
	log       *zap.SugaredLogger
}

func NewTweetAPI(generator SlidesGenerator, registry *video_slides.ProviderRegistry, log *zap.SugaredLogger) *TweetAPI {
	if registry == nil {
		registry = &video_slides.DefaultProviderRegistry
	}
	return &TweetAPI{
		generator: generator,
		registry:  registry,
		log:       log,
	}
}

func (a *TweetAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	head, tail := ShiftPath(r.URL.Path)
	switch {
	case head == "tweet" && tail == "/" && r.Method == http.MethodPost:
		a.Receive(w, r)
	case head == "tweet" && tail == "/":
		Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		Error(w, http.StatusNotFound, "Not found")
	}
}

// Receive handles one tweet: find a link, generate slides for it, and report back.
func (a *TweetAPI) Receive(w http.ResponseWriter, r *http.Request) {
	var tweet Tweet
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&tweet); err != nil {
		a.log.Debugw("undecodable tweet", "error", err)
		Error(w, http.StatusBadRequest, MessageInvalidData)
		return
	}
	if tweet.Content == nil {
		Error(w, http.StatusBadRequest, MessageInvalidData)
		return
	}

	link := youtube.FindLink(*tweet.Content)
	if link == "" {
		Message(w, http.StatusOK, MessageNoLink)
		return
	}
	id, err := session.Extract(a.registry, withScheme(link))
	if err != nil {
		a.log.Infow("ignoring unrecognised link", "link", link, "error", err)
		Message(w, http.StatusOK, MessageNoLink)
		return
	}

	deck, err := a.generator.GenerateSlides(r.Context(), id)
	if err == nil && emptyDeck(deck) {
		err = fmt.Errorf("empty slides %s", string(deck))
	}
	if err != nil {
		a.log.Errorw("error generating slides", "identifier", id, "error", err)
		Error(w, http.StatusInternalServerError, MessageSlidesFailure)
		return
	}

	JSON(w, http.StatusOK, TweetResponse{
		Message:     MessageGenerated,
		TweetID:     nullIfEmpty(tweet.TweetID),
		Author:      nullIfEmpty(tweet.Author),
		YoutubeLink: link,
		Slides:      deck,
	})
}

// withScheme makes a bare "youtu.be/..." or "www.youtube.com/..." word parseable as a URL.
func withScheme(link string) string {
	if strings.Contains(link, "://") {
		return link
	}
	return "https://" + link
}

// emptyDeck is true for a body with nothing in it: null, false, 0, "", [] or {}.
func emptyDeck(deck json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(deck, &v); err != nil {
		return true
	}
	switch v := v.(type) {
	case nil:
		return true
	case bool:
		return !v
	case float64:
		return v == 0
	case string:
		return v == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

func nullIfEmpty(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	return raw
}
