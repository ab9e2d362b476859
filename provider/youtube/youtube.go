package youtube

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/alanbriolat/video-slides"
)

const (
	ShortLinkHost  = "youtu.be"
	LongLinkDomain = "youtube.com"
)

var (
	ErrUnparseable      = errors.New("not a URL")
	ErrUnrecognisedHost = errors.New("unrecognised hostname")
	ErrNoVideoID        = errors.New("could not extract video ID")
)

// CanonicalURL is the watch page for a video ID.
func CanonicalURL(id video_slides.Identifier) string {
	return fmt.Sprintf("https://www.%s/watch?v=%s", LongLinkDomain, url.QueryEscape(string(id)))
}

// Match extracts the video ID from a YouTube link.
func Match(s string) (video_slides.Identifier, error) {
	parsedURL, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnparseable, err)
	}
	if parsedURL.Host == "" {
		return "", ErrUnparseable
	}
	return extractVideoID(parsedURL)
}

func New() video_slides.Provider {
	return video_slides.Provider{Name: "youtube", Match: Match}
}

// Extract video ID from YouTube URL.
//
// Allowed URL formats:
//
//	http(s)://youtu.be/{VIDEO_ID}
//	http(s)://{anything}youtube.com/{anything}?v={VIDEO_ID}
func extractVideoID(u *url.URL) (video_slides.Identifier, error) {
	var id string
	host := strings.ToLower(u.Hostname())
	switch {
	case host == ShortLinkHost:
		// Split before unescaping, so an encoded slash stays part of the ID
		segment := strings.SplitN(strings.TrimPrefix(u.EscapedPath(), "/"), "/", 2)[0]
		unescaped, err := url.PathUnescape(segment)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnparseable, err)
		}
		id = unescaped
	case strings.Contains(host, LongLinkDomain):
		id = u.Query().Get("v")
	default:
		return "", fmt.Errorf("%w %q", ErrUnrecognisedHost, host)
	}
	if id == "" {
		return "", ErrNoVideoID
	}
	return video_slides.Identifier(id), nil
}

// FindLink returns the first whitespace-separated word of text that looks like a YouTube link, or "" if there is
// none. The word is not validated; pass it to Match for that.
func FindLink(text string) string {
	for _, word := range strings.Fields(text) {
		if strings.Contains(word, LongLinkDomain) || strings.Contains(word, ShortLinkHost) {
			return word
		}
	}
	return ""
}

func init() {
	video_slides.DefaultProviderRegistry.MustAdd(New())
}
