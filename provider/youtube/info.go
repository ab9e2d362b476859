package youtube

import (
	"context"
	"fmt"
	"time"

	"github.com/kkdai/youtube/v2"

	"github.com/alanbriolat/video-slides"
)

// Info is the public metadata of a video.
type Info struct {
	ID       video_slides.Identifier
	Title    string
	Author   string
	Duration time.Duration
}

func (i *Info) String() string {
	return fmt.Sprintf("%s [%s]", i.Title, i.ID)
}

// Recon fetches the metadata of the video with the given ID from YouTube itself.
func Recon(ctx context.Context, id video_slides.Identifier) (*Info, error) {
	client := youtube.Client{}
	video, err := client.GetVideoContext(ctx, CanonicalURL(id))
	if err != nil {
		return nil, fmt.Errorf("failed to get video info: %w", err)
	}
	return &Info{
		ID:       video_slides.Identifier(video.ID),
		Title:    video.Title,
		Author:   video.Author,
		Duration: video.Duration,
	}, nil
}
