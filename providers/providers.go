// Package providers registers every built-in provider with video_slides.DefaultProviderRegistry; import it for its
// side effects.
package providers

import (
	_ "github.com/alanbriolat/video-slides/provider/youtube"
)
