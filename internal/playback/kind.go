package playback

import "strings"

// Kind identifies the backend a registered container plays through.
type Kind int

const (
	// KindUnknown marks a container with no playable child, or an iframe from a
	// provider the coordinator cannot command. Such adapters are tracked but
	// play/pause on them does nothing.
	KindUnknown Kind = iota

	// KindNative is an HTML media element nested in the container.
	KindNative

	// KindYouTube is a YouTube embed controlled through its iframe API messages.
	KindYouTube

	// KindVimeo is a Vimeo embed controlled through its player API messages.
	KindVimeo
)

const (
	youTubeHost = "youtube.com"
	vimeoHost   = "vimeo.com"
)

func (k Kind) String() string {
	switch k {
	case KindNative:
		return "native"
	case KindYouTube:
		return "youtube"
	case KindVimeo:
		return "vimeo"
	default:
		return "unknown"
	}
}

// Embedded reports whether the kind is driven by messages to an iframe.
func (k Kind) Embedded() bool {
	return k == KindYouTube || k == KindVimeo
}

// KindFromSource classifies an embedded frame address by provider host.
// Matching is a plain substring test, so www.youtube.com/embed/... and
// player.vimeo.com/video/... both resolve.
func KindFromSource(src string) Kind {
	switch {
	case strings.Contains(src, youTubeHost):
		return KindYouTube
	case strings.Contains(src, vimeoHost):
		return KindVimeo
	default:
		return KindUnknown
	}
}
