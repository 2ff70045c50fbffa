package playback

// Markup contract shared with the storefront page renderer.
const (
	// IDAttribute carries the stable identifier of a video container.
	IDAttribute = "data-video-id"

	// PlayTriggerAttribute marks elements inside a container whose click means play.
	PlayTriggerAttribute = "data-video-play-button"

	playTriggerSelector = "[" + PlayTriggerAttribute + "]"
)

// Container is the page-owned element wrapping one playable resource.
// The coordinator never destroys it; it only reads it and binds listeners.
type Container interface {
	Attribute(name string) string

	// NativeMedia returns the first nested media element, or nil.
	NativeMedia() MediaElement

	// EmbeddedFrame returns the first nested iframe, or nil.
	EmbeddedFrame() Frame

	// OnClick binds a delegated click listener. The handler receives the event
	// target. The returned func removes the listener.
	OnClick(handler func(target Element)) (unbind func())
}

// Element is a click target.
type Element interface {
	// Closest reports whether the element or one of its ancestors matches selector.
	Closest(selector string) bool
}

// MediaElement is a native audio or video element.
type MediaElement interface {
	// Play starts playback. The runtime may refuse asynchronously (autoplay
	// policy); onReject is then called from a later event.
	Play(onReject func(error))
	Pause()
	Paused() bool
	Ended() bool

	// OnPause binds a listener for the element's pause event.
	OnPause(handler func()) (unbind func())
}

// Frame is an embedded iframe.
type Frame interface {
	Source() string

	// PostMessage delivers message to the frame's own window. It returns false
	// when the frame has no content window yet.
	PostMessage(message string) bool
}
