package playback

// Player is the command capability every adapter backend implements.
// Commands are fire-and-forget: none of them waits for the backend to act.
type Player interface {
	Kind() Kind
	Play()
	Pause()
}

// PlaybackProber is implemented by players whose backend exposes its real
// playback state. Players without it are approximated by the coordinator's
// active id.
type PlaybackProber interface {
	Playing() bool
}

// Provider control messages. Frames are addressed one at a time, never broadcast.
const (
	youTubePlayMessage  = `{"event":"command","func":"playVideo","args":""}`
	youTubePauseMessage = `{"event":"command","func":"pauseVideo","args":""}`
	vimeoPlayMessage    = `{"method":"play"}`
	vimeoPauseMessage   = `{"method":"pause"}`
)

type nativePlayer struct {
	media    MediaElement
	onReject func(error)
}

func (p *nativePlayer) Kind() Kind { return KindNative }

func (p *nativePlayer) Play() { p.media.Play(p.onReject) }

func (p *nativePlayer) Pause() { p.media.Pause() }

func (p *nativePlayer) Playing() bool {
	return !p.media.Paused() && !p.media.Ended()
}

// framePlayer drives an embedded provider by posting its control messages.
type framePlayer struct {
	kind         Kind
	frame        Frame
	playMessage  string
	pauseMessage string
}

func newYouTubePlayer(f Frame) *framePlayer {
	return &framePlayer{kind: KindYouTube, frame: f, playMessage: youTubePlayMessage, pauseMessage: youTubePauseMessage}
}

func newVimeoPlayer(f Frame) *framePlayer {
	return &framePlayer{kind: KindVimeo, frame: f, playMessage: vimeoPlayMessage, pauseMessage: vimeoPauseMessage}
}

func (p *framePlayer) Kind() Kind { return p.kind }

func (p *framePlayer) Play() { p.frame.PostMessage(p.playMessage) }

func (p *framePlayer) Pause() { p.frame.PostMessage(p.pauseMessage) }

// nullPlayer stands in for unresolved containers.
type nullPlayer struct{}

func (nullPlayer) Kind() Kind { return KindUnknown }
func (nullPlayer) Play()      {}
func (nullPlayer) Pause()     {}

// resolution is the outcome of inspecting a container's children.
type resolution struct {
	player Player
	media  MediaElement
	found  bool
}

// resolve picks the backend for a container. A nested media element wins over
// any iframe; an iframe counts only when its source names a known provider.
func resolve(c Container, onReject func(error)) resolution {
	if media := c.NativeMedia(); media != nil {
		return resolution{player: &nativePlayer{media: media, onReject: onReject}, media: media, found: true}
	}
	frame := c.EmbeddedFrame()
	if frame == nil {
		return resolution{player: nullPlayer{}}
	}
	switch KindFromSource(frame.Source()) {
	case KindYouTube:
		return resolution{player: newYouTubePlayer(frame), found: true}
	case KindVimeo:
		return resolution{player: newVimeoPlayer(frame), found: true}
	default:
		return resolution{player: nullPlayer{}, found: true}
	}
}
