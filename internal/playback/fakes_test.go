package playback

import "strings"

// commandLog records commands across players so tests can check ordering.
type commandLog struct {
	entries []string
}

func (l *commandLog) add(entry string) { l.entries = append(l.entries, entry) }

func (l *commandLog) index(entry string) int {
	for i, e := range l.entries {
		if e == entry {
			return i
		}
	}
	return -1
}

type fakeMedia struct {
	name       string
	log        *commandLog
	paused     bool
	ended      bool
	rejectWith error
	rejects    []func(error)
	onPause    []func()
	plays      int
	pauses     int
}

func newFakeMedia(name string, log *commandLog) *fakeMedia {
	return &fakeMedia{name: name, log: log, paused: true}
}

func (m *fakeMedia) Play(onReject func(error)) {
	m.plays++
	m.log.add("play:" + m.name)
	if m.rejectWith != nil {
		m.rejects = append(m.rejects, onReject)
		return
	}
	m.paused = false
}

func (m *fakeMedia) Pause() {
	m.pauses++
	m.log.add("pause:" + m.name)
	m.paused = true
}

func (m *fakeMedia) Paused() bool { return m.paused }
func (m *fakeMedia) Ended() bool  { return m.ended }

func (m *fakeMedia) OnPause(handler func()) func() {
	m.onPause = append(m.onPause, handler)
	idx := len(m.onPause) - 1
	return func() { m.onPause[idx] = nil }
}

// userPause simulates the element's own controls pausing it.
func (m *fakeMedia) userPause() {
	m.paused = true
	m.firePause()
}

func (m *fakeMedia) firePause() {
	for _, h := range m.onPause {
		if h != nil {
			h()
		}
	}
}

// rejectPending delivers the autoplay refusal as a later event would.
func (m *fakeMedia) rejectPending() {
	pending := m.rejects
	m.rejects = nil
	for _, reject := range pending {
		if reject != nil {
			reject(m.rejectWith)
		}
	}
}

type fakeFrame struct {
	name     string
	src      string
	log      *commandLog
	messages []string
	detached bool
}

func (f *fakeFrame) Source() string { return f.src }

func (f *fakeFrame) PostMessage(message string) bool {
	if f.detached {
		return false
	}
	f.messages = append(f.messages, message)
	if f.log != nil {
		f.log.add("message:" + f.name + ":" + message)
	}
	return true
}

type fakeContainer struct {
	attrs   map[string]string
	media   *fakeMedia
	frame   *fakeFrame
	clicks  []func(Element)
	unbound int
}

func newFakeContainer(id string) *fakeContainer {
	attrs := map[string]string{}
	if id != "" {
		attrs[IDAttribute] = id
	}
	return &fakeContainer{attrs: attrs}
}

func (c *fakeContainer) Attribute(name string) string { return c.attrs[name] }

func (c *fakeContainer) NativeMedia() MediaElement {
	if c.media == nil {
		return nil
	}
	return c.media
}

func (c *fakeContainer) EmbeddedFrame() Frame {
	if c.frame == nil {
		return nil
	}
	return c.frame
}

func (c *fakeContainer) OnClick(handler func(Element)) func() {
	c.clicks = append(c.clicks, handler)
	idx := len(c.clicks) - 1
	return func() {
		c.clicks[idx] = nil
		c.unbound++
	}
}

func (c *fakeContainer) click(target Element) {
	for _, h := range c.clicks {
		if h != nil {
			h(target)
		}
	}
}

// fakeElement matches selectors listed in its ancestry.
type fakeElement struct {
	matches []string
}

func (e fakeElement) Closest(selector string) bool {
	for _, m := range e.matches {
		if strings.EqualFold(m, selector) {
			return true
		}
	}
	return false
}

var playButton = fakeElement{matches: []string{playTriggerSelector}}

type fakeObserver struct {
	options      ObserverOptions
	callback     func([]VisibilityEntry)
	observed     map[Container]bool
	disconnected bool
}

func (o *fakeObserver) Observe(c Container)   { o.observed[c] = true }
func (o *fakeObserver) Unobserve(c Container) { delete(o.observed, c) }
func (o *fakeObserver) Disconnect()           { o.disconnected = true }

func (o *fakeObserver) report(entries ...VisibilityEntry) { o.callback(entries) }

// observerFactory returns a factory that records the observer it creates.
func observerFactory(created **fakeObserver) ObserverFactory {
	return func(opts ObserverOptions, callback func([]VisibilityEntry)) (VisibilityObserver, bool) {
		o := &fakeObserver{options: opts, callback: callback, observed: map[Container]bool{}}
		*created = o
		return o, true
	}
}

func unavailableObserver(ObserverOptions, func([]VisibilityEntry)) (VisibilityObserver, bool) {
	return nil, false
}

func nativeContainer(id string, log *commandLog) (*fakeContainer, *fakeMedia) {
	c := newFakeContainer(id)
	c.media = newFakeMedia(id, log)
	return c, c.media
}

func frameContainer(id, src string, log *commandLog) (*fakeContainer, *fakeFrame) {
	c := newFakeContainer(id)
	c.frame = &fakeFrame{name: id, src: src, log: log}
	return c, c.frame
}

func visible(c Container) VisibilityEntry { return VisibilityEntry{Target: c, Ratio: 1} }
func hidden(c Container) VisibilityEntry  { return VisibilityEntry{Target: c, Ratio: 0} }
