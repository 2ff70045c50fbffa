// Package playback coordinates video playback on a storefront page so that at
// most one registered player is active at a time.
//
// Players are registered from page containers carrying a data-video-id
// attribute. The coordinator pauses the previously active player before it
// starts another one, and pauses players that scroll out of view, resuming
// them when they come back.
//
// A Coordinator is not safe for concurrent use. All calls, including observer
// and DOM event callbacks, must come from the goroutine that owns the page
// (the browser event loop under js/wasm). Every state change completes inside
// the call that causes it.
package playback

import "log/slog"

type adapter struct {
	id         string
	container  Container
	player     Player
	media      MediaElement
	resolved   bool
	autoResume bool
	unbind     []func()
}

// Coordinator owns the player registry and the single active id.
type Coordinator struct {
	adapters  map[string]*adapter
	active    string
	observer  VisibilityObserver
	logger    *slog.Logger
	policy    RejectionPolicy
	threshold float64
	margin    string
	observe   ObserverFactory
	started   bool
}

type Option func(*Coordinator)

func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = l }
}

// WithObserverFactory supplies the runtime's visibility capability. Without
// it the coordinator does registry bookkeeping and explicit commands only.
func WithObserverFactory(f ObserverFactory) Option {
	return func(c *Coordinator) { c.observe = f }
}

func WithRejectionPolicy(p RejectionPolicy) Option {
	return func(c *Coordinator) { c.policy = p }
}

// WithThreshold sets the visible ratio at or above which a player counts as
// in view.
func WithThreshold(t float64) Option {
	return func(c *Coordinator) { c.threshold = t }
}

func WithRootMargin(m string) Option {
	return func(c *Coordinator) { c.margin = m }
}

func New(opts ...Option) *Coordinator {
	c := &Coordinator{
		adapters:  make(map[string]*adapter),
		logger:    slog.Default(),
		policy:    Optimistic{},
		threshold: DefaultThreshold,
		margin:    DefaultRootMargin,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// initObserver creates the observer on first registration, once.
func (c *Coordinator) initObserver() {
	if c.started {
		return
	}
	c.started = true
	if c.observe == nil {
		return
	}
	observer, ok := c.observe(ObserverOptions{Threshold: c.threshold, RootMargin: c.margin}, c.handleVisibility)
	if !ok {
		c.logger.Debug("playback: visibility observation unavailable")
		return
	}
	c.observer = observer
}

// RegisterFromContainer creates an adapter for container. Containers without
// an id and ids already registered are ignored.
func (c *Coordinator) RegisterFromContainer(container Container) {
	if container == nil {
		return
	}
	c.initObserver()

	id := container.Attribute(IDAttribute)
	if id == "" {
		c.logger.Debug("playback: container without id ignored")
		return
	}
	if _, exists := c.adapters[id]; exists {
		c.logger.Debug("playback: duplicate id ignored", "id", id)
		return
	}

	a := &adapter{id: id, container: container}
	c.applyResolution(a, resolve(container, c.rejectHandler(a)))
	c.adapters[id] = a

	if c.observer != nil {
		c.observer.Observe(container)
	}

	a.unbind = append(a.unbind, container.OnClick(func(target Element) {
		if target == nil || !target.Closest(playTriggerSelector) {
			return
		}
		if !a.resolved {
			// Deferred media may have injected the player after registration.
			c.applyResolution(a, resolve(container, c.rejectHandler(a)))
			c.bindPause(a)
		}
		c.Play(id)
	}))
	c.bindPause(a)

	c.logger.Debug("playback: registered", "id", id, "kind", a.player.Kind().String())
}

func (c *Coordinator) applyResolution(a *adapter, r resolution) {
	a.player = r.player
	a.media = r.media
	a.resolved = r.found
}

// bindPause clears the active id when a native element is paused from outside
// the coordinator, such as its own controls. Reaching the end does not count.
func (c *Coordinator) bindPause(a *adapter) {
	if a.media == nil {
		return
	}
	media, id := a.media, a.id
	a.unbind = append(a.unbind, media.OnPause(func() {
		if c.active == id && !media.Ended() {
			c.active = ""
		}
	}))
}

// rejectHandler routes a refusal to the policy only while a is still the
// adapter registered under its id. Late refusals from a replaced adapter are
// dropped.
func (c *Coordinator) rejectHandler(a *adapter) func(error) {
	return func(err error) {
		if c.adapters[a.id] != a {
			c.logger.Debug("playback: rejection from unregistered player ignored", "id", a.id)
			return
		}
		c.policy.PlayRejected(c, a.id, err)
	}
}

// Unregister stops observing the container for id and forgets it.
func (c *Coordinator) Unregister(id string) {
	a, ok := c.adapters[id]
	if !ok {
		return
	}
	if c.observer != nil {
		c.observer.Unobserve(a.container)
	}
	a.release()
	delete(c.adapters, id)
	if c.active == id {
		c.active = ""
	}
}

func (a *adapter) release() {
	for _, unbind := range a.unbind {
		if unbind != nil {
			unbind()
		}
	}
	a.unbind = nil
}

// Play makes id the active player. A different active player is paused first
// and loses its auto-resume mark. Rejected play attempts do not surface here.
func (c *Coordinator) Play(id string) {
	a, ok := c.adapters[id]
	if !ok {
		return
	}
	c.setActive(id)
	a.player.Play()
}

func (c *Coordinator) setActive(id string) {
	if c.active != "" && c.active != id {
		if prev, ok := c.adapters[c.active]; ok {
			prev.autoResume = false
			prev.player.Pause()
		}
	}
	c.active = id
}

func (c *Coordinator) Pause(id string) {
	a, ok := c.adapters[id]
	if !ok {
		return
	}
	a.player.Pause()
	if c.active == id {
		c.active = ""
	}
}

// PauseAll pauses every player and clears all auto-resume marks.
func (c *Coordinator) PauseAll() {
	for _, a := range c.adapters {
		a.autoResume = false
		a.player.Pause()
	}
	c.active = ""
}

// Containers returns the registered containers keyed by id.
func (c *Coordinator) Containers() map[string]Container {
	out := make(map[string]Container, len(c.adapters))
	for id, a := range c.adapters {
		out[id] = a.container
	}
	return out
}

// IsPlaying reports the element state for native players. Embedded players
// cannot be queried, so for them it reports whether id is the active id; a
// frame paused from inside its own controls still reads as playing.
func (c *Coordinator) IsPlaying(id string) bool {
	a, ok := c.adapters[id]
	if !ok {
		return false
	}
	if prober, ok := a.player.(PlaybackProber); ok {
		return prober.Playing()
	}
	return c.active == id
}

// Close stops all observation and unbinds every listener. The registry is
// emptied; a closed coordinator can be reused and will create a new observer
// on the next registration.
func (c *Coordinator) Close() {
	for id, a := range c.adapters {
		if c.observer != nil {
			c.observer.Unobserve(a.container)
		}
		a.release()
		delete(c.adapters, id)
	}
	if c.observer != nil {
		c.observer.Disconnect()
		c.observer = nil
	}
	c.started = false
	c.active = ""
}
