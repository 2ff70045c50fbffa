// Package page composes the storefront page's behaviours for one page
// session. It owns the playback coordinator and hands it to whatever needs
// to register players.
package page

import (
	"log/slog"

	"github.com/sendrec/storefront/internal/playback"
)

// Document lists the video containers currently in the page.
type Document interface {
	Containers() []playback.Container

	// Attached reports whether container is still part of the page. A section
	// re-rendered by the theme editor leaves its old container detached.
	Attached(container playback.Container) bool
}

// Controller is created once per page session and torn down on navigation.
// Like the coordinator it owns, it must only be used from the page's event loop.
type Controller struct {
	doc         Document
	coordinator *playback.Coordinator
	logger      *slog.Logger
	started     bool
	tornDown    bool
}

func New(doc Document, logger *slog.Logger, opts ...playback.Option) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]playback.Option{playback.WithLogger(logger)}, opts...)
	return &Controller{
		doc:         doc,
		coordinator: playback.New(opts...),
		logger:      logger,
	}
}

// Start registers every video container present in the document.
func (c *Controller) Start() {
	if c.started || c.tornDown {
		return
	}
	c.started = true
	n := c.Rescan()
	c.logger.Info("page: video controller started", "containers", n)
}

// Rescan registers containers added since the last scan, such as a section
// re-rendered by the theme editor. Players whose container left the page are
// paused and unregistered first, so a re-rendered section that keeps its id
// is registered afresh.
func (c *Controller) Rescan() int {
	if c.tornDown || c.doc == nil {
		return 0
	}
	c.dropDetached()
	containers := c.doc.Containers()
	for _, container := range containers {
		c.coordinator.RegisterFromContainer(container)
	}
	return len(containers)
}

func (c *Controller) dropDetached() {
	for id, container := range c.coordinator.Containers() {
		if c.doc.Attached(container) {
			continue
		}
		c.coordinator.Pause(id)
		c.coordinator.Unregister(id)
		c.logger.Debug("page: detached container unregistered", "id", id)
	}
}

// Videos returns the coordinator for code that registers players itself.
func (c *Controller) Videos() *playback.Coordinator {
	return c.coordinator
}

func (c *Controller) RegisterFromContainer(container playback.Container) {
	if c.tornDown {
		return
	}
	c.coordinator.RegisterFromContainer(container)
}

func (c *Controller) Unregister(id string) { c.coordinator.Unregister(id) }

func (c *Controller) Play(id string) { c.coordinator.Play(id) }

func (c *Controller) Pause(id string) { c.coordinator.Pause(id) }

func (c *Controller) PauseAll() { c.coordinator.PauseAll() }

func (c *Controller) IsPlaying(id string) bool { return c.coordinator.IsPlaying(id) }

// PageHide handles the page being hidden on navigation. A page kept in the
// back/forward cache is only paused, so it still works when restored.
func (c *Controller) PageHide(persisted bool) {
	if persisted {
		c.coordinator.PauseAll()
		c.logger.Debug("page: paused for back/forward cache")
		return
	}
	c.Teardown()
}

// Teardown pauses everything and releases all observation. Later calls are
// no-ops, and later registrations are refused.
func (c *Controller) Teardown() {
	if c.tornDown {
		return
	}
	c.tornDown = true
	c.coordinator.PauseAll()
	c.coordinator.Close()
	c.logger.Info("page: video controller torn down")
}
