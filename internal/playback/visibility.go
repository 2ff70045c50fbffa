package playback

const (
	// DefaultThreshold is the visible fraction of a container's area at which it
	// counts as in view. Half the area avoids flapping on corner visibility.
	DefaultThreshold = 0.5

	DefaultRootMargin = "0px"
)

// VisibilityEntry is one observer report for one container.
type VisibilityEntry struct {
	Target Container
	Ratio  float64
}

// ObserverOptions configures the runtime's intersection observer.
type ObserverOptions struct {
	Threshold  float64
	RootMargin string
}

// VisibilityObserver watches containers for viewport intersection changes.
type VisibilityObserver interface {
	Observe(c Container)
	Unobserve(c Container)
	Disconnect()
}

// ObserverFactory creates an observer that delivers batches of entries to
// callback. It returns false when the runtime has no observation capability;
// the coordinator then keeps working for explicit commands only.
type ObserverFactory func(opts ObserverOptions, callback func([]VisibilityEntry)) (VisibilityObserver, bool)

// handleVisibility applies the scroll policy to a batch. Entries are handled
// one at a time in delivery order; each decision reads only that adapter's
// own state.
func (c *Coordinator) handleVisibility(entries []VisibilityEntry) {
	for _, entry := range entries {
		if entry.Target == nil {
			continue
		}
		id := entry.Target.Attribute(IDAttribute)
		a, ok := c.adapters[id]
		if !ok {
			continue
		}

		inView := entry.Ratio >= c.threshold

		switch {
		case !inView && c.IsPlaying(id):
			a.autoResume = true
			c.Pause(id)
			c.logger.Debug("playback: paused out of view", "id", id)
		case inView && a.autoResume:
			c.Play(id)
			a.autoResume = false
			c.logger.Debug("playback: resumed in view", "id", id)
		}
	}
}
