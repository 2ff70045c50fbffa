package playback

// RejectionPolicy decides what happens to coordinator state when a native
// play attempt is refused after the coordinator already marked it active.
// Embedded frames never acknowledge commands, so only native rejections
// reach a policy.
type RejectionPolicy interface {
	PlayRejected(c *Coordinator, id string, err error)
}

// Optimistic keeps the state set at command time. The adapter stays active
// even though its element is not playing. This is the default.
type Optimistic struct{}

func (Optimistic) PlayRejected(c *Coordinator, id string, err error) {
	c.logger.Debug("playback: play rejected", "id", id, "error", err)
}

// Reconcile clears the active id when the rejected adapter still holds it.
type Reconcile struct{}

func (Reconcile) PlayRejected(c *Coordinator, id string, err error) {
	c.logger.Debug("playback: play rejected, clearing active", "id", id, "error", err)
	if c.active == id {
		c.active = ""
	}
}
