//go:build js && wasm

package domjs

import (
	"syscall/js"

	"github.com/sendrec/storefront/internal/playback"
)

type observer struct {
	io       js.Value
	callback js.Func
}

// NewObserverFactory returns a factory backed by IntersectionObserver. The
// factory reports false when the browser does not provide one.
func NewObserverFactory() playback.ObserverFactory {
	return func(opts playback.ObserverOptions, callback func([]playback.VisibilityEntry)) (playback.VisibilityObserver, bool) {
		ctor := js.Global().Get("IntersectionObserver")
		if ctor.Type() != js.TypeFunction {
			return nil, false
		}

		o := &observer{}
		o.callback = js.FuncOf(func(this js.Value, args []js.Value) any {
			if len(args) == 0 {
				return nil
			}
			list := args[0]
			entries := make([]playback.VisibilityEntry, 0, list.Length())
			for i := 0; i < list.Length(); i++ {
				entry := list.Index(i)
				entries = append(entries, playback.VisibilityEntry{
					Target: Wrap(entry.Get("target")),
					Ratio:  entry.Get("intersectionRatio").Float(),
				})
			}
			callback(entries)
			return nil
		})

		config := js.Global().Get("Object").New()
		config.Set("threshold", opts.Threshold)
		config.Set("rootMargin", opts.RootMargin)
		o.io = ctor.New(o.callback, config)
		return o, true
	}
}

func (o *observer) Observe(c playback.Container) {
	if el, ok := c.(*Container); ok {
		o.io.Call("observe", el.el)
	}
}

func (o *observer) Unobserve(c playback.Container) {
	if el, ok := c.(*Container); ok {
		o.io.Call("unobserve", el.el)
	}
}

func (o *observer) Disconnect() {
	o.io.Call("disconnect")
	o.callback.Release()
}
