//go:build js && wasm

// Package domjs binds the playback coordinator to the browser DOM through
// syscall/js.
package domjs

import (
	"errors"
	"syscall/js"

	"github.com/sendrec/storefront/internal/playback"
)

var errPlayRejected = errors.New("play rejected")

// Container wraps a page element carrying a data-video-id attribute.
type Container struct {
	el js.Value
}

func Wrap(el js.Value) *Container {
	return &Container{el: el}
}

// Valid reports whether the wrapped value is an element.
func (c *Container) Valid() bool {
	return c.el.Type() == js.TypeObject && c.el.Get("getAttribute").Type() == js.TypeFunction
}

func (c *Container) Attribute(name string) string {
	v := c.el.Call("getAttribute", name)
	if v.IsNull() || v.IsUndefined() {
		return ""
	}
	return v.String()
}

func (c *Container) NativeMedia() playback.MediaElement {
	v := c.el.Call("querySelector", "video")
	if v.IsNull() {
		return nil
	}
	return &mediaElement{el: v}
}

func (c *Container) EmbeddedFrame() playback.Frame {
	v := c.el.Call("querySelector", "iframe")
	if v.IsNull() {
		return nil
	}
	return &frame{el: v}
}

func (c *Container) OnClick(handler func(playback.Element)) func() {
	return listen(c.el, "click", func(event js.Value) {
		handler(element{el: event.Get("target")})
	})
}

// listen binds fn to an event and returns the matching unbind.
func listen(target js.Value, event string, fn func(js.Value)) func() {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			fn(args[0])
		} else {
			fn(js.Undefined())
		}
		return nil
	})
	target.Call("addEventListener", event, cb)
	return func() {
		target.Call("removeEventListener", event, cb)
		cb.Release()
	}
}

type element struct {
	el js.Value
}

// Closest is false for targets without Element.closest, such as text nodes.
func (e element) Closest(selector string) bool {
	if e.el.Type() != js.TypeObject || e.el.Get("closest").Type() != js.TypeFunction {
		return false
	}
	return !e.el.Call("closest", selector).IsNull()
}

type mediaElement struct {
	el js.Value
}

// Play calls HTMLMediaElement.play and routes a rejected promise to onReject.
// Both settle callbacks are released on whichever fires.
func (m *mediaElement) Play(onReject func(error)) {
	promise := m.el.Call("play")
	if promise.Type() != js.TypeObject || promise.Get("then").Type() != js.TypeFunction {
		return
	}

	var resolved, rejected js.Func
	release := func() {
		resolved.Release()
		rejected.Release()
	}
	resolved = js.FuncOf(func(this js.Value, args []js.Value) any {
		release()
		return nil
	})
	rejected = js.FuncOf(func(this js.Value, args []js.Value) any {
		release()
		if onReject != nil {
			onReject(rejectionError(args))
		}
		return nil
	})
	promise.Call("then", resolved, rejected)
}

func rejectionError(args []js.Value) error {
	if len(args) == 0 || args[0].Type() != js.TypeObject {
		return errPlayRejected
	}
	if name := args[0].Get("name"); name.Type() == js.TypeString {
		return errors.Join(errPlayRejected, errors.New(name.String()))
	}
	return errPlayRejected
}

func (m *mediaElement) Pause() { m.el.Call("pause") }

func (m *mediaElement) Paused() bool { return m.el.Get("paused").Bool() }

func (m *mediaElement) Ended() bool { return m.el.Get("ended").Bool() }

func (m *mediaElement) OnPause(handler func()) func() {
	return listen(m.el, "pause", func(js.Value) { handler() })
}

type frame struct {
	el js.Value
}

func (f *frame) Source() string {
	src := f.el.Get("src")
	if src.Type() != js.TypeString {
		return ""
	}
	return src.String()
}

func (f *frame) PostMessage(message string) bool {
	win := f.el.Get("contentWindow")
	if win.IsNull() || win.IsUndefined() {
		return false
	}
	win.Call("postMessage", message, "*")
	return true
}
