//go:build js && wasm

package domjs

import (
	"syscall/js"

	"github.com/sendrec/storefront/internal/playback"
)

const containerSelector = "[" + playback.IDAttribute + "]"

// Document lists the video containers on the current page.
type Document struct {
	doc js.Value
}

func NewDocument() *Document {
	return &Document{doc: js.Global().Get("document")}
}

func (d *Document) Containers() []playback.Container {
	nodes := d.doc.Call("querySelectorAll", containerSelector)
	containers := make([]playback.Container, 0, nodes.Length())
	for i := 0; i < nodes.Length(); i++ {
		containers = append(containers, Wrap(nodes.Index(i)))
	}
	return containers
}

// Attached reports whether c is still connected to the document. Containers
// not created by this package are assumed attached.
func (d *Document) Attached(c playback.Container) bool {
	wrapped, ok := c.(*Container)
	if !ok {
		return true
	}
	return wrapped.el.Get("isConnected").Truthy()
}

// On binds fn to an event dispatched on the document.
func (d *Document) On(event string, fn func()) func() {
	return listen(d.doc, event, func(js.Value) { fn() })
}

// OnPageHide binds fn to the window's pagehide event. persisted is true when
// the page is entering the back/forward cache.
func (d *Document) OnPageHide(fn func(persisted bool)) func() {
	return listen(js.Global(), "pagehide", func(event js.Value) {
		fn(event.Truthy() && event.Get("persisted").Truthy())
	})
}
