//go:build js && wasm

package main

import (
	"log/slog"
	"os"
	"syscall/js"

	"github.com/sendrec/storefront/internal/page"
	"github.com/sendrec/storefront/internal/playback"
	"github.com/sendrec/storefront/internal/playback/domjs"
)

// sectionLoadEvent fires when the theme editor re-renders a section.
const sectionLoadEvent = "shopify:section:load"

func main() {
	level := slog.LevelInfo
	if js.Global().Get("VideoControllerDebug").Truthy() {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	global := js.Global()
	if existing := global.Get("VideoController"); existing.Truthy() {
		logger.Warn("page: video controller already installed")
		return
	}

	doc := domjs.NewDocument()
	controller := page.New(doc, logger, playback.WithObserverFactory(domjs.NewObserverFactory()))

	api := js.Global().Get("Object").New()
	api.Set("registerPlayerFromElement", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		container := domjs.Wrap(args[0])
		if !container.Valid() {
			return nil
		}
		controller.RegisterFromContainer(container)
		return nil
	}))
	api.Set("unregisterPlayerById", idFunc(controller.Unregister))
	api.Set("play", idFunc(controller.Play))
	api.Set("pause", idFunc(controller.Pause))
	api.Set("pauseAll", js.FuncOf(func(this js.Value, args []js.Value) any {
		controller.PauseAll()
		return nil
	}))
	api.Set("isPlaying", js.FuncOf(func(this js.Value, args []js.Value) any {
		id, ok := idArg(args)
		return ok && controller.IsPlaying(id)
	}))
	global.Set("VideoController", api)

	controller.Start()
	doc.On(sectionLoadEvent, func() { controller.Rescan() })
	doc.OnPageHide(controller.PageHide)

	select {}
}

func idArg(args []js.Value) (string, bool) {
	if len(args) == 0 || args[0].Type() != js.TypeString {
		return "", false
	}
	return args[0].String(), true
}

func idFunc(fn func(id string)) js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) any {
		if id, ok := idArg(args); ok {
			fn(id)
		}
		return nil
	})
}
