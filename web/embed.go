// Package web embeds the browser bundle: the Go wasm runtime glue, the
// bootstrap script and the compiled storefront.wasm produced by `make wasm`.
package web

import "embed"

//go:embed dist
var DistFS embed.FS
