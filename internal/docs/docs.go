// Package docs serves the OpenAPI description of the section management API
// and a browsable reference page for theme developers.
package docs

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
)

//go:embed openapi.yaml
var specYAML []byte

const specPath = "/api/docs/openapi.yaml"

// Mount registers the reference page and the raw spec on r.
func Mount(r chi.Router) {
	r.Get("/api/docs", HandleDocs)
	r.Get(specPath, HandleSpec)
}

func HandleSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(specYAML)
}

// HandleDocs replaces the page CSP: the reference viewer loads from jsDelivr
// and injects inline styles.
func HandleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Security-Policy",
		"default-src 'self'; "+
			"script-src 'self' https://cdn.jsdelivr.net 'unsafe-inline'; "+
			"style-src 'self' https://cdn.jsdelivr.net 'unsafe-inline'; "+
			"font-src 'self' https://cdn.jsdelivr.net data:; "+
			"img-src 'self' data:; connect-src 'self'; frame-ancestors 'self';")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(docsHTML))
}

const docsHTML = `<!DOCTYPE html>
<html><head>
  <title>Storefront Video Sections API</title>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
</head><body>
  <script id="api-reference" data-url="` + specPath + `"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body></html>`
