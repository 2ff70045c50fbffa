package server

import (
	"fmt"
	"net/http"

	"github.com/sendrec/storefront/internal/httputil"
)

// embedProviders are the player origins the storefront page frames.
const embedProviders = "https://www.youtube.com https://player.vimeo.com"

type SecurityConfig struct {
	BaseURL               string
	StorageEndpoint       string
	AllowedFrameAncestors string
}

func securityHeaders(cfg SecurityConfig) func(http.Handler) http.Handler {
	strictTransport := cfg.BaseURL != "" && hasHTTPS(cfg.BaseURL)

	storageSuffix := ""
	if cfg.StorageEndpoint != "" {
		storageSuffix = " " + cfg.StorageEndpoint
	}

	frameAncestors := "'self'"
	if cfg.AllowedFrameAncestors != "" {
		frameAncestors += " " + cfg.AllowedFrameAncestors
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nonce := httputil.GenerateNonce()
			ctx := httputil.ContextWithNonce(r.Context(), nonce)

			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "SAMEORIGIN")
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), autoplay=(self \"https://www.youtube.com\" \"https://player.vimeo.com\"), fullscreen=(self \"https://www.youtube.com\" \"https://player.vimeo.com\")")

			csp := fmt.Sprintf(
				"default-src 'self'; img-src 'self' data:%s; media-src 'self' data:%s; script-src 'self' 'nonce-%s' 'wasm-unsafe-eval'; style-src 'self' 'nonce-%s'; connect-src 'self'%s; frame-src %s; frame-ancestors %s;",
				storageSuffix, storageSuffix, nonce, nonce, storageSuffix, embedProviders, frameAncestors,
			)
			w.Header().Set("Content-Security-Policy", csp)

			if strictTransport {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func hasHTTPS(baseURL string) bool {
	return len(baseURL) >= 8 && baseURL[:8] == "https://"
}
