package section

import (
	"html/template"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/mssola/useragent"
	"github.com/sendrec/storefront/internal/httputil"
	"github.com/sendrec/storefront/internal/playback"
)

type pageSection struct {
	ID        string
	Title     string
	Native    bool
	VideoURL  string
	PosterURL string
	EmbedURL  string
}

type pageData struct {
	Sections []pageSection
	Nonce    string
	Mobile   bool
	Scripts  bool
}

var storefrontPageTemplate = template.Must(template.New("storefront").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Storefront</title>
    <style nonce="{{.Nonce}}">
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { background: #fff; color: #111827; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif; }
        .video-section { max-width: 960px; margin: 0 auto 48px; padding: 0 16px; }
        .video-section h2 { font-size: 1.25rem; margin-bottom: 12px; }
        .video-frame { position: relative; aspect-ratio: 16 / 9; background: #000; }
        .video-frame video, .video-frame iframe { position: absolute; inset: 0; width: 100%; height: 100%; border: 0; object-fit: cover; }
        .video-play { position: absolute; left: 50%; top: 50%; transform: translate(-50%, -50%); padding: 12px 20px; border: none; border-radius: 999px; background: rgba(17, 24, 39, 0.8); color: #fff; font-size: 0.875rem; cursor: pointer; }
        .empty { text-align: center; padding: 64px 16px; color: #6b7280; }
    </style>
</head>
<body>
    <main>
    {{- range .Sections}}
        <section class="video-section">
            <h2>{{.Title}}</h2>
            <div class="video-frame" data-video-id="{{.ID}}">
            {{- if .Native}}
                <video controls preload="metadata" src="{{.VideoURL}}"{{if .PosterURL}} poster="{{.PosterURL}}"{{end}}{{if $.Mobile}} muted playsinline webkit-playsinline{{end}}></video>
            {{- else}}
                <iframe src="{{.EmbedURL}}" title="{{.Title}}" allow="autoplay; encrypted-media; picture-in-picture; fullscreen" loading="lazy"></iframe>
            {{- end}}
                <button type="button" class="video-play" data-video-play-button>Play</button>
            </div>
        </section>
    {{- else}}
        <p class="empty">No videos yet.</p>
    {{- end}}
    </main>
    {{- if .Scripts}}
    <script nonce="{{.Nonce}}" src="/assets/wasm_exec.js"></script>
    <script nonce="{{.Nonce}}" src="/assets/bootstrap.js"></script>
    {{- end}}
</body>
</html>`))

// embedURL switches on the provider's JS API so the frame accepts the
// coordinator's play and pause messages.
func embedURL(kind playback.Kind, src string) string {
	u, err := url.Parse(src)
	if err != nil {
		return src
	}
	q := u.Query()
	switch kind {
	case playback.KindYouTube:
		q.Set("enablejsapi", "1")
	case playback.KindVimeo:
		q.Set("api", "1")
	default:
		return src
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	nonce := httputil.NonceFromContext(r.Context())

	sections, err := h.listSections(r.Context())
	if err != nil {
		slog.Error("section: page query failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load page")
		return
	}

	ua := useragent.New(r.UserAgent())
	data := pageData{
		Nonce:   nonce,
		Mobile:  ua.Mobile(),
		Scripts: !ua.Bot(),
	}

	for _, s := range sections {
		item := pageSection{ID: s.ID, Title: s.Title}
		switch {
		case s.FileKey != nil:
			videoURL, err := h.storage.PresignPlayback(r.Context(), *s.FileKey)
			if err != nil {
				slog.Error("section: failed to presign video", "id", s.ID, "error", err)
				continue
			}
			item.Native = true
			item.VideoURL = videoURL
			if s.PosterKey != nil {
				if posterURL, err := h.storage.PresignPlayback(r.Context(), *s.PosterKey); err == nil {
					item.PosterURL = posterURL
				}
			}
		case s.SourceURL != nil:
			item.EmbedURL = embedURL(playback.KindFromSource(*s.SourceURL), *s.SourceURL)
		default:
			continue
		}
		data.Sections = append(data.Sections, item)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := storefrontPageTemplate.Execute(w, data); err != nil {
		slog.Error("section: failed to render page", "error", err)
	}
}
