package section

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sendrec/storefront/internal/database"
	"github.com/sendrec/storefront/internal/httputil"
	"github.com/sendrec/storefront/internal/playback"
	"github.com/sendrec/storefront/internal/storage"
	"github.com/sendrec/storefront/internal/validate"
)

// ObjectStorage is the media bucket as sections use it. Keys come from
// storage.NewKey.
type ObjectStorage interface {
	PresignUpload(ctx context.Context, key, contentType string, size int64) (string, error)
	PresignPlayback(ctx context.Context, key string) (string, error)
	Stat(ctx context.Context, key string) (storage.Object, error)
	Remove(ctx context.Context, key string) error
}

// invalidTextRepresentation is raised when an id is not a valid uuid.
const invalidTextRepresentation = "22P02"

// Section is one video block on the storefront page.
type Section struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Kind      string    `json:"kind"`
	SourceURL *string   `json:"sourceUrl,omitempty"`
	FileKey   *string   `json:"fileKey,omitempty"`
	PosterKey *string   `json:"posterKey,omitempty"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

type Handler struct {
	db      database.DBTX
	storage ObjectStorage
}

func NewHandler(db database.DBTX, s ObjectStorage) *Handler {
	return &Handler{db: db, storage: s}
}

const selectSections = `SELECT id, title, kind, source_url, file_key, poster_key, position, created_at
	 FROM video_sections
	 ORDER BY position, created_at`

func (h *Handler) listSections(ctx context.Context) ([]Section, error) {
	rows, err := h.db.Query(ctx, selectSections)
	if err != nil {
		return nil, fmt.Errorf("query sections: %w", err)
	}
	defer rows.Close()

	sections := []Section{}
	for rows.Next() {
		var s Section
		if err := rows.Scan(&s.ID, &s.Title, &s.Kind, &s.SourceURL, &s.FileKey, &s.PosterKey, &s.Position, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sections: %w", err)
	}
	return sections, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sections, err := h.listSections(r.Context())
	if err != nil {
		slog.Error("section: list failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list sections")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sections)
}

type createRequest struct {
	Title     string `json:"title"`
	SourceURL string `json:"sourceUrl"`
	FileKey   string `json:"fileKey"`
	PosterKey string `json:"posterKey"`
	Position  int    `json:"position"`
}

// kindFor decides the backend a new section plays through. Exactly one of
// sourceURL and fileKey must be set, and embeds must come from a provider the
// page coordinator can command.
func kindFor(req createRequest) (playback.Kind, string) {
	switch {
	case req.FileKey != "" && req.SourceURL != "":
		return playback.KindUnknown, "provide either sourceUrl or fileKey, not both"
	case req.FileKey != "":
		if msg := validate.FileKey(req.FileKey); msg != "" {
			return playback.KindUnknown, msg
		}
		if !storage.OwnsKey(req.FileKey) {
			return playback.KindUnknown, "fileKey must come from an upload URL"
		}
		return playback.KindNative, ""
	case req.SourceURL != "":
		if msg := validate.SourceURL(req.SourceURL); msg != "" {
			return playback.KindUnknown, msg
		}
		kind := playback.KindFromSource(req.SourceURL)
		if !kind.Embedded() {
			return playback.KindUnknown, "unsupported video provider"
		}
		return kind, ""
	default:
		return playback.KindUnknown, "sourceUrl or fileKey is required"
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Title == "" {
		httputil.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}
	if msg := validate.SectionTitle(req.Title); msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	kind, msg := kindFor(req)
	if msg != "" {
		httputil.WriteError(w, http.StatusBadRequest, msg)
		return
	}

	if kind == playback.KindNative {
		if !h.confirmUpload(r.Context(), w, req.FileKey, storage.Object.IsVideo, "uploaded file is not a video") {
			return
		}
	}
	if req.PosterKey != "" {
		if !storage.OwnsKey(req.PosterKey) {
			httputil.WriteError(w, http.StatusBadRequest, "posterKey must come from an upload URL")
			return
		}
		if !h.confirmUpload(r.Context(), w, req.PosterKey, storage.Object.IsImage, "poster is not an image") {
			return
		}
	}

	s := Section{
		Title:     req.Title,
		Kind:      kind.String(),
		SourceURL: optional(req.SourceURL),
		FileKey:   optional(req.FileKey),
		PosterKey: optional(req.PosterKey),
		Position:  req.Position,
	}

	err := h.db.QueryRow(r.Context(),
		`INSERT INTO video_sections (title, kind, source_url, file_key, poster_key, position)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at`,
		s.Title, s.Kind, s.SourceURL, s.FileKey, s.PosterKey, s.Position,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		slog.Error("section: create failed", "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to create section")
		return
	}

	if s.FileKey != nil || s.PosterKey != nil {
		if _, err := h.db.Exec(r.Context(),
			`DELETE FROM pending_uploads WHERE file_key = $1 OR file_key = $2`,
			s.FileKey, s.PosterKey,
		); err != nil {
			slog.Warn("section: failed to claim uploads", "id", s.ID, "error", err)
		}
	}

	httputil.WriteJSON(w, http.StatusCreated, s)
}

// confirmUpload checks that key was uploaded and has the expected kind of
// content. It writes the error response and returns false otherwise.
func (h *Handler) confirmUpload(ctx context.Context, w http.ResponseWriter, key string, want func(storage.Object) bool, wrongKind string) bool {
	obj, err := h.storage.Stat(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteError(w, http.StatusBadRequest, "uploaded file not found")
		return false
	}
	if err != nil {
		slog.Error("section: failed to confirm upload", "key", key, "error", err)
		httputil.WriteError(w, http.StatusBadGateway, "could not confirm upload")
		return false
	}
	if !want(obj) {
		httputil.WriteError(w, http.StatusBadRequest, wrongKind)
		return false
	}
	return true
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var fileKey, posterKey *string
	err := h.db.QueryRow(r.Context(),
		`DELETE FROM video_sections WHERE id = $1 RETURNING file_key, poster_key`,
		id,
	).Scan(&fileKey, &posterKey)
	var pgErr *pgconn.PgError
	if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresentation) {
		httputil.WriteError(w, http.StatusNotFound, "section not found")
		return
	}
	if err != nil {
		slog.Error("section: delete failed", "id", id, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "failed to delete section")
		return
	}

	for _, key := range []*string{fileKey, posterKey} {
		if key == nil {
			continue
		}
		if err := h.storage.Remove(r.Context(), *key); err != nil {
			slog.Error("section: failed to delete object", "key", *key, "error", err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

type uploadRequest struct {
	ContentType   string `json:"contentType"`
	ContentLength int64  `json:"contentLength"`
}

type uploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	FileKey   string `json:"fileKey"`
}

func (h *Handler) UploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ContentLength <= 0 {
		httputil.WriteError(w, http.StatusBadRequest, "contentLength is required")
		return
	}
	fileKey, err := storage.NewKey(req.ContentType)
	if errors.Is(err, storage.ErrUnsupportedType) {
		httputil.WriteError(w, http.StatusBadRequest, "unsupported content type")
		return
	}
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to generate file key")
		return
	}

	uploadURL, err := h.storage.PresignUpload(r.Context(), fileKey, req.ContentType, req.ContentLength)
	if err != nil {
		slog.Warn("section: upload url refused", "key", fileKey, "error", err)
		httputil.WriteError(w, http.StatusBadRequest, "could not create upload URL")
		return
	}

	if _, err := h.db.Exec(r.Context(), `INSERT INTO pending_uploads (file_key) VALUES ($1)`, fileKey); err != nil {
		slog.Error("section: failed to record pending upload", "key", fileKey, "error", err)
		httputil.WriteError(w, http.StatusInternalServerError, "could not create upload URL")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, uploadResponse{UploadURL: uploadURL, FileKey: fileKey})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
