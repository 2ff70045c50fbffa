package auth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/sendrec/storefront/internal/httputil"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const adminKey contextKey = "admin"

// Handler guards the theme's section management API. There is a single
// admin account configured from the environment.
type Handler struct {
	jwtSecret    string
	adminEmail   string
	passwordHash []byte
}

func NewHandler(jwtSecret, adminEmail, adminPasswordHash string) *Handler {
	return &Handler{
		jwtSecret:    jwtSecret,
		adminEmail:   adminEmail,
		passwordHash: []byte(adminPasswordHash),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.WriteError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if len(h.passwordHash) == 0 {
		httputil.WriteError(w, http.StatusServiceUnavailable, "admin login not configured")
		return
	}

	emailMatches := subtle.ConstantTimeCompare([]byte(strings.ToLower(req.Email)), []byte(strings.ToLower(h.adminEmail))) == 1
	if err := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password)); err != nil || !emailMatches {
		httputil.WriteError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	accessToken, err := GenerateAccessToken(h.jwtSecret, h.adminEmail)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, tokenResponse{AccessToken: accessToken})
}

func (h *Handler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.WriteError(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		tokenStr, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := ValidateToken(h.jwtSecret, tokenStr)
		if err != nil {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		if claims.TokenType != "access" {
			httputil.WriteError(w, http.StatusUnauthorized, "invalid token type")
			return
		}

		ctx := context.WithValue(r.Context(), adminKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AdminFromContext returns the admin identity set by Middleware.
func AdminFromContext(ctx context.Context) string {
	admin, _ := ctx.Value(adminKey).(string)
	return admin
}
