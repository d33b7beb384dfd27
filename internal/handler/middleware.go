package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/Raymond9734/voicemail-drop-backend/internal/auth"
	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

// LoggingMiddleware logs one line per request
func LoggingMiddleware(logger *otelzap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Ctx(r.Context()).Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}

// CORSMiddleware allows browser clients from origin
func CORSMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-Id")
			if origin != "*" {
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthMiddleware puts the caller's organization on the request context.
// Without an issuer every request acts as demoOrganization.
func AuthMiddleware(issuer *auth.Issuer, cookieName, demoOrganization string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if issuer == nil {
				ctx := auth.WithOrganization(r.Context(), demoOrganization)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			claims, err := issuer.Verify(auth.TokenFromRequest(r, cookieName))
			if err != nil {
				msg := auth.ErrInvalidToken.Error()
				if errors.Is(err, auth.ErrMissingToken) {
					msg = auth.ErrMissingToken.Error()
				}
				respondError(w, http.StatusUnauthorized, models.CodeUnauthorized, msg)
				return
			}

			ctx := auth.WithOrganization(r.Context(), claims.OrganizationID)
			ctx = auth.WithUser(ctx, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// organization returns the caller's organization set by AuthMiddleware
func organization(r *http.Request) (string, error) {
	id, ok := auth.OrganizationID(r.Context())
	if !ok {
		return "", models.ErrUnauthorizedWithMsg("organization context is required")
	}
	return id, nil
}
