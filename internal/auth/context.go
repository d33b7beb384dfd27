package auth

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey int

const (
	organizationKey ctxKey = iota + 1
	userKey
)

// WithOrganization stores the caller's organization on the context
func WithOrganization(ctx context.Context, organizationID string) context.Context {
	return context.WithValue(ctx, organizationKey, organizationID)
}

// OrganizationID returns the organization stored on the context, if any
func OrganizationID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(organizationKey).(string)
	return id, ok && id != ""
}

// WithUser stores the caller's user id on the context
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userKey, userID)
}

// UserID returns the user stored on the context
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userKey).(string)
	return id
}

// TokenFromRequest reads a bearer token, falling back to the named cookie
func TokenFromRequest(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookieName != "" {
		if c, err := r.Cookie(cookieName); err == nil {
			return c.Value
		}
	}
	return ""
}
