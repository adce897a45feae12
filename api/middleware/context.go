package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/floorline/backoffice/pkg/logger"
)

type contextKey string

const (
	ctxStaffID contextKey = "staff_id"

	staffIDHeader = "X-Staff-Id"
)

func StaffIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxStaffID).(string); ok {
		return v
	}
	return ""
}

// WithStaffID injects the acting staff member into the context.
func WithStaffID(ctx context.Context, staffID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxStaffID, staffID)
}

// Staff copies the staff id set by the back-office gateway onto the request
// context and the request logger. Requests without one pass through anonymous.
func Staff(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			staffID := strings.TrimSpace(r.Header.Get(staffIDHeader))
			if staffID == "" {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithStaffID(r.Context(), staffID)
			if logg != nil {
				ctx = logg.WithActor(ctx, staffID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
