package server

import (
	"context"
	"crypto/subtle"
	"strings"

	v1 "github.com/moviehub/catalog/api/catalog/v1"
	"github.com/moviehub/catalog/internal/service"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
)

const viewerHeader = "X-Viewer-Id"

// bearerToken extracts the token of an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func isAdminToken(header, token string) bool {
	got, ok := bearerToken(header)
	if !ok || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(token)) == 1
}

// ViewerMiddleware puts the caller's identity into the context. The viewer id
// comes from X-Viewer-Id; a valid admin bearer token marks the viewer as admin.
func ViewerMiddleware(token string) middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			tr, ok := transport.FromServerContext(ctx)
			if !ok {
				return handler(ctx, req)
			}

			viewer := service.Viewer{
				ID:      strings.TrimSpace(tr.RequestHeader().Get(viewerHeader)),
				IsAdmin: isAdminToken(tr.RequestHeader().Get("Authorization"), token),
			}
			return handler(service.NewViewerContext(ctx, viewer), req)
		}
	}
}

// AdminMiddleware rejects admin operations that lack a valid bearer token.
func AdminMiddleware(token string) middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			tr, ok := transport.FromServerContext(ctx)
			if !ok {
				return nil, errors.Unauthorized("UNAUTHORIZED", "missing transport info")
			}
			if !v1.AdminOperations[tr.Operation()] {
				return handler(ctx, req)
			}

			authHeader := tr.RequestHeader().Get("Authorization")
			if authHeader == "" {
				return nil, errors.Unauthorized("UNAUTHORIZED", "missing Authorization header")
			}
			if _, ok := bearerToken(authHeader); !ok {
				return nil, errors.Unauthorized("UNAUTHORIZED", "invalid Authorization header format")
			}
			if !isAdminToken(authHeader, token) {
				return nil, errors.Forbidden("FORBIDDEN", "invalid token")
			}
			return handler(ctx, req)
		}
	}
}
