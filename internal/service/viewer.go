package service

import "context"

// Viewer is the requester an aggregate is assembled for. An empty ID means
// anonymous.
type Viewer struct {
	ID      string
	IsAdmin bool
}

type viewerKey struct{}

// NewViewerContext returns a copy of ctx carrying v.
func NewViewerContext(ctx context.Context, v Viewer) context.Context {
	return context.WithValue(ctx, viewerKey{}, v)
}

// ViewerFromContext returns the viewer carried by ctx, or an anonymous one.
func ViewerFromContext(ctx context.Context) Viewer {
	v, _ := ctx.Value(viewerKey{}).(Viewer)
	return v
}
