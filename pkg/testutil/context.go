package testutil

import (
	"context"
	"net/http"

	id "verigate/pkg/domain"
	"verigate/pkg/requestcontext"
)

// WithActorID adds an admin actor to the request context.
// This simulates what the admin auth middleware would do.
// If actorID is not a valid UUID, it will not be added to the context.
func WithActorID(req *http.Request, actorID string) *http.Request {
	if parsed, err := id.ParseActorID(actorID); err == nil {
		return req.WithContext(requestcontext.WithActorID(req.Context(), parsed))
	}
	return req
}

// WithRequestID adds a correlation id to the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}

// AdminContext returns a background context carrying an actor, as service
// tests need.
func AdminContext(actorID id.ActorID) context.Context {
	return requestcontext.WithActorID(context.Background(), actorID)
}
