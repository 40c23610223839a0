// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package authz

import (
	"context"

	"github.com/inkgate/inkgate/internal/models"
)

type contextKey string

// actorKey is the context key the transport uses to hand the
// authenticated actor to downstream handlers.
const actorKey contextKey = "actor"

// WithActor returns a context carrying the actor for the request.
func WithActor(ctx context.Context, actor *models.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext retrieves the request actor. Returns the anonymous
// actor when the transport established no identity, so callers never see
// a nil actor.
func ActorFromContext(ctx context.Context) *models.Actor {
	if actor, ok := ctx.Value(actorKey).(*models.Actor); ok && actor != nil {
		return actor
	}
	return models.Anonymous()
}
