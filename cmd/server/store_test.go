// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package main

import (
	"context"
	"errors"
	"testing"

	"github.com/inkgate/inkgate/internal/audit"
	"github.com/inkgate/inkgate/internal/authz"
	"github.com/inkgate/inkgate/internal/guard"
	"github.com/inkgate/inkgate/internal/models"
)

func testActor() *models.Actor {
	return &models.Actor{
		ID:              "user-1",
		Roles:           []models.Role{models.RoleAuthor},
		IsAuthenticated: true,
	}
}

func TestMemoryEntityStore_CreateAndFetch(t *testing.T) {
	store := newMemoryEntityStore()

	entity, err := store.create(&guard.Request{
		Actor:      testActor(),
		EntityType: "post",
		Payload:    map[string]any{"title": "First"},
	})
	if err != nil {
		t.Fatalf("create() error = %v", err)
	}
	if entity.OwnerID() != "user-1" {
		t.Errorf("owner = %q, want user-1", entity.OwnerID())
	}
	if entity.EntityID() == "" {
		t.Fatal("create() assigned no ID")
	}

	fetched, err := store.Fetch(context.Background(), "post", entity.EntityID())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if fetched.Fields()["title"] != "First" {
		t.Errorf("title = %v, want First", fetched.Fields()["title"])
	}
}

func TestMemoryEntityStore_FetchMissing(t *testing.T) {
	store := newMemoryEntityStore()

	_, err := store.Fetch(context.Background(), "post", "nope")
	if !errors.Is(err, errEntityNotFound) {
		t.Errorf("Fetch() error = %v, want errEntityNotFound", err)
	}
}

func TestMemoryEntityStore_UpdateMergesFields(t *testing.T) {
	store := newMemoryEntityStore()
	ctx := context.Background()

	created, err := store.create(&guard.Request{
		Actor:      testActor(),
		EntityType: "post",
		Payload:    map[string]any{"title": "First", "body": "text"},
	})
	if err != nil {
		t.Fatalf("create() error = %v", err)
	}

	updated, err := store.update(ctx, &guard.Request{
		Actor:      testActor(),
		EntityType: "post",
		EntityID:   created.EntityID(),
		Payload:    map[string]any{"title": "Second"},
	})
	if err != nil {
		t.Fatalf("update() error = %v", err)
	}
	if updated.Fields()["title"] != "Second" {
		t.Errorf("title = %v, want Second", updated.Fields()["title"])
	}
	if updated.Fields()["body"] != "text" {
		t.Errorf("body = %v, want untouched fields preserved", updated.Fields()["body"])
	}
}

func TestMemoryEntityStore_Delete(t *testing.T) {
	store := newMemoryEntityStore()

	created, err := store.create(&guard.Request{
		Actor:      testActor(),
		EntityType: "post",
		Payload:    map[string]any{"title": "gone"},
	})
	if err != nil {
		t.Fatalf("create() error = %v", err)
	}

	if _, err := store.delete("post", created.EntityID()); err != nil {
		t.Fatalf("delete() error = %v", err)
	}
	if _, err := store.Fetch(context.Background(), "post", created.EntityID()); err == nil {
		t.Error("Fetch() after delete succeeded, want error")
	}
}

func TestMemoryEntityStore_CloneIsolation(t *testing.T) {
	store := newMemoryEntityStore()
	ctx := context.Background()

	created, err := store.create(&guard.Request{
		Actor:      testActor(),
		EntityType: "post",
		Payload:    map[string]any{"title": "stable"},
	})
	if err != nil {
		t.Fatalf("create() error = %v", err)
	}

	// Mutating a fetched copy must not leak back into the store.
	fetched, err := store.Fetch(ctx, "post", created.EntityID())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	fetched.Fields()["title"] = "mutated"

	again, err := store.Fetch(ctx, "post", created.EntityID())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if again.Fields()["title"] != "stable" {
		t.Errorf("title = %v, want stable after external mutation", again.Fields()["title"])
	}
}

func TestRegisterExecutors_FullPipeline(t *testing.T) {
	registry := authz.NewRegistry()
	err := registry.Register("post", authz.SecurityConfig{
		RequiredRoles: []models.Role{models.RoleAuthor, models.RoleAdmin},
	})
	if err != nil {
		t.Fatalf("failed to register policy: %v", err)
	}
	evaluator := authz.NewEvaluator(registry)

	trail := audit.NewLogger(audit.NewMemoryStore(100), &audit.Config{Enabled: false, BufferSize: 10})
	t.Cleanup(func() { _ = trail.Close() })

	store := newMemoryEntityStore()
	g := guard.New(registry, evaluator, trail, guard.WithFetcher(store))
	if err := registerExecutors(g, store, registry.Types()); err != nil {
		t.Fatalf("registerExecutors() error = %v", err)
	}

	ctx := context.Background()
	actor := testActor()

	created, err := g.Execute(ctx, &guard.Request{
		Actor:      actor,
		EntityType: "post",
		Operation:  models.OpCreate,
		Payload:    map[string]any{"title": "Hello"},
	})
	if err != nil {
		t.Fatalf("create through guard failed: %v", err)
	}

	published, err := g.Execute(ctx, &guard.Request{
		Actor:      actor,
		EntityType: "post",
		Operation:  models.OpPublish,
		EntityID:   created.EntityID,
	})
	if err != nil {
		t.Fatalf("publish through guard failed: %v", err)
	}
	if published.Fields["status"] != "published" {
		t.Errorf("status = %v, want published", published.Fields["status"])
	}
}
