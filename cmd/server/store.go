// Inkgate - Authorization and Audit Gateway for Content APIs
// Copyright 2026 Inkgate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/inkgate/inkgate

package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/inkgate/inkgate/internal/guard"
	"github.com/inkgate/inkgate/internal/models"
)

var errEntityNotFound = errors.New("entity not found")

// memoryEntityStore is the bundled entity backend. In production
// deployments the embedding application registers its own executors
// against its storage; this store stands in for that collaborator so
// the gateway is usable out of the box.
type memoryEntityStore struct {
	mu       sync.RWMutex
	entities map[string]map[string]*models.Record
}

func newMemoryEntityStore() *memoryEntityStore {
	return &memoryEntityStore{
		entities: make(map[string]map[string]*models.Record),
	}
}

// Fetch implements guard.Fetcher so the guard can resolve ownership on
// updates.
func (s *memoryEntityStore) Fetch(_ context.Context, entityType, entityID string) (models.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.entities[entityType][entityID]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", errEntityNotFound, entityType, entityID)
	}
	return record.Clone(), nil
}

func (s *memoryEntityStore) put(record *models.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byID, ok := s.entities[record.Type]
	if !ok {
		byID = make(map[string]*models.Record)
		s.entities[record.Type] = byID
	}
	byID[record.ID] = record
}

func (s *memoryEntityStore) delete(entityType, entityID string) (*models.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.entities[entityType][entityID]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", errEntityNotFound, entityType, entityID)
	}
	delete(s.entities[entityType], entityID)
	return record, nil
}

func (s *memoryEntityStore) create(req *guard.Request) (models.Entity, error) {
	record := &models.Record{
		Type:   req.EntityType,
		ID:     uuid.NewString(),
		Owner:  req.Actor.ID,
		Values: cloneValues(req.Payload),
	}
	s.put(record)
	return record.Clone(), nil
}

func (s *memoryEntityStore) read(ctx context.Context, req *guard.Request) (models.Entity, error) {
	return s.Fetch(ctx, req.EntityType, req.EntityID)
}

func (s *memoryEntityStore) update(ctx context.Context, req *guard.Request) (models.Entity, error) {
	entity, err := s.Fetch(ctx, req.EntityType, req.EntityID)
	if err != nil {
		return nil, err
	}

	record := entity.(*models.Record)
	for field, value := range req.Payload {
		record.Values[field] = value
	}
	s.put(record)
	return record.Clone(), nil
}

// setField is the shape of publish and moderate: fetch, flip one field,
// save.
func (s *memoryEntityStore) setField(ctx context.Context, req *guard.Request, field string, value any) (models.Entity, error) {
	entity, err := s.Fetch(ctx, req.EntityType, req.EntityID)
	if err != nil {
		return nil, err
	}

	record := entity.(*models.Record)
	record.Values[field] = value
	s.put(record)
	return record.Clone(), nil
}

// registerExecutors wires store-backed executors for every configured
// entity type. Publish and moderate carry blog semantics: publish flips
// status, moderate flips approval.
func registerExecutors(g *guard.Guard, store *memoryEntityStore, entityTypes []string) error {
	type executorEntry struct {
		op   models.Operation
		exec guard.Executor
	}

	entries := []executorEntry{
		{models.OpCreate, func(_ context.Context, req *guard.Request) (models.Entity, error) {
			return store.create(req)
		}},
		{models.OpRead, store.read},
		{models.OpUpdate, store.update},
		{models.OpDelete, func(_ context.Context, req *guard.Request) (models.Entity, error) {
			record, err := store.delete(req.EntityType, req.EntityID)
			if err != nil {
				return nil, err
			}
			return record, nil
		}},
		{models.OpPublish, func(ctx context.Context, req *guard.Request) (models.Entity, error) {
			return store.setField(ctx, req, "status", "published")
		}},
		{models.OpModerate, func(ctx context.Context, req *guard.Request) (models.Entity, error) {
			return store.setField(ctx, req, "is_approved", true)
		}},
	}

	for _, entityType := range entityTypes {
		for _, entry := range entries {
			if err := g.RegisterExecutor(entityType, entry.op, entry.exec); err != nil {
				return fmt.Errorf("failed to register %s executor for %s: %w", entry.op, entityType, err)
			}
		}
	}
	return nil
}

func cloneValues(values map[string]any) map[string]any {
	cloned := make(map[string]any, len(values))
	for k, v := range values {
		cloned[k] = v
	}
	return cloned
}
