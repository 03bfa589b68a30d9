// Copyright 2026 Greenleaf Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// SPDX-License-Identifier: Apache-2.0

package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore backs Store with github.com/redis/go-redis/v9, so selection
// state survives process restarts when configured (§9 Open Questions:
// "survivable across process restarts if configured"). Tested against
// github.com/alicebob/miniredis/v2.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStore constructs a RedisStore. ttl bounds how long an idle
// session's key lives in Redis; zero disables expiry.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: "selection:"}
}

// wireState is the JSON-serializable mirror of State, exposing its
// unexported undo-stack and grace-window bookkeeping for Redis persistence.
type wireState struct {
	Selected      []string   `json:"selected"`
	Undo          [][]string `json:"undo"`
	Filter        FilterMode `json:"filter"`
	LastJSONMatch time.Time  `json:"last_json_match"`
	HasJSONMatch  bool       `json:"has_json_match"`
}

func toWire(s *State) wireState {
	return wireState{
		Selected:      s.Selected,
		Undo:          s.undo,
		Filter:        s.Filter,
		LastJSONMatch: s.lastJSONMatch,
		HasJSONMatch:  s.hasJSONMatch,
	}
}

func fromWire(w wireState) *State {
	return &State{
		Selected:      w.Selected,
		undo:          w.Undo,
		Filter:        w.Filter,
		lastJSONMatch: w.LastJSONMatch,
		hasJSONMatch:  w.HasJSONMatch,
	}
}

// Get returns the session's State, lazily creating an empty one if absent
// in Redis.
func (r *RedisStore) Get(ctx context.Context, sessionID string) (*State, error) {
	raw, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("selection: redis get %s: %w", sessionID, err)
	}

	var w wireState
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, fmt.Errorf("selection: decode state for %s: %w", sessionID, err)
	}
	return fromWire(w), nil
}

// Save persists state back to Redis under sessionID's key.
func (r *RedisStore) Save(ctx context.Context, sessionID string, state *State) error {
	raw, err := json.Marshal(toWire(state))
	if err != nil {
		return fmt.Errorf("selection: encode state for %s: %w", sessionID, err)
	}
	if err := r.client.Set(ctx, r.key(sessionID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("selection: redis set %s: %w", sessionID, err)
	}
	return nil
}

func (r *RedisStore) key(sessionID string) string {
	return r.prefix + sessionID
}
