package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"staybook/internal/domain"
)

const maxRecentSearches = 5

// RecentSearches keeps the last distinct locations searched, newest first.
type RecentSearches struct {
	mu    sync.Mutex
	store domain.KVStore
}

func NewRecentSearches(store domain.KVStore) *RecentSearches {
	return &RecentSearches{store: store}
}

func (r *RecentSearches) Add(ctx context.Context, location string) error {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, err := r.load(ctx)
	if err != nil {
		return err
	}
	next := make([]string, 0, maxRecentSearches)
	next = append(next, location)
	for _, l := range cur {
		if l != location && len(next) < maxRecentSearches {
			next = append(next, l)
		}
	}
	return r.save(ctx, next)
}

func (r *RecentSearches) List(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *RecentSearches) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Remove(ctx, domain.KeyRecentSearches)
}

func (r *RecentSearches) load(ctx context.Context) ([]string, error) {
	raw, ok, err := r.store.Get(ctx, domain.KeyRecentSearches)
	if err != nil {
		return nil, fmt.Errorf("load recent searches: %w", err)
	}
	out := []string{}
	if !ok || raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		log.Warn().Err(err).Msg("recent searches corrupt, resetting")
		return []string{}, nil
	}
	return out, nil
}

func (r *RecentSearches) save(ctx context.Context, l []string) error {
	b, _ := json.Marshal(l)
	if err := r.store.Set(ctx, domain.KeyRecentSearches, string(b)); err != nil {
		return fmt.Errorf("save recent searches: %w", err)
	}
	return nil
}
