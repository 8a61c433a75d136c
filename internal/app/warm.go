package app

import (
	"context"
	"errors"
	"fmt"

	"staybook/internal/domain"
)

// MissLog records hotels the warmer could not fetch.
type MissLog interface {
	LogMiss(ctx context.Context, hotelID string, status int, reason string) error
}

// WarmService prefills the shared catalog cache ahead of traffic.
type WarmService struct {
	catalog *CatalogService
	misses  MissLog
}

func NewWarmService(c *CatalogService, misses MissLog) *WarmService {
	return &WarmService{catalog: c, misses: misses}
}

// WarmFeatured refreshes the featured list and returns its hotel ids.
func (s *WarmService) WarmFeatured(ctx context.Context, limit int) ([]string, error) {
	_ = s.catalog.cache.Del(ctx, featuredKey(limit))
	hs, err := s.catalog.Featured(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("warm featured: %w", err)
	}
	ids := make([]string, 0, len(hs))
	for _, h := range hs {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// WarmHotel refetches one hotel detail. Not found and forbidden responses
// are recorded as misses and evict any stale entry; other errors bubble up.
func (s *WarmService) WarmHotel(ctx context.Context, id string) error {
	_ = s.catalog.Invalidate(ctx, id)
	_, err := s.catalog.GetHotel(ctx, id)
	if err == nil {
		return nil
	}

	var ae *domain.APIError
	if errors.Is(err, domain.ErrNotFound) {
		ae = &domain.APIError{Status: 404, Message: "not found"}
	} else if !errors.As(err, &ae) {
		return err
	}
	switch ae.Status {
	case 404:
		s.logMiss(ctx, id, 404, "not found")
		return nil
	case 401, 403:
		s.logMiss(ctx, id, ae.Status, "inactive")
		return nil
	}
	return err
}

func (s *WarmService) logMiss(ctx context.Context, id string, status int, reason string) {
	if s.misses != nil {
		_ = s.misses.LogMiss(ctx, id, status, reason)
	}
}
