package app

import (
	"context"
	"fmt"
	"time"

	"staybook/internal/domain"
)

// CatalogService is a cache-aside read path over the backend's public hotel
// endpoints. It is shared by all sessions.
type CatalogService struct {
	api      domain.HotelAPI
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewCatalogService(api domain.HotelAPI, c domain.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{api: api, cache: c, cacheTTL: ttl}
}

func hotelKey(id string) string    { return "hotel:" + id }
func slugKey(slug string) string   { return "hotel:slug:" + slug }
func featuredKey(limit int) string { return fmt.Sprintf("featured:%d", limit) }

func (s *CatalogService) GetHotel(ctx context.Context, id string) (domain.Hotel, error) {
	var h domain.Hotel
	if ok, _ := s.cache.Get(ctx, hotelKey(id), &h); ok {
		return h, nil
	}
	h, err := s.api.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, err
	}
	_ = s.cache.Set(ctx, hotelKey(id), h, int(s.cacheTTL.Seconds()))
	return h, nil
}

func (s *CatalogService) GetHotelBySlug(ctx context.Context, slug string) (domain.Hotel, error) {
	var h domain.Hotel
	if ok, _ := s.cache.Get(ctx, slugKey(slug), &h); ok {
		return h, nil
	}
	h, err := s.api.GetHotelBySlug(ctx, slug)
	if err != nil {
		return domain.Hotel{}, err
	}
	ttl := int(s.cacheTTL.Seconds())
	_ = s.cache.Set(ctx, slugKey(slug), h, ttl)
	if h.ID != "" {
		_ = s.cache.Set(ctx, hotelKey(h.ID), h, ttl)
	}
	return h, nil
}

func (s *CatalogService) Featured(ctx context.Context, limit int) ([]domain.Hotel, error) {
	var hs []domain.Hotel
	if ok, _ := s.cache.Get(ctx, featuredKey(limit), &hs); ok {
		return hs, nil
	}
	hs, err := s.api.FeaturedHotels(ctx, limit)
	if err != nil {
		return nil, err
	}
	// copy so later mutation by the caller cannot leak into what was cached
	out := make([]domain.Hotel, len(hs))
	copy(out, hs)
	_ = s.cache.Set(ctx, featuredKey(limit), out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// Invalidate drops the cached detail for one hotel.
func (s *CatalogService) Invalidate(ctx context.Context, id string) error {
	return s.cache.Del(ctx, hotelKey(id))
}
