package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"staybook/internal/app"
	"staybook/internal/domain"
)

type miss struct {
	id     string
	status int
	reason string
}

type fakeMisses struct{ got []miss }

func (f *fakeMisses) LogMiss(ctx context.Context, id string, status int, reason string) error {
	f.got = append(f.got, miss{id, status, reason})
	return nil
}

func TestWarmHotel_RefreshesStaleEntry(t *testing.T) {
	api := &fakeHotels{hotel: domain.Hotel{ID: "h1", Name: "Old"}}
	cache := &fakeCache{}
	cat := app.NewCatalogService(api, cache, time.Minute)
	w := app.NewWarmService(cat, nil)

	if _, err := cat.GetHotel(context.Background(), "h1"); err != nil {
		t.Fatalf("err: %v", err)
	}
	api.hotel.Name = "New"
	if err := w.WarmHotel(context.Background(), "h1"); err != nil {
		t.Fatalf("warm: %v", err)
	}
	h, _ := cat.GetHotel(context.Background(), "h1")
	if h.Name != "New" {
		t.Fatalf("expected refreshed name, got %s", h.Name)
	}
}

func TestWarmHotel_MissesAreRecorded(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", &domain.APIError{Status: 404, Message: "Hotel not found"}, 404},
		{"sentinel", domain.ErrNotFound, 404},
		{"forbidden", &domain.APIError{Status: 403}, 403},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			misses := &fakeMisses{}
			cat := app.NewCatalogService(&fakeHotels{err: tc.err}, &fakeCache{}, time.Minute)
			if err := app.NewWarmService(cat, misses).WarmHotel(context.Background(), "h9"); err != nil {
				t.Fatalf("expected miss to be swallowed, got %v", err)
			}
			if len(misses.got) != 1 || misses.got[0].status != tc.status || misses.got[0].id != "h9" {
				t.Fatalf("unexpected misses: %+v", misses.got)
			}
		})
	}
}

func TestWarmHotel_OtherErrorsBubbleUp(t *testing.T) {
	boom := &domain.APIError{Status: 502, Message: "bad gateway"}
	cat := app.NewCatalogService(&fakeHotels{err: boom}, &fakeCache{}, time.Minute)
	err := app.NewWarmService(cat, &fakeMisses{}).WarmHotel(context.Background(), "h1")
	if !errors.Is(err, boom) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestWarmFeatured_ReturnsIDs(t *testing.T) {
	api := &fakeHotels{featured: []domain.Hotel{{ID: "a"}, {ID: "b"}}}
	cat := app.NewCatalogService(api, &fakeCache{}, time.Minute)
	ids, err := app.NewWarmService(cat, nil).WarmFeatured(context.Background(), 6)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}
