package bookingapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"staybook/internal/adapters/bookingapi"
	"staybook/internal/adapters/notify"
	"staybook/internal/domain"
	"staybook/internal/storage/memory"
)

func writeEnvelope(w http.ResponseWriter, status int, success bool, data any, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": success, "data": data, "message": msg})
}

func newSessionClient(t *testing.T, base string, timeout time.Duration) (*bookingapi.Client, *memory.Store, *notify.Flash) {
	t.Helper()
	cl, err := bookingapi.New(base, 1000, timeout) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	st := memory.NewStore()
	fl := notify.NewFlash(zerolog.Nop())
	return cl.WithSession(st, fl), st, fl
}

func TestClient_GetHotel_AttachesBearer(t *testing.T) {
	var auth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		if r.URL.Path != "/hotels/h1" {
			writeEnvelope(w, 404, false, nil, "no route")
			return
		}
		writeEnvelope(w, 200, true, map[string]any{"id": "h1", "name": "Grand Plaza Hotel"}, "")
	}))
	defer ts.Close()

	cl, st, _ := newSessionClient(t, ts.URL, time.Second)
	_ = st.Set(context.Background(), domain.KeyAccessToken, "tok-1")

	h, err := cl.GetHotel(context.Background(), "h1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if h.Name != "Grand Plaza Hotel" {
		t.Fatalf("unexpected hotel: %+v", h)
	}
	if auth != "Bearer tok-1" {
		t.Fatalf("expected bearer header, got %q", auth)
	}
}

func TestClient_401_RefreshesAndRetriesOnce(t *testing.T) {
	var hits, refreshes int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/refresh":
			atomic.AddInt32(&refreshes, 1)
			var body struct{ RefreshToken string }
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body.RefreshToken != "rt" {
				writeEnvelope(w, 401, false, nil, "bad refresh")
				return
			}
			writeEnvelope(w, 200, true, map[string]string{"accessToken": "fresh"}, "")
		case "/bookings":
			atomic.AddInt32(&hits, 1)
			if r.Header.Get("Authorization") != "Bearer fresh" {
				writeEnvelope(w, 401, false, nil, "expired")
				return
			}
			writeEnvelope(w, 200, true, map[string]any{"data": []any{}, "total": 0, "page": 1, "limit": 10}, "")
		}
	}))
	defer ts.Close()

	ctx := context.Background()
	cl, st, fl := newSessionClient(t, ts.URL, time.Second)
	_ = st.Set(ctx, domain.KeyAccessToken, "stale")
	_ = st.Set(ctx, domain.KeyRefreshToken, "rt")

	if _, err := cl.Bookings(ctx, 1, 10); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if atomic.LoadInt32(&hits) != 2 || atomic.LoadInt32(&refreshes) != 1 {
		t.Fatalf("expected 2 calls and 1 refresh, got %d/%d", atomic.LoadInt32(&hits), atomic.LoadInt32(&refreshes))
	}
	if v, _, _ := st.Get(ctx, domain.KeyAccessToken); v != "fresh" {
		t.Fatalf("expected stored access token to be refreshed, got %q", v)
	}
	if n := fl.Drain(); len(n) != 0 {
		t.Fatalf("expected no notices, got %+v", n)
	}
}

func TestClient_401_RetriesAtMostOnce(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			writeEnvelope(w, 200, true, map[string]string{"accessToken": "still-bad"}, "")
			return
		}
		atomic.AddInt32(&hits, 1)
		writeEnvelope(w, 401, false, nil, "Unauthorized")
	}))
	defer ts.Close()

	ctx := context.Background()
	cl, st, fl := newSessionClient(t, ts.URL, time.Second)
	_ = st.Set(ctx, domain.KeyRefreshToken, "rt")

	_, err := cl.GetBooking(ctx, "b1")
	var ae *domain.APIError
	if !errors.As(err, &ae) || ae.Status != 401 {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 2 {
		t.Fatalf("expected exactly one retry, got %d calls", atomic.LoadInt32(&hits))
	}
	if errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("refresh succeeded, session should not be reported expired")
	}
	n := fl.Drain()
	if len(n) != 1 || n[0].Message != "Unauthorized" {
		t.Fatalf("expected one Unauthorized notice, got %+v", n)
	}
}

func TestClient_RefreshFailureClearsTokens(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, 401, false, nil, "nope")
	}))
	defer ts.Close()

	ctx := context.Background()
	cl, st, _ := newSessionClient(t, ts.URL, time.Second)
	_ = st.Set(ctx, domain.KeyAccessToken, "a")
	_ = st.Set(ctx, domain.KeyRefreshToken, "r")

	_, err := cl.Profile(ctx)
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if _, ok, _ := st.Get(ctx, domain.KeyAccessToken); ok {
		t.Fatalf("expected access token cleared")
	}
	if _, ok, _ := st.Get(ctx, domain.KeyRefreshToken); ok {
		t.Fatalf("expected refresh token cleared")
	}
}

func TestClient_ErrorNotices(t *testing.T) {
	cases := []struct {
		name   string
		status int
		msg    string
		want   string
	}{
		{"server", 503, "db down", "Server error. Please try again later."},
		{"client with message", 422, "Check-out must be after check-in", "Check-out must be after check-in"},
		{"client without message", 400, "", "An error occurred"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, tc.status, false, nil, tc.msg)
			}))
			defer ts.Close()

			cl, _, fl := newSessionClient(t, ts.URL, time.Second)
			_, err := cl.FeaturedHotels(context.Background(), 6)
			if !domain.IsReported(err) {
				t.Fatalf("expected reported APIError, got %v", err)
			}
			n := fl.Drain()
			if len(n) != 1 || n[0].Message != tc.want || n[0].Level != notify.LevelError {
				t.Fatalf("unexpected notices: %+v", n)
			}
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		writeEnvelope(w, 200, true, nil, "")
	}))
	defer ts.Close()

	cl, _, fl := newSessionClient(t, ts.URL, 50*time.Millisecond)
	_, err := cl.GetHotel(context.Background(), "slow")
	var ae *domain.APIError
	if !errors.As(err, &ae) || !ae.Timeout {
		t.Fatalf("expected timeout APIError, got %v", err)
	}
	n := fl.Drain()
	if len(n) != 1 || n[0].Message != "Request timeout. Please check your connection." {
		t.Fatalf("unexpected notices: %+v", n)
	}
}

func TestClient_SearchHotels_Params(t *testing.T) {
	var got map[string][]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		writeEnvelope(w, 200, true, map[string]any{"hotels": []any{}, "totalResults": 0, "page": 2, "totalPages": 3}, "")
	}))
	defer ts.Close()

	in := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	out := in.AddDate(0, 0, 3)
	g := 3
	q := domain.SearchQuery{
		Query: "spa",
		Filters: domain.SearchFilters{
			Location: "Paris", CheckInDate: &in, CheckOutDate: &out, Guests: &g,
			PriceRange: &domain.PriceRange{Min: 50, Max: 250.5},
			StarRating: []int{4, 5},
		},
		SortBy: domain.SortNewest, Page: 2, Limit: 20,
	}
	cl, _, _ := newSessionClient(t, ts.URL, time.Second)
	res, err := cl.SearchHotels(context.Background(), q)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Page != 2 || res.TotalPages != 3 {
		t.Fatalf("unexpected results: %+v", res)
	}
	checks := map[string]string{
		"query": "spa", "location": "Paris", "checkInDate": "2026-11-02", "checkOutDate": "2026-11-05",
		"guests": "3", "minPrice": "50", "maxPrice": "250.5", "sortBy": "NEWEST", "page": "2", "limit": "20",
	}
	for k, want := range checks {
		if len(got[k]) != 1 || got[k][0] != want {
			t.Fatalf("param %s: want %q, got %v", k, want, got[k])
		}
	}
	if len(got["starRating"]) != 2 {
		t.Fatalf("expected repeated starRating, got %v", got["starRating"])
	}
}
