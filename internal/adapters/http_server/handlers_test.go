package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"staybook/internal/adapters/bookingapi"
	httpserver "staybook/internal/adapters/http_server"
	"staybook/internal/adapters/notify"
	"staybook/internal/app"
	"staybook/internal/domain"
	"staybook/internal/storage/memory"
)

func pfloat(f float64) *float64 { return &f }

var testHotel = domain.Hotel{
	ID: "h1", Name: "Grand Plaza Hotel", Slug: "grand-plaza", City: "New York", Country: "USA",
	Rooms: []domain.Room{{ID: "R1", HotelID: "h1", Name: "Deluxe", BasePrice: 150, ServiceFee: pfloat(10), Currency: "USD"}},
}

// backend fakes the booking API with the standard envelope.
func backend(t *testing.T) *httptest.Server {
	t.Helper()
	ok := func(w http.ResponseWriter, data any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data})
	}
	fail := func(w http.ResponseWriter, status int, msg string) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var cr domain.Credentials
		_ = json.NewDecoder(r.Body).Decode(&cr)
		access := "access-1"
		switch cr.Password {
		case "secret":
		case "revoked": // the backend will refuse this token and its refresh
			access = "access-revoked"
		default:
			fail(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		ok(w, domain.Session{
			User:        domain.User{ID: "u1", Email: cr.Email, Role: domain.RoleCustomer},
			AccessToken: access, RefreshToken: "refresh-1",
		})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusUnauthorized, "Refresh token revoked")
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) { ok(w, nil) })
	mux.HandleFunc("/bookings", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			fail(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ok(w, domain.BookingsPage{Items: []domain.Booking{{ID: "b1", Status: domain.BookingConfirmed}}, Total: 1, Page: 1, Limit: 10})
	})
	mux.HandleFunc("/hotels/h1", func(w http.ResponseWriter, r *http.Request) { ok(w, testHotel) })
	mux.HandleFunc("/hotels/nope", func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusNotFound, "Hotel not found")
	})
	mux.HandleFunc("/hotels/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("location") != "Paris" {
			ok(w, domain.SearchResults{Page: 1})
			return
		}
		ok(w, domain.SearchResults{Hotels: []domain.Hotel{testHotel}, TotalResults: 1, Page: 1, TotalPages: 1})
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

type harness struct {
	ts *httptest.Server
	c  *http.Client
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	be := backend(t)
	client, err := bookingapi.New(be.URL, 100, 2*time.Second)
	require.NoError(t, err)

	sessions := app.NewSessionManager(
		memory.NewFactory(),
		func(st domain.KVStore, n domain.Notifier) app.Backend { return client.WithSession(st, n) },
		func() app.NoticeQueue { return notify.NewFlash(zerolog.Nop()) },
		app.SessionConfig{RefreshEvery: time.Hour, PageSize: 10},
	)
	t.Cleanup(sessions.Close)

	srv := httpserver.New()
	srv.MountHandlers(&httpserver.Handlers{
		Sessions:      sessions,
		Catalog:       app.NewCatalogService(client, memory.NewCache(), time.Minute),
		Cookie:        "sid",
		SessionTTL:    time.Hour,
		FeaturedLimit: 6,
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)

	jar, _ := cookiejar.New(nil)
	return &harness{ts: ts, c: &http.Client{Jar: jar}}
}

type envelope struct {
	Data    json.RawMessage `json:"data"`
	Notices []domain.Notice `json:"notices"`
}

func (h *harness) do(t *testing.T, method, path string, body any, hdr ...string) (*http.Response, envelope) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, h.ts.URL+path, rdr)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	res, err := h.c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var env envelope
	if res.StatusCode != http.StatusNotModified {
		require.NoError(t, json.NewDecoder(res.Body).Decode(&env))
	}
	return res, env
}

func TestCart_AddThenGetKeepsSession(t *testing.T) {
	h := newHarness(t)
	checkIn := time.Date(2026, 11, 2, 15, 0, 0, 0, time.UTC)

	res, env := h.do(t, http.MethodPost, "/v1/cart/items", map[string]any{
		"hotelId": "h1", "roomId": "R1",
		"checkInDate": checkIn, "checkOutDate": checkIn.AddDate(0, 0, 2),
		"guests": 2, "rooms": 1,
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)
	require.Equal(t, []domain.Notice{{Level: domain.NoticeSuccess, Message: "Added to cart!"}}, env.Notices)

	res, env = h.do(t, http.MethodGet, "/v1/cart", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var cart struct {
		domain.Cart
		ItemCount int `json:"itemCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &cart))
	require.Equal(t, 1, cart.ItemCount)
	require.InDelta(t, 350.0, cart.Total, 1e-9)
	require.Empty(t, env.Notices)
}

func TestCart_UnknownRoomAndItem(t *testing.T) {
	h := newHarness(t)
	in := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

	res, _ := h.do(t, http.MethodPost, "/v1/cart/items", map[string]any{
		"hotelId": "h1", "roomId": "R9", "checkInDate": in, "checkOutDate": in.AddDate(0, 0, 1),
	})
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res, _ = h.do(t, http.MethodDelete, "/v1/cart/items/missing", nil)
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestSearch_ReturnsCanonicalURL(t *testing.T) {
	h := newHarness(t)
	res, env := h.do(t, http.MethodGet, "/v1/search?location=Paris&guests=2&sort=POPULARITY&rooms=abc", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)

	var v struct {
		State struct {
			Results      []domain.Hotel `json:"results"`
			TotalResults int            `json:"totalResults"`
			HasMore      bool           `json:"hasMore"`
		} `json:"state"`
		URL           string `json:"url"`
		ActiveFilters int    `json:"activeFilters"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &v))
	require.Equal(t, "?location=Paris", v.URL)
	require.Equal(t, 1, v.ActiveFilters)
	require.Len(t, v.State.Results, 1)
	require.False(t, v.State.HasMore)

	res, env = h.do(t, http.MethodGet, "/v1/recent-searches", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.JSONEq(t, `["Paris"]`, string(env.Data))

	res, _ = h.do(t, http.MethodDelete, "/v1/search/filters/colour", nil)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestSession_LoginFailureSurfacesServerMessage(t *testing.T) {
	h := newHarness(t)
	res, env := h.do(t, http.MethodPost, "/v1/session/login", map[string]string{"email": "a@b.co", "password": "nope"})
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	require.True(t, strings.HasPrefix(res.Header.Get("Content-Type"), "application/problem+json"))
	require.Equal(t, []domain.Notice{{Level: domain.NoticeError, Message: "Invalid credentials"}}, env.Notices)
}

func TestSession_BookingsNeedLogin(t *testing.T) {
	h := newHarness(t)

	res, _ := h.do(t, http.MethodGet, "/v1/bookings", nil)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)

	res, env := h.do(t, http.MethodPost, "/v1/session/login", map[string]string{"email": "a@b.co", "password": "secret"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "Successfully logged in!", env.Notices[0].Message)

	res, env = h.do(t, http.MethodGet, "/v1/bookings", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var page domain.BookingsPage
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 1)

	res, _ = h.do(t, http.MethodPost, "/v1/session/logout", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res, _ = h.do(t, http.MethodGet, "/v1/bookings", nil)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestSession_RejectedRefreshSignsUserOut(t *testing.T) {
	h := newHarness(t)

	res, _ := h.do(t, http.MethodPost, "/v1/session/login", map[string]string{"email": "a@b.co", "password": "revoked"})
	require.Equal(t, http.StatusOK, res.StatusCode)

	res, env := h.do(t, http.MethodGet, "/v1/bookings", nil)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
	var msgs []string
	for _, n := range env.Notices {
		msgs = append(msgs, n.Message)
	}
	require.Contains(t, msgs, "Your session has expired. Please log in again.")

	res, env = h.do(t, http.MethodGet, "/v1/session", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	var st app.AuthState
	require.NoError(t, json.Unmarshal(env.Data, &st))
	require.False(t, st.IsAuthenticated)
	require.Nil(t, st.User)

	res, _ = h.do(t, http.MethodGet, "/v1/bookings", nil)
	require.Equal(t, http.StatusUnauthorized, res.StatusCode)
}

func TestPreferences_ResolvedTheme(t *testing.T) {
	h := newHarness(t)

	type view struct {
		Language      string `json:"language"`
		Theme         string `json:"theme"`
		ResolvedTheme string `json:"resolvedTheme"`
		RTL           bool   `json:"rtl"`
	}
	read := func(env envelope) view {
		var v view
		require.NoError(t, json.Unmarshal(env.Data, &v))
		return v
	}

	res, env := h.do(t, http.MethodGet, "/v1/preferences?prefersDark=true", nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, view{Language: "en", Theme: "system", ResolvedTheme: "dark"}, read(env))

	_, env = h.do(t, http.MethodGet, "/v1/preferences", nil, "Sec-CH-Prefers-Color-Scheme", `"dark"`)
	require.Equal(t, "dark", read(env).ResolvedTheme)

	res, env = h.do(t, http.MethodPut, "/v1/preferences?prefersDark=true", map[string]string{"theme": "light", "language": "ar"})
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, view{Language: "ar", Theme: "light", ResolvedTheme: "light", RTL: true}, read(env))
}

func TestHotel_ETagAndNotFound(t *testing.T) {
	h := newHarness(t)

	res, err := h.c.Get(h.ts.URL + "/v1/hotels/h1")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	etag := res.Header.Get("ETag")
	require.NotEmpty(t, etag)

	res2, _ := h.do(t, http.MethodGet, "/v1/hotels/h1", nil, "If-None-Match", etag)
	require.Equal(t, http.StatusNotModified, res2.StatusCode)

	res, err = h.c.Get(h.ts.URL + "/v1/hotels/nope")
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}
