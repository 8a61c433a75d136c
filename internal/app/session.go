package app

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"staybook/internal/adapters/observability"
	"staybook/internal/domain"
)

// Backend is everything a session needs from the booking API.
type Backend interface {
	domain.AuthAPI
	domain.HotelAPI
}

// NoticeQueue is a Notifier whose notices are collected for the response.
type NoticeQueue interface {
	domain.Notifier
	Drain() []domain.Notice
}

// Session is the state of one browser session.
type Session struct {
	ID      string
	Cart    *CartService
	Search  *SearchService
	Auth    *AuthService
	Prefs   *PreferencesService
	Recent  *RecentSearches
	Notices NoticeQueue
	API     domain.HotelAPI
}

type SessionConfig struct {
	IdleTTL      time.Duration
	RefreshEvery time.Duration
	PageSize     int
}

// storeEvicter is implemented by factories that hold per-session stores in
// process and can release them once the session is swept.
type storeEvicter interface {
	Evict(sessionID string) bool
}

type sessionEntry struct {
	s        *Session
	lastSeen time.Time
}

// SessionManager builds and caches sessions. Durable state lives in the
// store so an evicted session is rebuilt on its next request.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*sessionEntry
	stores   domain.StoreFactory
	bind     func(domain.KVStore, domain.Notifier) Backend
	queue    func() NoticeQueue
	cfg      SessionConfig
	now      func() time.Time
}

func NewSessionManager(stores domain.StoreFactory, bind func(domain.KVStore, domain.Notifier) Backend,
	queue func() NoticeQueue, cfg SessionConfig) *SessionManager {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 30 * time.Minute
	}
	return &SessionManager{
		sessions: map[string]*sessionEntry{},
		stores:   stores,
		bind:     bind,
		queue:    queue,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Get returns the session for id, restoring cart and auth on first use.
func (m *SessionManager) Get(ctx context.Context, id string) *Session {
	m.mu.Lock()
	if e, ok := m.sessions[id]; ok {
		e.lastSeen = m.now()
		m.mu.Unlock()
		return e.s
	}
	m.mu.Unlock()

	s := m.build(ctx, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.sessions[id]; ok {
		// lost a race with a concurrent first request
		s.Auth.Close()
		e.lastSeen = m.now()
		return e.s
	}
	m.sessions[id] = &sessionEntry{s: s, lastSeen: m.now()}
	observability.SetActiveSessions(len(m.sessions))
	return s
}

func (m *SessionManager) build(ctx context.Context, id string) *Session {
	store := m.stores.ForSession(id)
	q := m.queue()
	api := m.bind(store, q)

	recent := NewRecentSearches(store)
	s := &Session{
		ID:      id,
		Cart:    NewCartService(store, q),
		Search:  NewSearchService(api, recent, m.cfg.PageSize),
		Auth:    NewAuthService(api, store, q, m.cfg.RefreshEvery),
		Prefs:   NewPreferencesService(store),
		Recent:  recent,
		Notices: q,
		API:     api,
	}
	if err := s.Cart.Load(ctx); err != nil {
		log.Warn().Err(err).Str("session", id).Msg("cart restore failed")
	}
	s.Auth.Init(ctx)
	return s
}

// Sweep drops sessions idle longer than the configured TTL.
func (m *SessionManager) Sweep() int {
	cutoff := m.now().Add(-m.cfg.IdleTTL)
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, _ := m.stores.(storeEvicter)
	n := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			e.s.Auth.Close()
			delete(m.sessions, id)
			if ev != nil {
				ev.Evict(id)
			}
			n++
		}
	}
	observability.SetActiveSessions(len(m.sessions))
	return n
}

// Run sweeps periodically until ctx is done.
func (m *SessionManager) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(); n > 0 {
				log.Debug().Int("evicted", n).Msg("idle sessions swept")
			}
		}
	}
}

// Close stops every session's background work.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.sessions {
		e.s.Auth.Close()
	}
}

func (m *SessionManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
