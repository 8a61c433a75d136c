package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"staybook/internal/adapters/observability"
	"staybook/internal/domain"
)

const DefaultRefreshEvery = 45 * time.Minute

// AuthState is the read-only view handed to the web layer.
type AuthState struct {
	User            *domain.User        `json:"user"`
	IsAuthenticated bool                `json:"isAuthenticated"`
	Permissions     *domain.Permissions `json:"permissions,omitempty"`
}

// AuthService owns the session's user and tokens. User flows report
// through the notifier and return a bool; they never return errors.
type AuthService struct {
	mu    sync.Mutex
	user  *domain.User
	api   domain.AuthAPI
	store domain.KVStore
	note  domain.Notifier
	every time.Duration
	stop  context.CancelFunc
	now   func() time.Time
}

func NewAuthService(api domain.AuthAPI, store domain.KVStore, note domain.Notifier, refreshEvery time.Duration) *AuthService {
	if refreshEvery <= 0 {
		refreshEvery = DefaultRefreshEvery
	}
	return &AuthService{api: api, store: store, note: note, every: refreshEvery, now: time.Now}
}

// Init restores a stored session. An access token whose exp has passed is
// refreshed before the profile is fetched; any failure clears the tokens.
func (s *AuthService) Init(ctx context.Context) bool {
	access := s.get(ctx, domain.KeyAccessToken)
	if access == "" {
		return false
	}
	if s.expired(access) {
		if !s.exchange(ctx) {
			s.clearTokens(ctx)
			return false
		}
	}
	u, err := s.api.Profile(ctx)
	if err != nil || u == nil {
		log.Debug().Err(err).Msg("stored session is no longer valid")
		s.clearTokens(ctx)
		return false
	}
	s.mu.Lock()
	s.user = u
	s.startLoop()
	s.mu.Unlock()
	return true
}

func (s *AuthService) Login(ctx context.Context, email, password string) bool {
	cr := domain.Credentials{Email: email, Password: password}
	if err := validate.Struct(cr); err != nil {
		s.note.Error(validationMessage(err))
		observability.ObserveAuth("login", "invalid")
		return false
	}
	sess, err := s.api.Login(ctx, cr)
	if err != nil {
		if !domain.IsReported(err) {
			s.note.Error("Login failed")
		}
		observability.ObserveAuth("login", "error")
		return false
	}
	if !s.establish(ctx, sess) {
		return false
	}
	observability.ObserveAuth("login", "ok")
	s.note.Success("Successfully logged in!")
	return true
}

func (s *AuthService) Register(ctx context.Context, r domain.Registration) bool {
	if err := validate.Struct(r); err != nil {
		s.note.Error(validationMessage(err))
		observability.ObserveAuth("register", "invalid")
		return false
	}
	sess, err := s.api.Register(ctx, r)
	if err != nil {
		if !domain.IsReported(err) {
			s.note.Error("Registration failed")
		}
		observability.ObserveAuth("register", "error")
		return false
	}
	if !s.establish(ctx, sess) {
		return false
	}
	observability.ObserveAuth("register", "ok")
	s.note.Success("Account created successfully!")
	return true
}

// Logout always succeeds locally. The backend call is best effort.
func (s *AuthService) Logout(ctx context.Context) {
	if s.get(ctx, domain.KeyAccessToken) != "" {
		if err := s.api.Logout(ctx); err != nil {
			log.Debug().Err(err).Msg("backend logout failed")
		}
	}
	s.clearTokens(ctx)

	s.mu.Lock()
	s.user = nil
	s.stopLoop()
	s.mu.Unlock()

	observability.ObserveAuth("logout", "ok")
	s.note.Success("Successfully logged out!")
}

// Expire drops the in-memory user after the API client gave up on the
// stored tokens. It reports whether a user was actually signed in.
func (s *AuthService) Expire() bool {
	s.mu.Lock()
	had := s.user != nil
	s.user = nil
	s.stopLoop()
	s.mu.Unlock()
	if !had {
		return false
	}
	observability.ObserveAuth("session", "expired")
	s.note.Error("Your session has expired. Please log in again.")
	return true
}

// RefreshToken swaps the stored refresh token for a new access token.
// Without a stored token it does nothing; a failed exchange logs out.
func (s *AuthService) RefreshToken(ctx context.Context) bool {
	if s.get(ctx, domain.KeyRefreshToken) == "" {
		return false
	}
	if s.exchange(ctx) {
		observability.ObserveAuth("refresh", "ok")
		return true
	}
	if ctx.Err() != nil {
		return false
	}
	observability.ObserveAuth("refresh", "error")
	s.Logout(ctx)
	return false
}

func (s *AuthService) UpdateUser(ctx context.Context, p domain.UserPatch) (domain.User, bool) {
	s.mu.Lock()
	cur := s.user
	s.mu.Unlock()
	if cur == nil {
		s.note.Error("Please log in first")
		return domain.User{}, false
	}
	u, err := s.api.UpdateProfile(ctx, p)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExpired) {
			s.Expire()
			return domain.User{}, false
		}
		if !domain.IsReported(err) {
			s.note.Error("Profile update failed")
		}
		return *cur, false
	}
	if u.ID == "" {
		u = cur.Apply(p)
	}
	s.mu.Lock()
	s.user = &u
	s.mu.Unlock()
	s.note.Success("Profile updated successfully!")
	return u, true
}

func (s *AuthService) User() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *AuthService) IsAuthenticated() bool { return s.User() != nil }

func (s *AuthService) State() AuthState {
	u := s.User()
	st := AuthState{User: u, IsAuthenticated: u != nil}
	if u != nil {
		p := u.Permissions()
		st.Permissions = &p
	}
	return st
}

// Close stops the refresh loop without touching the stored session.
func (s *AuthService) Close() {
	s.mu.Lock()
	s.stopLoop()
	s.mu.Unlock()
}

func (s *AuthService) establish(ctx context.Context, sess domain.Session) bool {
	if err := s.store.Set(ctx, domain.KeyAccessToken, sess.AccessToken); err != nil {
		log.Error().Err(err).Msg("persist access token failed")
		s.note.Error("Could not save session")
		return false
	}
	if err := s.store.Set(ctx, domain.KeyRefreshToken, sess.RefreshToken); err != nil {
		log.Error().Err(err).Msg("persist refresh token failed")
		s.clearTokens(ctx)
		s.note.Error("Could not save session")
		return false
	}
	u := sess.User
	s.mu.Lock()
	s.user = &u
	s.startLoop()
	s.mu.Unlock()
	return true
}

func (s *AuthService) exchange(ctx context.Context) bool {
	rt := s.get(ctx, domain.KeyRefreshToken)
	if rt == "" {
		return false
	}
	access, err := s.api.Refresh(ctx, rt)
	if err != nil || access == "" {
		return false
	}
	if err := s.store.Set(ctx, domain.KeyAccessToken, access); err != nil {
		log.Error().Err(err).Msg("persist access token failed")
		return false
	}
	return true
}

// expired reads exp without verifying the signature; verification is the
// backend's job. Opaque tokens count as live.
func (s *AuthService) expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !exp.After(s.now())
}

// startLoop runs the periodic refresh. Caller holds mu.
func (s *AuthService) startLoop() {
	if s.stop != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.stop = cancel
	go func() {
		t := time.NewTicker(s.every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.RefreshToken(ctx)
			}
		}
	}()
}

// stopLoop cancels the refresh goroutine. Caller holds mu.
func (s *AuthService) stopLoop() {
	if s.stop != nil {
		s.stop()
		s.stop = nil
	}
}

func (s *AuthService) get(ctx context.Context, key string) string {
	v, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		return ""
	}
	return v
}

func (s *AuthService) clearTokens(ctx context.Context) {
	_ = s.store.Remove(ctx, domain.KeyAccessToken)
	_ = s.store.Remove(ctx, domain.KeyRefreshToken)
}
