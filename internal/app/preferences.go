package app

import (
	"context"
	"fmt"
	"sync"

	"staybook/internal/domain"
)

type Language struct {
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"nativeName"`
	RTL        bool   `json:"rtl"`
}

var SupportedLanguages = []Language{
	{"en", "English", "English", false},
	{"ar", "Arabic", "العربية", true},
	{"fr", "French", "Français", false},
	{"es", "Spanish", "Español", false},
	{"de", "German", "Deutsch", false},
	{"it", "Italian", "Italiano", false},
	{"pt", "Portuguese", "Português", false},
	{"ru", "Russian", "Русский", false},
	{"zh", "Chinese", "中文", false},
	{"ja", "Japanese", "日本語", false},
	{"ko", "Korean", "한국어", false},
}

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"

	defaultLanguage = "en"
)

type Preferences struct {
	Language string `json:"language"`
	Theme    string `json:"theme"`
	RTL      bool   `json:"rtl"`
}

// ResolvedTheme maps "system" onto the client's reported scheme.
func (p Preferences) ResolvedTheme(prefersDark bool) string {
	if p.Theme == ThemeSystem {
		if prefersDark {
			return ThemeDark
		}
		return ThemeLight
	}
	return p.Theme
}

type PreferencesPatch struct {
	Language *string `json:"language" validate:"omitempty,oneof=en ar fr es de it pt ru zh ja ko"`
	Theme    *string `json:"theme" validate:"omitempty,oneof=light dark system"`
}

// PreferencesService persists the cosmetic per-session settings.
type PreferencesService struct {
	mu    sync.Mutex
	store domain.KVStore
}

func NewPreferencesService(store domain.KVStore) *PreferencesService {
	return &PreferencesService{store: store}
}

// Get reads saved values; unknown or missing values fall back to defaults.
func (s *PreferencesService) Get(ctx context.Context) (Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(ctx)
}

func (s *PreferencesService) Update(ctx context.Context, patch PreferencesPatch) (Preferences, error) {
	if err := validate.Struct(patch); err != nil {
		return Preferences{}, fmt.Errorf("%w: %s", domain.ErrInvalidInput, validationMessage(err))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if patch.Language != nil {
		if err := s.store.Set(ctx, domain.KeyLanguage, *patch.Language); err != nil {
			return Preferences{}, fmt.Errorf("save language: %w", err)
		}
	}
	if patch.Theme != nil {
		if err := s.store.Set(ctx, domain.KeyTheme, *patch.Theme); err != nil {
			return Preferences{}, fmt.Errorf("save theme: %w", err)
		}
	}
	return s.get(ctx)
}

func (s *PreferencesService) get(ctx context.Context) (Preferences, error) {
	p := Preferences{Language: defaultLanguage, Theme: ThemeSystem}
	lang, ok, err := s.store.Get(ctx, domain.KeyLanguage)
	if err != nil {
		return p, fmt.Errorf("load language: %w", err)
	}
	if ok {
		if l, found := lookupLanguage(lang); found {
			p.Language, p.RTL = l.Code, l.RTL
		}
	}
	theme, ok, err := s.store.Get(ctx, domain.KeyTheme)
	if err != nil {
		return p, fmt.Errorf("load theme: %w", err)
	}
	if ok && (theme == ThemeLight || theme == ThemeDark || theme == ThemeSystem) {
		p.Theme = theme
	}
	return p, nil
}

func lookupLanguage(code string) (Language, bool) {
	for _, l := range SupportedLanguages {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}
