package app

import (
	"fmt"
	"net/url"
	"reflect"

	"staybook/internal/domain"
)

// SearchState is everything the search page shows. Only Reduce produces new
// values; the URL is derived from it, never written independently.
type SearchState struct {
	Query        string               `json:"query"`
	Filters      domain.SearchFilters `json:"filters"`
	SortBy       domain.SortOption    `json:"sortBy"`
	Results      []domain.Hotel       `json:"results"`
	TotalResults int                  `json:"totalResults"`
	CurrentPage  int                  `json:"currentPage"`
	HasMore      bool                 `json:"hasMore"`
	IsSearching  bool                 `json:"isSearching"`
}

func InitialSearchState() SearchState {
	return SearchState{
		Filters:     domain.DefaultFilters(),
		SortBy:      domain.DefaultSort,
		Results:     []domain.Hotel{},
		CurrentPage: 1,
		HasMore:     true,
	}
}

// ActiveFiltersCount counts filter dimensions that differ from the defaults.
func (s SearchState) ActiveFiltersCount() int { return s.Filters.ActiveCount() }

// sameCriteria reports whether two states would hit the backend identically.
func (s SearchState) sameCriteria(o SearchState) bool {
	return s.Query == o.Query && s.SortBy == o.SortBy && reflect.DeepEqual(s.Filters, o.Filters)
}

// resetPaging drops cached results and goes back to page one.
func (s SearchState) resetPaging() SearchState {
	s.Results = []domain.Hotel{}
	s.TotalResults = 0
	s.CurrentPage = 1
	s.HasMore = true
	return s
}

type SearchAction interface {
	apply(SearchState) (SearchState, error)
}

// SyncFromURL replaces query, filters and sort with what the URL says.
// Cached results survive only if the criteria did not change.
type SyncFromURL struct{ Values url.Values }

// SetQuery changes the free-text query.
type SetQuery struct{ Query string }

// SetSort changes the ordering and resets paging.
type SetSort struct{ Sort domain.SortOption }

// ApplyFilters merges Patch into the current filters.
type ApplyFilters struct{ Patch domain.SearchFilters }

// RemoveFilter unsets one dimension.
type RemoveFilter struct{ Key domain.FilterKey }

// ClearFilters restores the default filters.
type ClearFilters struct{}

// ClearSearch restores the whole initial state.
type ClearSearch struct{}

// SearchStarted marks a request in flight.
type SearchStarted struct{}

// SearchFailed clears the in-flight flag and keeps everything else.
type SearchFailed struct{}

// ResultsLoaded stores a page. Append adds to the current list (load more).
type ResultsLoaded struct {
	Results domain.SearchResults
	Append  bool
}

func (a SyncFromURL) apply(s SearchState) (SearchState, error) {
	parsed := ParseSearchURL(a.Values)
	if s.sameCriteria(parsed) {
		return s, nil
	}
	s.Query, s.Filters, s.SortBy = parsed.Query, parsed.Filters, parsed.SortBy
	return s.resetPaging(), nil
}

func (a SetQuery) apply(s SearchState) (SearchState, error) {
	if s.Query == a.Query {
		return s, nil
	}
	s.Query = a.Query
	return s.resetPaging(), nil
}

func (a SetSort) apply(s SearchState) (SearchState, error) {
	if !a.Sort.Valid() {
		return s, fmt.Errorf("unknown sort option %q", a.Sort)
	}
	s.SortBy = a.Sort
	return s.resetPaging(), nil
}

func (a ApplyFilters) apply(s SearchState) (SearchState, error) {
	s.Filters = s.Filters.Merge(a.Patch)
	return s.resetPaging(), nil
}

func (a RemoveFilter) apply(s SearchState) (SearchState, error) {
	f, ok := s.Filters.Without(a.Key)
	if !ok {
		return s, fmt.Errorf("%w: %s", domain.ErrUnknownFilter, a.Key)
	}
	s.Filters = f
	return s.resetPaging(), nil
}

func (ClearFilters) apply(s SearchState) (SearchState, error) {
	s.Filters = domain.DefaultFilters()
	return s.resetPaging(), nil
}

func (ClearSearch) apply(SearchState) (SearchState, error) { return InitialSearchState(), nil }

func (SearchStarted) apply(s SearchState) (SearchState, error) {
	s.IsSearching = true
	return s, nil
}

func (SearchFailed) apply(s SearchState) (SearchState, error) {
	s.IsSearching = false
	return s, nil
}

func (a ResultsLoaded) apply(s SearchState) (SearchState, error) {
	hotels := a.Results.Hotels
	if hotels == nil {
		hotels = []domain.Hotel{}
	}
	if a.Append {
		merged := make([]domain.Hotel, 0, len(s.Results)+len(hotels))
		merged = append(merged, s.Results...)
		s.Results = append(merged, hotels...)
	} else {
		s.Results = hotels
	}
	s.TotalResults = a.Results.TotalResults
	if a.Results.Page > 0 {
		s.CurrentPage = a.Results.Page
	}
	s.HasMore = s.CurrentPage < a.Results.TotalPages
	s.IsSearching = false
	return s, nil
}

// Reduce is the only way search state changes. On error s is returned as is.
func Reduce(s SearchState, a SearchAction) (SearchState, error) {
	next, err := a.apply(s)
	if err != nil {
		return s, err
	}
	return next, nil
}
