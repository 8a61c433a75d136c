package app

import (
	"context"
	"net/url"
	"sync"

	"github.com/rs/zerolog/log"

	"staybook/internal/domain"
)

const defaultPageSize = 12

// SearchService is one session's search page. All changes go through Reduce.
type SearchService struct {
	mu     sync.Mutex
	state  SearchState
	api    domain.HotelAPI
	recent *RecentSearches
	limit  int
}

func NewSearchService(api domain.HotelAPI, recent *RecentSearches, pageSize int) *SearchService {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &SearchService{state: InitialSearchState(), api: api, recent: recent, limit: pageSize}
}

func (s *SearchService) dispatch(a SearchAction) (SearchState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Reduce(s.state, a)
	s.state = next
	return next, err
}

// Sync makes the URL the source of truth for query, filters and sort.
func (s *SearchService) Sync(v url.Values) SearchState {
	st, _ := s.dispatch(SyncFromURL{Values: v})
	return st
}

func (s *SearchService) SetQuery(q string) SearchState {
	st, _ := s.dispatch(SetQuery{Query: q})
	return st
}

func (s *SearchService) SetSortBy(o domain.SortOption) (SearchState, error) {
	return s.dispatch(SetSort{Sort: o})
}

func (s *SearchService) ApplyFilters(patch domain.SearchFilters) SearchState {
	st, _ := s.dispatch(ApplyFilters{Patch: patch})
	return st
}

func (s *SearchService) RemoveFilter(k domain.FilterKey) (SearchState, error) {
	return s.dispatch(RemoveFilter{Key: k})
}

func (s *SearchService) ClearFilters() SearchState {
	st, _ := s.dispatch(ClearFilters{})
	return st
}

func (s *SearchService) ClearSearch() SearchState {
	st, _ := s.dispatch(ClearSearch{})
	return st
}

func (s *SearchService) ActiveFiltersCount() int { return s.State().ActiveFiltersCount() }

func (s *SearchService) State() SearchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// URL is the canonical query string of the current state.
func (s *SearchService) URL() string { return s.State().URL() }

// Search fetches the first page for the current criteria.
func (s *SearchService) Search(ctx context.Context) (SearchState, error) {
	st, _ := s.dispatch(SearchStarted{})
	res, err := s.api.SearchHotels(ctx, s.query(st, 1))
	if err != nil {
		st, _ = s.dispatch(SearchFailed{})
		return st, err
	}
	if loc := st.Filters.Location; loc != "" && s.recent != nil {
		if err := s.recent.Add(ctx, loc); err != nil {
			log.Warn().Err(err).Str("location", loc).Msg("save recent search failed")
		}
	}
	return s.dispatch(ResultsLoaded{Results: res})
}

// LoadMore appends the next page. It is a no-op when nothing is left or a
// request is already running. With nothing loaded yet it fetches page 1.
func (s *SearchService) LoadMore(ctx context.Context) (SearchState, error) {
	st := s.State()
	if !st.HasMore || st.IsSearching {
		return st, nil
	}
	if len(st.Results) == 0 {
		return s.Search(ctx)
	}
	st, _ = s.dispatch(SearchStarted{})
	res, err := s.api.SearchHotels(ctx, s.query(st, st.CurrentPage+1))
	if err != nil {
		st, _ = s.dispatch(SearchFailed{})
		return st, err
	}
	if res.Page == 0 {
		res.Page = st.CurrentPage + 1
	}
	return s.dispatch(ResultsLoaded{Results: res, Append: true})
}

func (s *SearchService) query(st SearchState, page int) domain.SearchQuery {
	return domain.SearchQuery{
		Query:   st.Query,
		Filters: st.Filters,
		SortBy:  st.SortBy,
		Page:    page,
		Limit:   s.limit,
	}
}
