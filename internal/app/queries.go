package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Mr-fuaaaadh/hostelmate/internal/domain"
)

const suggestionsPerKind = 5

// QueryService serves the read side. List and detail views are cached under
// the coherence layer's key scheme and repopulated lazily on the first read
// after an invalidation.
type QueryService struct {
	store    domain.Store
	cache    domain.Cache
	cacheTTL time.Duration
	minQuery int
}

func NewQueryService(s domain.Store, c domain.Cache, ttl time.Duration, minQuery int) *QueryService {
	if minQuery <= 0 {
		minQuery = 2
	}
	return &QueryService{store: s, cache: c, cacheTTL: ttl, minQuery: minQuery}
}

func (s *QueryService) GetHostel(ctx context.Context, id int64) (domain.HostelView, error) {
	ref := domain.ProviderRef{Kind: domain.KindHostel, ID: id}
	var hv domain.HostelView
	err := s.cache.GetOrSet(ctx, ref.DetailKey(), &hv, s.ttlSec(), func(ctx context.Context) (any, error) {
		return s.store.GetHostel(ctx, id)
	})
	return hv, err
}

func (s *QueryService) ListHostels(ctx context.Context) ([]domain.ProviderSummary, error) {
	ref := domain.ProviderRef{Kind: domain.KindHostel}
	var out []domain.ProviderSummary
	err := s.cache.GetOrSet(ctx, ref.ListKey(), &out, s.ttlSec(), func(ctx context.Context) (any, error) {
		return s.store.ListHostels(ctx)
	})
	return out, err
}

func (s *QueryService) GetHome(ctx context.Context, id int64) (domain.HomeView, error) {
	ref := domain.ProviderRef{Kind: domain.KindHome, ID: id}
	var hv domain.HomeView
	err := s.cache.GetOrSet(ctx, ref.DetailKey(), &hv, s.ttlSec(), func(ctx context.Context) (any, error) {
		return s.store.GetHome(ctx, id)
	})
	return hv, err
}

func (s *QueryService) ListHomes(ctx context.Context) ([]domain.ProviderSummary, error) {
	ref := domain.ProviderRef{Kind: domain.KindHome}
	var out []domain.ProviderSummary
	err := s.cache.GetOrSet(ctx, ref.ListKey(), &out, s.ttlSec(), func(ctx context.Context) (any, error) {
		return s.store.ListHomes(ctx)
	})
	return out, err
}

// Facilities is the shared catalog; small and rarely written, read straight
// from the store.
func (s *QueryService) Facilities(ctx context.Context) ([]domain.Facility, error) {
	return s.store.ListFacilities(ctx)
}

// Suggestions runs the unified name/city search across both provider kinds.
// Queries shorter than the minimum return an empty result without touching
// the store or the cache.
func (s *QueryService) Suggestions(ctx context.Context, q string) ([]domain.Suggestion, error) {
	q = strings.TrimSpace(q)
	if len(q) < s.minQuery {
		return []domain.Suggestion{}, nil
	}
	key := fmt.Sprintf("search_suggestions_%s", strings.ToLower(q))
	var out []domain.Suggestion
	err := s.cache.GetOrSet(ctx, key, &out, s.ttlSec(), func(ctx context.Context) (any, error) {
		return s.store.SearchProviders(ctx, q, suggestionsPerKind)
	})
	return out, err
}

func (s *QueryService) ttlSec() int { return int(s.cacheTTL.Seconds()) }
