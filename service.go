package gnewsmcp

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ferro-labs/gnews-mcp/internal/cache"
	"github.com/ferro-labs/gnews-mcp/internal/gnews"
	"github.com/ferro-labs/gnews-mcp/internal/metrics"
)

// Fetcher performs the outbound GNews API calls. *gnews.Client is the
// production implementation; tests substitute stubs with call counters.
type Fetcher interface {
	Search(ctx context.Context, p gnews.SearchParams) (*gnews.Envelope, error)
	TopHeadlines(ctx context.Context, p gnews.HeadlinesParams) (*gnews.Envelope, error)
}

// Service implements the two tool operations: validate the arguments,
// derive the request fingerprint, consult the cache, fetch upstream on a
// miss, and populate the cache with successful results only.
//
// Two concurrent misses for the same fingerprint may both fetch upstream;
// that redundancy is accepted rather than serialized behind a lock.
type Service struct {
	fetcher    Fetcher
	search     cache.Store
	headlines  cache.Store
	persistent cache.PersistentStore // shared by both tiers; closed once
	validate   *validator.Validate
}

// NewService wires a Service from configuration: GNews client, per-tool
// in-memory tiers, and an optional shared persistent tier (Postgres when
// CacheDSN is set, otherwise SQLite under CacheDir, otherwise none).
func NewService(cfg Config) (*Service, error) {
	var persistent cache.PersistentStore
	switch {
	case cfg.CacheDSN != "":
		store, err := cache.NewPostgresStore(cfg.CacheDSN)
		if err != nil {
			return nil, err
		}
		persistent = store
	case cfg.CacheDir != "":
		store, err := cache.NewSQLiteStore(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		persistent = store
	}

	svc := newService(
		gnews.NewClient(cfg.APIKey, cfg.BaseURL),
		cache.NewTiered("search_news",
			cache.NewMemory(cfg.SearchCacheSize, cfg.SearchTTL()),
			persistent, cfg.SearchTTL()),
		cache.NewTiered("top_headlines",
			cache.NewMemory(cfg.HeadlinesCacheSize, cfg.HeadlinesTTL()),
			persistent, cfg.HeadlinesTTL()),
	)
	svc.persistent = persistent
	return svc, nil
}

func newService(fetcher Fetcher, search, headlines cache.Store) *Service {
	return &Service{
		fetcher:   fetcher,
		search:    search,
		headlines: headlines,
		validate:  validator.New(),
	}
}

// Close releases the persistent cache tier, if configured.
func (s *Service) Close() error {
	if s.persistent != nil {
		return s.persistent.Close()
	}
	return nil
}

// SearchNews validates req and returns matching articles, served from cache
// when a fresh entry exists.
func (s *Service) SearchNews(ctx context.Context, req SearchRequest) (*gnews.Envelope, error) {
	p, err := s.validateSearch(req)
	if err != nil {
		metrics.ToolRequests.WithLabelValues("search_news", "invalid_input").Inc()
		return nil, err
	}

	key := cache.Fingerprint(gnews.EndpointSearch, p.Values())
	if env, ok := s.search.Get(key); ok {
		metrics.ToolRequests.WithLabelValues("search_news", "success").Inc()
		return env, nil
	}

	env, err := s.fetchSearch(ctx, p)
	if err != nil {
		metrics.ToolRequests.WithLabelValues("search_news", errorStatus(err)).Inc()
		return nil, err
	}

	s.search.Set(key, env)
	metrics.ToolRequests.WithLabelValues("search_news", "success").Inc()
	return env, nil
}

// TopHeadlines validates req and returns the current top headlines, served
// from cache when a fresh entry exists.
func (s *Service) TopHeadlines(ctx context.Context, req HeadlinesRequest) (*gnews.Envelope, error) {
	p, err := s.validateHeadlines(req)
	if err != nil {
		metrics.ToolRequests.WithLabelValues("top_headlines", "invalid_input").Inc()
		return nil, err
	}

	key := cache.Fingerprint(gnews.EndpointHeadlines, p.Values())
	if env, ok := s.headlines.Get(key); ok {
		metrics.ToolRequests.WithLabelValues("top_headlines", "success").Inc()
		return env, nil
	}

	env, err := s.fetchHeadlines(ctx, p)
	if err != nil {
		metrics.ToolRequests.WithLabelValues("top_headlines", errorStatus(err)).Inc()
		return nil, err
	}

	s.headlines.Set(key, env)
	metrics.ToolRequests.WithLabelValues("top_headlines", "success").Inc()
	return env, nil
}

func (s *Service) fetchSearch(ctx context.Context, p gnews.SearchParams) (*gnews.Envelope, error) {
	start := time.Now()
	env, err := s.fetcher.Search(ctx, p)
	observeFetch(gnews.EndpointSearch, start, err)
	return env, err
}

func (s *Service) fetchHeadlines(ctx context.Context, p gnews.HeadlinesParams) (*gnews.Envelope, error) {
	start := time.Now()
	env, err := s.fetcher.TopHeadlines(ctx, p)
	observeFetch(gnews.EndpointHeadlines, start, err)
	return env, err
}

func observeFetch(endpoint string, start time.Time, err error) {
	metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	switch {
	case err == nil:
	case isNetworkError(err):
		metrics.UpstreamErrors.WithLabelValues(endpoint, "network").Inc()
	default:
		metrics.UpstreamErrors.WithLabelValues(endpoint, "upstream").Inc()
	}
}

func errorStatus(err error) string {
	var ie *InvalidInputError
	if errors.As(err, &ie) {
		return "invalid_input"
	}
	if isNetworkError(err) {
		return "network_error"
	}
	return "upstream_error"
}

func isNetworkError(err error) bool {
	var ne *gnews.NetworkError
	return errors.As(err, &ne)
}
