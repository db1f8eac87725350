package inventory

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	Create(ctx context.Context, input CreateDiamondInput) (*Diamond, error)
	Get(ctx context.Context, id int64) (*Diamond, error)
	UpdateStatus(ctx context.Context, id int64, status Status) error
	Search(ctx context.Context, filter SearchFilter) ([]Diamond, error)
}

// Service coordinates stock operations. Searches hit Redis first and
// collapse concurrent misses for the same filter through singleflight.
type Service struct {
	repo   RepositoryPort
	cache  *Cache
	group  singleflight.Group
	logger *slog.Logger
}

// NewService builds a Service. cache may be nil, in which case every search
// goes to the database.
func NewService(repo RepositoryPort, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Create validates and stores a new stone, then invalidates search results.
func (s *Service) Create(ctx context.Context, input CreateDiamondInput) (*Diamond, error) {
	input.StockRef = strings.TrimSpace(input.StockRef)
	if input.StockRef == "" || input.Carat.Sign() <= 0 || input.PricePerCarat.Sign() <= 0 {
		return nil, ErrInvalidStone
	}
	d, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return d, nil
}

// Get loads one stone.
func (s *Service) Get(ctx context.Context, id int64) (*Diamond, error) {
	return s.repo.Get(ctx, id)
}

// UpdateStatus moves a stone through its lifecycle and invalidates search
// results.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status Status) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Search returns stones matching the filter, served from cache when fresh.
func (s *Service) Search(ctx context.Context, filter SearchFilter) ([]Diamond, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	if s.cache == nil {
		return s.repo.Search(ctx, filter)
	}

	key, err := s.cache.Key(ctx, filter)
	if err != nil {
		s.logger.Warn("inventory cache key", slog.Any("error", err))
		return s.repo.Search(ctx, filter)
	}
	if stones, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("inventory cache get", slog.Any("error", err))
	} else if ok {
		return stones, nil
	}

	result, err, _ := s.group.Do(key, func() (any, error) {
		stones, err := s.repo.Search(ctx, filter)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, key, stones); err != nil {
			s.logger.Warn("inventory cache set", slog.Any("error", err))
		}
		return stones, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]Diamond), nil
}

// WarmSearchCache pre-loads the default available-stock view. Wired to the
// periodic warmup task.
func (s *Service) WarmSearchCache(ctx context.Context) error {
	_, err := s.Search(ctx, SearchFilter{Status: StatusAvailable})
	return err
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("inventory cache invalidate", slog.Any("error", err))
	}
}
