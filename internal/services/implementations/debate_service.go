package implementations

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"debate-gallery/internal/domain/debate"
	"debate-gallery/internal/observability"
	"debate-gallery/internal/platform/cache"
)

// DebateServiceImpl implements debate.Service on top of the backend with a
// read-through cache. Writes invalidate what they touch.
type DebateServiceImpl struct {
	backend      debate.Backend
	cache        debate.CacheService
	logger       *observability.Logger
	minimumScore float64
	includeAll   bool
}

// SearchOptions are the fixed search parameters sent with every query
type SearchOptions struct {
	MinimumScore float64
	IncludeAll   bool
}

// NewDebateService creates a new debate service implementation
func NewDebateService(
	backend debate.Backend,
	cacheService debate.CacheService,
	logger *observability.Logger,
	opts SearchOptions,
) *DebateServiceImpl {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	if cacheService == nil {
		cacheService = NewCacheService(nil, logger)
	}
	if opts.MinimumScore <= 0 {
		opts.MinimumScore = debate.DefaultMinimumScore
	}
	return &DebateServiceImpl{
		backend:      backend,
		cache:        cacheService,
		logger:       logger.Component("debates"),
		minimumScore: opts.MinimumScore,
		includeAll:   opts.IncludeAll,
	}
}

// List returns every debate
func (s *DebateServiceImpl) List(ctx context.Context) ([]debate.Debate, error) {
	key := cache.ListKey("")
	if cached, err := s.cache.GetList(ctx, key); err == nil {
		return cached, nil
	}

	debates, err := s.backend.ListDebates(ctx)
	if err != nil {
		return nil, err
	}

	s.storeList(ctx, key, debates)
	return debates, nil
}

// Search returns scored debates for query; a blank query lists everything
func (s *DebateServiceImpl) Search(ctx context.Context, query string) ([]debate.Debate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx)
	}

	key := cache.ListKey(query)
	if cached, err := s.cache.GetList(ctx, key); err == nil {
		return cached, nil
	}

	debates, err := s.backend.SearchDebates(ctx, debate.SearchRequest{
		Query:        query,
		MinimumScore: s.minimumScore,
		IncludeAll:   s.includeAll,
	})
	if err != nil {
		return nil, err
	}

	s.storeList(ctx, key, debates)
	return debates, nil
}

// Get returns one debate with its OCR text
func (s *DebateServiceImpl) Get(ctx context.Context, id string) (*debate.Debate, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, debate.ErrMissingID
	}

	if cached, err := s.cache.GetDebate(ctx, id); err == nil {
		return cached, nil
	}

	d, err := s.backend.GetDebate(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetDebate(ctx, d); err != nil {
		s.logger.Warn(ctx).Err(err).Str("debate_id", id).Msg("Failed to cache debate")
	}
	return d, nil
}

// Update replaces title and summary
func (s *DebateServiceImpl) Update(ctx context.Context, id string, req debate.UpdateRequest) error {
	if strings.TrimSpace(id) == "" {
		return debate.ErrMissingID
	}
	if err := req.Validate(); err != nil {
		return err
	}

	if err := s.backend.UpdateDebate(ctx, id, req); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.logger.Info(ctx).Str("debate_id", id).Msg("Debate updated")
	return nil
}

// Delete removes a debate
func (s *DebateServiceImpl) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return debate.ErrMissingID
	}

	if err := s.backend.DeleteDebate(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	s.logger.Info(ctx).Str("debate_id", id).Msg("Debate deleted")
	return nil
}

// Create creates a debate record without an image
func (s *DebateServiceImpl) Create(ctx context.Context, req debate.CreateRequest) (*debate.CreateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.backend.CreateDebate(ctx, req)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, strconv.Itoa(resp.DebateID))
	return resp, nil
}

// AddImage attaches an image to an existing debate
func (s *DebateServiceImpl) AddImage(ctx context.Context, req debate.UploadRequest) (*debate.UploadResponse, error) {
	if req.DebateID <= 0 {
		return nil, fmt.Errorf("%w: invalid debate id %d", debate.ErrValidation, req.DebateID)
	}
	if len(req.Data) == 0 {
		return nil, fmt.Errorf("%w: image is required", debate.ErrValidation)
	}

	resp, err := s.backend.AddImage(ctx, req)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, strconv.Itoa(req.DebateID))
	return resp, nil
}

func (s *DebateServiceImpl) storeList(ctx context.Context, key string, debates []debate.Debate) {
	if err := s.cache.SetList(ctx, key, debates); err != nil {
		s.logger.Warn(ctx).Err(err).Str("key", key).Msg("Failed to cache debate list")
	}
}

func (s *DebateServiceImpl) invalidate(ctx context.Context, id string) {
	if err := s.cache.DeleteDebate(ctx, id); err != nil {
		s.logger.Warn(ctx).Err(err).Str("debate_id", id).Msg("Failed to invalidate cached debate")
	}
	if err := s.cache.InvalidateLists(ctx); err != nil {
		s.logger.Warn(ctx).Err(err).Msg("Failed to invalidate cached lists")
	}
}
