package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"structured_markup/internal/domain"
)

// SyncService copies records from the remote admin export into the store.
type SyncService struct {
	src   domain.RecordSource
	repo  domain.RecordRepository
	cache domain.Cache
}

func NewSyncService(src domain.RecordSource, r domain.RecordRepository, cache domain.Cache) *SyncService {
	return &SyncService{src: src, repo: r, cache: cache}
}

// SyncCategory pulls one category and upserts it, returning how many records were stored.
func (s *SyncService) SyncCategory(ctx context.Context, c domain.Category) (int, error) {
	if !c.Valid() {
		return 0, fmt.Errorf("unknown category %q", c)
	}

	payloads, err := s.src.GetRecords(ctx, c)
	if err != nil {
		// 404: the export has nothing for this category. Drop the cached copy so
		// renders fall back to whatever the store holds.
		if errors.Is(err, domain.ErrNotFound) {
			s.invalidate(ctx, c)
			return 0, nil
		}
		// 401/403 and anything unexpected bubble up.
		return 0, err
	}

	rs := mapRecords(c, payloads)
	if len(rs) > 0 {
		if err := s.repo.UpsertRecords(ctx, rs); err != nil {
			return 0, fmt.Errorf("upsert records failed for %s: %w", c, err)
		}
	}
	if dropped := len(payloads) - len(rs); dropped > 0 {
		log.Warn().Str("category", string(c)).Int("dropped", dropped).Msg("unmappable records in export")
	}

	// even an empty export invalidates, so no stale record list survives
	s.invalidate(ctx, c)
	return len(rs), nil
}

func (s *SyncService) invalidate(ctx context.Context, c domain.Category) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, domain.RecordsCacheKey(c)); err != nil {
		log.Warn().Err(err).Str("category", string(c)).Msg("record cache invalidation failed")
	}
}
