package app

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog/log"

	"structured_markup/internal/adapters/observability"
	"structured_markup/internal/domain"
	"structured_markup/internal/schema"
)

// RenderService turns a page context into linked-data documents.
// A render never fails as a whole: store, cache and decode problems are
// logged and the affected records are left out.
type RenderService struct {
	repo     domain.RecordRepository
	cache    domain.Cache
	cacheTTL time.Duration
	reg      *schema.Registry
}

func NewRenderService(r domain.RecordRepository, c domain.Cache, ttl time.Duration, reg *schema.Registry) *RenderService {
	return &RenderService{repo: r, cache: c, cacheTTL: ttl, reg: reg}
}

// Documents assembles every document that applies to pc, in category order
// and then record order.
func (s *RenderService) Documents(ctx context.Context, pc domain.PageContext) []schema.Document {
	var docs []schema.Document
	for _, c := range pc.Categories() {
		docs = append(docs, s.documentsFor(ctx, c)...)
	}
	return docs
}

// Render writes one script block per document to w and returns how many were written.
func (s *RenderService) Render(ctx context.Context, pc domain.PageContext, w io.Writer) int {
	e := schema.NewEmitter(w)
	n := 0
	for _, doc := range s.Documents(ctx, pc) {
		if err := e.Emit(doc); err != nil {
			log.Error().Err(err).Str("kind", string(doc.DocumentKind())).Msg("emit document failed")
			continue
		}
		n++
	}
	return n
}

func (s *RenderService) documentsFor(ctx context.Context, c domain.Category) []schema.Document {
	selected, skipped := schema.Select(s.records(ctx, c), s.reg)
	for _, sk := range skipped {
		observability.ObserveSkipped(sk.Reason)
		log.Debug().Int64("record", sk.Record.ID).Str("category", string(c)).
			Str("reason", sk.Reason).Msg("record skipped")
	}

	docs := make([]schema.Document, 0, len(selected))
	for _, rec := range selected {
		doc, err := s.reg.Build(rec)
		if err != nil {
			observability.ObserveSkipped(schema.SkipMalformed)
			log.Debug().Err(err).Int64("record", rec.ID).Str("category", string(c)).Msg("record skipped")
			continue
		}
		observability.ObserveRendered(string(rec.Kind))
		docs = append(docs, doc)
	}
	return docs
}

// records reads a category through the cache. Failures read as "no records".
func (s *RenderService) records(ctx context.Context, c domain.Category) []domain.Record {
	key := domain.RecordsCacheKey(c)
	var rs []domain.Record
	if s.cache != nil {
		if ok, err := s.cache.Get(ctx, key, &rs); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("record cache read failed")
		} else if ok {
			return rs
		}
	}

	rs, err := s.repo.RecordsForCategory(ctx, c)
	if err != nil {
		log.Error().Err(err).Str("category", string(c)).Msg("load records failed")
		return nil
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, rs, int(s.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("record cache write failed")
		}
	}
	return rs
}
