// Package memory is an in-process record store for offline rendering and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"structured_markup/internal/domain"
)

type Repo struct {
	mu   sync.RWMutex
	byID map[int64]domain.Record
}

func New() *Repo { return &Repo{byID: map[int64]domain.Record{}} }

func (r *Repo) UpsertRecords(_ context.Context, rs []domain.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range rs {
		rec.Options = append([]byte(nil), rec.Options...)
		r.byID[rec.ID] = rec
	}
	return nil
}

// RecordsForCategory returns copies in id order, like the SQL store.
func (r *Repo) RecordsForCategory(_ context.Context, c domain.Category) ([]domain.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Record
	for _, rec := range r.byID {
		if rec.Category == c {
			rec.Options = append([]byte(nil), rec.Options...)
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
