package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"structured_markup/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	byCat    map[domain.Category][]domain.Record
	err      error
	reads    int
	upserted []domain.Record
}

func (f *fakeRepo) UpsertRecords(ctx context.Context, rs []domain.Record) error {
	if f.err != nil {
		return f.err
	}
	f.upserted = append(f.upserted, rs...)
	return nil
}

func (f *fakeRepo) RecordsForCategory(ctx context.Context, c domain.Category) ([]domain.Record, error) {
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	return f.byCat[c], nil
}

type fakeCache struct {
	store  map[string][]domain.Record
	getErr error
	dels   []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	*(dst.(*[]domain.Record)) = v
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]domain.Record{}
	}
	c.store[key] = v.([]domain.Record)
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.dels = append(c.dels, key)
	delete(c.store, key)
	return nil
}

type fakeSource struct {
	payloads map[domain.Category][]domain.ExportItem
	err      error
}

func (s *fakeSource) GetRecords(ctx context.Context, c domain.Category) ([]domain.ExportItem, error) {
	if s.err != nil {
		return nil, s.err
	}
	p, ok := s.payloads[c]
	if !ok {
		return nil, errors.Join(errors.New("GET /records"), domain.ErrNotFound)
	}
	return p, nil
}

func lb(id int64, c domain.Category, active bool, options string) domain.Record {
	return domain.Record{ID: id, Category: c, Kind: domain.KindLocalBusiness, Active: active, Options: []byte(options)}
}

// items decodes an export body the way the remote client does.
func items(t *testing.T, body string) []domain.ExportItem {
	t.Helper()
	var out []domain.ExportItem
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return out
}
