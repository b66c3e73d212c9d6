package domain

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

type RecordRepository interface {
	// Write paths
	UpsertRecords(ctx context.Context, rs []Record) error

	// Read paths
	RecordsForCategory(ctx context.Context, c Category) ([]Record, error)
}

// RecordSource is the remote admin export the importer pulls from.
// Items are returned raw and mapped by the app layer.
type RecordSource interface {
	GetRecords(ctx context.Context, c Category) ([]ExportItem, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// RecordsCacheKey is the cache key holding the raw records of one category.
func RecordsCacheKey(c Category) string { return "records:" + string(c) }
