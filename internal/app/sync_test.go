package app_test

import (
	"context"
	"errors"
	"testing"

	"structured_markup/internal/app"
	"structured_markup/internal/domain"
	"structured_markup/internal/schema"
)

func TestSyncCategory_UpsertsAndInvalidates(t *testing.T) {
	src := &fakeSource{payloads: map[domain.Category][]domain.ExportItem{
		domain.CategoryHome: items(t, `[
			{"id": 3, "type": "local_business", "output": "home", "activate": "on", "options": {"name": "Cafe"}},
			{"record_id": "4", "kind": "local_business", "enabled": true, "settings": "a:1:{s:4:\"name\";s:1:\"Z\";}"},
			{"type": "local_business", "output": "home"},
			{"id": 5, "type": "local_business", "output": "page"}
		]`),
	}}
	repo := &fakeRepo{}
	cache := &fakeCache{store: map[string][]domain.Record{"records:home": nil}}
	svc := app.NewSyncService(src, repo, cache)

	n, err := svc.SyncCategory(context.Background(), domain.CategoryHome)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if n != 2 || len(repo.upserted) != 2 {
		t.Fatalf("expected 2 records stored, got n=%d upserted=%+v", n, repo.upserted)
	}

	first, second := repo.upserted[0], repo.upserted[1]
	if first.ID != 3 || !first.Active || first.Kind != domain.KindLocalBusiness || string(first.Options) != `{"name": "Cafe"}` {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if second.ID != 4 || !second.Active || second.Category != domain.CategoryHome || string(second.Options) != `a:1:{s:4:"name";s:1:"Z";}` {
		t.Fatalf("unexpected second record: %+v", second)
	}
	if len(cache.dels) != 1 || cache.dels[0] != "records:home" {
		t.Fatalf("expected cache invalidation, got %v", cache.dels)
	}
}

func TestSyncCategory_NotFoundIsEmpty(t *testing.T) {
	cache := &fakeCache{}
	svc := app.NewSyncService(&fakeSource{}, &fakeRepo{}, cache)

	n, err := svc.SyncCategory(context.Background(), domain.CategoryEvent)
	if err != nil || n != 0 {
		t.Fatalf("expected 0,nil got %d,%v", n, err)
	}
	if len(cache.dels) != 1 {
		t.Fatalf("expected invalidation on 404")
	}
}

func TestSyncCategory_ErrorsBubble(t *testing.T) {
	svc := app.NewSyncService(&fakeSource{err: domain.ErrUnauthorized}, &fakeRepo{}, nil)
	if _, err := svc.SyncCategory(context.Background(), domain.CategoryAll); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	src := &fakeSource{payloads: map[domain.Category][]domain.ExportItem{
		domain.CategoryAll: items(t, `[{"id": 1, "type": "local_business"}]`),
	}}
	dbErr := errors.New("deadlock")
	svc = app.NewSyncService(src, &fakeRepo{err: dbErr}, nil)
	if _, err := svc.SyncCategory(context.Background(), domain.CategoryAll); !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestSyncCategory_RejectsUnknownCategory(t *testing.T) {
	svc := app.NewSyncService(&fakeSource{}, &fakeRepo{}, nil)
	if _, err := svc.SyncCategory(context.Background(), "sidebar"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestRecordsFromExport(t *testing.T) {
	rs := app.RecordsFromExport(items(t, `[
		{"id": 2, "type": "local_business", "output": "page", "activate": "on"},
		{"id": 1, "type": "local_business", "output": "all"},
		{"id": 9, "type": "local_business", "output": "sidebar"},
		{"id": 8, "type": "local_business"}
	]`))
	if len(rs) != 2 {
		t.Fatalf("expected 2 records, got %+v", rs)
	}
	if rs[0].Category != domain.CategoryAll || rs[1].Category != domain.CategoryPage || !rs[1].Active {
		t.Fatalf("unexpected records: %+v", rs)
	}
}

func TestSyncCategory_KeepsOptionKeyOrder(t *testing.T) {
	src := &fakeSource{payloads: map[domain.Category][]domain.ExportItem{
		domain.CategoryAll: items(t, `[{"id": 1, "type": "local_business", "activate": "on",
			"options": {"name": "Shop", "social": {"twitter": "http://t.example", "facebook": "http://f.example"}}}]`),
	}}
	repo := &fakeRepo{}
	if _, err := app.NewSyncService(src, repo, nil).SyncCategory(context.Background(), domain.CategoryAll); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected 1 record, got %+v", repo.upserted)
	}

	o, err := schema.DecodeBusinessOptions(repo.upserted[0].Options)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(o.Social) != 2 || o.Social[0] != "http://t.example" || o.Social[1] != "http://f.example" {
		t.Fatalf("social links reordered: %v", o.Social)
	}
}

func TestSyncCategory_LargeIDsSurvive(t *testing.T) {
	src := &fakeSource{payloads: map[domain.Category][]domain.ExportItem{
		domain.CategoryAll: items(t, `[{"id": 9007199254740993, "type": "local_business"}]`),
	}}
	repo := &fakeRepo{}
	if _, err := app.NewSyncService(src, repo, nil).SyncCategory(context.Background(), domain.CategoryAll); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(repo.upserted) != 1 || repo.upserted[0].ID != 9007199254740993 {
		t.Fatalf("unexpected records: %+v", repo.upserted)
	}
}
