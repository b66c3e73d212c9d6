package mysql

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"structured_markup/internal/domain"
)

func valActivate(active bool) string {
	if active {
		return domain.ActiveFlag
	}
	return ""
}

func valBlob(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertRecords(ctx context.Context, rs []domain.Record) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*5)
	for _, rec := range rs {
		values = append(values, "(?,?,?,?,?)")
		args = append(args,
			rec.ID,                  // id
			string(rec.Kind),        // type
			string(rec.Category),    // output
			valActivate(rec.Active), // activate
			valBlob(rec.Options),    // options
		)
	}
	sqlStr := insertRecordsPrefix + strings.Join(values, ",") + insertRecordsOnDup
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return errors.Wrapf(err, "upsert %d schema records", len(rs))
	}
	return nil
}

func (r *Repo) RecordsForCategory(ctx context.Context, c domain.Category) ([]domain.Record, error) {
	rows, err := r.db.QueryContext(ctx, recordsForCategorySQL, string(c))
	if err != nil {
		return nil, errors.Wrapf(err, "query schema records for %s", c)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var (
			rec      domain.Record
			kind     string
			output   string
			activate sql.NullString
			options  sql.RawBytes
		)
		if err := rows.Scan(&rec.ID, &kind, &output, &activate, &options); err != nil {
			return nil, errors.Wrap(err, "scan schema record")
		}
		rec.Kind = domain.Kind(kind)
		rec.Category = domain.Category(output)
		rec.Active = activate.Valid && activate.String == domain.ActiveFlag
		if len(options) > 0 {
			rec.Options = append([]byte(nil), options...)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate schema records")
	}
	return out, nil
}
