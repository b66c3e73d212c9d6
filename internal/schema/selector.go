package schema

import "structured_markup/internal/domain"

// Skip reasons, also used as metric label values.
const (
	SkipInactive    = "inactive"
	SkipUnknownKind = "unknown_kind"
	SkipMalformed   = "malformed"
)

type Skipped struct {
	Record domain.Record
	Reason string
}

// Select keeps the active records whose kind has a builder, preserving input order.
func Select(records []domain.Record, reg *Registry) (selected []domain.Record, skipped []Skipped) {
	for _, rec := range records {
		switch {
		case !rec.Active:
			skipped = append(skipped, Skipped{Record: rec, Reason: SkipInactive})
		case !known(reg, rec.Kind):
			skipped = append(skipped, Skipped{Record: rec, Reason: SkipUnknownKind})
		default:
			selected = append(selected, rec)
		}
	}
	return selected, skipped
}

func known(reg *Registry, k domain.Kind) bool {
	_, ok := reg.Lookup(k)
	return ok
}
