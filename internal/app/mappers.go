package app

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"structured_markup/internal/domain"
)

/********** alias registry (single source of truth) **********/

var recordAliases = map[string][]string{
	"id":       {"id", "record_id", "ID"},
	"kind":     {"type", "kind", "schema_type"},
	"category": {"output", "category", "scope"},
	"active":   {"activate", "active", "enabled"},
	"options":  {"options", "settings", "data"},
}

/********** tiny helpers **********/

// lookupRaw: first non-null raw value found under any of the alias keys.
func lookupRaw(m domain.ExportItem, key string) json.RawMessage {
	for _, k := range recordAliases[key] {
		if v, ok := m[k]; ok && !isNull(v) {
			return v
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// lookupAny decodes the aliased value; numbers come back as json.Number.
func lookupAny(m domain.ExportItem, key string) any {
	raw := lookupRaw(m, key)
	if raw == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// lookupStr returns the aliased value as a trimmed string, or "".
func lookupStr(m domain.ExportItem, key string) string {
	if s, ok := lookupAny(m, key).(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// int64Flexible: int64 from json.Number/float64/int/string.
func int64Flexible(v any) (int64, bool) {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n, true
		}
	case float64:
		return int64(t), true
	case int:
		return int64(t), true
	case int64:
		return t, true
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// activeFlexible accepts the stored "on" checkbox value or a JSON boolean.
func activeFlexible(v any) bool {
	switch t := v.(type) {
	case string:
		return t == domain.ActiveFlag
	case bool:
		return t
	}
	return false
}

// optionsBytes unquotes string payloads (legacy serialized blobs) and keeps
// structured ones exactly as exported.
func optionsBytes(raw json.RawMessage) []byte {
	if raw == nil {
		return nil
	}
	t := bytes.TrimSpace(raw)
	if t[0] == '"' {
		var s string
		if err := json.Unmarshal(t, &s); err != nil {
			log.Error().Err(err).Str("context", "optionsBytes").Msg("decode options string failed")
			return nil
		}
		return []byte(s)
	}
	return append([]byte(nil), t...)
}

/********** record mapper **********/

// mapRecords converts export items for category c. Items without an id
// or scoped to another category are dropped.
func mapRecords(c domain.Category, in []domain.ExportItem) []domain.Record {
	out := make([]domain.Record, 0, len(in))
	for _, p := range in {
		id, ok := int64Flexible(lookupAny(p, "id"))
		if !ok {
			continue
		}
		rc := domain.Category(lookupStr(p, "category"))
		if rc == "" {
			rc = c
		}
		if rc != c {
			continue
		}
		out = append(out, domain.Record{
			ID:       id,
			Category: rc,
			Kind:     domain.Kind(lookupStr(p, "kind")),
			Active:   activeFlexible(lookupAny(p, "active")),
			Options:  optionsBytes(lookupRaw(p, "options")),
		})
	}
	return out
}

// RecordsFromExport maps a multi-category export, such as a file dump of the
// admin export, keeping each item in its own category. Items without
// an id or with an unknown category are dropped.
func RecordsFromExport(in []domain.ExportItem) []domain.Record {
	out := make([]domain.Record, 0, len(in))
	for _, c := range domain.Categories {
		var mine []domain.ExportItem
		for _, p := range in {
			if domain.Category(lookupStr(p, "category")) == c {
				mine = append(mine, p)
			}
		}
		out = append(out, mapRecords(c, mine)...)
	}
	return out
}
