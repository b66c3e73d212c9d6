package schema

import (
	"github.com/pkg/errors"

	"structured_markup/internal/domain"
)

var ErrUnknownKind = errors.New("schema: unknown document kind")

// Document is a finished linked-data node ready for emission.
type Document interface {
	DocumentKind() domain.Kind
}

// Builder turns a record's options into a Document for one kind.
type Builder interface {
	Kind() domain.Kind
	Build(options []byte) (Document, error)
}

// Registry maps record kinds to builders. Register everything at startup;
// lookups are safe for concurrent use once registration is done.
type Registry struct {
	builders map[domain.Kind]Builder
}

func NewRegistry(bs ...Builder) *Registry {
	r := &Registry{builders: make(map[domain.Kind]Builder, len(bs))}
	for _, b := range bs {
		r.Register(b)
	}
	return r
}

// Register adds b, replacing any builder already registered for its kind.
func (r *Registry) Register(b Builder) { r.builders[b.Kind()] = b }

func (r *Registry) Lookup(k domain.Kind) (Builder, bool) {
	b, ok := r.builders[k]
	return b, ok
}

// Build renders rec with the builder registered for its kind.
func (r *Registry) Build(rec domain.Record) (Document, error) {
	b, ok := r.Lookup(rec.Kind)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKind, "kind %q", rec.Kind)
	}
	return b.Build(rec.Options)
}

// DefaultRegistry knows every document kind this package can render.
func DefaultRegistry(mode GateMode) *Registry {
	return NewRegistry(LocalBusinessBuilder{Mode: mode})
}
