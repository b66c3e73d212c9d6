package domain

import "encoding/json"

// Category is the page-context tag a record is scoped to.
type Category string

const (
	CategoryAll   Category = "all"
	CategoryHome  Category = "home"
	CategoryPost  Category = "post"
	CategoryEvent Category = "event"
	CategoryPage  Category = "page"
)

// Categories lists every category in query order.
var Categories = []Category{CategoryAll, CategoryHome, CategoryPost, CategoryEvent, CategoryPage}

func (c Category) Valid() bool {
	switch c {
	case CategoryAll, CategoryHome, CategoryPost, CategoryEvent, CategoryPage:
		return true
	}
	return false
}

// Kind names the document type a record renders as.
type Kind string

const KindLocalBusiness Kind = "local_business"

// Record is one stored, admin-authored schema block.
type Record struct {
	ID       int64
	Category Category
	Kind     Kind
	Active   bool
	Options  []byte // opaque payload; decoded by the builder for Kind
}

// ActiveFlag is the stored value of an enabled checkbox.
const ActiveFlag = "on"

// PageContext carries the host's answers about the page being rendered.
type PageContext struct {
	Home       bool
	SinglePost bool
	EventPost  bool
	Page       bool
}

// Categories returns every category that applies to the page, "all" first.
func (p PageContext) Categories() []Category {
	out := []Category{CategoryAll}
	if p.Home {
		out = append(out, CategoryHome)
	}
	if p.SinglePost {
		out = append(out, CategoryPost)
	}
	if p.EventPost {
		out = append(out, CategoryEvent)
	}
	if p.Page {
		out = append(out, CategoryPage)
	}
	return out
}

// ExportItem is one record as the admin export ships it. Values stay raw so
// structured options reach the store byte for byte, key order included.
type ExportItem map[string]json.RawMessage
