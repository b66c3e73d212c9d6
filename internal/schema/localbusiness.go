package schema

import "structured_markup/internal/domain"

const schemaContext = "http://schema.org"

// LocalBusiness is a schema.org LocalBusiness node. Field order is the
// emitted key order; optional sections carry omitempty.
type LocalBusiness struct {
	Context             string          `json:"@context"`
	Type                string          `json:"@type"`
	Name                string          `json:"name"`
	Logo                string          `json:"logo"`
	URL                 string          `json:"url"`
	Telephone           string          `json:"telephone"`
	Menu                string          `json:"menu,omitempty"`
	AcceptsReservations string          `json:"acceptsReservations,omitempty"`
	Address             PostalAddress   `json:"address"`
	Geo                 *GeoCoordinates `json:"geo,omitempty"`
	OpeningHours        []string        `json:"openingHours,omitempty"`
	SameAs              []string        `json:"sameAs,omitempty"`
}

func (LocalBusiness) DocumentKind() domain.Kind { return domain.KindLocalBusiness }

type PostalAddress struct {
	Type            string `json:"@type"`
	StreetAddress   string `json:"streetAddress"`
	AddressLocality string `json:"addressLocality"`
	AddressRegion   string `json:"addressRegion"`
	PostalCode      string `json:"postalCode"`
	AddressCountry  string `json:"addressCountry"`
}

type GeoCoordinates struct {
	Type      string `json:"@type"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// LocalBusinessBuilder renders local_business records.
type LocalBusinessBuilder struct {
	Mode GateMode
}

func (LocalBusinessBuilder) Kind() domain.Kind { return domain.KindLocalBusiness }

func (b LocalBusinessBuilder) Build(options []byte) (Document, error) {
	opts, err := DecodeBusinessOptions(options)
	if err != nil {
		return nil, err
	}
	return AssembleLocalBusiness(opts, b.Mode), nil
}

// AssembleLocalBusiness builds the document for already-decoded options.
// It has no side effects: the same options always yield the same document.
func AssembleLocalBusiness(o BusinessOptions, mode GateMode) LocalBusiness {
	s := NewSanitizer(mode, o.Name)

	doc := LocalBusiness{
		Context:   schemaContext,
		Type:      s.Extract(o.BusinessType, Text),
		Name:      s.Extract(o.Name, Text),
		Logo:      s.ExtractOwn(o.Logo, URL),
		URL:       s.Extract(o.URL, URL),
		Telephone: s.Extract(o.Telephone, Text),
		Address: PostalAddress{
			Type:            "PostalAddress",
			StreetAddress:   s.Extract(o.StreetAddress, Text),
			AddressLocality: s.Extract(o.AddressLocality, Text),
			AddressRegion:   s.Extract(o.AddressRegion, Text),
			PostalCode:      s.Extract(o.PostalCode, Text),
			AddressCountry:  s.Extract(o.AddressCountry, Text),
		},
	}

	if o.FoodActive {
		doc.Menu = s.ExtractOwn(o.Menu, URL)
		doc.AcceptsReservations = "False"
		if o.AcceptsReservations {
			doc.AcceptsReservations = "True"
		}
	}

	if o.GeoActive {
		lat, lon := s.Extract(o.Latitude, Number), s.Extract(o.Longitude, Number)
		if lat != "" || lon != "" {
			doc.Geo = &GeoCoordinates{Type: "GeoCoordinates", Latitude: lat, Longitude: lon}
		}
	}

	doc.OpeningHours = CompactHours(escapeWeek(o.Week))

	for _, link := range o.Social {
		if v := EscapeURL(link); v != "" {
			doc.SameAs = append(doc.SameAs, v)
		}
	}
	return doc
}

// escapeWeek text-escapes stored times so they cannot break out of the block.
func escapeWeek(week map[DayCode]DayHours) map[DayCode]DayHours {
	out := make(map[DayCode]DayHours, len(week))
	for d, h := range week {
		h.Open, h.Close = EscapeText(h.Open), EscapeText(h.Close)
		out[d] = h
	}
	return out
}
