package schema

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedOptions is returned when a record's options payload cannot be decoded.
var ErrMalformedOptions = errors.New("schema: malformed options")

// OptionsVersion is the only envelope version this decoder understands.
// Legacy PHP-serialized payloads carry no envelope and are treated as version 1.
const OptionsVersion = 1

// Field is an optional scalar option. Set reports whether the key was stored at all.
type Field struct {
	Value string
	Set   bool
}

func Value(s string) Field { return Field{Value: s, Set: true} }

// Present is the "present and non-empty" contract every extraction starts from.
func (f Field) Present() bool { return f.Set && strings.TrimSpace(f.Value) != "" }

type DayCode string

const (
	Monday    DayCode = "Mo"
	Tuesday   DayCode = "Tu"
	Wednesday DayCode = "We"
	Thursday  DayCode = "Th"
	Friday    DayCode = "Fr"
	Saturday  DayCode = "Sa"
	Sunday    DayCode = "Su"
)

// Week is calendar order, Monday first. It is a line, not a ring.
var Week = [7]DayCode{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

type DayHours struct {
	Active bool
	Open   string
	Close  string
}

// Range renders the opening time range, or "" when neither end is known.
func (d DayHours) Range() string {
	if d.Open == "" && d.Close == "" {
		return ""
	}
	return d.Open + "-" + d.Close
}

// BusinessOptions is the typed form of a local_business record's options.
type BusinessOptions struct {
	Name            Field
	BusinessType    Field
	URL             Field
	Logo            Field
	Telephone       Field
	StreetAddress   Field
	AddressLocality Field
	AddressRegion   Field
	PostalCode      Field
	AddressCountry  Field

	GeoActive bool
	Latitude  Field
	Longitude Field

	FoodActive          bool
	Menu                Field
	AcceptsReservations bool

	Week   map[DayCode]DayHours
	Social []string
}

// DecodeBusinessOptions decodes a stored options payload. It accepts a JSON
// envelope {"version":1,"options":{...}}, a bare JSON object, or a legacy
// PHP-serialized array. Anything else yields the zero value and ErrMalformedOptions.
func DecodeBusinessOptions(raw []byte) (BusinessOptions, error) {
	root, err := decodeOptionsTree(raw)
	if err != nil {
		return BusinessOptions{}, errors.Wrap(ErrMalformedOptions, err.Error())
	}
	return businessOptionsFrom(root), nil
}

func decodeOptionsTree(raw []byte) (*object, error) {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return nil, errors.New("empty payload")
	}

	var tree any
	var err error
	switch b[0] {
	case '{':
		tree, err = parseJSONTree(b)
		if err != nil {
			return nil, err
		}
		obj, ok := tree.(*object)
		if !ok {
			return nil, errors.New("options are not an object")
		}
		return unwrapEnvelope(obj)
	case 'a', 'O':
		tree, err = parsePHPTree(b)
		if err != nil {
			return nil, err
		}
		obj, ok := tree.(*object)
		if !ok {
			return nil, errors.New("options are not an array")
		}
		return obj, nil
	}
	return nil, errors.Errorf("unrecognised payload prefix %q", b[0])
}

func unwrapEnvelope(obj *object) (*object, error) {
	v, ok := obj.get("version")
	if !ok {
		return obj, nil
	}
	if s, _ := scalar(v); s != strconv.Itoa(OptionsVersion) {
		return nil, errors.Errorf("unsupported options version %v", v)
	}
	inner, ok := obj.get("options")
	if !ok {
		return nil, errors.New("envelope without options")
	}
	o, ok := inner.(*object)
	if !ok {
		return nil, errors.New("envelope options are not an object")
	}
	return o, nil
}

func businessOptionsFrom(o *object) BusinessOptions {
	opts := BusinessOptions{
		Name:            field(o, "name"),
		BusinessType:    field(o, "business_type"),
		URL:             field(o, "url"),
		Logo:            field(o, "logo"),
		Telephone:       field(o, "telephone"),
		StreetAddress:   field(o, "street_address"),
		AddressLocality: field(o, "address_locality"),
		AddressRegion:   field(o, "address_region"),
		PostalCode:      field(o, "postal_code"),
		AddressCountry:  field(o, "address_country"),

		GeoActive: flag(o, "geo_active"),
		Latitude:  field(o, "latitude"),
		Longitude: field(o, "longitude"),

		FoodActive:          flag(o, "food_active"),
		Menu:                field(o, "menu"),
		AcceptsReservations: flag(o, "accepts_reservations"),

		Week: map[DayCode]DayHours{},
	}

	week, _ := o.get("week")
	weekObj, _ := week.(*object)
	for _, d := range Week {
		if !flag(o, string(d)) {
			continue
		}
		h := DayHours{Active: true}
		if v, ok := weekObj.get(string(d)); ok {
			h.Open, h.Close = timeRange(v)
		}
		opts.Week[d] = h
	}

	if v, ok := o.get("social"); ok {
		var items []any
		switch t := v.(type) {
		case []any:
			items = t
		case *object:
			items = t.values()
		}
		for _, it := range items {
			if s, ok := scalar(it); ok {
				opts.Social = append(opts.Social, s)
			}
		}
	}
	return opts
}

// timeRange reads either {"open":..,"close":..} or a "09:00-17:00" string.
func timeRange(v any) (from, to string) {
	switch t := v.(type) {
	case *object:
		if ov, ok := t.get("open"); ok {
			from, _ = scalar(ov)
		}
		if cv, ok := t.get("close"); ok {
			to, _ = scalar(cv)
		}
	case string:
		if i := strings.Index(t, "-"); i >= 0 {
			return strings.TrimSpace(t[:i]), strings.TrimSpace(t[i+1:])
		}
		return strings.TrimSpace(t), ""
	}
	return from, to
}

func field(o *object, key string) Field {
	v, ok := o.get(key)
	if !ok || v == nil {
		return Field{}
	}
	s, ok := scalar(v)
	if !ok {
		return Field{}
	}
	return Value(s)
}

func flag(o *object, key string) bool {
	v, _ := o.get(key)
	switch t := v.(type) {
	case string:
		return t == "on"
	case bool:
		return t
	}
	return false
}

// scalar converts a leaf value to its string form the way PHP casts it.
func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		if t {
			return "1", true
		}
		return "", true
	case nil:
		return "", true
	}
	return "", false
}
