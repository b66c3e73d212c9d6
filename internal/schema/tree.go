package schema

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// object is a decoded mapping that remembers key order, so list-like
// option values (social profiles) keep the order the admin entered them in.
type object struct {
	keys []string
	vals map[string]any
}

func newObject() *object { return &object{vals: map[string]any{}} }

func (o *object) set(k string, v any) {
	if _, ok := o.vals[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.vals[k] = v
}

func (o *object) get(k string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.vals[k]
	return v, ok
}

func (o *object) values() []any {
	out := make([]any, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, o.vals[k])
	}
	return out
}

// parseJSONTree decodes a JSON document into *object / []any / string / bool / nil.
// Numbers are kept as their literal text.
func parseJSONTree(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	v, err := readJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}

func readJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "read json token")
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := newObject()
			for dec.More() {
				kt, err := dec.Token()
				if err != nil {
					return nil, errors.Wrap(err, "read json key")
				}
				k, ok := kt.(string)
				if !ok {
					return nil, errors.Errorf("unexpected json key %v", kt)
				}
				v, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				obj.set(k, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, errors.Wrap(err, "close json object")
			}
			return obj, nil
		case '[':
			var arr []any
			for dec.More() {
				v, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, errors.Wrap(err, "close json array")
			}
			return arr, nil
		}
		return nil, errors.Errorf("unexpected json delimiter %v", t)
	case json.Number:
		return t.String(), nil
	case string, bool, nil:
		return t, nil
	}
	return nil, errors.Errorf("unexpected json token %v", tok)
}
