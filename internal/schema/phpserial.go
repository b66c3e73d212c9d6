package schema

import (
	"strconv"

	"github.com/pkg/errors"
)

// Legacy records were written by PHP's serialize(). Only the subset the
// admin screens ever produced is understood: arrays, strings, ints, floats,
// booleans and null. Objects decode as arrays of their properties.

type phpReader struct {
	b   []byte
	pos int
}

func parsePHPTree(b []byte) (any, error) {
	r := &phpReader{b: b}
	v, err := r.value(0)
	if err != nil {
		return nil, err
	}
	if r.pos != len(r.b) {
		return nil, errors.Errorf("php: trailing data at offset %d", r.pos)
	}
	return v, nil
}

const phpMaxDepth = 32

func (r *phpReader) value(depth int) (any, error) {
	if depth > phpMaxDepth {
		return nil, errors.New("php: nesting too deep")
	}
	if r.pos >= len(r.b) {
		return nil, errors.New("php: unexpected end of input")
	}
	tag := r.b[r.pos]
	r.pos++
	if tag == 'N' {
		return nil, r.expect(';')
	}
	if err := r.expect(':'); err != nil {
		return nil, err
	}
	switch tag {
	case 'b':
		s, err := r.until(';')
		if err != nil {
			return nil, err
		}
		return s == "1", nil
	case 'i', 'd':
		s, err := r.until(';')
		if err != nil {
			return nil, err
		}
		if _, err := strconv.ParseFloat(s, 64); err != nil && s != "INF" && s != "-INF" && s != "NAN" {
			return nil, errors.Errorf("php: bad number %q", s)
		}
		return s, nil
	case 's':
		return r.str()
	case 'a':
		return r.array(depth)
	case 'O':
		// O:<len>:"<class>":<count>:{...}
		if _, err := r.quoted(); err != nil {
			return nil, err
		}
		if err := r.expect(':'); err != nil {
			return nil, err
		}
		return r.array(depth)
	}
	return nil, errors.Errorf("php: unsupported type %q at offset %d", tag, r.pos-1)
}

// str reads `<len>:"<bytes>";` after the leading "s:".
func (r *phpReader) str() (string, error) {
	s, err := r.quoted()
	if err != nil {
		return "", err
	}
	return s, r.expect(';')
}

func (r *phpReader) quoted() (string, error) {
	ls, err := r.until(':')
	if err != nil {
		return "", err
	}
	n, err := strconv.Atoi(ls)
	if err != nil || n < 0 {
		return "", errors.Errorf("php: bad string length %q", ls)
	}
	if err := r.expect('"'); err != nil {
		return "", err
	}
	if r.pos+n > len(r.b) {
		return "", errors.New("php: string overruns input")
	}
	s := string(r.b[r.pos : r.pos+n])
	r.pos += n
	return s, r.expect('"')
}

// array reads `<count>:{<key><value>...}` after the leading "a:".
func (r *phpReader) array(depth int) (*object, error) {
	cs, err := r.until(':')
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(cs)
	if err != nil || n < 0 {
		return nil, errors.Errorf("php: bad array length %q", cs)
	}
	if err := r.expect('{'); err != nil {
		return nil, err
	}
	obj := newObject()
	for i := 0; i < n; i++ {
		k, err := r.value(depth + 1)
		if err != nil {
			return nil, err
		}
		key, ok := k.(string)
		if !ok {
			return nil, errors.Errorf("php: unsupported array key %v", k)
		}
		v, err := r.value(depth + 1)
		if err != nil {
			return nil, err
		}
		obj.set(key, v)
	}
	return obj, r.expect('}')
}

func (r *phpReader) expect(c byte) error {
	if r.pos >= len(r.b) || r.b[r.pos] != c {
		return errors.Errorf("php: expected %q at offset %d", c, r.pos)
	}
	r.pos++
	return nil
}

func (r *phpReader) until(c byte) (string, error) {
	start := r.pos
	for r.pos < len(r.b) {
		if r.b[r.pos] == c {
			s := string(r.b[start:r.pos])
			r.pos++
			return s, nil
		}
		r.pos++
	}
	return "", errors.Errorf("php: missing %q after offset %d", c, start)
}
