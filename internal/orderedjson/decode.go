// Package orderedjson decodes JSON documents into Go values while keeping
// the member order of every object. It is internal and not part of the
// public API.
package orderedjson

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	j "github.com/goccy/go-json"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultMaxDepth bounds container nesting to keep recursion finite on
// hostile input.
const DefaultMaxDepth = 10000

// Object is an order-preserving JSON object.
type Object = orderedmap.OrderedMap[string, any]

// DuplicateKeyError reports a member name that occurs twice in one object.
type DuplicateKeyError struct {
	Key  string
	Path string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("orderedjson: duplicate key %q at %s", e.Key, e.Path)
}

// ErrTooDeep is returned when nesting exceeds the configured depth.
var ErrTooDeep = errors.New("orderedjson: maximum nesting depth exceeded")

// Decoder reads one JSON value at a time. Objects decode to *Object, arrays
// to []any, numbers to json.Number, and the remaining scalars to their
// natural Go types.
type Decoder struct {
	dec      *j.Decoder
	maxDepth int
	path     []string
}

// NewDecoder wraps r.
func NewDecoder(r io.Reader) *Decoder {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &Decoder{dec: dec, maxDepth: DefaultMaxDepth}
}

// SetMaxDepth overrides DefaultMaxDepth. Values <= 0 restore the default.
func (d *Decoder) SetMaxDepth(n int) {
	if n <= 0 {
		n = DefaultMaxDepth
	}
	d.maxDepth = n
}

// Decode reads the next value. It returns io.EOF at end of input.
func (d *Decoder) Decode() (any, error) {
	d.path = d.path[:0]
	return d.value(0)
}

// Unmarshal decodes exactly one JSON value from data.
func Unmarshal(data []byte) (any, error) {
	d := NewDecoder(bytes.NewReader(data))
	v, err := d.Decode()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if _, err := d.dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("orderedjson: trailing data after top-level value")
	}
	return v, nil
}

func (d *Decoder) value(depth int) (any, error) {
	tok, err := d.dec.Token()
	if err != nil {
		return nil, err
	}
	delim, ok := tok.(j.Delim)
	if !ok {
		return tok, nil
	}
	if depth >= d.maxDepth {
		return nil, ErrTooDeep
	}
	switch delim {
	case '{':
		return d.object(depth + 1)
	case '[':
		return d.array(depth + 1)
	}
	return nil, fmt.Errorf("orderedjson: unexpected delimiter %q", rune(delim))
}

func (d *Decoder) object(depth int) (*Object, error) {
	obj := orderedmap.New[string, any]()
	for d.dec.More() {
		tok, err := d.dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("orderedjson: expected object key, got %T", tok)
		}
		if _, dup := obj.Get(key); dup {
			return nil, &DuplicateKeyError{Key: key, Path: d.pointer()}
		}
		d.path = append(d.path, key)
		v, err := d.value(depth)
		d.path = d.path[:len(d.path)-1]
		if err != nil {
			return nil, err
		}
		obj.Set(key, v)
	}
	if err := d.closing('}'); err != nil {
		return nil, err
	}
	return obj, nil
}

func (d *Decoder) array(depth int) ([]any, error) {
	out := []any{}
	for d.dec.More() {
		d.path = append(d.path, fmt.Sprint(len(out)))
		v, err := d.value(depth)
		d.path = d.path[:len(d.path)-1]
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := d.closing(']'); err != nil {
		return nil, err
	}
	return out, nil
}

func (d *Decoder) closing(want j.Delim) error {
	tok, err := d.dec.Token()
	if err != nil {
		return err
	}
	if got, ok := tok.(j.Delim); !ok || got != want {
		return fmt.Errorf("orderedjson: expected %q, got %v", rune(want), tok)
	}
	return nil
}

func (d *Decoder) pointer() string {
	if len(d.path) == 0 {
		return "/"
	}
	b := &bytes.Buffer{}
	for _, p := range d.path {
		b.WriteByte('/')
		for _, r := range p {
			switch r {
			case '~':
				b.WriteString("~0")
			case '/':
				b.WriteString("~1")
			default:
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}
