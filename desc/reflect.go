package desc

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	j "github.com/goccy/go-json"

	sg "github.com/reoring/schemagen"
)

// ErrUnsupportedType is wrapped by Reflect for Go types with no JSON form.
var ErrUnsupportedType = errors.New("desc: unsupported type")

var (
	timeType          = reflect.TypeFor[time.Time]()
	jsonMarshalerType = reflect.TypeFor[j.Marshaler]()
	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()
)

// Reflector derives descriptors from Go types following encoding/json
// conventions. Struct fields may refine the result with a schemagen tag:
//
//	Name string `json:"name" schemagen:"description=Display name,format=hostname"`
//
// Recognized tag options: name=..., description=..., format=...,
// default=... (JSON text, or a bare string), deserialize=... (input-only
// member name), required, optional, readonly, writeonly, flatten.
type Reflector struct {
	// DenyUnknownFields closes every reflected struct.
	DenyUnknownFields bool

	seen map[reflect.Type]sg.Descriptor
}

// Reflect derives the descriptor of t with default options.
func Reflect(t reflect.Type) (sg.Descriptor, error) {
	return (&Reflector{}).Reflect(t)
}

// For derives the descriptor of T with default options.
func For[T any]() (sg.Descriptor, error) {
	return Reflect(reflect.TypeFor[T]())
}

// Reflect derives the descriptor of t. Results are cached per Reflector so
// recursive types yield cyclic descriptor graphs.
func (r *Reflector) Reflect(t reflect.Type) (sg.Descriptor, error) {
	if t == nil {
		return Any(), nil
	}
	if r.seen == nil {
		r.seen = map[reflect.Type]sg.Descriptor{}
	}
	return r.reflect(t, typeName(t))
}

func (r *Reflector) reflect(t reflect.Type, path string) (sg.Descriptor, error) {
	if d, ok := r.seen[t]; ok {
		return d, nil
	}
	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface {
		switch {
		case t == timeType:
			return Formatted("date-time"), nil
		case implements(t, jsonMarshalerType):
			return Any(), nil
		case implements(t, textMarshalerType):
			return String(), nil
		}
	}

	if t.Kind() == reflect.Struct {
		return r.record(t, path)
	}
	if isDefined(t) && t.Kind() != reflect.Interface {
		named := &Named{Name: typeName(t), ID: typeID(t)}
		r.seen[t] = named
		target, err := r.structural(t, path)
		if err != nil {
			delete(r.seen, t)
			return nil, err
		}
		named.Target = target
		return named, nil
	}
	d, err := r.structural(t, path)
	if err != nil {
		return nil, err
	}
	r.seen[t] = d
	return d, nil
}

func (r *Reflector) structural(t reflect.Type, path string) (sg.Descriptor, error) {
	switch t.Kind() {
	case reflect.Bool:
		return Boolean(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Integer(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		zero := 0.0
		return Primitive{Kind: KindInteger, Minimum: &zero}, nil
	case reflect.Float32, reflect.Float64:
		return Number(), nil
	case reflect.String:
		return String(), nil
	case reflect.Interface:
		return Any(), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 && !implements(t.Elem(), textMarshalerType) {
			return Primitive{Kind: KindString, ContentEncoding: "base64"}, nil
		}
		fallthrough
	case reflect.Array:
		elem, err := r.reflect(t.Elem(), path+"[]")
		if err != nil {
			return nil, err
		}
		return Sequence{Elem: elem}, nil
	case reflect.Map:
		if !validMapKey(t.Key()) {
			return nil, fmt.Errorf("%w: map key %s at %s", ErrUnsupportedType, t.Key(), path)
		}
		val, err := r.reflect(t.Elem(), path+"{}")
		if err != nil {
			return nil, err
		}
		return Map{Value: val}, nil
	case reflect.Pointer:
		inner, err := r.reflect(t.Elem(), path)
		if err != nil {
			return nil, err
		}
		return Optional{Inner: inner}, nil
	}
	return nil, fmt.Errorf("%w: %s at %s", ErrUnsupportedType, t, path)
}

func (r *Reflector) record(t reflect.Type, path string) (sg.Descriptor, error) {
	rec := &Record{
		Name:              typeName(t),
		ID:                typeID(t),
		DenyUnknownFields: r.DenyUnknownFields,
	}
	if t.Name() == "" {
		rec.Inline = true
	}
	r.seen[t] = rec
	fields, err := r.fields(t, path)
	if err != nil {
		delete(r.seen, t)
		return nil, err
	}
	rec.Fields = fields
	return rec, nil
}

func (r *Reflector) fields(t reflect.Type, path string) ([]Field, error) {
	var out []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		key, jsonOpts, explicit := jsonKey(sf)
		if key == "-" {
			continue
		}
		embedded := sf.Anonymous && !explicit && isStructLike(sf.Type)
		if !sf.IsExported() && !embedded {
			continue
		}
		tag := parseTag(sf.Tag.Get("schemagen"))
		if tag.name != "" {
			key = tag.name
		}

		typ, err := r.reflect(sf.Type, path+"."+sf.Name)
		if err != nil {
			return nil, err
		}
		if tag.format != "" {
			typ = withFormat(typ, tag.format)
		}

		f := Field{
			Name:            key,
			DeserializeName: tag.deserialize,
			Type:            typ,
			Flatten:         embedded || tag.flatten,
			Description:     tag.description,
			SkipSerialize:   tag.writeOnly,
			SkipDeserialize: tag.readOnly,
		}
		if f.Flatten {
			f.Name = sf.Name
		}
		omit := jsonOpts["omitempty"] || jsonOpts["omitzero"]
		f.Required = !omit && sf.Type.Kind() != reflect.Pointer
		if tag.required {
			f.Required = true
		}
		if tag.optional {
			f.Required = false
		}
		if tag.hasDefault {
			f.HasDefault = true
			f.Default = tag.defaultValue
		}
		out = append(out, f)
	}
	return out, nil
}

// jsonKey resolves a struct field's member name. Priority: json tag name
// > field name; "-" disables the field. explicit reports a json tag name.
func jsonKey(sf reflect.StructField) (key string, opts map[string]bool, explicit bool) {
	opts = map[string]bool{}
	jt, ok := sf.Tag.Lookup("json")
	if !ok {
		return sf.Name, opts, false
	}
	if jt == "-" {
		return "-", opts, true
	}
	parts := strings.Split(jt, ",")
	for _, p := range parts[1:] {
		opts[strings.TrimSpace(p)] = true
	}
	if parts[0] == "" {
		return sf.Name, opts, false
	}
	return parts[0], opts, true
}

type fieldTag struct {
	name, description, format, deserialize string
	required, optional                     bool
	readOnly, writeOnly, flatten           bool
	hasDefault                             bool
	defaultValue                           any
}

// parseTag reads comma-separated schemagen options. A value may not contain
// a comma.
func parseTag(raw string) fieldTag {
	var ft fieldTag
	if raw == "" {
		return ft
	}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		k, v, hasValue := strings.Cut(p, "=")
		switch k {
		case "name":
			ft.name = v
		case "description":
			ft.description = v
		case "format":
			ft.format = v
		case "deserialize":
			ft.deserialize = v
		case "required":
			ft.required = true
		case "optional":
			ft.optional = true
		case "readonly":
			ft.readOnly = true
		case "writeonly":
			ft.writeOnly = true
		case "flatten":
			ft.flatten = true
		case "default":
			if !hasValue {
				continue
			}
			ft.hasDefault = true
			var parsed any
			if err := j.Unmarshal([]byte(v), &parsed); err == nil {
				ft.defaultValue = parsed
			} else {
				ft.defaultValue = v
			}
		}
	}
	return ft
}

func withFormat(d sg.Descriptor, format string) sg.Descriptor {
	switch t := d.(type) {
	case Primitive:
		t.Format = format
		return t
	case Optional:
		return Optional{Inner: withFormat(t.Inner, format)}
	}
	return d
}

func implements(t, iface reflect.Type) bool {
	return t.Implements(iface) || reflect.PointerTo(t).Implements(iface)
}

func isStructLike(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

func validMapKey(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return true
	}
	return implements(t, textMarshalerType)
}

// isDefined reports a named type declared in a package, as opposed to a
// predeclared or composite type literal.
func isDefined(t reflect.Type) bool {
	return t.Name() != "" && t.PkgPath() != ""
}

func typeID(t reflect.Type) string {
	if t.Name() == "" {
		return t.String()
	}
	return t.PkgPath() + "." + t.Name()
}

// typeName is the display name of t. Type arguments of generic types are
// reduced to their unqualified names: Page[example.com/x.Item] -> Page_Item.
func typeName(t reflect.Type) string {
	n := t.Name()
	if n == "" {
		return "Anonymous"
	}
	open := strings.IndexByte(n, '[')
	if open < 0 || !strings.HasSuffix(n, "]") {
		return n
	}
	args := strings.Split(n[open+1:len(n)-1], ",")
	for i, a := range args {
		a = strings.TrimSpace(a)
		if k := strings.LastIndexAny(a, "./"); k >= 0 {
			a = a[k+1:]
		}
		args[i] = a
	}
	return n[:open] + "_" + strings.Join(args, "_")
}
