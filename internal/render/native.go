// Package render converts value trees into native Go values for encoding,
// querying and patching.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mcncl/gobref/internal/analyzer"
	"github.com/mcncl/gobref/internal/models"
	"github.com/mcncl/gobref/internal/schema"
)

// Options controls key handling during conversion.
type Options struct {
	// KeyName rewrites each map key. Nil leaves keys unchanged.
	KeyName func(key string) string
	// SkipKey drops entries whose original key it reports true for.
	SkipKey func(key string) bool
}

// ToNative converts v into strings, int64, float64, bool, nil, []any and
// *OrderedMap values. Objects made of string-keyed pairs become maps; every
// other object and every array becomes a slice.
func ToNative(v models.Value, opts Options) any {
	switch v.Kind {
	case models.ObjectKind:
		if analyzer.IsPairs(v.Items) {
			m := NewOrderedMap()
			for i := 0; i < len(v.Items); i += 2 {
				key, _ := v.Items[i].AsString()
				if opts.SkipKey != nil && opts.SkipKey(key) {
					continue
				}
				if opts.KeyName != nil {
					key = opts.KeyName(key)
				}
				m.Set(key, ToNative(v.Items[i+1], opts))
			}
			return m
		}
		return toList(v.Items, opts)
	case models.ArrayKind:
		return toList(v.Items, opts)
	default:
		return primitive(v.Primitive)
	}
}

func toList(items []models.Value, opts Options) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, ToNative(item, opts))
	}
	return out
}

func primitive(p models.PrimitiveValue) any {
	switch p.Type {
	case models.IntegerType:
		return p.Int
	case models.FloatType:
		return p.Float
	case models.BooleanType:
		return p.Bool
	case models.NullType:
		return nil
	default:
		return p.Str
	}
}

// ToPlain replaces ordered maps with map[string]any, recursively.
func ToPlain(v any) any {
	switch t := v.(type) {
	case *OrderedMap:
		out := make(map[string]any, t.Len())
		for _, key := range t.keys {
			out[key] = ToPlain(t.values[key])
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = ToPlain(item)
		}
		return out
	default:
		return v
	}
}

// DecodeJSON parses a single JSON document into the native shape ToNative
// produces, keeping object key order.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := NewOrderedMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("expected object key, got %v", keyTok)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				m.Set(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return m, nil
		case '[':
			list := []any{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		return t.Float64()
	default:
		// string, bool or nil
		return t, nil
	}
}

// RenderTypes lists each registered type, in name order, with its fields.
func RenderTypes(types models.TypeDefs) *OrderedMap {
	out := NewOrderedMap()
	for _, name := range schema.Names(types) {
		fields := make([]any, 0, len(types[name]))
		for _, f := range types[name] {
			field := NewOrderedMap()
			field.Set("name", f.Name)
			field.Set("kind", f.Kind.String())
			if f.TypeName != "" {
				field.Set("type_name", f.TypeName)
			}
			fields = append(fields, field)
		}
		out.Set(name, fields)
	}
	return out
}
