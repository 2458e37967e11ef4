package models

import (
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	PrimitiveKind ValueKind = iota
	ObjectKind
	ArrayKind
)

// PrimitiveType tags the variant held by a PrimitiveValue.
type PrimitiveType int

const (
	StringType PrimitiveType = iota
	IntegerType
	FloatType
	BooleanType
	NullType
)

// PrimitiveValue is a scalar literal. Only the payload matching Type is set.
type PrimitiveValue struct {
	Type  PrimitiveType
	Str   string
	Int   int64
	Float float64
	Bool  bool
}

// Value is a node of the parsed value tree.
//
// Objects hold a flat item list that is either positional or an interleaved
// key/value sequence; the node itself does not record which. Items is never
// nil for objects and arrays.
type Value struct {
	Kind      ValueKind
	Primitive PrimitiveValue
	Items     []Value
}

// String creates a string primitive.
func String(s string) Value {
	return Value{Kind: PrimitiveKind, Primitive: PrimitiveValue{Type: StringType, Str: s}}
}

// Integer creates an integer primitive.
func Integer(i int64) Value {
	return Value{Kind: PrimitiveKind, Primitive: PrimitiveValue{Type: IntegerType, Int: i}}
}

// Float creates a float primitive.
func Float(f float64) Value {
	return Value{Kind: PrimitiveKind, Primitive: PrimitiveValue{Type: FloatType, Float: f}}
}

// Bool creates a boolean primitive.
func Bool(b bool) Value {
	return Value{Kind: PrimitiveKind, Primitive: PrimitiveValue{Type: BooleanType, Bool: b}}
}

// Null creates the null primitive.
func Null() Value {
	return Value{Kind: PrimitiveKind, Primitive: PrimitiveValue{Type: NullType}}
}

// Primitive wraps an existing primitive literal.
func Primitive(p PrimitiveValue) Value {
	return Value{Kind: PrimitiveKind, Primitive: p}
}

// Object creates an object node over a copy of items.
func Object(items ...Value) Value {
	return Value{Kind: ObjectKind, Items: copyItems(items)}
}

// Array creates an array node over a copy of items.
func Array(items ...Value) Value {
	return Value{Kind: ArrayKind, Items: copyItems(items)}
}

func copyItems(items []Value) []Value {
	out := make([]Value, len(items))
	copy(out, items)
	return out
}

// IsObject reports whether v is an object node.
func (v Value) IsObject() bool { return v.Kind == ObjectKind }

// IsArray reports whether v is an array node.
func (v Value) IsArray() bool { return v.Kind == ArrayKind }

// AsString returns the string payload when v is a string primitive.
func (v Value) AsString() (string, bool) {
	if v.Kind != PrimitiveKind || v.Primitive.Type != StringType {
		return "", false
	}
	return v.Primitive.Str, true
}

// String renders the tree in a compact debugging notation.
func (v Value) String() string {
	var sb strings.Builder
	v.write(&sb)
	return sb.String()
}

func (v Value) write(sb *strings.Builder) {
	switch v.Kind {
	case ObjectKind, ArrayKind:
		open, closing := "{", "}"
		if v.Kind == ArrayKind {
			open, closing = "[", "]"
		}
		sb.WriteString(open)
		for i, item := range v.Items {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.write(sb)
		}
		sb.WriteString(closing)
	default:
		sb.WriteString(v.Primitive.String())
	}
}

// String renders the literal. Strings are quoted.
func (p PrimitiveValue) String() string {
	switch p.Type {
	case StringType:
		return strconv.Quote(p.Str)
	case IntegerType:
		return strconv.FormatInt(p.Int, 10)
	case FloatType:
		return strconv.FormatFloat(p.Float, 'g', -1, 64)
	case BooleanType:
		return strconv.FormatBool(p.Bool)
	default:
		return "null"
	}
}
