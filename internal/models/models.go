package models

// FieldKind describes how a declared field coerces its value.
type FieldKind int

const (
	// PrimitiveField keeps the value as-is.
	PrimitiveField FieldKind = iota
	// ObjectField labels an object value with a referenced or inline schema.
	ObjectField
	// ArrayField labels every object element of an array value.
	ArrayField
)

// String returns the kind name used when rendering a registry.
func (k FieldKind) String() string {
	switch k {
	case ObjectField:
		return "Object"
	case ArrayField:
		return "Array"
	default:
		return "Primitive"
	}
}

// FieldDef is a single entry of a type schema.
// TypeName is empty for primitive fields. For object and array fields it holds
// either a registered type name or inline schema text such as "{ title, year }".
type FieldDef struct {
	Name     string
	TypeName string
	Kind     FieldKind
}

// TypeDefs is the schema registry: type name to ordered field list.
// It is built once per input and must not be modified afterwards.
type TypeDefs map[string][]FieldDef

// Document is the result of parsing a complete input text.
// Data is nil when the input contains no data lines.
type Document struct {
	Types TypeDefs
	Data  *Value
}

// HasData reports whether the document carries a data expression.
func (d Document) HasData() bool {
	return d.Data != nil
}
