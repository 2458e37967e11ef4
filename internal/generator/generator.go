package generator

import (
	"bytes"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/iancoleman/strcase"

	"github.com/mcncl/gobref/internal/errors"
	"github.com/mcncl/gobref/internal/models"
	"github.com/mcncl/gobref/internal/schema"
)

// structDef is one Go struct to emit.
type structDef struct {
	Name   string
	Fields []fieldDef
}

type fieldDef struct {
	GoName  string
	GoType  string
	JSONTag string
}

// Generator emits Go struct definitions for a bref type registry
type Generator struct {
	types   models.TypeDefs
	structs []structDef
	named   map[string]string
	taken   map[string]bool
}

// NewGenerator creates a new Generator instance
func NewGenerator() *Generator {
	return &Generator{}
}

// GenerateStructs returns Go source declaring one struct per registered type.
// Registered types are emitted in name order; inline schemas become structs
// named after their owner and field. Primitive fields are typed any since
// the registry carries no value types.
func (g *Generator) GenerateStructs(types models.TypeDefs, packageName string) (string, error) {
	g.types = types
	g.structs = nil
	g.named = make(map[string]string, len(types))
	g.taken = make(map[string]bool, len(types))

	names := schema.Names(types)
	for _, name := range names {
		g.named[name] = g.reserve(goIdent(name))
	}
	for _, name := range names {
		if err := g.addStruct(g.named[name], types[name]); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "package %s\n", packageName)

	for _, s := range g.structs {
		buf.WriteString("\n")
		writeStruct(&buf, s)
	}

	return buf.String(), nil
}

func (g *Generator) addStruct(name string, fields []models.FieldDef) error {
	// Reserve the slot first so inline structs follow their owner
	idx := len(g.structs)
	g.structs = append(g.structs, structDef{Name: name})

	used := make(map[string]bool, len(fields))
	out := make([]fieldDef, 0, len(fields))
	for _, f := range fields {
		goName := uniqueIn(used, goIdent(f.Name))
		goType, err := g.fieldType(name, goName, f)
		if err != nil {
			return err
		}

		tag := f.Name
		if f.Kind != models.PrimitiveField {
			tag += ",omitempty"
		}
		out = append(out, fieldDef{
			GoName:  goName,
			GoType:  goType,
			JSONTag: fmt.Sprintf("`json:%s`", strconv.Quote(tag)),
		})
	}

	g.structs[idx].Fields = out
	return nil
}

func (g *Generator) fieldType(owner, goName string, f models.FieldDef) (string, error) {
	if f.Kind == models.PrimitiveField {
		return "any", nil
	}

	var elem string
	switch {
	case g.named[f.TypeName] != "":
		elem = g.named[f.TypeName]
	case schema.IsInlineSchema(f.TypeName):
		fields, _ := schema.Resolve(g.types, f.TypeName)
		elem = g.reserve(owner + goName)
		if err := g.addStruct(elem, fields); err != nil {
			return "", err
		}
	case f.Kind == models.ArrayField:
		return "", errors.NewSchemaError(
			fmt.Sprintf("referenced array element type '%s' not found", f.TypeName), errors.ErrArrayTypeNotFound)
	default:
		return "", errors.NewSchemaError(
			fmt.Sprintf("referenced type '%s' not found", f.TypeName), errors.ErrTypeNotFound)
	}

	if f.Kind == models.ArrayField {
		return "[]" + elem, nil
	}
	return "*" + elem, nil
}

// reserve returns name, or name with a numeric suffix if it is already in use
func (g *Generator) reserve(name string) string {
	return uniqueIn(g.taken, name)
}

func uniqueIn(used map[string]bool, name string) string {
	candidate := name
	for i := 2; used[candidate]; i++ {
		candidate = name + strconv.Itoa(i)
	}
	used[candidate] = true
	return candidate
}

// goIdent converts a bref name into an exported Go identifier
func goIdent(name string) string {
	ident := strcase.ToCamel(name)
	if ident == "" {
		return "Field"
	}
	if r := []rune(ident)[0]; !unicode.IsLetter(r) {
		return "Field" + ident
	}
	return ident
}

func writeStruct(buf *bytes.Buffer, s structDef) {
	if len(s.Fields) == 0 {
		fmt.Fprintf(buf, "type %s struct{}\n", s.Name)
		return
	}
	fmt.Fprintf(buf, "type %s struct {\n", s.Name)

	// Align names and types the way gofmt does
	maxNameWidth, maxTypeWidth := 0, 0
	for _, field := range s.Fields {
		maxNameWidth = max(maxNameWidth, utf8.RuneCountInString(field.GoName))
		maxTypeWidth = max(maxTypeWidth, utf8.RuneCountInString(field.GoType))
	}

	for _, field := range s.Fields {
		fmt.Fprintf(buf, "\t%-*s %-*s %s\n",
			maxNameWidth, field.GoName,
			maxTypeWidth, field.GoType,
			field.JSONTag)
	}

	buf.WriteString("}\n")
}
