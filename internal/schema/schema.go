// Package schema parses bref type declarations into a schema registry.
//
// A declaration line has the shape
//
//	:album { title, year, band:band, tracks:track[] }
//
// Fields without a colon are primitive, "name:Type" references an object
// schema and "name:Type[]" an array of objects. Type may also be an inline
// schema such as "{ name, country }".
package schema

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mcncl/gobref/internal/errors"
	"github.com/mcncl/gobref/internal/models"
	"github.com/mcncl/gobref/internal/scanner"
)

// Options controls registry parsing.
type Options struct {
	// Strict turns malformed declaration lines into errors instead of
	// dropping them.
	Strict bool
	// Logger receives debug records for registered and dropped declarations.
	Logger *slog.Logger
}

// IsDeclaration reports whether a trimmed line is a type declaration line.
func IsDeclaration(line string) bool {
	return strings.HasPrefix(line, ":")
}

// ParseDeclarations builds the registry from every declaration line in text.
// Malformed declarations are dropped silently.
func ParseDeclarations(text string) models.TypeDefs {
	types, _ := Parse(text, Options{})
	return types
}

// ParseDeclarationsStrict is like ParseDeclarations but fails on the first
// malformed declaration line.
func ParseDeclarationsStrict(text string) (models.TypeDefs, error) {
	return Parse(text, Options{Strict: true})
}

// Parse builds the registry from every declaration line in text.
// Non-declaration lines are ignored. A later declaration of the same name
// replaces an earlier one.
func Parse(text string, opts Options) (models.TypeDefs, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	types := make(models.TypeDefs)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !IsDeclaration(line) {
			continue
		}

		name, fields, ok := ParseDeclaration(line)
		if !ok {
			if opts.Strict {
				return nil, errors.NewSchemaError(fmt.Sprintf("malformed type declaration %q", line), errors.ErrMalformedDeclaration)
			}
			logger.Debug("dropping malformed type declaration", "line", line)
			continue
		}
		if _, exists := types[name]; exists {
			logger.Debug("type redeclared", "type", name)
		}
		types[name] = fields
		logger.Debug("registered type", "type", name, "fields", len(fields))
	}
	return types, nil
}

// ParseDeclaration parses a single ":Name { fields }" line.
// ok is false when the line is not a well-formed declaration.
func ParseDeclaration(line string) (name string, fields []models.FieldDef, ok bool) {
	line = strings.TrimSpace(line)
	if !IsDeclaration(line) {
		return "", nil, false
	}
	body := line[1:]

	end := strings.IndexAny(body, " \t{")
	if end < 0 {
		return "", nil, false
	}
	name = strings.TrimSpace(body[:end])
	if name == "" {
		return "", nil, false
	}

	block := strings.TrimSpace(body[end:])
	if !scanner.Enclosed(block, '{', '}') {
		return "", nil, false
	}
	return name, ParseFields(scanner.Inner(block)), true
}

// ParseFields parses a comma-separated field list (without the enclosing braces).
// Commas inside inline schemas do not split fields.
func ParseFields(content string) []models.FieldDef {
	segments := scanner.SplitTopLevel(content, ',')
	fields := make([]models.FieldDef, 0, len(segments))
	for _, seg := range segments {
		fields = append(fields, ParseField(seg))
	}
	return fields
}

// ParseField parses one field token: "name", "name:Type" or "name:Type[]".
func ParseField(token string) models.FieldDef {
	token = strings.TrimSpace(token)

	colon := strings.IndexByte(token, ':')
	if colon < 0 {
		return models.FieldDef{Name: token, Kind: models.PrimitiveField}
	}

	name := strings.TrimSpace(token[:colon])
	typeName := strings.TrimSpace(token[colon+1:])
	if elem, isArray := strings.CutSuffix(typeName, "[]"); isArray {
		return models.FieldDef{Name: name, TypeName: strings.TrimSpace(elem), Kind: models.ArrayField}
	}
	return models.FieldDef{Name: name, TypeName: typeName, Kind: models.ObjectField}
}

// IsInlineSchema reports whether typeName is brace-delimited field list text.
func IsInlineSchema(typeName string) bool {
	return scanner.Enclosed(strings.TrimSpace(typeName), '{', '}')
}

// Resolve looks typeName up in the registry, falling back to parsing it as an
// inline schema.
func Resolve(types models.TypeDefs, typeName string) ([]models.FieldDef, bool) {
	if fields, ok := types[typeName]; ok {
		return fields, true
	}
	if IsInlineSchema(typeName) {
		return ParseFields(scanner.Inner(strings.TrimSpace(typeName))), true
	}
	return nil, false
}

// Names returns the registered type names sorted.
func Names(types models.TypeDefs) []string {
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
