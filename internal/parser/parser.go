// Package parser turns bref text into value trees, applying type schemas from
// the declaration registry along the way.
package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/mcncl/gobref/internal/analyzer"
	"github.com/mcncl/gobref/internal/errors"
	"github.com/mcncl/gobref/internal/models"
	"github.com/mcncl/gobref/internal/scanner"
	"github.com/mcncl/gobref/internal/schema"
)

// DefaultMaxDepth bounds nesting when no explicit limit is configured.
const DefaultMaxDepth = 1000

// Option configures a Parser.
type Option func(*Parser)

// WithMaxDepth sets the maximum nesting depth. Values below 1 select
// DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		if depth < 1 {
			depth = DefaultMaxDepth
		}
		p.maxDepth = depth
	}
}

// WithStrictDeclarations makes malformed declaration lines an error.
func WithStrictDeclarations(strict bool) Option {
	return func(p *Parser) {
		p.strict = strict
	}
}

// WithLogger sets the logger used for debug records.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Parser holds read-only parse settings and may be shared between goroutines.
type Parser struct {
	maxDepth int
	strict   bool
	logger   *slog.Logger
}

// New creates a Parser with the given options applied over the defaults.
func New(opts ...Option) *Parser {
	p := &Parser{
		maxDepth: DefaultMaxDepth,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseValue parses a data expression, resolving type annotations against types.
func (p *Parser) ParseValue(text string, types models.TypeDefs) (models.Value, error) {
	r := &run{parser: p, types: types}
	return r.parseValue(text, 1)
}

// run carries the registry for a single parse call.
type run struct {
	parser *Parser
	types  models.TypeDefs
	// keyed holds the first item of every object written entirely in
	// "key: value" syntax or produced by labelling.
	keyed map[*models.Value]bool
}

func (r *run) markKeyed(v models.Value) models.Value {
	if len(v.Items) == 0 {
		return v
	}
	if r.keyed == nil {
		r.keyed = make(map[*models.Value]bool)
	}
	r.keyed[&v.Items[0]] = true
	return v
}

// isKeyed reports whether an already parsed object bypasses labelling: it
// must have been written as keys and pass the key heuristic.
func (r *run) isKeyed(v models.Value) bool {
	return len(v.Items) > 0 && r.keyed[&v.Items[0]] && analyzer.IsKeyed(v.Items)
}

func (r *run) checkDepth(depth int) error {
	if depth > r.parser.maxDepth {
		return errors.NewParsingError(
			fmt.Sprintf("nesting exceeds the maximum depth of %d", r.parser.maxDepth),
			errors.ErrMaxDepthExceeded,
		)
	}
	return nil
}

// parseValue parses text as a typed value, array, object or primitive, in
// that order of preference.
func (r *run) parseValue(text string, depth int) (models.Value, error) {
	if err := r.checkDepth(depth); err != nil {
		return models.Value{}, err
	}
	text = strings.TrimSpace(text)

	if colon, ok := scanner.FindMainColon(text); ok {
		valuePart := strings.TrimSpace(text[:colon])
		typeName := strings.TrimSpace(text[colon+1:])

		if fields, ok := schema.Resolve(r.types, typeName); ok {
			r.parser.logger.Debug("applying type", "type", typeName, "fields", len(fields))
			return r.applyTyped(valuePart, fields, depth)
		}
		// A balanced group followed by an identifier can only be a type
		// annotation, so an unknown name there is an error rather than text.
		if typeName != "" && scanner.IsIdentifier(typeName) && isGroup(valuePart) {
			return models.Value{}, errors.NewSchemaError(
				fmt.Sprintf("referenced type '%s' not found", typeName),
				errors.ErrTypeNotFound,
			)
		}
	}

	switch {
	case scanner.Enclosed(text, '[', ']'):
		items, err := r.parseItems(scanner.Inner(text), depth+1)
		if err != nil {
			return models.Value{}, err
		}
		return models.Array(items...), nil
	case scanner.Enclosed(text, '{', '}'):
		items, allKeyed, err := r.parseObjectItems(scanner.Inner(text), depth+1)
		if err != nil {
			return models.Value{}, err
		}
		obj := models.Object(items...)
		if allKeyed {
			r.markKeyed(obj)
		}
		return obj, nil
	default:
		return models.Primitive(ParsePrimitive(text)), nil
	}
}

// parseItems parses every top-level comma-separated segment of content.
func (r *run) parseItems(content string, depth int) ([]models.Value, error) {
	segments := scanner.SplitTopLevel(content, ',')
	items := make([]models.Value, 0, len(segments))
	for _, seg := range segments {
		v, err := r.parseValue(seg, depth)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, nil
}

// parseObjectItems is parseItems for object bodies: a "key: value" segment
// contributes the key as a string followed by the parsed value. allKeyed
// reports whether content was non-empty and every segment used key syntax.
func (r *run) parseObjectItems(content string, depth int) (items []models.Value, allKeyed bool, err error) {
	segments := scanner.SplitTopLevel(content, ',')
	items = make([]models.Value, 0, len(segments))
	allKeyed = len(segments) > 0
	for _, seg := range segments {
		if colon, ok := scanner.FindSimpleColon(seg); ok {
			key := strings.TrimSpace(seg[:colon])
			v, err := r.parseValue(seg[colon+1:], depth)
			if err != nil {
				return nil, false, err
			}
			items = append(items, models.String(key), v)
			continue
		}
		allKeyed = false
		v, err := r.parseValue(seg, depth)
		if err != nil {
			return nil, false, err
		}
		items = append(items, v)
	}
	return items, allKeyed, nil
}

func isGroup(text string) bool {
	return scanner.Enclosed(text, '{', '}') || scanner.Enclosed(text, '[', ']')
}
