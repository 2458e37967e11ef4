package parser

import (
	"fmt"

	"github.com/mcncl/gobref/internal/analyzer"
	"github.com/mcncl/gobref/internal/errors"
	"github.com/mcncl/gobref/internal/models"
	"github.com/mcncl/gobref/internal/scanner"
	"github.com/mcncl/gobref/internal/schema"
)

// applyTyped parses valuePart and labels it with fields. An array value must
// hold objects only; each is labelled on its own.
func (r *run) applyTyped(valuePart string, fields []models.FieldDef, depth int) (models.Value, error) {
	if scanner.Enclosed(valuePart, '[', ']') {
		segments := scanner.SplitTopLevel(scanner.Inner(valuePart), ',')
		labelled := make([]models.Value, 0, len(segments))
		for _, seg := range segments {
			items, keep, err := r.parseRecord(seg, depth+1)
			if err != nil {
				return models.Value{}, err
			}
			obj, err := r.labelObject(items, fields, depth+1, keep)
			if err != nil {
				return models.Value{}, err
			}
			labelled = append(labelled, obj)
		}
		return models.Array(labelled...), nil
	}

	content := valuePart
	if scanner.Enclosed(valuePart, '{', '}') {
		content = scanner.Inner(valuePart)
	}
	items, allKeyed, err := r.parseObjectItems(content, depth+1)
	if err != nil {
		return models.Value{}, err
	}
	return r.labelObject(items, fields, depth, allKeyed && analyzer.IsKeyed(items))
}

// parseRecord parses one element of a typed array. keep reports whether the
// element is already keyed and must bypass labelling.
func (r *run) parseRecord(seg string, depth int) (items []models.Value, keep bool, err error) {
	if err := r.checkDepth(depth); err != nil {
		return nil, false, err
	}
	if scanner.Enclosed(seg, '{', '}') {
		items, allKeyed, err := r.parseObjectItems(scanner.Inner(seg), depth+1)
		if err != nil {
			return nil, false, err
		}
		return items, allKeyed && analyzer.IsKeyed(items), nil
	}

	// Anything else must still produce an object, e.g. an element with its
	// own type annotation.
	v, err := r.parseValue(seg, depth)
	if err != nil {
		return nil, false, err
	}
	if !v.IsObject() {
		return nil, false, errors.NewShapeError(
			"array items must be objects when using typed arrays",
			errors.ErrArrayItemNotObject,
		)
	}
	return v.Items, r.isKeyed(v), nil
}

// labelObject turns object items into an interleaved key/value object.
//
// With keep set the items are already keyed and are copied unchanged.
// Otherwise each field takes the next positional value, coerced by the field's
// kind, and a trailing run of (string, value) pairs is appended unchanged.
// Every nesting level goes through here. Quoted strings are never keys, so
// "{ "Queen", "UK" }" under a band field is two positional strings.
func (r *run) labelObject(items []models.Value, fields []models.FieldDef, depth int, keep bool) (models.Value, error) {
	if err := r.checkDepth(depth); err != nil {
		return models.Value{}, err
	}
	if keep {
		return r.markKeyed(models.Object(items...)), nil
	}

	out := make([]models.Value, 0, 2*len(fields)+len(items))
	next := 0
	for _, field := range fields {
		if next >= len(items) {
			break
		}
		v, err := r.applyFieldType(items[next], field, depth+1)
		if err != nil {
			return models.Value{}, err
		}
		out = append(out, models.String(field.Name), v)
		next++
	}

	for next+1 < len(items) {
		if _, ok := items[next].AsString(); !ok {
			break
		}
		out = append(out, items[next], items[next+1])
		next += 2
	}

	if next < len(items) {
		r.parser.logger.Debug("discarding unlabelled values", "count", len(items)-next)
	}
	return r.markKeyed(models.Object(out...)), nil
}

// applyFieldType coerces a positional value according to its field definition.
func (r *run) applyFieldType(value models.Value, field models.FieldDef, depth int) (models.Value, error) {
	switch field.Kind {
	case models.ObjectField:
		fields, ok := schema.Resolve(r.types, field.TypeName)
		if !ok {
			return models.Value{}, errors.NewSchemaError(
				fmt.Sprintf("referenced type '%s' not found", field.TypeName),
				errors.ErrTypeNotFound,
			)
		}
		if !value.IsObject() {
			return value, nil
		}
		return r.labelObject(value.Items, fields, depth, r.isKeyed(value))

	case models.ArrayField:
		fields, ok := schema.Resolve(r.types, field.TypeName)
		if !ok {
			return models.Value{}, errors.NewSchemaError(
				fmt.Sprintf("referenced array element type '%s' not found", field.TypeName),
				errors.ErrArrayTypeNotFound,
			)
		}
		if !value.IsArray() {
			return value, nil
		}

		elems := make([]models.Value, 0, len(value.Items))
		for _, elem := range value.Items {
			if !elem.IsObject() {
				elems = append(elems, elem)
				continue
			}
			obj, err := r.labelObject(elem.Items, fields, depth+1, r.isKeyed(elem))
			if err != nil {
				return models.Value{}, err
			}
			elems = append(elems, obj)
		}
		return models.Array(elems...), nil

	default:
		return value, nil
	}
}
