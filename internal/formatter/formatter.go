package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/mcncl/gobref/internal/errors"
	"github.com/mcncl/gobref/internal/render"
)

// Output formats
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultIndent is the indent width used when none is configured.
const DefaultIndent = 2

// Options controls how documents are written.
type Options struct {
	Format  string
	Indent  int
	Compact bool
	Color   bool
}

// palette colors the parts of a JSON document. The zero value colors nothing.
type palette struct {
	key     func(a ...any) string
	str     func(a ...any) string
	number  func(a ...any) string
	literal func(a ...any) string
}

func newPalette() palette {
	sprint := func(c *color.Color) func(a ...any) string {
		// Enabled per color so the global NoColor detection does not apply.
		c.EnableColor()
		return c.SprintFunc()
	}
	return palette{
		key:     sprint(color.New(color.FgBlue, color.Bold)),
		str:     sprint(color.New(color.FgGreen)),
		number:  sprint(color.RGB(128, 216, 236)),
		literal: sprint(color.New(color.FgMagenta)),
	}
}

// Formatter writes native documents as JSON or YAML
type Formatter struct {
	opts   Options
	colors palette
}

// NewFormatter creates a new Formatter instance
func NewFormatter(opts Options) *Formatter {
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	if opts.Indent <= 0 {
		opts.Indent = DefaultIndent
	}
	f := &Formatter{opts: opts}
	if opts.Color && opts.Format == FormatJSON {
		f.colors = newPalette()
	}
	return f
}

// ResolveColor decides whether output to file should be colored for the
// given mode. Auto enables color only for terminals.
func ResolveColor(mode string, file *os.File) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		if file == nil || os.Getenv("NO_COLOR") != "" {
			return false
		}
		fd := file.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
}

// Format renders a native document produced by the render or query packages.
// The result ends with a newline.
func (f *Formatter) Format(doc any) (string, error) {
	switch f.opts.Format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := f.writeJSON(&buf, doc, 0); err != nil {
			return "", err
		}
		buf.WriteByte('\n')
		return buf.String(), nil
	case FormatYAML:
		return f.formatYAML(doc)
	default:
		return "", errors.NewFormatError(
			fmt.Sprintf("unsupported output format '%s'", f.opts.Format),
			errors.ErrUnsupportedFormat,
		)
	}
}

func (f *Formatter) formatYAML(doc any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(f.opts.Indent)
	if err := enc.Encode(doc); err != nil {
		return "", errors.NewFormatError("failed to encode YAML", err)
	}
	if err := enc.Close(); err != nil {
		return "", errors.NewFormatError("failed to encode YAML", err)
	}
	return buf.String(), nil
}

func (f *Formatter) writeJSON(buf *bytes.Buffer, v any, depth int) error {
	switch t := v.(type) {
	case nil:
		buf.WriteString(f.paint(f.colors.literal, "null"))
	case bool:
		buf.WriteString(f.paint(f.colors.literal, strconv.FormatBool(t)))
	case string:
		buf.WriteString(f.paint(f.colors.str, quote(t)))
	case int:
		buf.WriteString(f.paint(f.colors.number, strconv.Itoa(t)))
	case int64:
		buf.WriteString(f.paint(f.colors.number, strconv.FormatInt(t, 10)))
	case float64:
		s, err := formatFloat(t)
		if err != nil {
			return err
		}
		buf.WriteString(f.paint(f.colors.number, s))
	case *render.OrderedMap:
		keys := t.Keys()
		return f.writeObject(buf, keys, func(k string) any {
			v, _ := t.Get(k)
			return v
		}, depth)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return f.writeObject(buf, keys, func(k string) any { return t[k] }, depth)
	case []any:
		if len(t) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			f.newline(buf, depth+1)
			if err := f.writeJSON(buf, item, depth+1); err != nil {
				return err
			}
		}
		f.newline(buf, depth)
		buf.WriteByte(']')
	default:
		// Other shapes, such as typed slices or sized integers from query
		// results, are normalized through encoding/json.
		data, err := json.Marshal(t)
		if err != nil {
			return errors.NewFormatError(fmt.Sprintf("cannot encode value of type %T", t), err)
		}
		native, err := render.DecodeJSON(data)
		if err != nil {
			return errors.NewFormatError(fmt.Sprintf("cannot encode value of type %T", t), err)
		}
		return f.writeJSON(buf, native, depth)
	}
	return nil
}

func (f *Formatter) writeObject(buf *bytes.Buffer, keys []string, get func(string) any, depth int) error {
	if len(keys) == 0 {
		buf.WriteString("{}")
		return nil
	}
	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		f.newline(buf, depth+1)
		buf.WriteString(f.paint(f.colors.key, quote(k)))
		buf.WriteByte(':')
		if !f.opts.Compact {
			buf.WriteByte(' ')
		}
		if err := f.writeJSON(buf, get(k), depth+1); err != nil {
			return err
		}
	}
	f.newline(buf, depth)
	buf.WriteByte('}')
	return nil
}

func (f *Formatter) newline(buf *bytes.Buffer, depth int) {
	if f.opts.Compact {
		return
	}
	buf.WriteByte('\n')
	buf.WriteString(strings.Repeat(" ", depth*f.opts.Indent))
}

// paint applies fn to s; a nil fn leaves s uncolored.
func (f *Formatter) paint(fn func(a ...any) string, s string) string {
	if fn == nil {
		return s
	}
	return fn(s)
}

// quote returns s as a JSON string literal without HTML escaping.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// formatFloat writes f the way encoding/json does, keeping a fractional part
// on whole numbers so floats stay distinguishable from integers.
func formatFloat(f float64) (string, error) {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return "", errors.NewFormatError(
			fmt.Sprintf("JSON cannot represent the number %v", f),
			nil,
		)
	}
	data, err := json.Marshal(f)
	if err != nil {
		return "", errors.NewFormatError("failed to encode number", err)
	}
	s := string(data)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}
