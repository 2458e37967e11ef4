// Package query evaluates expr-lang expressions against rendered documents.
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/expr-lang/expr"

	"github.com/mcncl/gobref/internal/errors"
	"github.com/mcncl/gobref/internal/render"
)

// DataVar names the variable holding the whole document.
const DataVar = "data"

// Eval compiles expression and runs it against doc. The document is bound to
// DataVar; when it is a map its keys are also bound as top-level variables.
func Eval(expression string, doc any) (any, error) {
	plain := render.ToPlain(doc)
	env := Env(plain)

	program, err := expr.Compile(expression, options(plain)...)
	if err != nil {
		return nil, errors.NewQueryError(fmt.Sprintf("failed to compile query %q", expression), err)
	}
	res, err := expr.Run(program, env)
	if err != nil {
		return nil, errors.NewQueryError(fmt.Sprintf("failed to evaluate query %q", expression), err)
	}
	return res, nil
}

// Env builds the evaluation environment for a plain document.
func Env(plain any) map[string]any {
	env := map[string]any{}
	if m, ok := plain.(map[string]any); ok {
		for k, v := range m {
			env[k] = v
		}
	}
	env[DataVar] = plain
	return env
}

// options registers getpath, which yields nil for paths that do not resolve.
func options(plain any) []expr.Option {
	return []expr.Option{
		expr.Function("getpath", func(params ...any) (any, error) {
			v, err := GetPath(plain, params[0].(string))
			if err != nil {
				return nil, nil
			}
			return v, nil
		},
			new(func(string) any)),
	}
}

// GetPath resolves a slash separated path such as "/album/tracks/0/title"
// against a plain document. "~1" and "~0" escape "/" and "~" in keys.
func GetPath(plain any, path string) (any, error) {
	if path == "" || path == "/" {
		return plain, nil
	}
	cur := plain
	for _, part := range strings.Split(strings.TrimPrefix(path, "/"), "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("path %q: key %q not found", path, part)
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("path %q: invalid index %q", path, part)
			}
			cur = node[i]
		default:
			return nil, fmt.Errorf("path %q: cannot descend into %T", path, cur)
		}
	}
	return cur, nil
}
