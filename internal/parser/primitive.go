package parser

import (
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/mcncl/gobref/internal/models"
)

// ParsePrimitive coerces a bare token into a primitive literal.
// Precedence: true/false, null, 64-bit integer, float, then string. A string
// loses one layer of surrounding double quotes; escapes are left as written.
func ParsePrimitive(token string) models.PrimitiveValue {
	token = strings.TrimSpace(token)

	switch token {
	case "true":
		return models.PrimitiveValue{Type: models.BooleanType, Bool: true}
	case "false":
		return models.PrimitiveValue{Type: models.BooleanType, Bool: false}
	case "null":
		return models.PrimitiveValue{Type: models.NullType}
	}

	if i, err := strconv.ParseInt(token, 10, 64); err == nil {
		return models.PrimitiveValue{Type: models.IntegerType, Int: i}
	}
	if isDecimal(token) {
		// Out of range literals saturate to ±Inf
		f, err := strconv.ParseFloat(token, 64)
		if err == nil || stderrors.Is(err, strconv.ErrRange) {
			return models.PrimitiveValue{Type: models.FloatType, Float: f}
		}
	}

	if len(token) >= 2 && token[0] == '"' && token[len(token)-1] == '"' {
		token = token[1 : len(token)-1]
	}
	return models.PrimitiveValue{Type: models.StringType, Str: token}
}

// isDecimal rejects the Go-only float spellings strconv accepts: digit
// separators and hexadecimal mantissas.
func isDecimal(token string) bool {
	if strings.ContainsRune(token, '_') {
		return false
	}
	unsigned := strings.TrimLeft(token, "+-")
	return !strings.HasPrefix(unsigned, "0x") && !strings.HasPrefix(unsigned, "0X")
}
