package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/gobref/internal/errors"
	"github.com/mcncl/gobref/internal/models"
	"github.com/mcncl/gobref/internal/schema"
)

// ParseDocument builds the registry from the declaration lines of text and
// parses the remaining lines as one data expression. When there are no data
// lines the document's Data is nil.
func (p *Parser) ParseDocument(text string) (models.Document, error) {
	types, err := schema.Parse(text, schema.Options{Strict: p.strict, Logger: p.logger})
	if err != nil {
		return models.Document{}, err
	}

	data := DataText(text)
	if data == "" {
		p.logger.Debug("no data lines", "types", len(types))
		return models.Document{Types: types}, nil
	}

	value, err := p.ParseValue(data, types)
	if err != nil {
		return models.Document{Types: types}, err
	}
	return models.Document{Types: types, Data: &value}, nil
}

// DataText returns the non-blank, non-declaration lines of text, trimmed and
// joined with newlines in their original order.
func DataText(text string) string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || schema.IsDeclaration(line) {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// ParseString parses a complete bref document held in a string.
func ParseString(text string, opts ...Option) (models.Document, error) {
	return New(opts...).ParseDocument(text)
}

// Parse reads a complete bref document from reader. Gzip and zstd compressed
// streams are decompressed transparently.
func Parse(reader io.Reader, opts ...Option) (models.Document, error) {
	rc, err := NewReader(reader)
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to open compressed input", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to read input", err)
	}
	return ParseString(string(data), opts...)
}

// ParseFile parses a bref document from a file path
func ParseFile(filePath string, opts ...Option) (models.Document, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Document{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Document{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.Size() == 0 {
		return models.Document{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file, opts...)
}
