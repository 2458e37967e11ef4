package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/gobref/internal/parser"
)

func TestIntegration_ParserGenerator(t *testing.T) {
	// Test the full pipeline: Parser -> Generator
	input := `
:song { title, duration, album:album, is_favorite }
:album { title, year, band:{ name, country } }

{ "Bohemian Rhapsody", "5:55", { "A Night at the Opera", 1975, { "Queen", "UK" } }, true }: song
`

	doc, err := parser.ParseString(input)
	require.NoError(t, err)

	generatedCode, err := NewGenerator().GenerateStructs(doc.Types, "music")
	require.NoError(t, err)

	expectedCode := `package music

type Album struct {
	Title any        ` + "`json:\"title\"`" + `
	Year  any        ` + "`json:\"year\"`" + `
	Band  *AlbumBand ` + "`json:\"band,omitempty\"`" + `
}

type AlbumBand struct {
	Name    any ` + "`json:\"name\"`" + `
	Country any ` + "`json:\"country\"`" + `
}

type Song struct {
	Title      any    ` + "`json:\"title\"`" + `
	Duration   any    ` + "`json:\"duration\"`" + `
	Album      *Album ` + "`json:\"album,omitempty\"`" + `
	IsFavorite any    ` + "`json:\"is_favorite\"`" + `
}
`

	assert.Equal(t, expectedCode, generatedCode)
}

func TestIntegration_DeclarationsOnly(t *testing.T) {
	doc, err := parser.ParseString(":track { title, artists:artist[] }\n:artist { name }\n")
	require.NoError(t, err)
	require.False(t, doc.HasData())

	generatedCode, err := NewGenerator().GenerateStructs(doc.Types, "main")
	require.NoError(t, err)

	assert.Contains(t, generatedCode, "type Artist struct {\n\tName any `json:\"name\"`\n}\n")
	assert.Contains(t, generatedCode, "\tArtists []Artist `json:\"artists,omitempty\"`\n")
}
