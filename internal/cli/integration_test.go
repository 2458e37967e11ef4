package cli_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const albumBref = `
:album { title, year, artist:artist, tracks:track[] }
:artist { name, country }
:track { title, duration }

{
  "A Night at the Opera", 1975, { "Queen", "UK" },
  [ { "Death on Two Legs", "3:43" }, { "Bohemian Rhapsody", "5:55" } ]
}: album
`

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "../../main.go"}, args...)...)
	cmd.Stdin = strings.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestCLI_FileInputOutput tests the CLI with file input and output
func TestCLI_FileInputOutput(t *testing.T) {
	tempDir := t.TempDir()

	brefFile := filepath.Join(tempDir, "album.bref")
	require.NoError(t, os.WriteFile(brefFile, []byte(albumBref), 0644))

	outputFile := filepath.Join(tempDir, "album.json")

	cmd := exec.Command("go", "run", "../../main.go", "-i", brefFile, "-o", outputFile)
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "CLI command failed: %s", string(output))
	assert.Contains(t, string(output), "Output written to")

	written, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	expected := `{
  "title": "A Night at the Opera",
  "year": 1975,
  "artist": {
    "name": "Queen",
    "country": "UK"
  },
  "tracks": [
    {
      "title": "Death on Two Legs",
      "duration": "3:43"
    },
    {
      "title": "Bohemian Rhapsody",
      "duration": "5:55"
    }
  ]
}
`
	assert.Equal(t, expected, string(written))
}

// TestCLI_StdinStdout tests the CLI with stdin input and stdout output
func TestCLI_StdinStdout(t *testing.T) {
	stdout, stderr, err := runCLI(t, `{ name: "Jane", age: 25, active: true }`, "--compact")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.Equal(t, `{"name":"Jane","age":25,"active":true}`+"\n", stdout)
}

// TestCLI_YAMLOutput tests YAML output with a key case
func TestCLI_YAMLOutput(t *testing.T) {
	stdout, stderr, err := runCLI(t, albumBref, "-f", "yaml", "--key-case", "camel")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.Contains(t, stdout, "Title: A Night at the Opera\n")
	assert.Contains(t, stdout, "Artist:\n  Name: Queen\n")
}

// TestCLI_Query tests expression evaluation
func TestCLI_Query(t *testing.T) {
	stdout, stderr, err := runCLI(t, albumBref, "-q", "map(tracks, .title)", "--compact")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.Equal(t, `["Death on Two Legs","Bohemian Rhapsody"]`+"\n", stdout)
}

// TestCLI_Types tests printing the type registry
func TestCLI_Types(t *testing.T) {
	stdout, stderr, err := runCLI(t, albumBref, "--types", "--compact")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.Contains(t, stdout, `"artist":[{"name":"name","kind":"Primitive"},{"name":"country","kind":"Primitive"}]`)
	assert.Contains(t, stdout, `{"name":"tracks","kind":"Array","type_name":"track"}`)
}

// TestCLI_GoTypes tests emitting Go structs for the type registry
func TestCLI_GoTypes(t *testing.T) {
	stdout, stderr, err := runCLI(t, albumBref, "--go-types", "-p", "music")
	require.NoError(t, err, "CLI command failed: %s", stderr)

	assert.True(t, strings.HasPrefix(stdout, "package music\n"))
	assert.Contains(t, stdout, "\tArtist *Artist `json:\"artist,omitempty\"`\n")
	assert.Contains(t, stdout, "\tTracks []Track `json:\"tracks,omitempty\"`\n")
}

// TestCLI_UnknownType tests the CLI with a reference to an undeclared type
func TestCLI_UnknownType(t *testing.T) {
	_, stderr, err := runCLI(t, `{ "A" }: nosuch`)

	assert.Error(t, err, "CLI should fail with an unknown type")
	assert.Contains(t, stderr, "Schema error: referenced type 'nosuch' not found")
	assert.Contains(t, stderr, "For help, run: gobref --help")
}

// TestCLI_StrictDeclarations tests strict declaration checking
func TestCLI_StrictDeclarations(t *testing.T) {
	input := ":song title\n[1]"

	_, _, err := runCLI(t, input)
	assert.NoError(t, err, "malformed declarations are ignored by default")

	_, stderr, err := runCLI(t, input, "--strict")
	assert.Error(t, err)
	assert.Contains(t, stderr, "malformed type declaration")
}

// TestCLI_EmptyInput tests the CLI with empty input
func TestCLI_EmptyInput(t *testing.T) {
	_, stderr, err := runCLI(t, "")

	assert.Error(t, err, "CLI should fail with empty input")
	assert.Contains(t, stderr, "empty input")
}

// TestCLI_Version tests the version flag
func TestCLI_Version(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go", "-v")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err)
	assert.Contains(t, string(output), "gobref version")
}

// TestCLI_Help tests the help output
func TestCLI_Help(t *testing.T) {
	cmd := exec.Command("go", "run", "../../main.go", "--help")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err)

	helpOutput := string(output)
	assert.Contains(t, helpOutput, "Usage:")
	assert.Contains(t, helpOutput, "-i, --input")
	assert.Contains(t, helpOutput, "-o, --output")
	assert.Contains(t, helpOutput, "-f, --format")
	assert.Contains(t, helpOutput, "-q, --query")
	assert.Contains(t, helpOutput, "--key-case")
	assert.Contains(t, helpOutput, "--max-depth")
	assert.Contains(t, helpOutput, "--go-types")
}
