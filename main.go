package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/mcncl/gobref/internal/analyzer"
	"github.com/mcncl/gobref/internal/config"
	"github.com/mcncl/gobref/internal/errors"
	"github.com/mcncl/gobref/internal/formatter"
	"github.com/mcncl/gobref/internal/generator"
	"github.com/mcncl/gobref/internal/models"
	"github.com/mcncl/gobref/internal/parser"
	"github.com/mcncl/gobref/internal/query"
	"github.com/mcncl/gobref/internal/render"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to input bref file (plain, gzip or zstd). If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Format      string `help:"Output format (json, yaml)." short:"f"`
	Indent      int    `help:"Indent width for JSON and YAML output."`
	Compact     bool   `help:"Write JSON on a single line."`
	Color       string `help:"Color JSON output (auto, always, never)."`
	KeyCase     string `help:"Rewrite object keys (preserve, camel, lower_camel, snake, screaming_snake, kebab)." name:"key-case"`
	Query       string `help:"Evaluate an expr expression against the document; the document is bound to 'data'." short:"q"`
	Patch       string `help:"Apply an RFC 6902 JSON patch file to the document before querying." type:"path"`
	Config      string `help:"Path to config file (.yml, .yaml or .toml). Defaults to the nearest .gobref.* file." short:"c" type:"path"`
	MaxDepth    int    `help:"Maximum nesting depth." name:"max-depth"`
	Strict      bool   `help:"Treat malformed type declarations as errors."`
	Types       bool   `help:"Print the type registry instead of the data."`
	GoTypes     bool   `help:"Print Go struct definitions for the type registry instead of the data." name:"go-types"`
	Package     string `help:"Package name for --go-types output." short:"p" default:"main"`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	Verbose     bool   `help:"Log a summary of the parsed document."`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct bref input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Config *config.Config
	Logger *slog.Logger
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	cli := kong.Must(&CLI,
		kong.Name("gobref"),
		kong.Description("A tool to convert bref notation to JSON or YAML"),
		kong.UsageOnError(),
	)

	// Check if no arguments provided and set interactive mode by default
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := cli.Parse(os.Args[1:]); err != nil {
		// If there's an error parsing arguments, the usage will already be shown by kong.UsageOnError()
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("gobref version %s\n", Version)
		return
	}

	ctx, err := newContext()
	if err == nil {
		err = run(ctx)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: gobref --help\n")
		os.Exit(1)
	}
}

// newContext loads configuration, with CLI flags taking precedence, and
// builds the logger.
func newContext() (*Context, error) {
	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, config.CLIOverrides{
		Format:   CLI.Format,
		Indent:   CLI.Indent,
		Compact:  CLI.Compact,
		Color:    CLI.Color,
		KeyCase:  CLI.KeyCase,
		Query:    CLI.Query,
		MaxDepth: CLI.MaxDepth,
		Strict:   CLI.Strict,
		Debug:    CLI.Debug,
		Verbose:  CLI.Verbose,
	})
	if err != nil {
		return nil, err
	}

	logger := newLogger(cfg.Dev)
	if configPath != "" {
		logger.Debug("loaded config", "path", configPath)
	}
	return &Context{Config: cfg, Logger: logger}, nil
}

func newLogger(dev config.DevConfig) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case dev.Debug:
		level = slog.LevelDebug
	case dev.Verbose:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// run executes the main program logic
func run(ctx *Context) error {
	cfg := ctx.Config

	// 1. Parse bref input
	doc, err := parseInput(ctx)
	if err != nil {
		return err
	}

	if CLI.GoTypes {
		pkg := CLI.Package
		if pkg == "" {
			pkg = "main"
		}
		code, err := generator.NewGenerator().GenerateStructs(doc.Types, pkg)
		if err != nil {
			return err
		}
		return writeOutput(code)
	}

	// 2. Convert to native values
	var native any
	switch {
	case CLI.Types:
		native = render.RenderTypes(doc.Types)
	case doc.HasData():
		if cfg.Dev.Verbose {
			s := analyzer.Analyze(*doc.Data)
			ctx.Logger.Info("parsed document",
				"types", len(doc.Types),
				"keyed", s.Keyed,
				"positional", s.Positional,
				"arrays", s.Arrays,
				"primitives", s.Primitives,
				"depth", s.MaxDepth,
			)
		}
		native = render.ToNative(*doc.Data, render.Options{
			KeyName: cfg.KeyName,
			SkipKey: cfg.ShouldSkipKey,
		})
	default:
		ctx.Logger.Debug("document has no data")
	}

	// 3. Apply a JSON patch if requested
	if CLI.Patch != "" {
		patchJSON, err := os.ReadFile(CLI.Patch)
		if err != nil {
			return errors.NewInputError(fmt.Sprintf("failed to read patch file '%s'", CLI.Patch), err)
		}
		native, err = render.ApplyPatch(native, patchJSON)
		if err != nil {
			return err
		}
	}

	// 4. Evaluate the query
	if cfg.Query != "" {
		native, err = query.Eval(cfg.Query, native)
		if err != nil {
			return err
		}
	}

	// 5. Format the result
	out := os.Stdout
	if CLI.Output != "" {
		out = nil
	}
	formatterInst := formatter.NewFormatter(formatter.Options{
		Format:  cfg.Output.Format,
		Indent:  cfg.Output.Indent,
		Compact: cfg.Output.Compact,
		Color:   formatter.ResolveColor(cfg.Output.Color, out),
	})
	content, err := formatterInst.Format(native)
	if err != nil {
		return err
	}

	// 6. Output the result
	return writeOutput(content)
}

func parserOptions(ctx *Context) []parser.Option {
	return []parser.Option{
		parser.WithMaxDepth(ctx.Config.Parser.MaxDepth),
		parser.WithStrictDeclarations(ctx.Config.Parser.StrictDeclarations),
		parser.WithLogger(ctx.Logger),
	}
}

// parseInput reads bref from file or stdin
func parseInput(ctx *Context) (models.Document, error) {
	opts := parserOptions(ctx)

	if CLI.Input != "" {
		return parser.ParseFile(CLI.Input, opts...)
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			return readInteractiveInput(opts)
		}
		return models.Document{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	// Read from stdin (piped input)
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to read from stdin", err)
	}

	if len(data) == 0 {
		return models.Document{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return parser.Parse(bytes.NewReader(data), opts...)
}

// writeOutput writes content to file or stdout
func writeOutput(content string) error {
	if CLI.Output != "" {
		err := os.WriteFile(CLI.Output, []byte(content), 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Output written to %s\n", CLI.Output)
		return nil
	}

	_, err := fmt.Print(content)
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste bref
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput(opts []parser.Option) (models.Document, error) {
	fmt.Fprintln(os.Stderr, "gobref Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your bref below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var builder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		builder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Document{}, errors.NewInputError("error reading input", err)
		}
	}

	data := builder.String()
	if len(data) == 0 {
		return models.Document{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing bref...")
	return parser.ParseString(data, opts...)
}
