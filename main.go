package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/mcncl/json2md/internal/config"
	"github.com/mcncl/json2md/internal/converter"
	"github.com/mcncl/json2md/internal/errors"
	"github.com/mcncl/json2md/internal/renderer"
	"github.com/mcncl/json2md/internal/service"
)

// CLI defines the command-line interface
var CLI struct {
	Input  string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Output string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	MdOut  bool   `help:"Write the Markdown next to the input file, replacing its extension with .md." name:"md-out"`

	Types           bool   `help:"Include type information for values." short:"t"`
	MinLevel        *int   `help:"Minimum heading level (1-6)." name:"min-level"`
	MaxLevel        *int   `help:"Maximum heading level (1-6). Deeper keys become list items." short:"l" name:"max-level"`
	NoProcessArrays bool   `help:"Disable intelligent processing of arrays of objects." short:"n" name:"no-process-arrays"`
	Ordered         bool   `help:"Use ordered lists past the maximum heading level."`
	Pretty          bool   `help:"Make output more readable with extra spacing." short:"p"`
	Overflow        string `help:"What to do past the maximum heading level: list or clamp."`
	MaxDepth        *int   `help:"Maximum nesting depth before rendering fails." name:"max-depth"`

	Format string `help:"Output format: markdown, html or terminal."`
	Style  string `help:"Glamour style for terminal output (auto, dark, light, notty, ...)."`
	Width  int    `help:"Word wrap width for terminal output."`

	Config      string `help:"Path to config file. Defaults to the nearest .json2md.yml." short:"c" type:"path"`
	Debug       bool   `help:"Enable debug logging." short:"d"`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct JSON input with Ctrl+D to process." short:"I"`
	Serve       string `help:"Serve the HTTP conversion API on this address instead of converting." placeholder:"ADDR"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Logger *slog.Logger
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("json2md"),
		kong.Description("A tool to convert JSON to hierarchical Markdown"),
		kong.UsageOnError(),
	)

	// Check if no arguments provided and set interactive mode by default
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		// Usage has already been shown by kong.UsageOnError()
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("json2md version %s\n", Version)
		return
	}

	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}

	cfg, err := config.LoadConfigWithCLI(configPath, overrides())
	if err != nil {
		fail(err)
	}

	logger := newLogger(cfg.Dev.Debug)
	if configPath != "" {
		logger.Debug("config.loaded", slog.String("path", configPath))
	}

	if CLI.Serve != "" {
		if err := serve(cfg, logger); err != nil {
			fail(err)
		}
		return
	}

	if err := run(&Context{Debug: cfg.Dev.Debug, Config: cfg, Logger: logger}); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
	fmt.Fprintf(os.Stderr, "\nFor help, run: json2md --help\n")
	os.Exit(1)
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// overrides collects the flags that take precedence over the config file
func overrides() config.Overrides {
	return config.Overrides{
		MinHeadingLevel: CLI.MinLevel,
		MaxHeadingLevel: CLI.MaxLevel,
		IncludeTypes:    CLI.Types,
		NoProcessArrays: CLI.NoProcessArrays,
		UseOrderedLists: CLI.Ordered,
		Pretty:          CLI.Pretty,
		Overflow:        CLI.Overflow,
		MaxDepth:        CLI.MaxDepth,
		Format:          CLI.Format,
		Style:           CLI.Style,
		Width:           CLI.Width,
		Debug:           CLI.Debug,
	}
}

// serviceConfig reads the service settings from the environment. The
// listen address comes from --serve; the nesting ceiling comes from the flag
// or config file when either moves it off the default.
func serviceConfig(cfg *config.Config) (service.Config, error) {
	svcCfg, err := service.ConfigFromEnv()
	if err != nil {
		return service.Config{}, err
	}
	svcCfg.Addr = CLI.Serve
	if CLI.MaxDepth != nil || cfg.MaxDepth != renderer.DefaultMaxDepth {
		svcCfg.MaxDepth = cfg.MaxDepth
	}
	return svcCfg, nil
}

// serve runs the HTTP API until interrupted
func serve(cfg *config.Config, logger *slog.Logger) error {
	svcCfg, err := serviceConfig(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := service.Run(ctx, svcCfg, logger); err != nil {
		return errors.NewServiceError(fmt.Sprintf("failed to serve on %s", svcCfg.Addr), err)
	}
	return nil
}

// run executes the main program logic
func run(ctx *Context) error {
	logger := ctx.Logger
	if logger == nil {
		logger = newLogger(ctx.Debug)
	}
	cfg := ctx.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}

	outputPath, err := resolveOutputPath()
	if err != nil {
		return err
	}

	// 1. Parse, render and present the input
	conv := converter.Converter{Options: cfg.Options(), Presentation: cfg.Presentation()}
	start := time.Now()
	out, err := convert(conv)
	if err != nil {
		return err
	}
	logger.Debug("convert.done",
		slog.String("format", cfg.Output.Format),
		slog.Int("bytes", len(out)),
		slog.Duration("dur", time.Since(start)),
	)

	// 2. Output the result
	return writeOutput(out, outputPath)
}

// convert runs conv over the input file, or over JSON read from stdin
func convert(conv converter.Converter) (string, error) {
	if CLI.Input != "" {
		return conv.File(CLI.Input, "")
	}

	jsonData, err := readInput()
	if err != nil {
		return "", err
	}
	return conv.String(jsonData)
}

// resolveOutputPath picks the output file from --output or --md-out.
// An empty path means stdout.
func resolveOutputPath() (string, error) {
	if CLI.Output != "" {
		return CLI.Output, nil
	}
	if CLI.MdOut {
		if CLI.Input == "" {
			return "", errors.NewInputError("--md-out requires an input file", errors.ErrInvalidFilePath)
		}
		return converter.DefaultOutputPath(CLI.Input), nil
	}
	return "", nil
}

// readInput reads JSON text from stdin, prompting for it in interactive mode
func readInput() (string, error) {
	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return "", errors.NewInputError("failed to access stdin", err)
	}

	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			return readInteractiveInput()
		}
		return "", errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	// Read from stdin (piped input)
	jsonData, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", errors.NewInputError("failed to read from stdin", err)
	}

	if len(jsonData) == 0 {
		return "", errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return string(jsonData), nil
}

// writeOutput writes the result to path, or to stdout when path is empty
func writeOutput(out, path string) error {
	if path != "" {
		if err := converter.WriteFile(path, out); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Markdown written to %s\n", path)
		return nil
	}

	if _, err := fmt.Print(out); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste JSON
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput() (string, error) {
	fmt.Fprintln(os.Stderr, "json2md Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var jsonBuilder strings.Builder

	for {
		line, err := reader.ReadString('\n')
		jsonBuilder.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.NewInputError("error reading input", err)
		}
	}

	jsonData := jsonBuilder.String()
	if strings.TrimSpace(jsonData) == "" {
		return "", errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing JSON...")
	return jsonData, nil
}
