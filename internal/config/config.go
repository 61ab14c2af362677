package config

import (
	"fmt"
	"os"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mcncl/json2md/internal/errors"
	"github.com/mcncl/json2md/internal/formatter"
	"github.com/mcncl/json2md/internal/present"
	"github.com/mcncl/json2md/internal/renderer"
	"gopkg.in/yaml.v3"
)

// Config represents the complete configuration for json2md
type Config struct {
	MinHeadingLevel     int    `yaml:"min_heading_level"`
	MaxHeadingLevel     int    `yaml:"max_heading_level"`
	IncludeTypes        bool   `yaml:"include_types"`
	ProcessArrayObjects bool   `yaml:"process_array_objects"`
	UseOrderedLists     bool   `yaml:"use_ordered_lists"`
	Pretty              bool   `yaml:"pretty"`
	Overflow            string `yaml:"overflow"`
	MaxDepth            int    `yaml:"max_depth"`

	Output OutputConfig `yaml:"output"`
	Dev    DevConfig    `yaml:"dev"`
}

// OutputConfig controls how the rendered Markdown is presented
type OutputConfig struct {
	Format string `yaml:"format"`
	Style  string `yaml:"style"`
	Width  int    `yaml:"width"`
}

// DevConfig contains development/debug options
type DevConfig struct {
	Debug bool `yaml:"debug"`
}

// Overrides carries values given on the command line. Nil pointers and zero
// values mean the flag was not given; boolean flags can only switch a
// setting on.
type Overrides struct {
	MinHeadingLevel *int
	MaxHeadingLevel *int
	IncludeTypes    bool
	NoProcessArrays bool
	UseOrderedLists bool
	Pretty          bool
	Overflow        string
	MaxDepth        *int
	Format          string
	Style           string
	Width           int
	Debug           bool
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		MinHeadingLevel:     renderer.LowestHeadingLevel,
		MaxHeadingLevel:     renderer.HighestHeadingLevel,
		IncludeTypes:        false,
		ProcessArrayObjects: true,
		UseOrderedLists:     false,
		Pretty:              false,
		Overflow:            string(renderer.OverflowList),
		MaxDepth:            renderer.DefaultMaxDepth,
		Output: OutputConfig{
			Format: string(present.FormatMarkdown),
			Style:  present.DefaultStyle,
			Width:  present.DefaultWidth,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".json2md.yml", ".json2md.yaml", "json2md.yml", "json2md.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	// Search up the directory tree
	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks the configuration values
func (c *Config) Validate() error {
	// Config values are resolved, so 0 is not a stand-in for the default here
	err := validation.ValidateStruct(c,
		validation.Field(&c.MinHeadingLevel, validation.Required.Error("must be between 1 and 6")),
		validation.Field(&c.MaxHeadingLevel, validation.Required.Error("must be between 1 and 6")),
	)
	if err != nil {
		return errors.NewOptionError(err.Error(), errors.ErrLevelRange)
	}
	if err := validation.Validate(c.MaxDepth, validation.Required.Error("must be at least 1")); err != nil {
		return errors.NewOptionError(fmt.Sprintf("MaxDepth: %v", err), err)
	}

	// Heading levels, overflow and depth share the renderer's rules
	if err := c.Options().Validate(); err != nil {
		return err
	}

	err = validation.ValidateStruct(&c.Output,
		validation.Field(&c.Output.Format, validation.In(
			string(present.FormatMarkdown), string(present.FormatHTML), string(present.FormatTerminal),
		)),
		validation.Field(&c.Output.Width, validation.Min(0)),
	)
	if err != nil {
		return errors.NewOptionError("invalid output configuration", err)
	}
	return nil
}

// Options converts the configuration into renderer options
func (c *Config) Options() renderer.Options {
	opts := renderer.Options{
		MinHeadingLevel: c.MinHeadingLevel,
		MaxHeadingLevel: c.MaxHeadingLevel,
		IncludeTypes:    c.IncludeTypes,
		FlatArrays:      !c.ProcessArrayObjects,
		UseOrderedLists: c.UseOrderedLists,
		Overflow:        renderer.Overflow(c.Overflow),
		MaxDepth:        c.MaxDepth,
	}
	if c.Pretty {
		opts.ValueFormatter = formatter.Pretty
	}
	return opts
}

// Presentation returns the output settings for the present package
func (c *Config) Presentation() present.Settings {
	return present.Settings{
		Format: present.Format(c.Output.Format),
		Style:  c.Output.Style,
		Width:  c.Output.Width,
	}
}

// Apply merges CLI overrides into the config. Unset values keep whatever
// the config file or defaults provided.
func (c *Config) Apply(o Overrides) {
	if o.MinHeadingLevel != nil {
		c.MinHeadingLevel = *o.MinHeadingLevel
	}
	if o.MaxHeadingLevel != nil {
		c.MaxHeadingLevel = *o.MaxHeadingLevel
	}
	if o.IncludeTypes {
		c.IncludeTypes = true
	}
	if o.NoProcessArrays {
		c.ProcessArrayObjects = false
	}
	if o.UseOrderedLists {
		c.UseOrderedLists = true
	}
	if o.Pretty {
		c.Pretty = true
	}
	if o.Overflow != "" {
		c.Overflow = o.Overflow
	}
	if o.MaxDepth != nil {
		c.MaxDepth = *o.MaxDepth
	}
	if o.Format != "" {
		c.Output.Format = o.Format
	}
	if o.Style != "" {
		c.Output.Style = o.Style
	}
	if o.Width != 0 {
		c.Output.Width = o.Width
	}
	if o.Debug {
		c.Dev.Debug = true
	}
}

// LoadConfigWithCLI loads config with CLI argument precedence:
// CLI > config file > defaults.
func LoadConfigWithCLI(configPath string, overrides Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	cfg.Apply(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
