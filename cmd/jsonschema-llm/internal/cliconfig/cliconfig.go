// Package cliconfig layers conversion options the way a small Go CLI
// conventionally does: library defaults, then an optional YAML config
// file, then explicitly-set command-line flags, combined with
// dario.cat/mergo override semantics.
package cliconfig

import (
	"os"

	"dario.cat/mergo"
	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	jsonschemallm "github.com/dotslashderek/jsonschema-llm"
)

// FileConfig is the shape of an optional --config YAML file: any subset of
// ConvertOptions a caller wants to pin without repeating flags on every
// invocation. Zero-valued fields are left unset by Resolve.
type FileConfig struct {
	Target         string `yaml:"target"`
	Mode           string `yaml:"mode"`
	MaxDepth       int    `yaml:"maxDepth"`
	RecursionLimit int    `yaml:"recursionLimit"`
	Polymorphism   string `yaml:"polymorphism"`
	SkipComponents bool   `yaml:"skipComponents"`
}

// LoadFile parses a YAML config file at path.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config file %s", path)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, errors.Wrapf(err, "parsing config file %s", path)
	}
	return &fc, nil
}

// Flags holds CLI flag names, letting callers customize them while keeping
// sensible defaults (magicschema's Flags/Config convention).
type Flags struct {
	Target         string
	Mode           string
	MaxDepth       string
	RecursionLimit string
	Polymorphism   string
	SkipComponents string
	ConfigFile     string
}

// Config holds CLI flag values plus their registered names.
type Config struct {
	Flags Flags

	Target         string
	Mode           string
	MaxDepth       int
	RecursionLimit int
	Polymorphism   string
	SkipComponents bool
	ConfigFile     string
}

// NewConfig returns a Config with default flag names.
func NewConfig() *Config {
	return &Config{
		Flags: Flags{
			Target:         "target",
			Mode:           "mode",
			MaxDepth:       "max-depth",
			RecursionLimit: "recursion-limit",
			Polymorphism:   "polymorphism",
			SkipComponents: "skip-components",
			ConfigFile:     "config",
		},
	}
}

// RegisterFlags adds conversion-option flags to flags, seeded from
// jsonschemallm.DefaultConvertOptions.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	defaults := jsonschemallm.DefaultConvertOptions()

	flags.StringVar(&c.Target, c.Flags.Target, string(defaults.Target),
		"target provider: openai-strict, gemini, or claude")
	flags.StringVar(&c.Mode, c.Flags.Mode, string(defaults.Mode),
		"strict or permissive")
	flags.IntVar(&c.MaxDepth, c.Flags.MaxDepth, defaults.MaxDepth,
		"maximum schema nesting depth")
	flags.IntVar(&c.RecursionLimit, c.Flags.RecursionLimit, defaults.RecursionLimit,
		"recursive type inlining depth before collapsing to an opaque string")
	flags.StringVar(&c.Polymorphism, c.Flags.Polymorphism, string(defaults.Polymorphism),
		"oneOf handling strategy (flatten is unsupported and fails the conversion, except for gemini)")
	flags.BoolVar(&c.SkipComponents, c.Flags.SkipComponents, defaults.SkipComponents,
		"skip component-splitting extraction (currently a no-op, reserved)")
	flags.StringVar(&c.ConfigFile, c.Flags.ConfigFile, "",
		"optional YAML config file layered beneath flags")
}

// Resolve layers defaults -> config file -> explicitly-set flags into a
// jsonschemallm.ConvertOptions. flagSet is the command's parsed flag set,
// used to distinguish a flag the user actually passed from one left at its
// baked-in default, so an unset flag never stomps the file layer.
func (c *Config) Resolve(flagSet *pflag.FlagSet) (jsonschemallm.ConvertOptions, error) {
	opts := jsonschemallm.DefaultConvertOptions()

	if c.ConfigFile != "" {
		fc, err := LoadFile(c.ConfigFile)
		if err != nil {
			return opts, err
		}
		if err := mergo.Merge(&opts, fileConfigOverlay(fc), mergo.WithOverride); err != nil {
			return opts, errors.Wrap(err, "merging config file")
		}
	}

	if err := mergo.Merge(&opts, c.flagOverlay(flagSet), mergo.WithOverride); err != nil {
		return opts, errors.Wrap(err, "merging flags")
	}

	return opts, nil
}

// fileConfigOverlay turns a FileConfig into a sparse ConvertOptions whose
// zero fields mergo.Merge (with override) will skip, leaving the
// surrounding layer untouched.
func fileConfigOverlay(fc *FileConfig) jsonschemallm.ConvertOptions {
	var out jsonschemallm.ConvertOptions
	if fc.Target != "" {
		out.Target = jsonschemallm.Target(fc.Target)
	}
	if fc.Mode != "" {
		out.Mode = jsonschemallm.Mode(fc.Mode)
	}
	out.MaxDepth = fc.MaxDepth
	out.RecursionLimit = fc.RecursionLimit
	if fc.Polymorphism != "" {
		out.Polymorphism = jsonschemallm.PolymorphismStrategy(fc.Polymorphism)
	}
	out.SkipComponents = fc.SkipComponents
	return out
}

// flagOverlay returns a sparse ConvertOptions containing only the fields
// whose flag was explicitly set on the command line.
func (c *Config) flagOverlay(flagSet *pflag.FlagSet) jsonschemallm.ConvertOptions {
	var out jsonschemallm.ConvertOptions
	if flagSet.Changed(c.Flags.Target) {
		out.Target = jsonschemallm.Target(c.Target)
	}
	if flagSet.Changed(c.Flags.Mode) {
		out.Mode = jsonschemallm.Mode(c.Mode)
	}
	if flagSet.Changed(c.Flags.MaxDepth) {
		out.MaxDepth = c.MaxDepth
	}
	if flagSet.Changed(c.Flags.RecursionLimit) {
		out.RecursionLimit = c.RecursionLimit
	}
	if flagSet.Changed(c.Flags.Polymorphism) {
		out.Polymorphism = jsonschemallm.PolymorphismStrategy(c.Polymorphism)
	}
	if flagSet.Changed(c.Flags.SkipComponents) {
		out.SkipComponents = c.SkipComponents
	}
	return out
}
