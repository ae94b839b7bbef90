package cliconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jsonschemallm "github.com/dotslashderek/jsonschema-llm"
)

func TestResolve_DefaultsOnly(t *testing.T) {
	c := NewConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.RegisterFlags(fs)
	require.NoError(t, fs.Parse(nil))

	opts, err := c.Resolve(fs)
	require.NoError(t, err)
	assert.Equal(t, jsonschemallm.DefaultConvertOptions(), opts)
}

func TestResolve_ConfigFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target: claude\nmaxDepth: 10\n"), 0o644))

	c := NewConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path}))

	opts, err := c.Resolve(fs)
	require.NoError(t, err)
	assert.Equal(t, jsonschemallm.TargetClaude, opts.Target)
	assert.Equal(t, 10, opts.MaxDepth)
	// Untouched fields keep their library default.
	assert.Equal(t, jsonschemallm.ModeStrict, opts.Mode)
}

func TestResolve_FlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("target: claude\n"), 0o644))

	c := NewConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path, "--target", "gemini"}))

	opts, err := c.Resolve(fs)
	require.NoError(t, err)
	assert.Equal(t, jsonschemallm.TargetGemini, opts.Target)
}

func TestResolve_UnsetFlagDoesNotStompConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recursionLimit: 7\n"), 0o644))

	c := NewConfig()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--config", path}))

	opts, err := c.Resolve(fs)
	require.NoError(t, err)
	assert.Equal(t, 7, opts.RecursionLimit, "recursion-limit flag was never set, config file value should survive")
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	assert.Error(t, err)
}
