package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertCmd_WritesSchemaAndCodec(t *testing.T) {
	dir := t.TempDir()
	schemaIn := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(schemaIn, []byte(`{
		"type": "object",
		"properties": {"name": {"type": "string"}},
		"required": ["name"]
	}`), 0o644))

	schemaOut := filepath.Join(dir, "out.json")
	codecOut := filepath.Join(dir, "codec.json")

	log := logrus.New()
	log.SetOutput(os.Stderr)
	cmd := newConvertCmd(log)
	cmd.SetArgs([]string{
		schemaIn,
		"--schema-out", schemaOut,
		"--codec-out", codecOut,
	})
	require.NoError(t, cmd.Execute())

	schemaBytes, err := os.ReadFile(schemaOut)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(schemaBytes, &out))
	assert.Equal(t, false, out["additionalProperties"])

	codecBytes, err := os.ReadFile(codecOut)
	require.NoError(t, err)
	var codec map[string]any
	require.NoError(t, json.Unmarshal(codecBytes, &codec))
	assert.Contains(t, codec, "transforms")
}

func TestConvertCmd_TargetFlagSelectsProvider(t *testing.T) {
	dir := t.TempDir()
	schemaIn := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(schemaIn, []byte(`{"type": "string", "pattern": "^x"}`), 0o644))

	schemaOut := filepath.Join(dir, "out.json")

	log := logrus.New()
	log.SetOutput(os.Stderr)
	cmd := newConvertCmd(log)
	cmd.SetArgs([]string{
		schemaIn,
		"--target", "claude",
		"--schema-out", schemaOut,
		"--codec-out", filepath.Join(dir, "codec.json"),
	})
	require.NoError(t, cmd.Execute())

	schemaBytes, err := os.ReadFile(schemaOut)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(schemaBytes, &out))
	_, hasPattern := out["pattern"]
	assert.False(t, hasPattern, "claude target should have dropped pattern")
}

func TestLintSchema(t *testing.T) {
	assert.NoError(t, lintSchema(map[string]any{"type": "object"}))
}
