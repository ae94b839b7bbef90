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

func TestConvertThenRehydrateCmd_RoundTrips(t *testing.T) {
	dir := t.TempDir()

	schemaIn := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(schemaIn, []byte(`{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"age": {"type": "integer"}
		},
		"required": ["name"]
	}`), 0o644))

	schemaOut := filepath.Join(dir, "restricted.json")
	codecOut := filepath.Join(dir, "codec.json")

	log := logrus.New()
	log.SetOutput(os.Stderr)

	convertCmd := newConvertCmd(log)
	convertCmd.SetArgs([]string{schemaIn, "--schema-out", schemaOut, "--codec-out", codecOut})
	require.NoError(t, convertCmd.Execute())

	llmOutput := filepath.Join(dir, "llm_output.json")
	require.NoError(t, os.WriteFile(llmOutput, []byte(`{"name": "Alice", "age": null}`), 0o644))

	dataOut := filepath.Join(dir, "rehydrated.json")
	warningsOut := filepath.Join(dir, "warnings.json")

	rehydrateCmd := newRehydrateCmd(log)
	rehydrateCmd.SetArgs([]string{
		llmOutput, codecOut, schemaIn,
		"--data-out", dataOut,
		"--warnings-out", warningsOut,
	})
	require.NoError(t, rehydrateCmd.Execute())

	dataBytes, err := os.ReadFile(dataOut)
	require.NoError(t, err)
	var data map[string]any
	require.NoError(t, json.Unmarshal(dataBytes, &data))
	assert.Equal(t, map[string]any{"name": "Alice"}, data)

	_, err = os.Stat(warningsOut)
	assert.True(t, os.IsNotExist(err), "no warnings expected for a clean round trip")
}
