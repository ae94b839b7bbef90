package jsonschemallm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstraintsPass_DropsUniversalKeywordsForAllTargets(t *testing.T) {
	for _, target := range []Target{TargetOpenAIStrict, TargetGemini, TargetClaude} {
		codec := NewCodec()
		p := newConstraintsPass(ConvertOptions{Target: target, MaxDepth: 10}, codec)

		schema := map[string]any{"type": "string", "format": "email", "uniqueItems": true}
		out, err := p.run(schema)
		require.NoError(t, err)

		om := out.(map[string]any)
		_, hasFormat := om["format"]
		_, hasUnique := om["uniqueItems"]
		assert.False(t, hasFormat, "format must drop for %s", target)
		assert.False(t, hasUnique, "uniqueItems must drop for %s", target)
		assert.NotEmpty(t, codec.DroppedConstraints)
	}
}

func TestConstraintsPass_BoundsSurviveForGeminiOnly(t *testing.T) {
	codec := NewCodec()
	p := newConstraintsPass(ConvertOptions{Target: TargetGemini, MaxDepth: 10}, codec)

	out, err := p.run(map[string]any{"type": "string", "minLength": 1, "maxLength": 10})
	require.NoError(t, err)

	om := out.(map[string]any)
	assert.Equal(t, 1, om["minLength"])
	assert.Equal(t, 10, om["maxLength"])
	assert.Empty(t, codec.DroppedConstraints)
}

func TestConstraintsPass_BoundsDroppedForOpenAIStrictAndClaude(t *testing.T) {
	for _, target := range []Target{TargetOpenAIStrict, TargetClaude} {
		codec := NewCodec()
		p := newConstraintsPass(ConvertOptions{Target: target, MaxDepth: 10}, codec)

		out, err := p.run(map[string]any{"type": "string", "minLength": 1, "maxLength": 10})
		require.NoError(t, err)

		om := out.(map[string]any)
		_, hasMin := om["minLength"]
		_, hasMax := om["maxLength"]
		assert.False(t, hasMin, "minLength must drop for %s", target)
		assert.False(t, hasMax, "maxLength must drop for %s", target)
	}
}

func TestConstraintsPass_ClaudeAlsoDropsPattern(t *testing.T) {
	codec := NewCodec()
	p := newConstraintsPass(ConvertOptions{Target: TargetClaude, MaxDepth: 10}, codec)

	out, err := p.run(map[string]any{"type": "string", "pattern": "^[a-z]+$"})
	require.NoError(t, err)

	om := out.(map[string]any)
	_, hasPattern := om["pattern"]
	assert.False(t, hasPattern)
}

func TestConstraintsPass_PatternSurvivesForOpenAIStrictAndGemini(t *testing.T) {
	for _, target := range []Target{TargetOpenAIStrict, TargetGemini} {
		codec := NewCodec()
		p := newConstraintsPass(ConvertOptions{Target: target, MaxDepth: 10}, codec)

		out, err := p.run(map[string]any{"type": "string", "pattern": "^[a-z]+$"})
		require.NoError(t, err)

		om := out.(map[string]any)
		assert.Equal(t, "^[a-z]+$", om["pattern"])
	}
}

func TestConstraintsPass_ConstRewrittenToEnumExceptGemini(t *testing.T) {
	codec := NewCodec()
	p := newConstraintsPass(ConvertOptions{Target: TargetOpenAIStrict, MaxDepth: 10}, codec)

	out, err := p.run(map[string]any{"type": "string", "const": "fixed"})
	require.NoError(t, err)

	om := out.(map[string]any)
	_, hasConst := om["const"]
	assert.False(t, hasConst)
	assert.Equal(t, []any{"fixed"}, om["enum"])
}

func TestConstraintsPass_ConstSurvivesForGemini(t *testing.T) {
	codec := NewCodec()
	p := newConstraintsPass(ConvertOptions{Target: TargetGemini, MaxDepth: 10}, codec)

	out, err := p.run(map[string]any{"type": "string", "const": "fixed"})
	require.NoError(t, err)

	om := out.(map[string]any)
	assert.Equal(t, "fixed", om["const"])
}

func TestConstraintsPass_EnumDefaultMovedFirst(t *testing.T) {
	codec := NewCodec()
	p := newConstraintsPass(ConvertOptions{Target: TargetGemini, MaxDepth: 10}, codec)

	out, err := p.run(map[string]any{
		"type":    "string",
		"enum":    []any{"a", "b", "c"},
		"default": "c",
	})
	require.NoError(t, err)

	om := out.(map[string]any)
	assert.Equal(t, []any{"c", "a", "b"}, om["enum"])
}

func TestConstraintsPass_EnumUnchangedWhenDefaultAlreadyFirst(t *testing.T) {
	codec := NewCodec()
	p := newConstraintsPass(ConvertOptions{Target: TargetGemini, MaxDepth: 10}, codec)

	out, err := p.run(map[string]any{
		"type":    "string",
		"enum":    []any{"a", "b"},
		"default": "a",
	})
	require.NoError(t, err)

	om := out.(map[string]any)
	assert.Equal(t, []any{"a", "b"}, om["enum"])
}

func TestConstraintsPass_BoolSchemaIsNoop(t *testing.T) {
	codec := NewCodec()
	p := newConstraintsPass(ConvertOptions{Target: TargetOpenAIStrict, MaxDepth: 10}, codec)

	out, err := p.run(false)
	require.NoError(t, err)
	assert.Equal(t, false, out)
}

func TestConstraintsPass_RecursesIntoProperties(t *testing.T) {
	codec := NewCodec()
	p := newConstraintsPass(ConvertOptions{Target: TargetOpenAIStrict, MaxDepth: 10}, codec)

	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "format": "email"},
		},
	}
	out, err := p.run(schema)
	require.NoError(t, err)

	om := out.(map[string]any)
	props := om["properties"].(map[string]any)
	name := props["name"].(map[string]any)
	_, hasFormat := name["format"]
	assert.False(t, hasFormat)
	require.Len(t, codec.DroppedConstraints, 1)
	assert.Equal(t, "#/properties/name", codec.DroppedConstraints[0].Path)
}
