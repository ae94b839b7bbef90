package jsonschemallm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConvertOptions(t *testing.T) {
	opts := DefaultConvertOptions()

	assert.Equal(t, TargetOpenAIStrict, opts.Target)
	assert.Equal(t, ModeStrict, opts.Mode)
	assert.Equal(t, 50, opts.MaxDepth)
	assert.Equal(t, 3, opts.RecursionLimit)
	assert.Equal(t, PolymorphismAnyOf, opts.Polymorphism)
	assert.False(t, opts.SkipComponents)
}

func TestDefaultConvertOptions_ReturnsFreshValueEachCall(t *testing.T) {
	a := DefaultConvertOptions()
	b := DefaultConvertOptions()
	a.MaxDepth = 999

	assert.NotEqual(t, a.MaxDepth, b.MaxDepth, "mutating one default must not affect another caller's copy")
}
