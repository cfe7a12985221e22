package filecheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpc/internal/filecheck"
)

func TestCheckCatRoundTripAcceptsMatchingPrintedOutput(t *testing.T) {
	expected := `function %add_two(i32, i32) -> i32 {
block0(v0: i32, v1: i32):
    v2 = iadd v0, v1
    return v2
}`
	err := filecheck.CheckCatRoundTrip(expected, expected)
	require.NoError(t, err)
}

func TestCheckCatRoundTripRejectsMismatch(t *testing.T) {
	source := `function %add_two(i32, i32) -> i32 {
block0(v0: i32, v1: i32):
    v2 = iadd v0, v1
    return v2
}`
	err := filecheck.CheckCatRoundTrip(source, "function %wrong() {\nblock0:\n    return\n}")
	assert.Error(t, err)
}

func TestCheckCatIdempotentOnLoopingFunction(t *testing.T) {
	err := filecheck.CheckCatIdempotent(loopySource)
	require.NoError(t, err)
}

func TestCheckFixedPointIdempotentOnFloatFunction(t *testing.T) {
	src := `function %scale(f32) -> f32 {
block0(v0: f32):
    v1 = fconst 2.5
    v2 = fcmp lt v0, v1
    return v0
}`
	err := filecheck.CheckFixedPointIdempotent(src)
	require.NoError(t, err)
}
