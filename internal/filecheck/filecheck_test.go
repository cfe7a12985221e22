package filecheck_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpc/internal/filecheck"
)

const loopySource = `
function %loopy(i32) -> i32 {
block0(v0: i32):
    v1 = iconst 0
    jump block1(v1)
block1(v2: i32):
    v3 = icmp slt v2, v0
    brif v3, block2, block3
block2:
    v4 = iadd v2, v0
    jump block1(v4)
block3:
    return v2
}
`

func TestMatchChecksOrderedDirectives(t *testing.T) {
	expected := `
check: # Entry block loads the arguments
check: function %loopy(i32) -> i32
nextln: block0(v0: i32):
check: brif v3, block2,
sameln: block3
`
	err := filecheck.Match(loopySource, expected)
	require.NoError(t, err)
}

func TestMatchFailsWhenNextlnIsNotTheImmediatelyFollowingLine(t *testing.T) {
	expected := `
check: function %loopy
nextln: v1 = iconst 0
`
	err := filecheck.Match(loopySource, expected)
	assert.Error(t, err)
}

func TestMatchFailsWhenPatternNeverAppears(t *testing.T) {
	expected := `check: this text does not appear anywhere`
	err := filecheck.Match(loopySource, expected)
	assert.Error(t, err)
}

func TestMatchAcceptsCheckAliases(t *testing.T) {
	expected := `
CHECK: function %loopy
CHECK-NEXT: block0(
CHECK-SAME: i32):
`
	err := filecheck.Match(loopySource, expected)
	require.NoError(t, err)
}

func TestParseDirectivesRejectsUnrecognizedLines(t *testing.T) {
	_, err := filecheck.ParseDirectives("not a directive at all")
	assert.Error(t, err)
}
