package glslparse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lpc/internal/frontend/ast"
	"lpc/internal/frontend/glslparse"
)

func TestParseFunctionWithIfElse(t *testing.T) {
	prog, err := glslparse.Parse(`
func max(a int, b int) -> int {
    if (a > b) {
        return a;
    } else {
        return b;
    }
}
`)
	require.NoError(t, err)
	require.Len(t, prog.Functions, 1)
	fn := prog.Functions[0]
	assert.Equal(t, "max", fn.Name)
	assert.Equal(t, ast.TypeInt, fn.ReturnType)
	require.Len(t, fn.Body, 1)
	ifStmt, ok := fn.Body[0].(*ast.IfStmt)
	require.True(t, ok)
	require.Len(t, ifStmt.Then, 1)
	require.Len(t, ifStmt.Else, 1)
}

func TestParseWhileLoop(t *testing.T) {
	prog, err := glslparse.Parse(`
func countdown(n int) -> int {
    var i int = n;
    while (i > 0) {
        i = i - 1;
    }
    return i;
}
`)
	require.NoError(t, err)
	fn := prog.Functions[0]
	require.Len(t, fn.Body, 3)
	_, ok := fn.Body[1].(*ast.WhileStmt)
	assert.True(t, ok)
}

func TestParsePrecedenceClimbsMultiplicationBeforeAddition(t *testing.T) {
	prog, err := glslparse.Parse(`
func f() -> int {
    return 1 + 2 * 3;
}
`)
	require.NoError(t, err)
	ret := prog.Functions[0].Body[0].(*ast.ReturnStmt)
	bin := ret.Expr.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAdd, bin.Op)
	rhs := bin.Rhs.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpMul, rhs.Op)
}

func TestParseReportsSyntaxErrors(t *testing.T) {
	_, err := glslparse.Parse(`func broken( {`)
	assert.Error(t, err)
}
