package consteval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_SimpleArithmetic(t *testing.T) {
	res := Evaluate([]Decl{{Name: "N", Expr: "4 + 2 * 3"}})
	require.Empty(t, res.Unevaluated)
	assert.Equal(t, int64(10), res.Values["N"])
}

func TestEvaluate_ForwardReferenceResolvesOverMultiplePasses(t *testing.T) {
	res := Evaluate([]Decl{
		{Name: "A", Expr: "B + 1"},
		{Name: "B", Expr: "C + 1"},
		{Name: "C", Expr: "1"},
	})
	require.Empty(t, res.Unevaluated)
	assert.Equal(t, int64(1), res.Values["C"])
	assert.Equal(t, int64(2), res.Values["B"])
	assert.Equal(t, int64(3), res.Values["A"])
}

func TestEvaluate_DivisionByZeroIsSilentlyUnevaluated(t *testing.T) {
	res := Evaluate([]Decl{{Name: "N", Expr: "1 / 0"}})
	assert.Empty(t, res.Values)
	assert.True(t, res.Unevaluated["N"])
}

func TestEvaluate_UnaryNotIsIntegerValued(t *testing.T) {
	res := Evaluate([]Decl{
		{Name: "A", Expr: "!0"},
		{Name: "B", Expr: "!5"},
	})
	require.Empty(t, res.Unevaluated)
	assert.Equal(t, int64(1), res.Values["A"])
	assert.Equal(t, int64(0), res.Values["B"])
}

func TestEvaluate_UnaryPlusIsIdentity(t *testing.T) {
	res := Evaluate([]Decl{
		{Name: "A", Expr: "+5"},
		{Name: "B", Expr: "+(2 + 3)"},
	})
	require.Empty(t, res.Unevaluated)
	assert.Equal(t, int64(5), res.Values["A"])
	assert.Equal(t, int64(5), res.Values["B"])
}

func TestEvaluate_CyclicReferenceStaysUnevaluatedAfterMaxPasses(t *testing.T) {
	res := Evaluate([]Decl{
		{Name: "A", Expr: "B"},
		{Name: "B", Expr: "A"},
	})
	assert.True(t, res.Unevaluated["A"])
	assert.True(t, res.Unevaluated["B"])
}

func TestEvaluate_HexAndBinaryLiterals(t *testing.T) {
	res := Evaluate([]Decl{
		{Name: "H", Expr: "0xFF"},
		{Name: "B", Expr: "0b101"},
	})
	require.Empty(t, res.Unevaluated)
	assert.Equal(t, int64(255), res.Values["H"])
	assert.Equal(t, int64(5), res.Values["B"])
}
