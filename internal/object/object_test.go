package object

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestEqualAcrossVariants(t *testing.T) {
	require.True(t, Equal(NewInt64(5), NewInt64(5)))
	require.False(t, Equal(NewInt64(5), NewDouble(5)))
	require.False(t, Equal(NewString("a"), NewError("a")))
}

func TestEqualArraysRecursive(t *testing.T) {
	a := NewArray([]Object{NewInt64(1), NewString("x")})
	b := NewArray([]Object{NewInt64(1), NewString("x")})
	c := NewArray([]Object{NewInt64(1), NewString("y")})
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, c))
}

func TestCloneDetachesArray(t *testing.T) {
	inner := []Object{NewInt64(1)}
	orig := NewArray(inner)
	clone := orig.Clone()
	inner[0] = NewInt64(99)
	require.Equal(t, int64(1), clone.Elements()[0].Int64())
}

func TestCompareVariantOrder(t *testing.T) {
	require.Less(t, Compare(NewNull(), NewBoolean(false)), 0)
	require.Less(t, Compare(NewBoolean(true), NewInt64(0)), 0)
	require.Less(t, Compare(NewInt64(0), NewDouble(0)), 0)
}

func TestStringDisplay(t *testing.T) {
	if diff := cmp.Diff("null", NewNull().String()); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "42", NewInt64(42).String())
	require.Equal(t, "(error) boom", NewError("boom").String())
	require.Equal(t, "#t", NewBoolean(true).String())
	require.Equal(t, "#f", NewBoolean(false).String())
}
