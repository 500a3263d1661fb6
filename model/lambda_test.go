package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coroutil/resumablegen/model"
)

func TestQualifyName(t *testing.T) {
	require.Equal(t, "__s0.1.x", model.QualifyName([]int{0, 1}, "x"))
	require.Equal(t, "__s.n", model.QualifyName(nil, "n"))
}

func TestStripTypeKeyword(t *testing.T) {
	require.Equal(t, "Foo", model.StripTypeKeyword("struct Foo"))
	require.Equal(t, "Bar", model.StripTypeKeyword("class Bar"))
	require.Equal(t, "int", model.StripTypeKeyword("int"))
}

func TestPriorChainWalksToRoot(t *testing.T) {
	lam := &model.Lambda{
		Yields: []*model.Yield{
			{ID: 1, PriorID: 0},
			{ID: 2, PriorID: 1},
			{ID: 3, PriorID: 1},
		},
	}
	require.Equal(t, []int{3, 1}, lam.PriorChain(3))
	require.Equal(t, []int{2, 1}, lam.PriorChain(2))
	require.Nil(t, lam.PriorChain(0))
}

func TestCopyableConjunction(t *testing.T) {
	lam := &model.Lambda{
		Locals: []*model.Local{
			{TypeText: "int"},
			{TypeText: "noCopy"},
		},
	}
	require.False(t, lam.Copyable(func(t string) bool { return t != "noCopy" }))
	require.True(t, lam.Copyable(func(t string) bool { return true }))
}

func TestScopePath(t *testing.T) {
	root := &model.Scope{ID: 0}
	child := root.NewChild(model.ScopeBlock, nil)
	grandchild := child.NewChild(model.ScopeForBody, nil)
	require.Nil(t, root.Path())
	require.Equal(t, []int{0}, child.Path())
	require.Equal(t, []int{0, 0}, grandchild.Path())
}
