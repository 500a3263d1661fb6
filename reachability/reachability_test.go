package reachability_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"github.com/coroutil/resumablegen/reachability"
)

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		full := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return dir
}

const callChainModule = `module example.com/chain

go 1.23
`

const callChainMain = `package main

func driver() {
	middle()
}

func middle() {
	leaf()
}

func leaf() {
}

func main() {
	driver()
}
`

func TestBuildCallGraphAndPropagateNothingWithoutSeeds(t *testing.T) {
	dir := writeModule(t, map[string]string{
		"go.mod":  callChainModule,
		"main.go": callChainMain,
	})

	pkgs, err := reachability.Load(dir, "example.com/chain")
	if err != nil {
		t.Skipf("go/packages load unavailable in this environment: %v", err)
	}
	require.NotEmpty(t, pkgs)

	graph, err := reachability.BuildCallGraph(pkgs)
	require.NoError(t, err)

	tainted, err := reachability.PropagateResumable(graph, pkgs[0].Fset, nil)
	require.NoError(t, err)
	assert.Empty(t, tainted)
}

func TestClassifyDirectAcceptsLocalClosures(t *testing.T) {
	site := &reachability.FuncSite{IsLocal: true}
	assert.True(t, reachability.ClassifyDirect(site))

	generic := &reachability.FuncSite{Generic: true}
	assert.True(t, reachability.ClassifyDirect(generic))

	ordinary := &reachability.FuncSite{}
	assert.False(t, reachability.ClassifyDirect(ordinary))
}
