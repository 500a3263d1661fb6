package resume_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coroutil/resumablegen/resume"
)

type countdownGen struct {
	n        int
	state    int
	terminal bool
}

func (g *countdownGen) IsInitial() bool  { return g.state == 0 }
func (g *countdownGen) IsTerminal() bool { return g.terminal }

func (g *countdownGen) Close() error {
	g.terminal = true
	return nil
}

func (g *countdownGen) Next() (int, bool) {
	if g.terminal {
		return 0, false
	}
	g.n--
	g.state++
	if g.n <= 1 {
		g.terminal = true
		return g.n, true
	}
	return g.n, true
}

func TestSchedulerRoundRobin(t *testing.T) {
	a := &countdownGen{n: 3}
	b := &countdownGen{n: 2}
	sched := resume.NewScheduler[int](a, b)

	var seen []int
	sched.Run(func(index int, value int) {
		seen = append(seen, value)
	})

	require.True(t, a.IsTerminal())
	require.True(t, b.IsTerminal())
	require.NotEmpty(t, seen)
}

func TestInitializerBuildsIndependentValues(t *testing.T) {
	calls := 0
	init := resume.NewInitializer(func() int {
		calls++
		return calls
	})
	require.Equal(t, 1, init.Build())
	require.Equal(t, 2, init.Build())
}
