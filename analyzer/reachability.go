package analyzer

import (
	"sort"

	"github.com/coroutil/resumablegen/model"
)

// computeReachability fills in Yield.Reachable for every yield in the
// lambda: the set of yield ids reachable from it through forward control
// flow, per spec §3/§4.3. A yield id y' is reachable from y exactly when
// y lies on y's own prior-chain walk from y' — i.e. y was already
// constructed by the time execution reaches y'. This is the same
// ancestor→descendant relation spec §4.3 describes building incrementally
// as yields are added; computing it in one pass over the finished yield
// list is equivalent and simpler to get right.
func computeReachability(lam *model.Lambda) {
	sets := map[int]map[int]bool{}
	for _, y := range lam.Yields {
		for _, ancestor := range lam.PriorChain(y.ID) {
			if sets[ancestor] == nil {
				sets[ancestor] = map[int]bool{}
			}
			sets[ancestor][y.ID] = true
		}
	}
	for _, y := range lam.Yields {
		ids := make([]int, 0, len(sets[y.ID]))
		for id := range sets[y.ID] {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		y.Reachable = ids
	}
}
