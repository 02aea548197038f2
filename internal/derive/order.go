package derive

import (
	"github.com/pkg/errors"
)

// Order returns procs sorted so that every key is provided before any
// procedure requires it, and consumed only after all procedures requiring it
// have run. Procedures without a mutual constraint keep their input order.
func Order(procs []Procedure) ([]Procedure, error) {
	n := len(procs)
	producer := make(map[string]int)
	for i, p := range procs {
		for _, k := range p.Provides() {
			if j, dup := producer[k]; dup {
				return nil, errors.WithStack(&ConflictError{Key: k, First: procs[j].Name(), Second: p.Name()})
			}
			producer[k] = i
		}
	}

	readers := make(map[string][]int)
	for i, p := range procs {
		for _, k := range p.Requires() {
			readers[k] = append(readers[k], i)
		}
	}

	succ := make([][]int, n)
	indeg := make([]int, n)
	seen := make(map[[2]int]bool)
	edge := func(from, to int) {
		if from == to || seen[[2]int{from, to}] {
			return
		}
		seen[[2]int{from, to}] = true
		succ[from] = append(succ[from], to)
		indeg[to]++
	}

	for i, p := range procs {
		for _, k := range p.Requires() {
			if j, ok := producer[k]; ok {
				edge(j, i)
			}
		}
		for _, k := range p.Consumes() {
			if j, ok := producer[k]; ok {
				edge(j, i)
			}
			for _, r := range readers[k] {
				edge(r, i)
			}
		}
	}

	done := make([]bool, n)
	sorted := make([]Procedure, 0, n)
	for len(sorted) < n {
		next := -1
		for i := 0; i < n; i++ {
			if !done[i] && indeg[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			var names []string
			for i := 0; i < n; i++ {
				if !done[i] {
					names = append(names, procs[i].Name())
				}
			}
			return nil, errors.WithStack(&CyclicDependencyError{Procedures: names})
		}
		done[next] = true
		sorted = append(sorted, procs[next])
		for _, s := range succ[next] {
			indeg[s]--
		}
	}
	return sorted, nil
}
