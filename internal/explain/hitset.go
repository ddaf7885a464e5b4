package explain

import (
    "sort"

    "github.com/crillab/gophersat/solver"
)

// minimalHittingSets enumerates the inclusion-minimal hitting sets of the
// given clauses, each returned sorted ascending, the family sorted by size
// then literal order. Literals are mapped onto dense solver variables; each
// satisfying model is shrunk to inclusion-minimality, emitted, then blocked
// so no superset of it can satisfy the instance again. Every shrunk model is
// a set not yet emitted, so the loop terminates exactly when the family is
// exhausted. Empty clauses constrain nothing and are skipped. limit > 0
// stops the enumeration early.
func minimalHittingSets(clauses [][]int, limit int) [][]int {
    kept := make([][]int, 0, len(clauses))
    for _, c := range clauses {
        if len(c) > 0 { kept = append(kept, c) }
    }
    if len(kept) == 0 { return nil }

    var lits []int
    seen := map[int]bool{}
    for _, c := range kept {
        for _, l := range c {
            if !seen[l] { seen[l] = true; lits = append(lits, l) }
        }
    }
    sort.Ints(lits)
    varOf := make(map[int]int, len(lits))
    for i, l := range lits { varOf[l] = i + 1 }

    cnf := make([][]int, 0, len(kept)+8)
    for _, c := range kept {
        cl := make([]int, len(c))
        for i, l := range c { cl[i] = varOf[l] }
        cnf = append(cnf, cl)
    }

    var out [][]int
    for limit <= 0 || len(out) < limit {
        s := solver.New(solver.ParseSlice(cnf))
        if s.Solve() != solver.Sat { break }
        model := s.Model()
        set := make(map[int]bool, len(lits))
        for i, l := range lits {
            if i < len(model) && model[i] { set[l] = true }
        }
        // Shrink in ascending literal order while every clause stays hit.
        for _, l := range lits {
            if !set[l] { continue }
            set[l] = false
            if !hitsAll(kept, set) { set[l] = true }
        }
        hs := make([]int, 0, len(set))
        for _, l := range lits {
            if set[l] { hs = append(hs, l) }
        }
        out = append(out, hs)
        block := make([]int, len(hs))
        for i, l := range hs { block[i] = -varOf[l] }
        cnf = append(cnf, block)
    }
    sortSets(out)
    return out
}

func hitsAll(clauses [][]int, set map[int]bool) bool {
    for _, c := range clauses {
        hit := false
        for _, l := range c {
            if set[l] { hit = true; break }
        }
        if !hit { return false }
    }
    return true
}

func sortSets(xs [][]int) {
    sort.Slice(xs, func(i, j int) bool {
        a, b := xs[i], xs[j]
        if len(a) != len(b) { return len(a) < len(b) }
        for k := range a {
            if a[k] != b[k] { return a[k] < b[k] }
        }
        return false
    })
}
