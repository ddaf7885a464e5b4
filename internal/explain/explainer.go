package explain

import (
    "sort"
    "strconv"
    "strings"

    "github.com/Jerome3590/phts/internal/rules"
)

// Explainer computes abductive explanations against a frozen rule set. The
// rule set and registry must not be mutated while the explainer is in use;
// rebuild both and construct a new Explainer after reloading a model.
type Explainer struct {
    rs    *rules.RuleSet
    memo  *lruCache
    limit int
}

type Option func(*Explainer)

func WithCacheSize(n int) Option {
    return func(e *Explainer) { e.memo = newLRUCache(n) }
}

// WithEnumerationLimit bounds how many explanations Enumerate returns per
// instance. Zero means the full family.
func WithEnumerationLimit(n int) Option {
    return func(e *Explainer) { e.limit = n }
}

func New(rs *rules.RuleSet, opts ...Option) *Explainer {
    e := &Explainer{rs: rs, memo: newLRUCache(128)}
    for _, o := range opts { o(e) }
    return e
}

func (e *Explainer) RuleSet() *rules.RuleSet { return e.rs }

// MatchingRules returns the indices of rules voting for target whose whole
// clause holds on x.
func (e *Explainer) MatchingRules(x []float64, target int) ([]int, error) {
    if len(x) != e.rs.NumFeatures {
        return nil, &InputShapeError{What: "instance width", Want: e.rs.NumFeatures, Got: len(x)}
    }
    var out []int
    for i, r := range e.rs.Rules {
        if r.Label != target { continue }
        ok := true
        for _, lit := range r.Clause {
            c, err := e.rs.Cond(lit)
            if err != nil { return nil, err }
            if !c.Holds(x) { ok = false; break }
        }
        if ok { out = append(out, i) }
    }
    return out, nil
}

// Explain returns the first explanation in the family's canonical order:
// an inclusion-minimal literal set of the smallest size. It enumerates the
// family once and serves repeats from the memo, so the answer never changes
// between calls. An empty result means no rule of that class is satisfied
// by x: the prediction is not explainable under the path-rule model and
// callers must count it against coverage rather than treat it as success.
func (e *Explainer) Explain(x []float64, target int) ([]int, error) {
    matched, err := e.MatchingRules(x, target)
    if err != nil { return nil, err }
    if len(matched) == 0 { return nil, nil }
    fams := e.hitSets(matched, 0)
    if len(fams) == 0 { return nil, nil }
    return fams[0], nil
}

// Enumerate returns the family of inclusion-minimal explanations for
// (x, target), each sorted ascending, the family ordered by size then
// literal order so repeated runs compare equal.
func (e *Explainer) Enumerate(x []float64, target int) ([][]int, error) {
    matched, err := e.MatchingRules(x, target)
    if err != nil { return nil, err }
    if len(matched) == 0 { return nil, nil }
    return e.hitSets(matched, 0), nil
}

// hitSets memoizes full enumerations only; bounded lookups reuse a cached
// full family when one exists but never poison the cache with a prefix.
func (e *Explainer) hitSets(matched []int, limit int) [][]int {
    key := canonicalKey(matched)
    if fams, ok := e.memo.get(key); ok {
        if limit > 0 && len(fams) > limit { return fams[:limit] }
        return fams
    }
    eff := limit
    if eff <= 0 { eff = e.limit }
    clauses := make([][]int, 0, len(matched))
    for _, ri := range matched {
        clauses = append(clauses, e.rs.Rules[ri].Clause)
    }
    fams := minimalHittingSets(clauses, eff)
    if eff <= 0 { e.memo.add(key, fams) }
    return fams
}

func (e *Explainer) Render(lits []int) ([]string, error) {
    out := make([]string, len(lits))
    for i, l := range lits {
        s, err := e.rs.Render(l)
        if err != nil { return nil, err }
        out[i] = s
    }
    return out, nil
}

func canonicalKey(idx []int) string {
    s := append([]int(nil), idx...)
    sort.Ints(s)
    var b strings.Builder
    for i, v := range s {
        if i > 0 { b.WriteByte(',') }
        b.WriteString(strconv.Itoa(v))
    }
    return b.String()
}
