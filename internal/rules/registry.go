package rules

import (
    "fmt"
    "strconv"
    "strings"

    "github.com/Jerome3590/phts/internal/ensemble"
)

type StaleRegistryError struct {
    Literal    int
    Generation int
    Current    int
}

func (e *StaleRegistryError) Error() string {
    if e.Literal > 0 {
        return fmt.Sprintf("stale registry: literal %d not issued by generation %d", e.Literal, e.Current)
    }
    return fmt.Sprintf("stale registry: rule set built against generation %d, registry now at %d", e.Generation, e.Current)
}

// Registry owns the condition <-> literal mapping. Literals are assigned
// from 1 upward within one generation; Reset starts a new generation and
// invalidates everything issued before.
type Registry struct {
    generation int
    names      []string
    byCond     map[Condition]int
    conds      []Condition
}

func NewRegistry(names []string) *Registry {
    r := &Registry{}
    r.Reset(names)
    return r
}

func (r *Registry) Reset(names []string) {
    r.generation++
    r.names = append([]string(nil), names...)
    r.byCond = map[Condition]int{}
    r.conds = nil
}

func (r *Registry) Generation() int { return r.generation }

func (r *Registry) Size() int { return len(r.conds) }

func (r *Registry) Intern(c Condition) int {
    if lit, ok := r.byCond[c]; ok { return lit }
    r.conds = append(r.conds, c)
    lit := len(r.conds)
    r.byCond[c] = lit
    return lit
}

func (r *Registry) Resolve(lit int) (Condition, error) {
    if lit < 1 || lit > len(r.conds) {
        return Condition{}, &StaleRegistryError{Literal: lit, Current: r.generation}
    }
    return r.conds[lit-1], nil
}

func (r *Registry) FeatureName(idx int) string {
    if idx >= 0 && idx < len(r.names) { return r.names[idx] }
    return fmt.Sprintf("f%d", idx)
}

func (r *Registry) FeatureIndex(name string) (int, bool) {
    for i, n := range r.names {
        if n == name { return i, true }
    }
    return 0, false
}

func (r *Registry) Render(lit int) (string, error) {
    c, err := r.Resolve(lit)
    if err != nil { return "", err }
    name := r.FeatureName(c.Feature)
    thr := strconv.FormatFloat(c.Threshold, 'g', -1, 64)
    if c.Kind == ensemble.SplitCategorical {
        if c.Direction == DirLeft { return name + " = " + thr, nil }
        return name + " != " + thr, nil
    }
    if c.Direction == DirLeft { return name + " <= " + thr, nil }
    return name + " > " + thr, nil
}

// ParseCondition inverts Render. Counter splits render with the numeric
// operators, so their parsed kind comes back numeric; the (feature,
// threshold, direction) triple is preserved either way.
func (r *Registry) ParseCondition(s string) (Condition, error) {
    ops := []struct {
        sep  string
        kind ensemble.SplitKind
        dir  int
    }{
        {" <= ", ensemble.SplitNumeric, DirLeft},
        {" != ", ensemble.SplitCategorical, DirRight},
        {" > ", ensemble.SplitNumeric, DirRight},
        {" = ", ensemble.SplitCategorical, DirLeft},
    }
    for _, o := range ops {
        i := strings.Index(s, o.sep)
        if i < 0 { continue }
        name := s[:i]
        val, err := strconv.ParseFloat(s[i+len(o.sep):], 64)
        if err != nil { return Condition{}, fmt.Errorf("parsing condition %q: %w", s, err) }
        idx := -1
        for j, n := range r.names {
            if n == name { idx = j; break }
        }
        if idx < 0 { return Condition{}, fmt.Errorf("parsing condition %q: unknown feature %q", s, name) }
        return Condition{Feature: idx, Kind: o.kind, Threshold: val, Direction: o.dir}, nil
    }
    return Condition{}, fmt.Errorf("parsing condition %q: no operator found", s)
}
