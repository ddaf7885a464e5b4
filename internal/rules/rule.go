package rules

// Rule is one root-to-leaf path: the clause lists the interned path
// conditions in traversal order, the label is the class the leaf votes for.
type Rule struct {
    Clause []int
    Label  int
    Tree   int
}

type RuleSet struct {
    Rules       []Rule
    Registry    *Registry
    Generation  int
    NumFeatures int
}

func (rs *RuleSet) fresh() error {
    if rs.Generation != rs.Registry.Generation() {
        return &StaleRegistryError{Generation: rs.Generation, Current: rs.Registry.Generation()}
    }
    return nil
}

func (rs *RuleSet) Cond(lit int) (Condition, error) {
    if err := rs.fresh(); err != nil { return Condition{}, err }
    return rs.Registry.Resolve(lit)
}

func (rs *RuleSet) Render(lit int) (string, error) {
    if err := rs.fresh(); err != nil { return "", err }
    return rs.Registry.Render(lit)
}

func (rs *RuleSet) FeatureOf(lit int) (string, error) {
    c, err := rs.Cond(lit)
    if err != nil { return "", err }
    return rs.Registry.FeatureName(c.Feature), nil
}

func (rs *RuleSet) ByLabel(label int) []int {
    var out []int
    for i, r := range rs.Rules {
        if r.Label == label { out = append(out, i) }
    }
    return out
}
