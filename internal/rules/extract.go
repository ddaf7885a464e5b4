package rules

import (
    "github.com/Jerome3590/phts/internal/ensemble"
)

// Extract turns every root-to-leaf path of the model into one Rule and
// interns each path condition in the registry. The registry is reset first,
// so literals issued by a previous extraction become stale. A leaf votes
// class 1 when its value is positive, class 0 otherwise.
func Extract(m *ensemble.Model, reg *Registry) (*RuleSet, error) {
    reg.Reset(m.FeatureNames())
    rs := &RuleSet{Registry: reg, Generation: reg.Generation(), NumFeatures: m.NumFeatures}
    for ti, t := range m.Trees {
        if t.Root == nil {
            return nil, &ensemble.MalformedEnsembleError{Tree: ti, Node: "root", Reason: "tree without root"}
        }
        if err := walk(t.Root, ti, "root", nil, rs, reg); err != nil { return nil, err }
    }
    return rs, nil
}

func walk(n *ensemble.Node, tree int, path string, clause []int, rs *RuleSet, reg *Registry) error {
    if n.IsLeaf {
        label := 0
        if n.Value > 0 { label = 1 }
        rs.Rules = append(rs.Rules, Rule{Clause: append([]int(nil), clause...), Label: label, Tree: tree})
        return nil
    }
    if n.Left == nil || n.Right == nil {
        return &ensemble.MalformedEnsembleError{Tree: tree, Node: path, Reason: "split node missing a child"}
    }
    kind := n.Kind
    if kind == ensemble.SplitCounter { kind = ensemble.SplitNumeric }
    left := reg.Intern(Condition{Feature: n.Feature, Kind: kind, Threshold: n.Threshold, Direction: DirLeft})
    right := reg.Intern(Condition{Feature: n.Feature, Kind: kind, Threshold: n.Threshold, Direction: DirRight})
    if err := walk(n.Left, tree, path+".left", append(clause, left), rs, reg); err != nil { return err }
    return walk(n.Right, tree, path+".right", append(clause, right), rs, reg)
}
