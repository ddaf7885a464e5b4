package attribution

import (
    "fmt"
    "strings"

    "github.com/Jerome3590/phts/internal/ensemble"
    "github.com/Jerome3590/phts/internal/explain"
    "github.com/Jerome3590/phts/internal/rules"
)

// RuleStat reports how one leaf rule behaves over a dataset: how many
// instances satisfy its whole clause, the share of the dataset they make
// up, and how often the model's own prediction agrees with the rule's
// label on them.
type RuleStat struct {
    Rule       int     `json:"rule"`
    Tree       int     `json:"tree"`
    Label      int     `json:"label"`
    Size       int     `json:"size"`
    Conditions string  `json:"conditions"`
    Satisfied  int     `json:"satisfied"`
    Coverage   float64 `json:"coverage"`
    Confidence float64 `json:"confidence"`
}

// RuleStats evaluates every rule of rs against X, in rule-index order so
// rows line up with the extraction. A rule no instance satisfies keeps
// confidence 0.
func RuleStats(m *ensemble.Model, rs *rules.RuleSet, X [][]float64) ([]RuleStat, error) {
    for i, x := range X {
        if len(x) != rs.NumFeatures {
            return nil, &explain.InputShapeError{What: fmt.Sprintf("row %d width", i), Want: rs.NumFeatures, Got: len(x)}
        }
    }
    preds := m.PredictBatch(X)

    out := make([]RuleStat, 0, len(rs.Rules))
    for i, r := range rs.Rules {
        st := RuleStat{Rule: i, Tree: r.Tree, Label: r.Label, Size: len(r.Clause)}
        conds := make([]string, len(r.Clause))
        cs := make([]rules.Condition, len(r.Clause))
        for j, lit := range r.Clause {
            s, err := rs.Render(lit)
            if err != nil { return nil, err }
            conds[j] = s
            c, err := rs.Cond(lit)
            if err != nil { return nil, err }
            cs[j] = c
        }
        st.Conditions = strings.Join(conds, " AND ")

        agree := 0
        for k, x := range X {
            hold := true
            for _, c := range cs {
                if !c.Holds(x) { hold = false; break }
            }
            if !hold { continue }
            st.Satisfied++
            if preds[k] == r.Label { agree++ }
        }
        if len(X) > 0 { st.Coverage = float64(st.Satisfied) / float64(len(X)) }
        if st.Satisfied > 0 { st.Confidence = float64(agree) / float64(st.Satisfied) }
        out = append(out, st)
    }
    return out, nil
}
