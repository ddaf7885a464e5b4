package attribution

import (
    "context"

    "gonum.org/v1/gonum/stat"

    "github.com/Jerome3590/phts/internal/explain"
    "github.com/Jerome3590/phts/internal/rules"
)

// ByClass explains the whole dataset and aggregates one metrics table per
// predicted class.
func ByClass(ctx context.Context, ex *explain.Explainer, X [][]float64, labels []int, cfg explain.AnalysisConfig) (map[int]*Table, error) {
    batch, err := ex.ExplainDataset(ctx, X, labels, cfg)
    if err != nil { return nil, err }
    return TablesFor(batch, ex)
}

func TablesFor(batch *explain.BatchResult, ex *explain.Explainer) (map[int]*Table, error) {
    out := map[int]*Table{}
    for c, group := range batch.Grouped() {
        t, err := Aggregate(group, ex.RuleSet())
        if err != nil { return nil, err }
        out[c] = t
    }
    return out, nil
}

// Aggregate recomputes the per-feature metrics table from scratch over the
// given instances (normally all instances of one predicted class). Failed
// and unexplained instances contribute nothing and are excluded from the
// denominators.
//
// Support counts once per explanation containing the feature. Coverage
// counts distinct instances. Essential features of an instance are the
// intersection of the feature sets of all its explanations; contrastive
// features appear in some but not all of them. Positions are the index of
// the feature's first condition within an explanation; stability is the
// mean over instances of the per-instance position spread.
func Aggregate(instances []explain.InstanceResult, rs *rules.RuleSet) (*Table, error) {
    support := map[string]int{}
    coverage := map[string]int{}
    essential := map[string]int{}
    contrast := map[string]int{}
    lengths := map[string][]float64{}
    positions := map[string][]float64{}
    spreads := map[string][]float64{}

    explained := 0
    for _, inst := range instances {
        if !inst.Explained() { continue }
        explained++

        sets := make([]map[string]bool, len(inst.Explanations))
        union := map[string]bool{}
        for i, axp := range inst.Explanations {
            set := map[string]bool{}
            for _, lit := range axp {
                name, err := rs.FeatureOf(lit)
                if err != nil { return nil, err }
                set[name] = true
                union[name] = true
            }
            sets[i] = set
        }

        for f := range union {
            coverage[f]++
            inAll := true
            for _, s := range sets {
                if !s[f] { inAll = false; break }
            }
            if inAll {
                essential[f]++
            } else {
                contrast[f]++
            }

            var pos []float64
            for i, axp := range inst.Explanations {
                if !sets[i][f] { continue }
                support[f]++
                lengths[f] = append(lengths[f], float64(len(axp)))
                for p, lit := range axp {
                    name, err := rs.FeatureOf(lit)
                    if err != nil { return nil, err }
                    if name == f {
                        pos = append(pos, float64(p))
                        break
                    }
                }
            }
            positions[f] = append(positions[f], pos...)
            spreads[f] = append(spreads[f], popStd(pos))
        }
    }

    totalSupport := 0
    for _, s := range support { totalSupport += s }

    t := &Table{Instances: explained}
    for f, s := range support {
        row := FeatureMetrics{
            Feature:     f,
            Support:     s,
            Coverage:    coverage[f],
            Specificity: mean(lengths[f]),
            Contrastive: contrast[f],
            Stability:   mean(spreads[f]),
            AvgPosition: mean(positions[f]),
            PositionStd: popStd(positions[f]),
        }
        if explained > 0 {
            row.CoverageRatio = float64(coverage[f]) / float64(explained)
            row.EssentialityRatio = float64(essential[f]) / float64(explained)
        }
        if totalSupport > 0 {
            row.RelativeImportance = float64(s) / float64(totalSupport)
        }
        t.Rows = append(t.Rows, row)
    }
    sortRows(t.Rows)
    return t, nil
}

func mean(xs []float64) float64 {
    if len(xs) == 0 { return 0 }
    return stat.Mean(xs, nil)
}

func popStd(xs []float64) float64 {
    if len(xs) == 0 { return 0 }
    return stat.PopStdDev(xs, nil)
}
