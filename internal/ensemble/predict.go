package ensemble

import "math"

func sigmoid(z float64) float64 { return 1.0 / (1.0 + math.Exp(-z)) }

func branchLeft(n *Node, x []float64) bool {
    v := x[n.Feature]
    if n.Kind == SplitCategorical { return v == n.Threshold }
    return v <= n.Threshold
}

func (m *Model) Margin(x []float64) float64 {
    sum := 0.0
    for _, t := range m.Trees {
        n := t.Root
        for n != nil && !n.IsLeaf {
            if branchLeft(n, x) { n = n.Left } else { n = n.Right }
        }
        if n != nil { sum += n.Value }
    }
    return m.Scale*sum + m.Bias
}

func (m *Model) Proba(x []float64) float64 { return sigmoid(m.Margin(x)) }

func (m *Model) Predict(x []float64) int {
    if m.Margin(x) > 0 { return 1 }
    return 0
}

func (m *Model) PredictBatch(X [][]float64) []int {
    out := make([]int, len(X))
    for i := range X { out[i] = m.Predict(X[i]) }
    return out
}

// SplitFrequency is the model's own importance measure: the share of split
// nodes referencing each feature. Frequencies sum to 1 when the model has
// at least one split.
func (m *Model) SplitFrequency() map[string]float64 {
    counts := map[int]int{}
    total := 0
    var walk func(n *Node)
    walk = func(n *Node) {
        if n == nil || n.IsLeaf { return }
        counts[n.Feature]++
        total++
        walk(n.Left)
        walk(n.Right)
    }
    for _, t := range m.Trees { walk(t.Root) }
    out := make(map[string]float64, len(counts))
    if total == 0 { return out }
    for idx, c := range counts {
        out[m.FeatureName(idx)] = float64(c) / float64(total)
    }
    return out
}
