package data

import (
    "math/rand"
    "sort"

    "github.com/Jerome3590/phts/internal/ensemble"
)

// Synthesize samples n instances spread around the model's split
// thresholds, so the sample reaches both sides of every split instead of
// clustering in one leaf. Features the model never splits on stay uniform
// in [0, 1). The result carries no labels; callers derive them from the
// model.
func Synthesize(m *ensemble.Model, n int, seed int64) *Dataset {
    rng := rand.New(rand.NewSource(seed))
    thresholds := splitThresholds(m)

    ds := &Dataset{Features: m.FeatureNames()}
    for i := 0; i < n; i++ {
        vec := make([]float64, m.NumFeatures)
        for f := 0; f < m.NumFeatures; f++ {
            vec[f] = sample(rng, thresholds[f])
        }
        ds.X = append(ds.X, vec)
    }
    return ds
}

func splitThresholds(m *ensemble.Model) map[int][]float64 {
    seen := map[int]map[float64]bool{}
    var walk func(n *ensemble.Node)
    walk = func(n *ensemble.Node) {
        if n == nil || n.IsLeaf { return }
        if seen[n.Feature] == nil { seen[n.Feature] = map[float64]bool{} }
        seen[n.Feature][n.Threshold] = true
        walk(n.Left)
        walk(n.Right)
    }
    for _, t := range m.Trees { walk(t.Root) }

    out := map[int][]float64{}
    for f, ts := range seen {
        vals := make([]float64, 0, len(ts))
        for v := range ts { vals = append(vals, v) }
        sort.Float64s(vals)
        out[f] = vals
    }
    return out
}

// sample picks a threshold and lands on, below or above it, stretched by
// the gap to its neighbors so values stay plausible across the range.
// Landing exactly on the threshold keeps equality splits reachable.
func sample(rng *rand.Rand, thresholds []float64) float64 {
    if len(thresholds) == 0 { return rng.Float64() }
    i := rng.Intn(len(thresholds))
    t := thresholds[i]
    step := 1.0
    if len(thresholds) > 1 {
        if i+1 < len(thresholds) {
            step = thresholds[i+1] - t
        } else {
            step = t - thresholds[i-1]
        }
    }
    off := rng.Float64() * step
    switch rng.Intn(3) {
    case 0:
        return t
    case 1:
        return t - off
    }
    return t + off
}
