package validation

import (
    "sort"

    "gonum.org/v1/gonum/stat"

    "github.com/Jerome3590/phts/internal/attribution"
    "github.com/Jerome3590/phts/internal/ensemble"
)

type ImportanceComparison struct {
    Feature            string  `json:"feature"`
    Native             float64 `json:"native_importance"`
    RelativeImportance float64 `json:"relative_importance"`
}

type ImportanceReport struct {
    Correlation float64                `json:"correlation"`
    Rows        []ImportanceComparison `json:"rows"`
}

// CompareImportance correlates the model's split-frequency importance with
// the mean AXP relative importance across class tables, over the features
// present in both.
func CompareImportance(m *ensemble.Model, tables map[int]*attribution.Table) *ImportanceReport {
    native := m.SplitFrequency()
    sums := map[string]float64{}
    counts := map[string]int{}
    for _, t := range tables {
        for _, row := range t.Rows {
            sums[row.Feature] += row.RelativeImportance
            counts[row.Feature]++
        }
    }
    var feats []string
    for f := range native {
        if counts[f] > 0 { feats = append(feats, f) }
    }
    sort.Strings(feats)

    rep := &ImportanceReport{}
    var xs, ys []float64
    for _, f := range feats {
        rel := sums[f] / float64(counts[f])
        rep.Rows = append(rep.Rows, ImportanceComparison{Feature: f, Native: native[f], RelativeImportance: rel})
        xs = append(xs, native[f])
        ys = append(ys, rel)
    }
    if len(xs) > 1 { rep.Correlation = stat.Correlation(xs, ys, nil) }
    return rep
}
