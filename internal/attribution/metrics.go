package attribution

import "sort"

type FeatureMetrics struct {
    Feature            string  `json:"feature"`
    Support            int     `json:"support"`
    Coverage           int     `json:"coverage"`
    CoverageRatio      float64 `json:"coverage_ratio"`
    Specificity        float64 `json:"specificity"`
    EssentialityRatio  float64 `json:"essentiality_ratio"`
    Contrastive        int     `json:"contrastive_instances"`
    Stability          float64 `json:"stability"`
    AvgPosition        float64 `json:"avg_position"`
    PositionStd        float64 `json:"position_std"`
    RelativeImportance float64 `json:"relative_importance"`
}

// Table holds one aggregation pass. Instances is the denominator used by
// coverage_ratio and essentiality_ratio: the number of instances with at
// least one explanation, not the full dataset size.
type Table struct {
    Rows      []FeatureMetrics `json:"rows"`
    Instances int              `json:"explained_instances"`
}

func (t *Table) Row(feature string) (FeatureMetrics, bool) {
    for _, r := range t.Rows {
        if r.Feature == feature { return r, true }
    }
    return FeatureMetrics{}, false
}

func (t *Table) Support(feature string) int {
    r, ok := t.Row(feature)
    if !ok { return 0 }
    return r.Support
}

func (t *Table) TopK(k int) []FeatureMetrics {
    if k <= 0 || k > len(t.Rows) { k = len(t.Rows) }
    out := make([]FeatureMetrics, k)
    copy(out, t.Rows[:k])
    return out
}

func sortRows(rows []FeatureMetrics) {
    sort.Slice(rows, func(i, j int) bool {
        if rows[i].Support != rows[j].Support { return rows[i].Support > rows[j].Support }
        return rows[i].Feature < rows[j].Feature
    })
}
