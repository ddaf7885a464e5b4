package validation

import (
    "sort"

    "gonum.org/v1/gonum/stat"

    "github.com/Jerome3590/phts/internal/attribution"
    "github.com/Jerome3590/phts/internal/explain"
)

type ClassReport struct {
    Class       int      `json:"class"`
    Total       int      `json:"total_instances"`
    Explained   int      `json:"explained_instances"`
    Unexplained int      `json:"unexplained_instances"`
    Failed      int      `json:"failed_instances"`
    Coverage    float64  `json:"coverage"`
    BelowMin    bool     `json:"below_min_coverage"`
    Unstable    []string `json:"unstable_features,omitempty"`
    Reliability float64  `json:"reliability"`
}

type Report struct {
    MinCoverage          float64       `json:"min_coverage"`
    InstabilityThreshold float64       `json:"instability_threshold"`
    Classes              []ClassReport `json:"classes"`
}

// Validate combines per-class explanation coverage (explained instances over
// all instances of the class, failed rows included in the denominator),
// instability flags for features whose position spread exceeds the
// threshold, and a reliability score: the mean essentiality ratio over the
// class's features, whose own denominator is the explained instance count.
func Validate(batch *explain.BatchResult, tables map[int]*attribution.Table, cfg explain.AnalysisConfig) *Report {
    rep := &Report{MinCoverage: cfg.MinCoverage, InstabilityThreshold: cfg.InstabilityThreshold}
    classes := make([]int, 0, len(batch.Classes))
    for c := range batch.Classes { classes = append(classes, c) }
    sort.Ints(classes)
    for _, c := range classes {
        cc := batch.Classes[c]
        cr := ClassReport{Class: c, Total: cc.Total, Explained: cc.Explained, Unexplained: cc.Unexplained, Failed: cc.Failed}
        if cc.Total > 0 { cr.Coverage = float64(cc.Explained) / float64(cc.Total) }
        cr.BelowMin = cr.Coverage < cfg.MinCoverage
        if t := tables[c]; t != nil {
            var ess []float64
            for _, row := range t.Rows {
                ess = append(ess, row.EssentialityRatio)
                if row.Stability > cfg.InstabilityThreshold {
                    cr.Unstable = append(cr.Unstable, row.Feature)
                }
            }
            if len(ess) > 0 { cr.Reliability = stat.Mean(ess, nil) }
        }
        rep.Classes = append(rep.Classes, cr)
    }
    return rep
}
