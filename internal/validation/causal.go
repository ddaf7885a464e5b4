package validation

import (
    "gonum.org/v1/gonum/stat"

    "github.com/Jerome3590/phts/internal/ensemble"
)

type CausalResult struct {
    Feature        string  `json:"feature"`
    Binary         bool    `json:"binary"`
    Flips          int     `json:"prediction_flips"`
    Instances      int     `json:"instances"`
    Responsibility float64 `json:"causal_responsibility"`
}

// CausalFlip perturbs one feature at a time and re-predicts: binary columns
// toggle between 0 and 1, numeric columns move one standard deviation away
// from zero in the direction of the value's sign (zero values stay put).
// The flip rate is a supplementary diagnostic; no correlation-based
// adjustment is applied to it.
func CausalFlip(m *ensemble.Model, X [][]float64) []CausalResult {
    if len(X) == 0 { return nil }
    base := m.PredictBatch(X)
    out := make([]CausalResult, 0, m.NumFeatures)
    for f := 0; f < m.NumFeatures; f++ {
        col := make([]float64, len(X))
        for i := range X { col[i] = X[i][f] }
        binary := isBinary(col)
        std := stat.PopStdDev(col, nil)
        flips := 0
        for i := range X {
            row := append([]float64(nil), X[i]...)
            v := row[f]
            if binary {
                row[f] = 1 - v
            } else {
                row[f] = v + sign(v)*std
            }
            if m.Predict(row) != base[i] { flips++ }
        }
        out = append(out, CausalResult{
            Feature:        m.FeatureName(f),
            Binary:         binary,
            Flips:          flips,
            Instances:      len(X),
            Responsibility: float64(flips) / float64(len(X)),
        })
    }
    return out
}

func isBinary(col []float64) bool {
    for _, v := range col {
        if v != 0 && v != 1 { return false }
    }
    return true
}

func sign(v float64) float64 {
    switch {
    case v > 0:
        return 1
    case v < 0:
        return -1
    }
    return 0
}
