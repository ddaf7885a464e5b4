package rules

import (
    "github.com/Jerome3590/phts/internal/ensemble"
)

// Direction 0 keeps the left branch of a split (<= for numeric and counter
// splits, = for categorical ones); direction 1 keeps the right branch.
const (
    DirLeft  = 0
    DirRight = 1
)

type Condition struct {
    Feature   int
    Kind      ensemble.SplitKind
    Threshold float64
    Direction int
}

func (c Condition) Holds(x []float64) bool {
    v := x[c.Feature]
    if c.Kind == ensemble.SplitCategorical {
        if c.Direction == DirLeft { return v == c.Threshold }
        return v != c.Threshold
    }
    if c.Direction == DirLeft { return v <= c.Threshold }
    return v > c.Threshold
}
