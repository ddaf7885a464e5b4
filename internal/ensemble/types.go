package ensemble

import "fmt"

type SplitKind int

const (
    SplitNumeric SplitKind = iota
    SplitCategorical
    SplitCounter
)

func (k SplitKind) String() string {
    switch k {
    case SplitNumeric:
        return "numeric"
    case SplitCategorical:
        return "categorical"
    case SplitCounter:
        return "counter"
    }
    return "unknown"
}

type Node struct {
    Kind      SplitKind
    Feature   int
    Threshold float64
    Left      *Node
    Right     *Node
    IsLeaf    bool
    Value     float64
}

type Tree struct {
    Root *Node
}

type Feature struct {
    Index int
    Name  string
}

type Model struct {
    Trees       []Tree
    Features    []Feature
    NumFeatures int
    Scale       float64
    Bias        float64
    names       []string
}

func (m *Model) FeatureName(idx int) string {
    if idx >= 0 && idx < len(m.names) && m.names[idx] != "" { return m.names[idx] }
    return fmt.Sprintf("f%d", idx)
}

func (m *Model) FeatureNames() []string {
    out := make([]string, m.NumFeatures)
    for i := range out { out[i] = m.FeatureName(i) }
    return out
}

func (m *Model) FeatureIndex(name string) (int, bool) {
    for i, n := range m.names {
        if n == name { return i, true }
    }
    return 0, false
}
