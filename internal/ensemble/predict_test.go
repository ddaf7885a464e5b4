package ensemble

import (
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestMarginAndPredict(t *testing.T) {
    m, err := Decode(strings.NewReader(stumpDoc))
    require.NoError(t, err)

    assert.InDelta(t, 2.0, m.Margin([]float64{7, 12}), 1e-12)
    assert.InDelta(t, 0.0, m.Margin([]float64{2, 12}), 1e-12)
    assert.InDelta(t, -2.0, m.Margin([]float64{2, 5}), 1e-12)

    assert.Equal(t, 1, m.Predict([]float64{7, 12}))
    assert.Equal(t, 0, m.Predict([]float64{2, 12}))
    assert.Equal(t, 0, m.Predict([]float64{5, 12}), "the boundary stays on the left branch")

    assert.InDelta(t, 0.8807970779778823, m.Proba([]float64{7, 12}), 1e-12)
    assert.InDelta(t, 0.5, m.Proba([]float64{2, 12}), 1e-12)

    got := m.PredictBatch([][]float64{{7, 12}, {2, 12}, {2, 5}})
    assert.Equal(t, []int{1, 0, 0}, got)
}

func TestSplitFrequency(t *testing.T) {
    m := &Model{
        Trees: []Tree{
            {Root: &Node{
                Kind: SplitNumeric, Feature: 0, Threshold: 5,
                Left: &Node{IsLeaf: true, Value: -1},
                Right: &Node{
                    Kind: SplitNumeric, Feature: 1, Threshold: 10,
                    Left:  &Node{IsLeaf: true, Value: -1},
                    Right: &Node{IsLeaf: true, Value: 1},
                },
            }},
            {Root: &Node{
                Kind: SplitNumeric, Feature: 0, Threshold: 2,
                Left:  &Node{IsLeaf: true, Value: -1},
                Right: &Node{IsLeaf: true, Value: 1},
            }},
        },
        NumFeatures: 2,
        Scale:       1,
    }

    freq := m.SplitFrequency()
    assert.InDelta(t, 2.0/3.0, freq["f0"], 1e-12)
    assert.InDelta(t, 1.0/3.0, freq["f1"], 1e-12)

    empty := &Model{Trees: []Tree{{Root: &Node{IsLeaf: true, Value: 1}}}, NumFeatures: 1}
    assert.Empty(t, empty.SplitFrequency())
}

func TestFeatureNameFallback(t *testing.T) {
    m := &Model{NumFeatures: 2}
    assert.Equal(t, "f0", m.FeatureName(0))
    assert.Equal(t, "f7", m.FeatureName(7))
    assert.Equal(t, []string{"f0", "f1"}, m.FeatureNames())
}
