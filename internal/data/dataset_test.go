package data

import (
    "os"
    "path/filepath"
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/Jerome3590/phts/internal/ensemble"
    "github.com/Jerome3590/phts/internal/explain"
)

func writeCSV(t *testing.T, content string) string {
    t.Helper()
    path := filepath.Join(t.TempDir(), "data.csv")
    require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
    return path
}

func TestLoadCSVReordersColumns(t *testing.T) {
    path := writeCSV(t, "B,A,label\n12,7,1\n12,2,1\n5,2,0\n")

    ds, err := LoadCSV(path, []string{"A", "B"}, "label")
    require.NoError(t, err)

    assert.Equal(t, []string{"A", "B"}, ds.Features)
    assert.Equal(t, [][]float64{{7, 12}, {2, 12}, {2, 5}}, ds.X)
    assert.Equal(t, []int{1, 1, 0}, ds.Labels)
    assert.True(t, ds.HasLabels)
    assert.Equal(t, 3, ds.Len())
}

func TestLoadCSVWithoutLabels(t *testing.T) {
    path := writeCSV(t, "A,B\n7,12\n2,5\n")

    ds, err := LoadCSV(path, []string{"A", "B"}, "")
    require.NoError(t, err)

    assert.False(t, ds.HasLabels)
    assert.Empty(t, ds.Labels)
    assert.Equal(t, [][]float64{{7, 12}, {2, 5}}, ds.X)
}

func TestLoadCSVMissingFeatureColumn(t *testing.T) {
    path := writeCSV(t, "A,B\n7,12\n")

    _, err := LoadCSV(path, []string{"A", "Z"}, "")
    var shape *explain.InputShapeError
    require.ErrorAs(t, err, &shape)
    assert.Contains(t, err.Error(), `missing feature column "Z"`)
}

func TestLoadCSVMissingLabelColumn(t *testing.T) {
    path := writeCSV(t, "A,B\n7,12\n")

    _, err := LoadCSV(path, []string{"A"}, "y")
    var shape *explain.InputShapeError
    require.ErrorAs(t, err, &shape)
    assert.Contains(t, err.Error(), `missing label column "y"`)
}

func TestLoadCSVBadValues(t *testing.T) {
    _, err := LoadCSV(writeCSV(t, "A,label\nabc,1\n"), []string{"A"}, "label")
    require.ErrorContains(t, err, `row 1 column "A"`)

    _, err = LoadCSV(writeCSV(t, "A,label\n7,yes\n"), []string{"A"}, "label")
    require.ErrorContains(t, err, "label")
}

func TestLoadCSVEmptyAndMissing(t *testing.T) {
    _, err := LoadCSV(writeCSV(t, "A,B\n"), []string{"A"}, "")
    require.ErrorContains(t, err, "no data rows")

    _, err = LoadCSV(filepath.Join(t.TempDir(), "nope.csv"), []string{"A"}, "")
    require.Error(t, err)
}

const synthDoc = `{
  "features_info": {"float_features": [
    {"flat_feature_index": 0, "feature_id": "A"},
    {"flat_feature_index": 1, "feature_id": "B"},
    {"flat_feature_index": 2, "feature_id": "C"}
  ]},
  "trees": [
    {"split": {"split_type": "FloatFeature", "float_feature_index": 0, "border": 5},
     "left": {"value": -1}, "right": {"value": 1}},
    {"split": {"split_type": "FloatFeature", "float_feature_index": 1, "border": 10},
     "left": {"value": -1}, "right": {"value": 1}}
  ]
}`

func synthModel(t *testing.T) *ensemble.Model {
    t.Helper()
    m, err := ensemble.Decode(strings.NewReader(synthDoc))
    require.NoError(t, err)
    return m
}

func TestSynthesizeDeterministic(t *testing.T) {
    m := synthModel(t)

    a := Synthesize(m, 50, 42)
    b := Synthesize(m, 50, 42)
    assert.Equal(t, a.X, b.X)

    c := Synthesize(m, 50, 1)
    assert.NotEqual(t, a.X, c.X)
}

func TestSynthesizeCoversSplitSides(t *testing.T) {
    m := synthModel(t)

    ds := Synthesize(m, 200, 7)
    require.Equal(t, 200, ds.Len())
    assert.False(t, ds.HasLabels)
    assert.Equal(t, m.FeatureNames(), ds.Features)

    var belowA, aboveA, exactA, belowB, aboveB int
    for _, row := range ds.X {
        require.Len(t, row, m.NumFeatures)
        if row[0] <= 5 { belowA++ } else { aboveA++ }
        if row[0] == 5 { exactA++ }
        if row[1] <= 10 { belowB++ } else { aboveB++ }
        // C is never split on, so it stays uniform in [0, 1).
        assert.GreaterOrEqual(t, row[2], 0.0)
        assert.Less(t, row[2], 1.0)
    }
    assert.Positive(t, belowA)
    assert.Positive(t, aboveA)
    assert.Positive(t, exactA, "equality splits need exact threshold hits")
    assert.Positive(t, belowB)
    assert.Positive(t, aboveB)
}
