package results

import (
    "encoding/csv"
    "fmt"
    "os"
    "path/filepath"
    "testing"

    json "github.com/goccy/go-json"
    "github.com/google/uuid"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/Jerome3590/phts/internal/attribution"
    "github.com/Jerome3590/phts/internal/explain"
    "github.com/Jerome3590/phts/internal/modelstore"
)

func readCSV(t *testing.T, path string) [][]string {
    t.Helper()
    f, err := os.Open(path)
    require.NoError(t, err)
    defer f.Close()
    recs, err := csv.NewReader(f).ReadAll()
    require.NoError(t, err)
    return recs
}

func TestNewSinkCreatesDir(t *testing.T) {
    dir := filepath.Join(t.TempDir(), "out", "nested")
    s, err := NewSink(dir)
    require.NoError(t, err)

    info, err := os.Stat(dir)
    require.NoError(t, err)
    assert.True(t, info.IsDir())

    _, err = uuid.Parse(s.RunID())
    assert.NoError(t, err)
}

func TestRunIDsDistinct(t *testing.T) {
    dir := t.TempDir()
    a, err := NewSink(dir)
    require.NoError(t, err)
    b, err := NewSink(dir)
    require.NoError(t, err)
    assert.NotEqual(t, a.RunID(), b.RunID())
}

func TestWriteExplanationsCSV(t *testing.T) {
    s, err := NewSink(t.TempDir())
    require.NoError(t, err)

    batch := &explain.BatchResult{Instances: []explain.InstanceResult{
        {Index: 0, Label: 1, Explanations: [][]int{{1}, {2, 3}}},
        {Index: 1, Label: 1},
        {Index: 2, Label: 0, Err: "boom"},
    }}
    render := func(axp []int) ([]string, error) {
        out := make([]string, len(axp))
        for i, lit := range axp { out[i] = fmt.Sprintf("c%d", lit) }
        return out, nil
    }

    path, err := s.WriteExplanationsCSV(batch, render)
    require.NoError(t, err)
    assert.Equal(t, filepath.Base(path), "axp_explanations_"+s.RunID()+".csv")

    recs := readCSV(t, path)
    require.Len(t, recs, 5)
    assert.Equal(t, []string{"instance", "class", "axp", "size", "conditions", "status"}, recs[0])
    assert.Equal(t, []string{"0", "1", "0", "1", "c1", "explained"}, recs[1])
    assert.Equal(t, []string{"0", "1", "1", "2", "c2 AND c3", "explained"}, recs[2])
    assert.Equal(t, []string{"1", "1", "", "0", "", "unexplained"}, recs[3])
    assert.Equal(t, []string{"2", "0", "", "0", "", "failed: boom"}, recs[4])
}

func TestWriteExplanationsCSVRenderError(t *testing.T) {
    s, err := NewSink(t.TempDir())
    require.NoError(t, err)

    batch := &explain.BatchResult{Instances: []explain.InstanceResult{
        {Index: 0, Label: 1, Explanations: [][]int{{1}}},
    }}
    _, err = s.WriteExplanationsCSV(batch, func([]int) ([]string, error) {
        return nil, fmt.Errorf("stale")
    })
    require.Error(t, err)
}

func TestWriteAttributionCSV(t *testing.T) {
    s, err := NewSink(t.TempDir())
    require.NoError(t, err)

    table := &attribution.Table{
        Instances: 4,
        Rows: []attribution.FeatureMetrics{
            {Feature: "amount", Support: 3, Coverage: 2, CoverageRatio: 0.5,
                Specificity: 1.5, EssentialityRatio: 0.25, Contrastive: 1,
                Stability: 0.5, AvgPosition: 0.25, PositionStd: 0.433013,
                RelativeImportance: 0.75},
            {Feature: "age", Support: 1, Coverage: 1, CoverageRatio: 0.25,
                Specificity: 2, RelativeImportance: 0.25},
        },
    }

    path, err := s.WriteAttributionCSV(1, table, nil)
    require.NoError(t, err)
    assert.Equal(t, filepath.Base(path), "axp_metrics_class1_"+s.RunID()+".csv")

    recs := readCSV(t, path)
    require.Len(t, recs, 3)
    assert.Equal(t, []string{"feature", "support", "coverage", "coverage_ratio", "specificity",
        "essentiality_ratio", "contrastive_instances", "stability", "avg_position",
        "position_std", "relative_importance"}, recs[0])
    assert.Equal(t, []string{"amount", "3", "2", "0.500000", "1.500000", "0.250000",
        "1", "0.500000", "0.250000", "0.433013", "0.750000"}, recs[1])
    assert.Equal(t, "age", recs[2][0])
    assert.Equal(t, "0.250000", recs[2][10])
}

func TestWriteAttributionCSVWithManifest(t *testing.T) {
    s, err := NewSink(t.TempDir())
    require.NoError(t, err)

    table := &attribution.Table{Instances: 1, Rows: []attribution.FeatureMetrics{
        {Feature: "amount", Support: 1, RelativeImportance: 1},
        {Feature: "mystery", Support: 1},
    }}
    man := &modelstore.Manifest{Features: map[string]modelstore.FeatureDescriptor{
        "amount": {Description: "transaction amount"},
    }}

    path, err := s.WriteAttributionCSV(0, table, man)
    require.NoError(t, err)

    recs := readCSV(t, path)
    require.Len(t, recs, 3)
    require.Len(t, recs[0], 12)
    assert.Equal(t, "description", recs[0][11])
    assert.Equal(t, "transaction amount", recs[1][11])
    assert.Equal(t, "", recs[2][11])
}

func TestWriteRuleStatsCSV(t *testing.T) {
    s, err := NewSink(t.TempDir())
    require.NoError(t, err)

    stats := []attribution.RuleStat{
        {Rule: 0, Tree: 0, Label: 0, Size: 1, Conditions: "A <= 5",
            Satisfied: 2, Coverage: 2.0 / 3.0, Confidence: 1},
        {Rule: 3, Tree: 1, Label: 1, Size: 2, Conditions: "A > 5 AND B > 10",
            Satisfied: 0},
    }

    path, err := s.WriteRuleStatsCSV(stats)
    require.NoError(t, err)
    assert.Equal(t, filepath.Base(path), "rule_stats_"+s.RunID()+".csv")

    recs := readCSV(t, path)
    require.Len(t, recs, 3)
    assert.Equal(t, []string{"rule", "tree", "label", "size", "conditions", "satisfied", "coverage", "confidence"}, recs[0])
    assert.Equal(t, []string{"0", "0", "0", "1", "A <= 5", "2", "0.666667", "1.000000"}, recs[1])
    assert.Equal(t, []string{"3", "1", "1", "2", "A > 5 AND B > 10", "0", "0.000000", "0.000000"}, recs[2])
}

func TestWriteJSON(t *testing.T) {
    s, err := NewSink(t.TempDir())
    require.NoError(t, err)

    path, err := s.WriteJSON("run_summary", map[string]interface{}{
        "model": "model.json",
        "total": 7,
    })
    require.NoError(t, err)
    assert.Equal(t, filepath.Base(path), "run_summary_"+s.RunID()+".json")

    b, err := os.ReadFile(path)
    require.NoError(t, err)
    var got map[string]interface{}
    require.NoError(t, json.Unmarshal(b, &got))
    assert.Equal(t, "model.json", got["model"])
    assert.Equal(t, float64(7), got["total"])
}
