package results

import (
    "encoding/csv"
    "fmt"
    "os"
    "path/filepath"
    "strconv"
    "strings"

    json "github.com/goccy/go-json"
    "github.com/google/uuid"

    "github.com/Jerome3590/phts/internal/attribution"
    "github.com/Jerome3590/phts/internal/explain"
    "github.com/Jerome3590/phts/internal/modelstore"
)

// Sink writes run artifacts under dir, each file stamped with the run id.
type Sink struct {
    dir   string
    runID string
}

func NewSink(dir string) (*Sink, error) {
    if err := os.MkdirAll(dir, 0o755); err != nil { return nil, fmt.Errorf("creating results dir: %w", err) }
    return &Sink{dir: dir, runID: uuid.NewString()}, nil
}

func (s *Sink) RunID() string { return s.runID }

func (s *Sink) file(name string) string { return filepath.Join(s.dir, name) }

// WriteAttributionCSV writes one class's metrics table. When a manifest is
// given, a description column is appended from its feature descriptors.
func (s *Sink) WriteAttributionCSV(class int, t *attribution.Table, manifest *modelstore.Manifest) (string, error) {
    path := s.file(fmt.Sprintf("axp_metrics_class%d_%s.csv", class, s.runID))
    f, err := os.Create(path)
    if err != nil { return "", err }
    defer f.Close()
    w := csv.NewWriter(f)
    defer w.Flush()
    hdr := []string{"feature", "support", "coverage", "coverage_ratio", "specificity",
        "essentiality_ratio", "contrastive_instances", "stability", "avg_position",
        "position_std", "relative_importance"}
    if manifest != nil { hdr = append(hdr, "description") }
    if err := w.Write(hdr); err != nil { return "", err }
    for _, r := range t.Rows {
        rec := []string{
            r.Feature,
            strconv.Itoa(r.Support),
            strconv.Itoa(r.Coverage),
            fmt.Sprintf("%.6f", r.CoverageRatio),
            fmt.Sprintf("%.6f", r.Specificity),
            fmt.Sprintf("%.6f", r.EssentialityRatio),
            strconv.Itoa(r.Contrastive),
            fmt.Sprintf("%.6f", r.Stability),
            fmt.Sprintf("%.6f", r.AvgPosition),
            fmt.Sprintf("%.6f", r.PositionStd),
            fmt.Sprintf("%.6f", r.RelativeImportance),
        }
        if manifest != nil { rec = append(rec, manifest.Describe(r.Feature)) }
        if err := w.Write(rec); err != nil { return "", err }
    }
    return path, nil
}

// WriteExplanationsCSV writes one row per explanation, plus one row per
// unexplained or failed instance so they stay visible in the output.
func (s *Sink) WriteExplanationsCSV(batch *explain.BatchResult, render func([]int) ([]string, error)) (string, error) {
    path := s.file(fmt.Sprintf("axp_explanations_%s.csv", s.runID))
    f, err := os.Create(path)
    if err != nil { return "", err }
    defer f.Close()
    w := csv.NewWriter(f)
    defer w.Flush()
    if err := w.Write([]string{"instance", "class", "axp", "size", "conditions", "status"}); err != nil { return "", err }
    for _, inst := range batch.Instances {
        if inst.Err != "" {
            if err := w.Write([]string{strconv.Itoa(inst.Index), strconv.Itoa(inst.Label), "", "0", "", "failed: " + inst.Err}); err != nil { return "", err }
            continue
        }
        if len(inst.Explanations) == 0 {
            if err := w.Write([]string{strconv.Itoa(inst.Index), strconv.Itoa(inst.Label), "", "0", "", "unexplained"}); err != nil { return "", err }
            continue
        }
        for k, axp := range inst.Explanations {
            conds, err := render(axp)
            if err != nil { return "", err }
            rec := []string{
                strconv.Itoa(inst.Index),
                strconv.Itoa(inst.Label),
                strconv.Itoa(k),
                strconv.Itoa(len(axp)),
                strings.Join(conds, " AND "),
                "explained",
            }
            if err := w.Write(rec); err != nil { return "", err }
        }
    }
    return path, nil
}

func (s *Sink) WriteRuleStatsCSV(stats []attribution.RuleStat) (string, error) {
    path := s.file(fmt.Sprintf("rule_stats_%s.csv", s.runID))
    f, err := os.Create(path)
    if err != nil { return "", err }
    defer f.Close()
    w := csv.NewWriter(f)
    defer w.Flush()
    if err := w.Write([]string{"rule", "tree", "label", "size", "conditions", "satisfied", "coverage", "confidence"}); err != nil { return "", err }
    for _, st := range stats {
        rec := []string{
            strconv.Itoa(st.Rule),
            strconv.Itoa(st.Tree),
            strconv.Itoa(st.Label),
            strconv.Itoa(st.Size),
            st.Conditions,
            strconv.Itoa(st.Satisfied),
            fmt.Sprintf("%.6f", st.Coverage),
            fmt.Sprintf("%.6f", st.Confidence),
        }
        if err := w.Write(rec); err != nil { return "", err }
    }
    return path, nil
}

func (s *Sink) WriteJSON(name string, v interface{}) (string, error) {
    path := s.file(fmt.Sprintf("%s_%s.json", name, s.runID))
    b, err := json.MarshalIndent(v, "", "  ")
    if err != nil { return "", fmt.Errorf("encoding %s: %w", name, err) }
    if err := os.WriteFile(path, b, 0o644); err != nil { return "", err }
    return path, nil
}
