package main

import (
    "context"
    "flag"
    "fmt"
    "os"
    "os/signal"
    "path/filepath"
    "sort"

    "go.uber.org/zap"
    "gonum.org/v1/plot"
    "gonum.org/v1/plot/plotter"
    "gonum.org/v1/plot/plotutil"
    "gonum.org/v1/plot/vg"

    "github.com/Jerome3590/phts/internal/attribution"
    "github.com/Jerome3590/phts/internal/data"
    "github.com/Jerome3590/phts/internal/explain"
    "github.com/Jerome3590/phts/internal/modelstore"
    "github.com/Jerome3590/phts/internal/results"
    "github.com/Jerome3590/phts/internal/rules"
    "github.com/Jerome3590/phts/internal/validation"
    "github.com/Jerome3590/phts/pkg/utils"
)

func main() {
    modelDir := flag.String("model_dir", "models", "Directory holding exported models and metadata")
    modelRef := flag.String("model", "", "Model file to analyze, relative to model_dir")
    cohort := flag.String("cohort", "", "Pick the cohort's best model from metadata.json instead of -model")
    dataPath := flag.String("data", "data/instances.csv", "Instance CSV, header row first")
    labelCol := flag.String("label", "", "Label column; empty derives classes from the model")
    configPath := flag.String("config", "", "Analysis config YAML; empty uses defaults")
    outDir := flag.String("out", "results", "Directory for run artifacts")
    imgDir := flag.String("out_img", "cmd/api/static", "Directory for chart PNGs")
    runSig := flag.Bool("significance", false, "Run permutation significance tests on the top features")
    runCausal := flag.Bool("causal", false, "Run single-feature flip tests")
    synthetic := flag.Int("synthetic", 0, "Analyze n synthetic instances instead of -data")
    flag.Parse()

    logger := utils.Logger()
    defer logger.Sync()

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
    defer stop()

    cfg := explain.DefaultAnalysisConfig()
    if *configPath != "" {
        var err error
        cfg, err = explain.LoadAnalysisConfig(*configPath)
        if err != nil { logger.Fatal("loading config", zap.Error(err)) }
    }

    store := modelstore.New(*modelDir)
    ref := *modelRef
    if *cohort != "" {
        var err error
        ref, err = store.BestModel(*cohort)
        if err != nil { logger.Fatal("resolving cohort model", zap.Error(err)) }
    }
    if ref == "" { logger.Fatal("one of -model or -cohort is required") }

    m, err := store.LoadEnsemble(ref)
    if err != nil { logger.Fatal("loading ensemble", zap.Error(err)) }
    reg := rules.NewRegistry(m.FeatureNames())
    rs, err := rules.Extract(m, reg)
    if err != nil { logger.Fatal("extracting rules", zap.Error(err)) }

    var ds *data.Dataset
    if *synthetic > 0 {
        ds = data.Synthesize(m, *synthetic, cfg.Seed)
    } else {
        ds, err = data.LoadCSV(*dataPath, m.FeatureNames(), *labelCol)
        if err != nil { logger.Fatal("loading dataset", zap.Error(err)) }
    }
    labels := ds.Labels
    if !ds.HasLabels { labels = m.PredictBatch(ds.X) }

    ex := explain.New(rs, explain.WithCacheSize(cfg.CacheSize))
    batch, err := ex.ExplainDataset(ctx, ds.X, labels, cfg)
    if err != nil { logger.Fatal("explaining dataset", zap.Error(err)) }
    tables, err := attribution.TablesFor(batch, ex)
    if err != nil { logger.Fatal("aggregating metrics", zap.Error(err)) }

    sink, err := results.NewSink(*outDir)
    if err != nil { logger.Fatal("opening results dir", zap.Error(err)) }

    report := validation.Validate(batch, tables, cfg)
    for _, cr := range report.Classes {
        logger.Info("class validated",
            zap.Int("class", cr.Class),
            zap.Float64("coverage", cr.Coverage),
            zap.Bool("below_min", cr.BelowMin),
            zap.Strings("unstable", cr.Unstable),
            zap.Float64("reliability", cr.Reliability))
    }
    if path, err := sink.WriteJSON("validation_report", report); err != nil {
        logger.Fatal("writing validation report", zap.Error(err))
    } else {
        logger.Info("validation report written", zap.String("path", path))
    }

    imp := validation.CompareImportance(m, tables)
    logger.Info("importance compared", zap.Float64("correlation", imp.Correlation), zap.Int("features", len(imp.Rows)))
    if path, err := sink.WriteJSON("importance_comparison", imp); err != nil {
        logger.Fatal("writing importance comparison", zap.Error(err))
    } else {
        logger.Info("importance comparison written", zap.String("path", path))
    }

    if *runSig {
        feats := topFeatures(tables, cfg.TopK)
        sigs, err := validation.TestSignificance(ctx, ex, ds.X, labels, feats, cfg)
        if err != nil { logger.Fatal("significance tests", zap.Error(err)) }
        for _, s := range sigs {
            if s.Significant { logger.Info("significant feature", zap.String("feature", s.Feature), zap.Int("class", s.Class), zap.Float64("p_value", s.PValue)) }
        }
        if path, err := sink.WriteJSON("significance", sigs); err != nil {
            logger.Fatal("writing significance", zap.Error(err))
        } else {
            logger.Info("significance written", zap.String("path", path))
        }
    }

    if *runCausal {
        flips := validation.CausalFlip(m, ds.X)
        if path, err := sink.WriteJSON("causal_flips", flips); err != nil {
            logger.Fatal("writing causal flips", zap.Error(err))
        } else {
            logger.Info("causal flips written", zap.String("path", path))
        }
    }

    if err := os.MkdirAll(*imgDir, 0o755); err != nil { logger.Fatal("creating chart dir", zap.Error(err)) }
    for _, c := range sortedClasses(tables) {
        path := filepath.Join(*imgDir, fmt.Sprintf("axp_support_class%d.png", c))
        if err := plotSupport(path, c, tables[c].TopK(cfg.TopK)); err != nil { logger.Fatal("plotting support", zap.Error(err)) }
        logger.Info("chart written", zap.String("path", path))
    }
    stabPath := filepath.Join(*imgDir, "axp_stability.png")
    if err := plotStability(stabPath, tables, cfg.TopK); err != nil { logger.Fatal("plotting stability", zap.Error(err)) }
    logger.Info("chart written", zap.String("path", stabPath))
}

func sortedClasses(tables map[int]*attribution.Table) []int {
    out := make([]int, 0, len(tables))
    for c := range tables { out = append(out, c) }
    sort.Ints(out)
    return out
}

// topFeatures unions the strongest rows of every class table so significance
// runs once per feature even when classes share them.
func topFeatures(tables map[int]*attribution.Table, k int) []string {
    seen := map[string]bool{}
    out := []string{}
    for _, c := range sortedClasses(tables) {
        for _, r := range tables[c].TopK(k) {
            if seen[r.Feature] { continue }
            seen[r.Feature] = true
            out = append(out, r.Feature)
        }
    }
    sort.Strings(out)
    return out
}

func plotSupport(path string, class int, rows []attribution.FeatureMetrics) error {
    p := plot.New()
    p.Title.Text = fmt.Sprintf("Explanation support, class %d", class)
    p.Y.Label.Text = "Support"
    vals := make(plotter.Values, len(rows))
    names := make([]string, len(rows))
    for i, r := range rows {
        vals[i] = float64(r.Support)
        names[i] = r.Feature
    }
    bars, err := plotter.NewBarChart(vals, vg.Points(20))
    if err != nil { return err }
    bars.LineStyle.Width = vg.Length(0)
    p.Add(bars)
    p.NominalX(names...)
    return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

func plotStability(path string, tables map[int]*attribution.Table, k int) error {
    p := plot.New()
    p.Title.Text = "Feature position stability"
    p.X.Label.Text = "Feature rank"
    p.Y.Label.Text = "Position spread"

    args := make([]interface{}, 0, 2*len(tables))
    for _, c := range sortedClasses(tables) {
        rows := tables[c].TopK(k)
        pts := make(plotter.XYs, len(rows))
        for i, r := range rows {
            pts[i].X = float64(i)
            pts[i].Y = r.Stability
        }
        args = append(args, fmt.Sprintf("class %d", c), pts)
    }
    if err := plotutil.AddLinePoints(p, args...); err != nil { return err }
    return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
