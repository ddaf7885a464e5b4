package main

import (
    "context"
    "flag"
    "os"
    "os/signal"

    "go.uber.org/zap"

    "github.com/Jerome3590/phts/internal/attribution"
    "github.com/Jerome3590/phts/internal/data"
    "github.com/Jerome3590/phts/internal/explain"
    "github.com/Jerome3590/phts/internal/modelstore"
    "github.com/Jerome3590/phts/internal/results"
    "github.com/Jerome3590/phts/internal/rules"
    "github.com/Jerome3590/phts/pkg/utils"
)

func main() {
    modelDir := flag.String("model_dir", "models", "Directory holding exported models and metadata")
    modelRef := flag.String("model", "", "Model file to explain, relative to model_dir")
    cohort := flag.String("cohort", "", "Pick the cohort's best model from metadata.json instead of -model")
    manifestRef := flag.String("manifest", "", "Optional feature manifest, relative to model_dir")
    dataPath := flag.String("data", "data/instances.csv", "Instance CSV, header row first")
    labelCol := flag.String("label", "", "Label column; empty derives classes from the model")
    configPath := flag.String("config", "", "Analysis config YAML; empty uses defaults")
    outDir := flag.String("out", "results", "Directory for run artifacts")
    maxAXPs := flag.Int("max_axps", 0, "Cap on explanations per instance; 0 enumerates all")
    synthetic := flag.Int("synthetic", 0, "Explain n synthetic instances instead of -data")
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
    var manifest *modelstore.Manifest
    if *manifestRef != "" {
        manifest, err = store.LoadManifest(*manifestRef)
        if err != nil { logger.Fatal("loading manifest", zap.Error(err)) }
    }

    reg := rules.NewRegistry(m.FeatureNames())
    rs, err := rules.Extract(m, reg)
    if err != nil { logger.Fatal("extracting rules", zap.Error(err)) }
    logger.Info("rules extracted",
        zap.String("model", ref),
        zap.Int("trees", len(m.Trees)),
        zap.Int("rules", len(rs.Rules)),
        zap.Int("conditions", reg.Size()))

    var ds *data.Dataset
    if *synthetic > 0 {
        ds = data.Synthesize(m, *synthetic, cfg.Seed)
    } else {
        ds, err = data.LoadCSV(*dataPath, m.FeatureNames(), *labelCol)
        if err != nil { logger.Fatal("loading dataset", zap.Error(err)) }
    }
    labels := ds.Labels
    if !ds.HasLabels { labels = m.PredictBatch(ds.X) }

    opts := []explain.Option{explain.WithCacheSize(cfg.CacheSize)}
    if *maxAXPs > 0 { opts = append(opts, explain.WithEnumerationLimit(*maxAXPs)) }
    ex := explain.New(rs, opts...)

    batch, err := ex.ExplainDataset(ctx, ds.X, labels, cfg)
    if err != nil { logger.Fatal("explaining dataset", zap.Error(err)) }
    logger.Info("dataset explained",
        zap.Int("instances", len(batch.Instances)),
        zap.Int("explained", batch.Explained),
        zap.Int("unexplained", batch.Unexplained),
        zap.Int("failed", batch.Failed))

    tables, err := attribution.TablesFor(batch, ex)
    if err != nil { logger.Fatal("aggregating metrics", zap.Error(err)) }

    sink, err := results.NewSink(*outDir)
    if err != nil { logger.Fatal("opening results dir", zap.Error(err)) }
    path, err := sink.WriteExplanationsCSV(batch, ex.Render)
    if err != nil { logger.Fatal("writing explanations", zap.Error(err)) }
    logger.Info("explanations written", zap.String("path", path))
    for class, t := range tables {
        path, err := sink.WriteAttributionCSV(class, t, manifest)
        if err != nil { logger.Fatal("writing metrics", zap.Error(err)) }
        logger.Info("metrics written", zap.Int("class", class), zap.String("path", path))
    }
    stats, err := attribution.RuleStats(m, rs, ds.X)
    if err != nil { logger.Fatal("computing rule stats", zap.Error(err)) }
    path, err = sink.WriteRuleStatsCSV(stats)
    if err != nil { logger.Fatal("writing rule stats", zap.Error(err)) }
    logger.Info("rule stats written", zap.Int("rules", len(stats)), zap.String("path", path))
    path, err = sink.WriteJSON("run_summary", map[string]interface{}{
        "run_id":      sink.RunID(),
        "model":       ref,
        "instances":   len(batch.Instances),
        "explained":   batch.Explained,
        "unexplained": batch.Unexplained,
        "failed":      batch.Failed,
        "classes":     batch.Classes,
    })
    if err != nil { logger.Fatal("writing summary", zap.Error(err)) }
    logger.Info("run complete", zap.String("run_id", sink.RunID()), zap.String("summary", path))
}
