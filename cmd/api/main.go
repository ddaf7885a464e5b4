package main

import (
    "net/http"
    "os"

    "github.com/gin-gonic/gin"
    "go.uber.org/zap"

    "github.com/Jerome3590/phts/internal/ensemble"
    "github.com/Jerome3590/phts/internal/explain"
    "github.com/Jerome3590/phts/internal/modelstore"
    "github.com/Jerome3590/phts/internal/rules"
    "github.com/Jerome3590/phts/pkg/utils"
)

var (
    mdl      *ensemble.Model
    ex       *explain.Explainer
    manifest *modelstore.Manifest
    modelRef string
    cohort   string
)

func main() {
    logger := utils.Logger()
    defer logger.Sync()

    modelDir := os.Getenv("MODEL_DIR")
    if modelDir == "" { modelDir = "models" }
    store := modelstore.New(modelDir)

    cohort = os.Getenv("COHORT")
    modelRef = os.Getenv("MODEL_REF")
    if cohort != "" {
        ref, err := store.BestModel(cohort)
        if err != nil { logger.Fatal("resolving cohort model", zap.Error(err)) }
        modelRef = ref
    }
    if modelRef == "" { logger.Fatal("set MODEL_REF or COHORT") }

    var err error
    mdl, err = store.LoadEnsemble(modelRef)
    if err != nil { logger.Fatal("loading ensemble", zap.Error(err)) }
    if ref := os.Getenv("MANIFEST_REF"); ref != "" {
        manifest, err = store.LoadManifest(ref)
        if err != nil { logger.Fatal("loading manifest", zap.Error(err)) }
    }

    reg := rules.NewRegistry(mdl.FeatureNames())
    rs, err := rules.Extract(mdl, reg)
    if err != nil { logger.Fatal("extracting rules", zap.Error(err)) }
    ex = explain.New(rs)
    logger.Info("model ready",
        zap.String("model", modelRef),
        zap.Int("trees", len(mdl.Trees)),
        zap.Int("rules", len(rs.Rules)),
        zap.Int("conditions", reg.Size()))

    r := gin.Default()

    r.Static("/static", "cmd/api/static")
    r.GET("/metadata", handleMetadata)

    api := r.Group("/")
    api.Use(apiKeyMiddleware)
    api.POST("/explain", handleExplain)
    api.POST("/explain/batch", handleBatch)

    port := os.Getenv("PORT")
    if port == "" { port = "8080" }
    r.Run(":" + port)
}

func apiKeyMiddleware(c *gin.Context) {
    key := os.Getenv("API_KEY")
    if key == "" { c.Next(); return }
    got := c.GetHeader("X-API-Key")
    if got != key { c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"}); return }
    c.Next()
}

type explainReq struct {
    Features map[string]float64 `json:"features" binding:"required"`
    Class    *int               `json:"class"`
}

// vectorize orders the request's features the way the model expects;
// features the request omits default to zero.
func vectorize(features map[string]float64) []float64 {
    x := make([]float64, mdl.NumFeatures)
    for i, name := range mdl.FeatureNames() {
        if v, ok := features[name]; ok { x[i] = v }
    }
    return x
}

func handleMetadata(c *gin.Context) {
    rs := ex.RuleSet()
    c.JSON(http.StatusOK, gin.H{
        "model":      modelRef,
        "cohort":     cohort,
        "features":   mdl.FeatureNames(),
        "trees":      len(mdl.Trees),
        "rules":      len(rs.Rules),
        "conditions": rs.Registry.Size(),
    })
}

func handleExplain(c *gin.Context) {
    var req explainReq
    if err := c.BindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"}); return
    }
    x := vectorize(req.Features)
    target := mdl.Predict(x)
    if req.Class != nil { target = *req.Class }

    fams, err := ex.Enumerate(x, target)
    if err != nil { c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()}); return }
    rendered := make([][]string, 0, len(fams))
    for _, axp := range fams {
        conds, err := ex.Render(axp)
        if err != nil { c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()}); return }
        rendered = append(rendered, conds)
    }

    resp := gin.H{
        "model":        modelRef,
        "class":        target,
        "margin":       mdl.Margin(x),
        "score":        mdl.Proba(x),
        "explained":    len(rendered) > 0,
        "explanations": rendered,
    }
    if notes := featureNotes(fams); len(notes) > 0 { resp["feature_notes"] = notes }
    c.JSON(http.StatusOK, resp)
}

func handleBatch(c *gin.Context) {
    var items []explainReq
    if err := c.BindJSON(&items); err != nil { c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"}); return }
    out := make([]gin.H, len(items))
    for i, it := range items {
        x := vectorize(it.Features)
        target := mdl.Predict(x)
        if it.Class != nil { target = *it.Class }
        axp, err := ex.Explain(x, target)
        if err != nil { c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()}); return }
        conds := []string{}
        if axp != nil {
            conds, err = ex.Render(axp)
            if err != nil { c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()}); return }
        }
        out[i] = gin.H{
            "class":     target,
            "score":     mdl.Proba(x),
            "explained": axp != nil,
            "axp":       conds,
        }
    }
    c.JSON(http.StatusOK, out)
}

// featureNotes maps the features appearing in the explanations to their
// manifest descriptions, when a manifest is loaded.
func featureNotes(fams [][]int) map[string]string {
    if manifest == nil { return nil }
    notes := map[string]string{}
    for _, axp := range fams {
        for _, lit := range axp {
            name, err := ex.RuleSet().FeatureOf(lit)
            if err != nil { continue }
            if d := manifest.Describe(name); d != "" { notes[name] = d }
        }
    }
    return notes
}
