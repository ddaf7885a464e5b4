package validation

import (
    "context"
    "fmt"
    "math/rand"
    "runtime"
    "sort"

    "golang.org/x/sync/errgroup"

    "github.com/Jerome3590/phts/internal/attribution"
    "github.com/Jerome3590/phts/internal/explain"
)

type Significance struct {
    Feature     string  `json:"feature"`
    Class       int     `json:"class"`
    Observed    int     `json:"observed_support"`
    PValue      float64 `json:"p_value"`
    Significant bool    `json:"significant"`
}

// TestSignificance builds an empirical null for each feature's support by
// permuting its column and recomputing attribution, one-sided:
// p = #(permuted support >= observed) / n_permutations. The cost is
// n_permutations full attribution passes per feature; callers bound it
// through the config. Trials run in parallel and each derives its generator
// from the run seed, so results do not depend on goroutine scheduling. The
// context is honored between trials.
func TestSignificance(ctx context.Context, ex *explain.Explainer, X [][]float64, labels []int, features []string, cfg explain.AnalysisConfig) ([]Significance, error) {
    n := cfg.NPermutations
    if n <= 0 { n = 1000 }
    workers := cfg.Workers
    if workers <= 0 { workers = runtime.NumCPU() }
    // Trials already run in parallel; keep each inner dataset pass serial.
    inner := cfg
    inner.Workers = 1

    base, err := attribution.ByClass(ctx, ex, X, labels, cfg)
    if err != nil { return nil, err }
    classes := make([]int, 0, len(base))
    for c := range base { classes = append(classes, c) }
    sort.Ints(classes)

    var out []Significance
    for fi, fname := range features {
        col, ok := ex.RuleSet().Registry.FeatureIndex(fname)
        if !ok { return nil, fmt.Errorf("significance: unknown feature %q", fname) }
        supports := make([]map[int]int, n)
        g, gctx := errgroup.WithContext(ctx)
        g.SetLimit(workers)
        for t := 0; t < n; t++ {
            t := t
            g.Go(func() error {
                if err := gctx.Err(); err != nil { return err }
                rng := rand.New(rand.NewSource(cfg.Seed + int64(fi)*1000003 + int64(t)))
                tabs, err := attribution.ByClass(gctx, ex, permuteColumn(X, col, rng), labels, inner)
                if err != nil { return err }
                m := make(map[int]int, len(tabs))
                for c, tb := range tabs { m[c] = tb.Support(fname) }
                supports[t] = m
                return nil
            })
        }
        if err := g.Wait(); err != nil { return nil, err }

        for _, c := range classes {
            obs := base[c].Support(fname)
            ge := 0
            for _, m := range supports {
                if m[c] >= obs { ge++ }
            }
            p := float64(ge) / float64(n)
            out = append(out, Significance{
                Feature:     fname,
                Class:       c,
                Observed:    obs,
                PValue:      p,
                Significant: p < cfg.SignificanceAlpha,
            })
        }
    }
    return out, nil
}

func permuteColumn(X [][]float64, col int, rng *rand.Rand) [][]float64 {
    perm := rng.Perm(len(X))
    out := make([][]float64, len(X))
    for i := range X {
        row := append([]float64(nil), X[i]...)
        row[col] = X[perm[i]][col]
        out[i] = row
    }
    return out
}
