package explain

import (
    "context"
    "runtime"

    "golang.org/x/sync/errgroup"
)

type InstanceResult struct {
    Index        int     `json:"index"`
    Label        int     `json:"label"`
    Explanations [][]int `json:"explanations,omitempty"`
    Err          string  `json:"error,omitempty"`
}

func (r InstanceResult) Explained() bool { return r.Err == "" && len(r.Explanations) > 0 }

type ClassCount struct {
    Total       int `json:"total"`
    Explained   int `json:"explained"`
    Unexplained int `json:"unexplained"`
    Failed      int `json:"failed"`
}

type BatchResult struct {
    Instances   []InstanceResult  `json:"instances"`
    Explained   int               `json:"explained"`
    Unexplained int               `json:"unexplained"`
    Failed      int               `json:"failed"`
    Classes     map[int]ClassCount `json:"classes"`
}

func (b *BatchResult) Grouped() map[int][]InstanceResult {
    out := map[int][]InstanceResult{}
    for _, r := range b.Instances {
        out[r.Label] = append(out[r.Label], r)
    }
    return out
}

// ExplainDataset enumerates explanations for every row of X against its
// label. Rows are processed in fixed-size chunks; instances inside a chunk
// run in parallel and write only their own slot, so chunking changes peak
// memory, never results. Per-row failures are recorded on the instance and
// skipped; a context cancelled between chunks aborts the run.
func (e *Explainer) ExplainDataset(ctx context.Context, X [][]float64, labels []int, cfg AnalysisConfig) (*BatchResult, error) {
    if len(X) != len(labels) {
        return nil, &InputShapeError{What: "feature rows vs labels", Want: len(X), Got: len(labels)}
    }
    chunk := cfg.ChunkSize
    if chunk <= 0 { chunk = 1000 }
    workers := cfg.Workers
    if workers <= 0 { workers = runtime.NumCPU() }

    res := &BatchResult{Instances: make([]InstanceResult, len(X)), Classes: map[int]ClassCount{}}
    for start := 0; start < len(X); start += chunk {
        if err := ctx.Err(); err != nil { return nil, err }
        end := start + chunk
        if end > len(X) { end = len(X) }
        g, _ := errgroup.WithContext(ctx)
        g.SetLimit(workers)
        for i := start; i < end; i++ {
            i := i
            g.Go(func() error {
                res.Instances[i] = e.explainOne(i, X[i], labels[i])
                return nil
            })
        }
        if err := g.Wait(); err != nil { return nil, err }
    }

    for i := range res.Instances {
        r := &res.Instances[i]
        cc := res.Classes[r.Label]
        cc.Total++
        switch {
        case r.Err != "":
            res.Failed++
            cc.Failed++
        case len(r.Explanations) == 0:
            res.Unexplained++
            cc.Unexplained++
        default:
            res.Explained++
            cc.Explained++
        }
        res.Classes[r.Label] = cc
    }
    return res, nil
}

func (e *Explainer) explainOne(idx int, x []float64, label int) InstanceResult {
    out := InstanceResult{Index: idx, Label: label}
    fams, err := e.Enumerate(x, label)
    if err != nil {
        out.Err = err.Error()
        return out
    }
    out.Explanations = dedupeSets(fams)
    return out
}

// dedupeSets drops explanations normalizing to the same sorted key. The
// input may be shared with the memo, so the result is a fresh outer slice.
func dedupeSets(fams [][]int) [][]int {
    if len(fams) == 0 { return nil }
    seen := make(map[string]bool, len(fams))
    out := make([][]int, 0, len(fams))
    for _, f := range fams {
        k := canonicalKey(f)
        if seen[k] { continue }
        seen[k] = true
        out = append(out, f)
    }
    return out
}
