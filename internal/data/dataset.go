package data

import (
    "encoding/csv"
    "fmt"
    "os"
    "strconv"

    "github.com/Jerome3590/phts/internal/explain"
)

type Dataset struct {
    Features  []string
    X         [][]float64
    Labels    []int
    HasLabels bool
}

func (d *Dataset) Len() int { return len(d.X) }

// LoadCSV reads a header-first CSV into a feature matrix whose columns
// follow featureOrder, so rows line up with the model's feature indices.
// labelCol selects the prediction column; empty means the file carries no
// labels and callers derive them from the model.
func LoadCSV(path string, featureOrder []string, labelCol string) (*Dataset, error) {
    f, err := os.Open(path)
    if err != nil { return nil, fmt.Errorf("opening dataset: %w", err) }
    defer f.Close()
    r := csv.NewReader(f)
    rows, err := r.ReadAll()
    if err != nil { return nil, fmt.Errorf("reading dataset %s: %w", path, err) }
    if len(rows) < 2 { return nil, fmt.Errorf("dataset %s has no data rows", path) }

    colOf := map[string]int{}
    for i, h := range rows[0] { colOf[h] = i }
    cols := make([]int, len(featureOrder))
    for i, name := range featureOrder {
        c, ok := colOf[name]
        if !ok { return nil, &explain.InputShapeError{What: fmt.Sprintf("missing feature column %q in %s", name, path)} }
        cols[i] = c
    }
    labelIdx := -1
    if labelCol != "" {
        c, ok := colOf[labelCol]
        if !ok { return nil, &explain.InputShapeError{What: fmt.Sprintf("missing label column %q in %s", labelCol, path)} }
        labelIdx = c
    }

    ds := &Dataset{Features: append([]string(nil), featureOrder...), HasLabels: labelIdx >= 0}
    for i := 1; i < len(rows); i++ {
        row := rows[i]
        vec := make([]float64, len(cols))
        for j, c := range cols {
            if c >= len(row) { return nil, fmt.Errorf("dataset %s row %d: too few columns", path, i) }
            v, err := strconv.ParseFloat(row[c], 64)
            if err != nil { return nil, fmt.Errorf("dataset %s row %d column %q: %w", path, i, featureOrder[j], err) }
            vec[j] = v
        }
        ds.X = append(ds.X, vec)
        if labelIdx >= 0 {
            if labelIdx >= len(row) { return nil, fmt.Errorf("dataset %s row %d: too few columns", path, i) }
            lb, err := strconv.Atoi(row[labelIdx])
            if err != nil { return nil, fmt.Errorf("dataset %s row %d label: %w", path, i, err) }
            ds.Labels = append(ds.Labels, lb)
        }
    }
    return ds, nil
}
