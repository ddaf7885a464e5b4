package ensemble

import (
    "fmt"
    "io"
    "os"

    json "github.com/goccy/go-json"
)

const retrainGuidance = "re-export the model with grow_policy='Lossguide' so every leaf carries its own path conditions"

type modelDoc struct {
    FeaturesInfo   *featuresInfoDoc `json:"features_info"`
    Trees          []*treeNodeDoc   `json:"trees"`
    ObliviousTrees json.RawMessage  `json:"oblivious_trees"`
    ScaleAndBias   []float64        `json:"scale_and_bias"`
}

type featuresInfoDoc struct {
    FloatFeatures []floatFeatureDoc `json:"float_features"`
}

type floatFeatureDoc struct {
    FlatFeatureIndex *int   `json:"flat_feature_index"`
    FeatureIndex     *int   `json:"feature_index"`
    FeatureID        string `json:"feature_id"`
}

type treeNodeDoc struct {
    Split *splitDoc    `json:"split"`
    Left  *treeNodeDoc `json:"left"`
    Right *treeNodeDoc `json:"right"`
    Value *float64     `json:"value"`
}

type splitDoc struct {
    SplitType         string   `json:"split_type"`
    FloatFeatureIndex *int     `json:"float_feature_index"`
    CatFeatureIndex   *int     `json:"cat_feature_index"`
    SplitIndex        *int     `json:"split_index"`
    Border            *float64 `json:"border"`
    Value             *float64 `json:"value"`
}

func Load(path string) (*Model, error) {
    f, err := os.Open(path)
    if err != nil { return nil, fmt.Errorf("opening model file: %w", err) }
    defer f.Close()
    m, err := Decode(f)
    if err != nil { return nil, fmt.Errorf("parsing %s: %w", path, err) }
    return m, nil
}

func Decode(r io.Reader) (*Model, error) {
    var doc modelDoc
    if err := json.NewDecoder(r).Decode(&doc); err != nil {
        return nil, &MalformedEnsembleError{Tree: -1, Reason: fmt.Sprintf("decoding model json: %v", err)}
    }
    if len(doc.ObliviousTrees) > 0 && string(doc.ObliviousTrees) != "null" {
        return nil, &UnsupportedTreeFormError{Form: "oblivious", Guidance: retrainGuidance}
    }
    if doc.FeaturesInfo == nil || len(doc.FeaturesInfo.FloatFeatures) == 0 {
        return nil, &MalformedEnsembleError{Tree: -1, Reason: "features_info.float_features missing or empty"}
    }
    if len(doc.Trees) == 0 {
        return nil, &MalformedEnsembleError{Tree: -1, Reason: "no trees in model document"}
    }

    m := &Model{Scale: 1}
    if len(doc.ScaleAndBias) == 2 {
        m.Scale = doc.ScaleAndBias[0]
        m.Bias = doc.ScaleAndBias[1]
    }

    floatNames := map[int]string{}
    maxIdx := -1
    for i, ff := range doc.FeaturesInfo.FloatFeatures {
        idx := -1
        if ff.FlatFeatureIndex != nil {
            idx = *ff.FlatFeatureIndex
        } else if ff.FeatureIndex != nil {
            idx = *ff.FeatureIndex
        }
        if idx < 0 {
            return nil, &MalformedEnsembleError{Tree: -1, Reason: fmt.Sprintf("float feature %d has no index", i)}
        }
        name := ff.FeatureID
        if name == "" { name = fmt.Sprintf("f%d", idx) }
        floatNames[idx] = name
        m.Features = append(m.Features, Feature{Index: idx, Name: name})
        if idx > maxIdx { maxIdx = idx }
    }

    counterIdx := map[int]bool{}
    for i, td := range doc.Trees {
        root, hi, err := buildNode(td, i, "root", counterIdx)
        if err != nil { return nil, err }
        if hi > maxIdx { maxIdx = hi }
        m.Trees = append(m.Trees, Tree{Root: root})
    }

    m.NumFeatures = maxIdx + 1
    m.names = make([]string, m.NumFeatures)
    for i := 0; i < m.NumFeatures; i++ {
        if n, ok := floatNames[i]; ok {
            m.names[i] = n
        } else if counterIdx[i] {
            m.names[i] = fmt.Sprintf("ctr_%d", i)
        } else {
            m.names[i] = fmt.Sprintf("f%d", i)
        }
    }
    return m, nil
}

func buildNode(doc *treeNodeDoc, tree int, path string, counterIdx map[int]bool) (*Node, int, error) {
    if doc == nil {
        return nil, -1, &MalformedEnsembleError{Tree: tree, Node: path, Reason: "missing node"}
    }
    if doc.Value != nil {
        if doc.Split != nil || doc.Left != nil || doc.Right != nil {
            return nil, -1, &MalformedEnsembleError{Tree: tree, Node: path, Reason: "leaf carries split or children"}
        }
        return &Node{IsLeaf: true, Value: *doc.Value}, -1, nil
    }
    if doc.Split == nil {
        return nil, -1, &MalformedEnsembleError{Tree: tree, Node: path, Reason: "node has neither value nor split"}
    }
    if doc.Left == nil || doc.Right == nil {
        return nil, -1, &MalformedEnsembleError{Tree: tree, Node: path, Reason: "split node must have both children"}
    }

    n := &Node{}
    s := doc.Split
    switch s.SplitType {
    case "FloatFeature":
        if s.FloatFeatureIndex == nil || s.Border == nil {
            return nil, -1, &MalformedEnsembleError{Tree: tree, Node: path, Reason: "FloatFeature split needs float_feature_index and border"}
        }
        n.Kind = SplitNumeric
        n.Feature = *s.FloatFeatureIndex
        n.Threshold = *s.Border
    case "OneHotFeature":
        if s.CatFeatureIndex == nil || s.Value == nil {
            return nil, -1, &MalformedEnsembleError{Tree: tree, Node: path, Reason: "OneHotFeature split needs cat_feature_index and value"}
        }
        n.Kind = SplitCategorical
        n.Feature = *s.CatFeatureIndex
        n.Threshold = *s.Value
    case "OnlineCtr":
        if s.SplitIndex == nil || s.Border == nil {
            return nil, -1, &MalformedEnsembleError{Tree: tree, Node: path, Reason: "OnlineCtr split needs split_index and border"}
        }
        n.Kind = SplitCounter
        n.Feature = *s.SplitIndex
        n.Threshold = *s.Border
        counterIdx[n.Feature] = true
    default:
        return nil, -1, &MalformedEnsembleError{Tree: tree, Node: path, Reason: fmt.Sprintf("unknown split type %q", s.SplitType)}
    }
    if n.Feature < 0 {
        return nil, -1, &MalformedEnsembleError{Tree: tree, Node: path, Reason: "negative feature index"}
    }

    left, lh, err := buildNode(doc.Left, tree, path+".left", counterIdx)
    if err != nil { return nil, -1, err }
    right, rh, err := buildNode(doc.Right, tree, path+".right", counterIdx)
    if err != nil { return nil, -1, err }
    n.Left = left
    n.Right = right

    hi := n.Feature
    if lh > hi { hi = lh }
    if rh > hi { hi = rh }
    return n, hi, nil
}
