package ensemble

import (
    "strings"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

const stumpDoc = `{
  "features_info": {"float_features": [
    {"flat_feature_index": 0, "feature_id": "amount"},
    {"flat_feature_index": 1, "feature_id": "age"}
  ]},
  "scale_and_bias": [1, 0],
  "trees": [
    {"split": {"split_type": "FloatFeature", "float_feature_index": 0, "border": 5},
     "left": {"value": -1}, "right": {"value": 1}},
    {"split": {"split_type": "FloatFeature", "float_feature_index": 1, "border": 10},
     "left": {"value": -1}, "right": {"value": 1}}
  ]
}`

func TestDecodeStump(t *testing.T) {
    m, err := Decode(strings.NewReader(stumpDoc))
    require.NoError(t, err)

    assert.Equal(t, 2, m.NumFeatures)
    assert.Equal(t, []string{"amount", "age"}, m.FeatureNames())
    assert.Len(t, m.Trees, 2)
    assert.Equal(t, 1.0, m.Scale)
    assert.Equal(t, 0.0, m.Bias)

    idx, ok := m.FeatureIndex("age")
    require.True(t, ok)
    assert.Equal(t, 1, idx)
    _, ok = m.FeatureIndex("missing")
    assert.False(t, ok)
}

func TestDecodeScaleAndBias(t *testing.T) {
    doc := strings.Replace(stumpDoc, `"scale_and_bias": [1, 0]`, `"scale_and_bias": [0.5, -1]`, 1)
    m, err := Decode(strings.NewReader(doc))
    require.NoError(t, err)

    assert.Equal(t, 0.5, m.Scale)
    assert.Equal(t, -1.0, m.Bias)
    assert.InDelta(t, 0.0, m.Margin([]float64{7, 12}), 1e-12)
    assert.Equal(t, 0, m.Predict([]float64{7, 12}), "zero margin stays class 0")
}

func TestDecodeRejectsObliviousTrees(t *testing.T) {
    doc := `{
      "features_info": {"float_features": [{"flat_feature_index": 0}]},
      "oblivious_trees": [{"splits": []}],
      "trees": []
    }`
    _, err := Decode(strings.NewReader(doc))
    var unsupported *UnsupportedTreeFormError
    require.ErrorAs(t, err, &unsupported)
    assert.Equal(t, "oblivious", unsupported.Form)
    assert.Contains(t, err.Error(), "Lossguide", "the error must tell the caller how to re-export")
}

func TestDecodeMalformed(t *testing.T) {
    cases := []struct {
        name   string
        doc    string
        tree   int
        node   string
        reason string
    }{
        {
            name:   "not json",
            doc:    `{"trees": `,
            tree:   -1,
            reason: "decoding model json",
        },
        {
            name:   "missing features info",
            doc:    `{"trees": [{"value": 1}]}`,
            tree:   -1,
            reason: "features_info",
        },
        {
            name:   "no trees",
            doc:    `{"features_info": {"float_features": [{"flat_feature_index": 0}]}, "trees": []}`,
            tree:   -1,
            reason: "no trees",
        },
        {
            name: "split missing child",
            doc: `{
              "features_info": {"float_features": [{"flat_feature_index": 0}]},
              "trees": [
                {"split": {"split_type": "FloatFeature", "float_feature_index": 0, "border": 5},
                 "left": {"split": {"split_type": "FloatFeature", "float_feature_index": 0, "border": 2},
                          "left": {"value": -1}},
                 "right": {"value": 1}}
              ]
            }`,
            tree:   0,
            node:   "root.left",
            reason: "both children",
        },
        {
            name: "leaf with children",
            doc: `{
              "features_info": {"float_features": [{"flat_feature_index": 0}]},
              "trees": [{"value": 1, "left": {"value": -1}}]
            }`,
            tree:   0,
            node:   "root",
            reason: "leaf carries",
        },
        {
            name: "unknown split type",
            doc: `{
              "features_info": {"float_features": [{"flat_feature_index": 0}]},
              "trees": [
                {"split": {"split_type": "Mystery", "float_feature_index": 0, "border": 5},
                 "left": {"value": -1}, "right": {"value": 1}}
              ]
            }`,
            tree:   0,
            node:   "root",
            reason: "unknown split type",
        },
        {
            name: "split without fields",
            doc: `{
              "features_info": {"float_features": [{"flat_feature_index": 0}]},
              "trees": [
                {"split": {"split_type": "FloatFeature"},
                 "left": {"value": -1}, "right": {"value": 1}}
              ]
            }`,
            tree:   0,
            node:   "root",
            reason: "float_feature_index and border",
        },
        {
            name: "empty node",
            doc: `{
              "features_info": {"float_features": [{"flat_feature_index": 0}]},
              "trees": [{}]
            }`,
            tree:   0,
            node:   "root",
            reason: "neither value nor split",
        },
    }

    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            _, err := Decode(strings.NewReader(tc.doc))
            var malformed *MalformedEnsembleError
            require.ErrorAs(t, err, &malformed)
            assert.Equal(t, tc.tree, malformed.Tree)
            assert.Equal(t, tc.node, malformed.Node)
            assert.Contains(t, malformed.Reason, tc.reason)
        })
    }
}

func TestDecodeCategoricalAndCounterSplits(t *testing.T) {
    doc := `{
      "features_info": {"float_features": [
        {"flat_feature_index": 0, "feature_id": "amount"},
        {"flat_feature_index": 1, "feature_id": "age"}
      ]},
      "trees": [
        {"split": {"split_type": "OneHotFeature", "cat_feature_index": 2, "value": 3},
         "left": {"value": -1}, "right": {"value": 1}},
        {"split": {"split_type": "OnlineCtr", "split_index": 3, "border": 0.5},
         "left": {"value": -1}, "right": {"value": 1}}
      ]
    }`
    m, err := Decode(strings.NewReader(doc))
    require.NoError(t, err)

    assert.Equal(t, 4, m.NumFeatures)
    assert.Equal(t, []string{"amount", "age", "f2", "ctr_3"}, m.FeatureNames())

    assert.Equal(t, SplitCategorical, m.Trees[0].Root.Kind)
    assert.Equal(t, SplitCounter, m.Trees[1].Root.Kind)

    assert.Equal(t, 0, m.Predict([]float64{0, 0, 3, 0.7}), "equality keeps the left branch")
    assert.Equal(t, 1, m.Predict([]float64{0, 0, 4, 0.7}))
}
