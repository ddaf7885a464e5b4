package modelstore

type FeatureDescriptor struct {
    Description string   `json:"description"`
    Category    string   `json:"category,omitempty"`
    Items       []string `json:"items,omitempty"`
    Support     float64  `json:"support,omitempty"`
}

type Manifest struct {
    Features map[string]FeatureDescriptor `json:"features"`
}

func (m *Manifest) Describe(feature string) string {
    if m == nil { return "" }
    if d, ok := m.Features[feature]; ok { return d.Description }
    return ""
}
