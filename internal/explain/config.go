package explain

import (
    "fmt"
    "os"

    yaml "github.com/goccy/go-yaml"
)

type AnalysisConfig struct {
    TopK                 int     `yaml:"top_k" json:"top_k"`
    MinCoverage          float64 `yaml:"min_coverage" json:"min_coverage"`
    SignificanceAlpha    float64 `yaml:"significance_alpha" json:"significance_alpha"`
    NPermutations        int     `yaml:"n_permutations" json:"n_permutations"`
    ChunkSize            int     `yaml:"chunk_size" json:"chunk_size"`
    CacheSize            int     `yaml:"cache_size" json:"cache_size"`
    InstabilityThreshold float64 `yaml:"instability_threshold" json:"instability_threshold"`
    Workers              int     `yaml:"workers" json:"workers"`
    Seed                 int64   `yaml:"seed" json:"seed"`
}

func DefaultAnalysisConfig() AnalysisConfig {
    return AnalysisConfig{
        TopK:                 10,
        MinCoverage:          0.8,
        SignificanceAlpha:    0.05,
        NPermutations:        1000,
        ChunkSize:            1000,
        CacheSize:            128,
        InstabilityThreshold: 0.5,
        Seed:                 1,
    }
}

func LoadAnalysisConfig(path string) (AnalysisConfig, error) {
    cfg := DefaultAnalysisConfig()
    b, err := os.ReadFile(path)
    if err != nil { return cfg, fmt.Errorf("reading analysis config: %w", err) }
    if err := yaml.Unmarshal(b, &cfg); err != nil { return cfg, fmt.Errorf("parsing analysis config: %w", err) }
    return cfg, nil
}
