package modelstore

import (
    "fmt"
    "os"
    "path/filepath"
    "sync"

    json "github.com/goccy/go-json"
    "golang.org/x/sync/singleflight"

    "github.com/Jerome3590/phts/internal/ensemble"
)

type CohortModels struct {
    BestModel string   `json:"best_model"`
    Models    []string `json:"models,omitempty"`
}

type Metadata struct {
    Models map[string]CohortModels `json:"models"`
}

// Store loads exported ensembles, feature manifests and run metadata from a
// directory, keeping parsed results in memory. Concurrent loads of the same
// ref collapse into a single parse.
type Store struct {
    dir string
    sf  singleflight.Group

    mu        sync.RWMutex
    ensembles map[string]*ensemble.Model
    manifests map[string]*Manifest
    meta      *Metadata
}

func New(dir string) *Store {
    return &Store{dir: dir, ensembles: map[string]*ensemble.Model{}, manifests: map[string]*Manifest{}}
}

func (s *Store) path(ref string) string { return filepath.Join(s.dir, ref) }

func (s *Store) LoadEnsemble(ref string) (*ensemble.Model, error) {
    s.mu.RLock()
    m, ok := s.ensembles[ref]
    s.mu.RUnlock()
    if ok { return m, nil }
    v, err, _ := s.sf.Do("ensemble:"+ref, func() (interface{}, error) {
        m, err := ensemble.Load(s.path(ref))
        if err != nil { return nil, err }
        s.mu.Lock()
        s.ensembles[ref] = m
        s.mu.Unlock()
        return m, nil
    })
    if err != nil { return nil, err }
    return v.(*ensemble.Model), nil
}

func (s *Store) LoadManifest(ref string) (*Manifest, error) {
    s.mu.RLock()
    m, ok := s.manifests[ref]
    s.mu.RUnlock()
    if ok { return m, nil }
    v, err, _ := s.sf.Do("manifest:"+ref, func() (interface{}, error) {
        var m Manifest
        if err := readJSON(s.path(ref), &m); err != nil { return nil, err }
        s.mu.Lock()
        s.manifests[ref] = &m
        s.mu.Unlock()
        return &m, nil
    })
    if err != nil { return nil, err }
    return v.(*Manifest), nil
}

func (s *Store) Metadata() (*Metadata, error) {
    s.mu.RLock()
    md := s.meta
    s.mu.RUnlock()
    if md != nil { return md, nil }
    v, err, _ := s.sf.Do("metadata", func() (interface{}, error) {
        var m Metadata
        if err := readJSON(s.path("metadata.json"), &m); err != nil { return nil, err }
        s.mu.Lock()
        s.meta = &m
        s.mu.Unlock()
        return &m, nil
    })
    if err != nil { return nil, err }
    return v.(*Metadata), nil
}

func (s *Store) BestModel(cohort string) (string, error) {
    md, err := s.Metadata()
    if err != nil { return "", err }
    cm, ok := md.Models[cohort]
    if !ok { return "", fmt.Errorf("no models registered for cohort %q", cohort) }
    if cm.BestModel == "" { return "", fmt.Errorf("cohort %q has no best model set", cohort) }
    return cm.BestModel, nil
}

func readJSON(path string, v interface{}) error {
    b, err := os.ReadFile(path)
    if err != nil { return fmt.Errorf("reading %s: %w", path, err) }
    if err := json.Unmarshal(b, v); err != nil { return fmt.Errorf("parsing %s: %w", path, err) }
    return nil
}
