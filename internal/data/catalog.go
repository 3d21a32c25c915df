package data

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"portfolio-doctor/internal/model"

	"github.com/rs/zerolog/log"
)

var ErrDatasetNotFound = errors.New("dataset not found")

// DatasetInfo describes one market dataset available to the API.
type DatasetInfo struct {
	Name      string `json:"name"`
	File      string `json:"file,omitempty"`
	FirstYear int    `json:"first_year"`
	LastYear  int    `json:"last_year"`
	Years     int    `json:"years"`
}

// Catalog serves the *.csv and *.json datasets of a directory, plus any
// series registered directly. Loaded series are kept in memory.
type Catalog struct {
	dir string

	mu     sync.Mutex
	series map[string]model.MarketSeries
	files  map[string]string
}

func NewCatalog(dir string) *Catalog {
	return &Catalog{
		dir:    dir,
		series: map[string]model.MarketSeries{},
		files:  map[string]string{},
	}
}

// Register makes a series available under name, replacing any previous one.
func (c *Catalog) Register(name string, series model.MarketSeries) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.series[name] = series
}

// Load returns the named dataset, reading it from disk on first use.
func (c *Catalog) Load(ctx context.Context, name string) (model.MarketSeries, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: %q", ErrDatasetNotFound, name)
	}

	c.mu.Lock()
	if s, ok := c.series[name]; ok {
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	path, err := c.find(name)
	if err != nil {
		return nil, err
	}
	s, err := LoadMarket(ctx, path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.series[name] = s
	c.files[name] = path
	return s, nil
}

// List describes every dataset, sorted by name. Files that fail to load are
// skipped and logged.
func (c *Catalog) List(ctx context.Context) ([]DatasetInfo, error) {
	names := map[string]bool{}
	if c.dir != "" {
		entries, err := os.ReadDir(c.dir)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() || !isDatasetFile(e.Name()) {
				continue
			}
			names[strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))] = true
		}
	}
	c.mu.Lock()
	for name := range c.series {
		names[name] = true
	}
	c.mu.Unlock()

	out := make([]DatasetInfo, 0, len(names))
	for name := range names {
		s, err := c.Load(ctx, name)
		if err != nil {
			log.Warn().Err(err).Str("dataset", name).Msg("skipping dataset")
			continue
		}
		c.mu.Lock()
		file := c.files[name]
		c.mu.Unlock()
		out = append(out, DatasetInfo{
			Name:      name,
			File:      file,
			FirstYear: s.FirstYear(),
			LastYear:  s.LastYear(),
			Years:     len(s),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (c *Catalog) find(name string) (string, error) {
	if c.dir == "" {
		return "", fmt.Errorf("%w: %q", ErrDatasetNotFound, name)
	}
	for _, ext := range []string{".csv", ".json"} {
		p := filepath.Join(c.dir, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrDatasetNotFound, name)
}

func isDatasetFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".csv" || ext == ".json"
}
