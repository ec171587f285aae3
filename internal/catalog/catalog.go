package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/statforge/statforge/internal/models"
)

// Catalog provides the configured content sources for a generation run.
type Catalog interface {
	// GetAll returns every source from the manifest.
	GetAll() ([]models.ContentSource, error)

	// GetByIDs returns the subset of sources whose IDs appear in the given
	// set. Unknown IDs are ignored.
	GetByIDs(ids []string) ([]models.ContentSource, error)
}

// manifest mirrors the declarative sources file.
type manifest struct {
	Sources []models.ContentSource `yaml:"sources"`
}

// FileCatalog loads sources from a YAML manifest on disk. The manifest is
// re-read on every call so operators can edit it without restarting the
// service; a missing or malformed file is a fatal error because no run is
// meaningful without a catalog.
type FileCatalog struct {
	path string
}

// NewFileCatalog creates a catalog backed by the manifest at path.
func NewFileCatalog(path string) *FileCatalog {
	return &FileCatalog{path: path}
}

// GetAll loads and parses the manifest.
func (c *FileCatalog) GetAll() ([]models.ContentSource, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("read sources manifest %s: %w", c.path, err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse sources manifest %s: %w", c.path, err)
	}

	for i, src := range m.Sources {
		if src.ID == "" {
			return nil, fmt.Errorf("sources manifest %s: entry %d has no id", c.path, i)
		}
		if src.Endpoint == "" {
			return nil, fmt.Errorf("sources manifest %s: source %q has no endpoint", c.path, src.ID)
		}
		// Unknown type values are kept as data; they surface as a source
		// failure later when no adapter matches.
	}

	return m.Sources, nil
}

// GetByIDs loads the manifest and keeps only the requested sources.
func (c *FileCatalog) GetByIDs(ids []string) ([]models.ContentSource, error) {
	all, err := c.GetAll()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	filtered := make([]models.ContentSource, 0, len(ids))
	for _, src := range all {
		if wanted[src.ID] {
			filtered = append(filtered, src)
		}
	}

	return filtered, nil
}

// StaticCatalog serves a fixed source list. Used by tests and one-shot CLI
// runs that bypass the manifest.
type StaticCatalog struct {
	Sources []models.ContentSource
}

// GetAll returns the fixed source list.
func (c *StaticCatalog) GetAll() ([]models.ContentSource, error) {
	return c.Sources, nil
}

// GetByIDs filters the fixed list by ID.
func (c *StaticCatalog) GetByIDs(ids []string) ([]models.ContentSource, error) {
	if len(ids) == 0 {
		return c.Sources, nil
	}

	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}

	filtered := make([]models.ContentSource, 0, len(ids))
	for _, src := range c.Sources {
		if wanted[src.ID] {
			filtered = append(filtered, src)
		}
	}

	return filtered, nil
}
