// Package taxonomy loads the canonical tag vocabulary and the consolidation map.
package taxonomy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/sitekit/internal/apperr"
)

// State describes how a Config came to be.
type State int

const (
	// StateAbsent means no configuration file exists.
	StateAbsent State = iota
	// StateInvalid means a file exists but could not be used.
	StateInvalid
	// StateLoaded means the file was parsed and validated.
	StateLoaded
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateInvalid:
		return "invalid"
	default:
		return "absent"
	}
}

// Document is the on-disk JSON shape.
type Document struct {
	CanonicalTags    []string          `json:"canonicalTags"`
	ConsolidationMap map[string]string `json:"consolidationMap"`
}

// Validate checks that no tag or mapping side is empty.
func (d *Document) Validate() error {
	return validation.ValidateStruct(d,
		validation.Field(&d.CanonicalTags, validation.Each(validation.Required)),
		validation.Field(&d.ConsolidationMap,
			validation.Each(validation.Required),
			validation.By(nonEmptyKeys),
		),
	)
}

func nonEmptyKeys(value interface{}) error {
	m, _ := value.(map[string]string)
	if _, ok := m[""]; ok {
		return errors.New("keys cannot be blank")
	}
	return nil
}

// Config is the read-only canonical tag configuration. A nil *Config behaves
// like an absent one.
type Config struct {
	state         State
	path          string
	canonical     map[string]struct{}
	consolidation map[string]string
}

// Load reads the configuration at path.
//
// A missing file yields an absent config and no error. A file that cannot be
// parsed or fails validation yields an invalid config together with an error
// wrapping apperr.ErrInvalidTaxonomy; callers may log it and continue. Any
// other read failure is returned with a nil config.
func Load(path string) (*Config, error) {
	cfg := &Config{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("taxonomy: read %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		cfg.state = StateInvalid
		return cfg, fmt.Errorf("taxonomy: parse %s: %w: %v", path, apperr.ErrInvalidTaxonomy, err)
	}
	if err := doc.Validate(); err != nil {
		cfg.state = StateInvalid
		return cfg, fmt.Errorf("taxonomy: validate %s: %w: %v", path, apperr.ErrInvalidTaxonomy, err)
	}

	loaded := New(doc.CanonicalTags, doc.ConsolidationMap)
	loaded.path = path
	return loaded, nil
}

// New builds a loaded Config from in-memory values.
func New(canonical []string, consolidation map[string]string) *Config {
	cfg := &Config{
		state:         StateLoaded,
		canonical:     make(map[string]struct{}, len(canonical)),
		consolidation: make(map[string]string, len(consolidation)),
	}
	for _, t := range canonical {
		cfg.canonical[t] = struct{}{}
	}
	for from, to := range consolidation {
		cfg.consolidation[from] = to
	}
	return cfg
}

// State reports whether the config is absent, invalid or loaded.
func (c *Config) State() State {
	if c == nil {
		return StateAbsent
	}
	return c.state
}

// Path returns the file the config was read from, if any.
func (c *Config) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

// Replacement returns the consolidation target for tag.
func (c *Config) Replacement(tag string) (string, bool) {
	if c == nil {
		return "", false
	}
	to, ok := c.consolidation[tag]
	return to, ok
}

// IsCanonical reports whether tag is part of the approved vocabulary.
func (c *Config) IsCanonical(tag string) bool {
	if c == nil {
		return false
	}
	_, ok := c.canonical[tag]
	return ok
}

// CanonicalCount returns the size of the approved vocabulary.
func (c *Config) CanonicalCount() int {
	if c == nil {
		return 0
	}
	return len(c.canonical)
}

// Drift returns consolidation targets that are missing from the canonical
// list, sorted. Empty when no canonical list was supplied.
func (c *Config) Drift() []string {
	if c == nil || len(c.canonical) == 0 {
		return nil
	}
	seen := make(map[string]struct{})
	var out []string
	for _, to := range c.consolidation {
		if c.IsCanonical(to) {
			continue
		}
		if _, dup := seen[to]; dup {
			continue
		}
		seen[to] = struct{}{}
		out = append(out, to)
	}
	sort.Strings(out)
	return out
}
