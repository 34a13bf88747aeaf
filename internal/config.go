package internal

import (
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/sitekit/internal/tagusage"
)

// Config represents the application configuration.
type Config struct {
	App      ApplicationConfig `yaml:"app"`
	Content  ContentConfig     `yaml:"content"`
	Taxonomy TaxonomyConfig    `yaml:"taxonomy"`
	Analysis AnalysisConfig    `yaml:"analysis"`
	Render   RenderConfig      `yaml:"render"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Content.Validate(); err != nil {
		return err
	}
	if err := c.Analysis.Validate(); err != nil {
		return err
	}
	return c.Render.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// ContentConfig describes where posts live and which files count as posts.
type ContentConfig struct {
	Dir        string   `yaml:"dir"`
	Extensions []string `yaml:"extensions"`
	Workers    int      `yaml:"workers"`
}

// Validate validates the content configuration.
func (c *ContentConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Extensions, validation.Required, validation.Each(
			validation.Required,
			validation.Length(2, 0),
			validation.By(dotPrefixed),
		)),
		validation.Field(&c.Workers, validation.Min(1), validation.Max(64)),
	)
}

func dotPrefixed(value interface{}) error {
	s, _ := value.(string)
	if s != "" && s[0] != '.' {
		return validation.NewError("validation_ext_dot", "must start with a dot")
	}
	return nil
}

// TaxonomyConfig points at the canonical tag JSON. A missing file is allowed.
type TaxonomyConfig struct {
	Path string `yaml:"path"`
}

// AnalysisConfig tunes the tag usage report.
type AnalysisConfig struct {
	ReuseThreshold float64         `yaml:"reuse_threshold"`
	Rules          []tagusage.Rule `yaml:"rules"`
}

// Validate validates the analysis configuration.
func (c *AnalysisConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ReuseThreshold, validation.Min(0.0), validation.Max(1.0)),
		validation.Field(&c.Rules),
	)
}

// RenderConfig holds the output location of rendered fragments.
type RenderConfig struct {
	OutDir string `yaml:"out_dir"`
}

// Validate validates the render configuration.
func (c *RenderConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.OutDir, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Content: ContentConfig{
			Dir:        "./src/content/blog",
			Extensions: []string{".md", ".mdx"},
			Workers:    4,
		},
		Taxonomy: TaxonomyConfig{
			Path: "./src/data/canonical-tags.json",
		},
		Analysis: AnalysisConfig{
			ReuseThreshold: tagusage.DefaultReuseThreshold,
			Rules:          tagusage.DefaultRules(),
		},
		Render: RenderConfig{
			OutDir: "./dist/fragments",
		},
	}
}
