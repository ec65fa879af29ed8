package config

import "errors"

// Config is the top-level configuration struct for diffscope.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Annotate AnnotateConfig `mapstructure:"annotate"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Gather   GatherConfig   `mapstructure:"gather"`
	Repo     RepoConfig     `mapstructure:"repo"`
}

// AnnotateConfig holds annotation pipeline settings.
type AnnotateConfig struct {
	// PurposeToAnnotation lists PURPOSE:ANNOTATION pairs forcing a uniform
	// per-line annotation for files with the given purpose. A bare PURPOSE
	// entry maps to itself; an empty entry resets the mapping.
	PurposeToAnnotation []string `mapstructure:"purpose_to_annotation"`

	// ExtToLanguage lists EXT:LANGUAGE pairs overriding language detection.
	ExtToLanguage []string `mapstructure:"ext_to_language"`

	// LineCallback is an expression (inline or a file path) overriding the
	// default line classifier.
	LineCallback string `mapstructure:"line_callback"`

	// MissingOK turns missing diff files into logged skips.
	MissingOK bool `mapstructure:"missing_ok"`

	// Compress writes annotation documents LZ4-compressed.
	Compress bool `mapstructure:"compress"`
}

// DatasetConfig holds the dataset tree layout.
type DatasetConfig struct {
	PatchesDir     string `mapstructure:"patches_dir"`
	AnnotationsDir string `mapstructure:"annotations_dir"`
}

// GatherConfig holds aggregation settings.
type GatherConfig struct {
	// Format tags the on-disk annotation document layout (v1, v1.5, v2).
	Format string `mapstructure:"format"`
}

// RepoConfig holds repository walk settings.
type RepoConfig struct {
	StartRev    string `mapstructure:"start_rev"`
	Limit       int    `mapstructure:"limit"`
	FirstParent bool   `mapstructure:"first_parent"`
	Fanout      bool   `mapstructure:"fanout"`
}

// Default configuration values.
const (
	DefaultPatchesDir     = "patches"
	DefaultAnnotationsDir = "annotation"
	DefaultFormat         = "v2"
)

// Validation sentinel errors.
var (
	ErrEmptyPatchesDir = errors.New("dataset.patches_dir must not be empty")
	ErrUnknownFormat   = errors.New("gather.format must be one of v1, v1.5, v2")
	ErrNegativeLimit   = errors.New("repo.limit must not be negative")
)

// Validate checks configuration invariants.
func (c *Config) Validate() error {
	if c.Dataset.PatchesDir == "" {
		return ErrEmptyPatchesDir
	}

	switch c.Gather.Format {
	case "v1", "v1.5", "v2":
	default:
		return ErrUnknownFormat
	}

	if c.Repo.Limit < 0 {
		return ErrNegativeLimit
	}

	return nil
}
