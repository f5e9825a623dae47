// Package config loads the per-OCR-source tuning profiles of the annotator.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/lenor-project/lenor/pkg/layout"
	"github.com/lenor-project/lenor/pkg/match"
)

var log = logrus.WithField("component", "config")

// ErrUnknownSource is returned by Profile when no profile exists for the OCR source.
var ErrUnknownSource = errors.New("unknown OCR source")

const (
	SourceVision     = "vision"
	SourceDocumentAI = "documentai"
	SourceTesseract  = "tesseract"
)

// Config holds one profile per OCR source.
type Config struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// Profile tunes line reconstruction, matching and rendering for one OCR source.
type Profile struct {
	ClusterThreshold float64   `yaml:"cluster_threshold"`
	WindowTolerance  int       `yaml:"window_tolerance"`
	Underline        Underline `yaml:"underline"`
}

// Underline describes how annotations are drawn on the page.
type Underline struct {
	Thickness float64 `yaml:"thickness"`
	// Distance below the bottom edge of the word.
	Offset    float64 `yaml:"offset"`
	LabelSize float64 `yaml:"label_size"`
	// Hex colors keyed by error type.
	Colors       map[string]string `yaml:"colors"`
	DefaultColor string            `yaml:"default_color"`
}

func defaultUnderline() Underline {
	return Underline{
		Thickness: 3,
		Offset:    2,
		LabelSize: 18,
		Colors: map[string]string{
			"spelling":    "#e53935",
			"grammar":     "#1e88e5",
			"punctuation": "#43a047",
			"improvement": "#fb8c00",
		},
		DefaultColor: "#8e24aa",
	}
}

// Default returns the built-in profiles. Document AI and Tesseract report
// tighter boxes than Vision, hence the lower clustering threshold.
func Default() *Config {
	return &Config{
		Profiles: map[string]Profile{
			SourceVision: {
				ClusterThreshold: layout.DefaultClusterThreshold,
				WindowTolerance:  match.DefaultWindowTolerance,
				Underline:        defaultUnderline(),
			},
			SourceDocumentAI: {
				ClusterThreshold: 10,
				WindowTolerance:  match.DefaultWindowTolerance,
				Underline:        defaultUnderline(),
			},
			SourceTesseract: {
				ClusterThreshold: 10,
				WindowTolerance:  match.DefaultWindowTolerance + 1,
				Underline:        defaultUnderline(),
			},
		},
	}
}

// Load reads path over the defaults. Fields missing from the file keep their
// default value and unknown fields are an error. An empty path or an empty file
// returns the defaults.
func Load(path string) (*Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Unknown keys are rejected so a misspelled field does not silently fall
	// back to its default.
	var file Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	for source, profile := range file.Profiles {
		config.Profiles[source] = merge(config.Profiles[source], profile)
	}

	for source, profile := range config.Profiles {
		if err := profile.Validate(); err != nil {
			return nil, fmt.Errorf("profile %q: %w", source, err)
		}
	}
	return config, nil
}

// LoadOrDefault is Load that falls back to the defaults on any error.
func LoadOrDefault(path string) *Config {
	config, err := Load(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Warn("Using default configuration")
		return Default()
	}
	return config
}

// Profile returns the profile of an OCR source.
func (c *Config) Profile(source string) (Profile, error) {
	profile, ok := c.Profiles[source]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %s", ErrUnknownSource, source)
	}
	return profile, nil
}

func merge(base, override Profile) Profile {
	if base.Underline.Colors == nil {
		base = Profile{
			ClusterThreshold: layout.DefaultClusterThreshold,
			WindowTolerance:  match.DefaultWindowTolerance,
			Underline:        defaultUnderline(),
		}
	}
	if override.ClusterThreshold != 0 {
		base.ClusterThreshold = override.ClusterThreshold
	}
	if override.WindowTolerance != 0 {
		base.WindowTolerance = override.WindowTolerance
	}
	if override.Underline.Thickness != 0 {
		base.Underline.Thickness = override.Underline.Thickness
	}
	if override.Underline.Offset != 0 {
		base.Underline.Offset = override.Underline.Offset
	}
	if override.Underline.LabelSize != 0 {
		base.Underline.LabelSize = override.Underline.LabelSize
	}
	if override.Underline.DefaultColor != "" {
		base.Underline.DefaultColor = override.Underline.DefaultColor
	}
	colors := make(map[string]string, len(base.Underline.Colors))
	for errorType, hex := range base.Underline.Colors {
		colors[errorType] = hex
	}
	for errorType, hex := range override.Underline.Colors {
		colors[errorType] = hex
	}
	base.Underline.Colors = colors
	return base
}

// Validate checks the values a profile cannot work with.
func (p Profile) Validate() error {
	if p.ClusterThreshold < 0 {
		return fmt.Errorf("cluster_threshold must not be negative, got %v", p.ClusterThreshold)
	}
	if p.WindowTolerance < 0 {
		return fmt.Errorf("window_tolerance must not be negative, got %d", p.WindowTolerance)
	}
	if p.Underline.Thickness <= 0 {
		return fmt.Errorf("underline thickness must be positive, got %v", p.Underline.Thickness)
	}
	if _, err := colorful.Hex(p.Underline.DefaultColor); err != nil {
		return fmt.Errorf("default_color: %w", err)
	}
	for errorType, hex := range p.Underline.Colors {
		if _, err := colorful.Hex(hex); err != nil {
			return fmt.Errorf("color of %q: %w", errorType, err)
		}
	}
	return nil
}

// Color returns the underline color of an error type, or the default color.
// The profile is assumed to be valid.
func (u Underline) Color(errorType string) color.Color {
	hex, ok := u.Colors[errorType]
	if !ok {
		hex = u.DefaultColor
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}
	}
	return c
}
