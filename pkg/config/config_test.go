package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenor-project/lenor/pkg/layout"
	"github.com/lenor-project/lenor/pkg/match"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lenor.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)

	vision, err := config.Profile(SourceVision)
	require.NoError(t, err)
	assert.Equal(t, layout.DefaultClusterThreshold, vision.ClusterThreshold)
	assert.Equal(t, match.DefaultWindowTolerance, vision.WindowTolerance)

	for _, source := range []string{SourceVision, SourceDocumentAI, SourceTesseract} {
		profile, err := config.Profile(source)
		require.NoError(t, err, source)
		assert.NoError(t, profile.Validate(), source)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
profiles:
  vision:
    cluster_threshold: 20
    underline:
      thickness: 5
      colors:
        spelling: "#000000"
        style: "#ffffff"
  handwriting:
    window_tolerance: 6
`)

	config, err := Load(path)
	require.NoError(t, err)

	vision, err := config.Profile(SourceVision)
	require.NoError(t, err)
	assert.Equal(t, 20.0, vision.ClusterThreshold)
	assert.Equal(t, match.DefaultWindowTolerance, vision.WindowTolerance, "unset fields keep their default")
	assert.Equal(t, 5.0, vision.Underline.Thickness)
	assert.Equal(t, "#000000", vision.Underline.Colors["spelling"])
	assert.Equal(t, "#ffffff", vision.Underline.Colors["style"])
	assert.Equal(t, "#1e88e5", vision.Underline.Colors["grammar"])

	custom, err := config.Profile("handwriting")
	require.NoError(t, err)
	assert.Equal(t, 6, custom.WindowTolerance)
	assert.Equal(t, layout.DefaultClusterThreshold, custom.ClusterThreshold)

	assert.Equal(t, "#1e88e5", Default().Profiles[SourceVision].Underline.Colors["grammar"], "defaults are not shared")
	assert.Equal(t, "#e53935", Default().Profiles[SourceVision].Underline.Colors["spelling"])
}

func TestLoadErrors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "invalid yaml", content: ":::invalid yaml:::"},
		{name: "misspelled profiles key", content: "profile:\n  vision:\n    cluster_threshold: 20\n"},
		{name: "misspelled profile field", content: "profiles:\n  vision:\n    cluster_treshold: 20\n"},
		{name: "not a mapping", content: "- vision\n"},
		{name: "bad color", content: "profiles:\n  vision:\n    underline:\n      colors:\n        spelling: red\n"},
		{name: "negative threshold", content: "profiles:\n  vision:\n    cluster_threshold: -1\n"},
		{name: "negative tolerance", content: "profiles:\n  tesseract:\n    window_tolerance: -2\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			assert.Error(t, err)
		})
	}

	_, err := Load("/nonexistent/lenor.yaml")
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	config, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
}

func TestLoadOrDefault(t *testing.T) {
	config := LoadOrDefault("/nonexistent/lenor.yaml")
	require.NotNil(t, config)
	assert.Equal(t, Default(), config)

	config = LoadOrDefault(writeConfig(t, ":::invalid yaml:::"))
	assert.Equal(t, Default(), config)
}

func TestProfileUnknownSource(t *testing.T) {
	_, err := Default().Profile("textract")
	assert.ErrorIs(t, err, ErrUnknownSource)
}

func TestUnderlineColor(t *testing.T) {
	underline := Default().Profiles[SourceVision].Underline

	spelling, err := colorful.Hex("#e53935")
	require.NoError(t, err)
	fallback, err := colorful.Hex("#8e24aa")
	require.NoError(t, err)

	assert.Equal(t, spelling, underline.Color("spelling"))
	assert.Equal(t, fallback, underline.Color("vocabulary"))
}
