package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets keys for the duration of the test; godotenv never
// overrides a variable that is already present, even when empty.
func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestDefaultAnalyzerConfigIsValid(t *testing.T) {
	c := DefaultAnalyzerConfig()

	require.NoError(t, c.Validate())
	assert.Equal(t, 36, c.BinsPerOctave)
	assert.Equal(t, 0, c.Tolerance)
	assert.Equal(t, []int{12, 15, 18, 21}, c.Boundaries)
	assert.Equal(t, 1, c.SmoothWindows)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	c := DefaultAnalyzerConfig()
	c.Boundaries = []int{15, 40}
	c.MinFreq = 6000
	c.SmoothWindows = 0
	c.LogLevel = "loud"
	c.WindowType = "kaiser"

	err := c.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "boundary 40")
	assert.Contains(t, err.Error(), "frequency range")
	assert.Contains(t, err.Error(), "smooth_windows")
	assert.Contains(t, err.Error(), "loud")
	assert.Contains(t, err.Error(), "kaiser")
}

func TestSearchConfig(t *testing.T) {
	c := DefaultAnalyzerConfig()
	c.Tolerance = 1
	c.ShareGhammaz = false

	search := c.SearchConfig()
	search.Boundaries[0] = 99

	assert.Equal(t, 1, search.Tolerance)
	assert.False(t, search.ShareGhammaz)
	assert.Equal(t, 12, c.Boundaries[0])
	assert.Equal(t, 3, search.MinLower)
}

func TestTimelineFrames(t *testing.T) {
	window, hop := DefaultAnalyzerConfig().TimelineFrames(22050)

	// 22050 / 512 is about 43 frames per second
	assert.Equal(t, 344, window)
	assert.Equal(t, 86, hop)

	window, hop = DefaultAnalyzerConfig().TimelineFrames(1)
	assert.Equal(t, 1, window)
	assert.Equal(t, 1, hop)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("MAQAM_TOLERANCE", "1")
	t.Setenv("MAQAM_BOUNDARIES", "15, 21")
	t.Setenv("MAQAM_TIMELINE_WORKERS", "4")
	t.Setenv("MAQAM_BUILTIN_MODELS", "false")
	t.Setenv("MAQAM_REFERENCE_FREQ", "293.66")
	t.Setenv("MAQAM_LOG_LEVEL", "debug")
	t.Setenv("MAQAM_WINDOW_TYPE", "Blackman")
	t.Setenv("MAQAM_REMOVE_DC", "false")

	c, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, 1, c.Tolerance)
	assert.Equal(t, []int{15, 21}, c.Boundaries)
	assert.Equal(t, 4, c.TimelineWorkers)
	assert.False(t, c.UseBuiltinModels)
	assert.Equal(t, 293.66, c.ReferenceFreq)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, "Blackman", c.WindowType)
	assert.False(t, c.RemoveDC)
}

func TestLoadFromEnvDerivesBoundaries(t *testing.T) {
	t.Setenv("MAQAM_BINS_PER_OCTAVE", "24")

	c, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []int{8, 10, 12, 14}, c.Boundaries)
}

func TestLoadFromEnvBadValues(t *testing.T) {
	t.Setenv("MAQAM_HOP_SIZE", "abc")
	t.Setenv("MAQAM_SHARE_GHAMMAZ", "maybe")

	_, err := LoadFromEnv()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "MAQAM_HOP_SIZE")
	assert.Contains(t, err.Error(), "MAQAM_SHARE_GHAMMAZ")
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t, "MAQAM_SAMPLE_RATE", "MAQAM_MODELS_PATH")
	t.Setenv("MAQAM_SMOOTH_WINDOWS", "2")

	path := filepath.Join(t.TempDir(), "maqam.env")
	require.NoError(t, os.WriteFile(path, []byte(
		"MAQAM_SAMPLE_RATE=44100\nMAQAM_SMOOTH_WINDOWS=3\nMAQAM_MODELS_PATH=/srv/models.yaml\n",
	), 0o600))

	c, err := LoadFromEnv(path)
	require.NoError(t, err)

	assert.Equal(t, 44100, c.SampleRate)
	assert.Equal(t, "/srv/models.yaml", c.ModelsPath)
	assert.Equal(t, 2, c.SmoothWindows, "the process environment wins over the file")
}

func TestLoadFromEnvMissingFile(t *testing.T) {
	_, err := LoadFromEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
