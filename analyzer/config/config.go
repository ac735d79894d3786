package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/RyanBlaney/sonido-maqam/algorithms/maqam"
	"github.com/RyanBlaney/sonido-maqam/algorithms/windowing"
	"github.com/RyanBlaney/sonido-maqam/logging"
	"github.com/joho/godotenv"
)

// ErrInvalidConfig is wrapped by every validation and parsing error
var ErrInvalidConfig = errors.New("invalid analyzer config")

// AnalyzerConfig holds every knob of the maqam analyzer
type AnalyzerConfig struct {
	// Symbolic search
	BinsPerOctave int   `json:"bins_per_octave"`
	Tolerance     int   `json:"tolerance"`  // matching slack in bins
	Boundaries    []int `json:"boundaries"` // candidate jins2 roots
	ShareGhammaz  bool  `json:"share_ghammaz"`

	// Chroma extraction
	SampleRate    int     `json:"sample_rate"` // used when callers pass 0
	WindowSize    int     `json:"window_size"`
	HopSize       int     `json:"hop_size"`
	ReferenceFreq float64 `json:"reference_freq"` // pitch class of bin 0, Hz
	MinFreq       float64 `json:"min_freq"`
	MaxFreq       float64 `json:"max_freq"`
	WindowType    string  `json:"window_type"` // hann, hamming or blackman
	RemoveDC      bool    `json:"remove_dc"`

	// Timeline
	TimelineWindowSeconds float64 `json:"timeline_window_seconds"`
	TimelineHopSeconds    float64 `json:"timeline_hop_seconds"`
	TimelineWorkers       int     `json:"timeline_workers"`
	SmoothWindows         int     `json:"smooth_windows"` // 1 reports every change

	// Statistical scoring
	UseBuiltinModels      bool    `json:"use_builtin_models"`
	ModelsPath            string  `json:"models_path,omitempty"` // YAML or JSON transition matrices
	UseProfileClassifier  bool    `json:"use_profile_classifier"`
	ClassifierTemperature float64 `json:"classifier_temperature"`

	LogLevel string `json:"log_level"` // applied to the analyzer logger
}

// DefaultAnalyzerConfig returns the 36-bin defaults
func DefaultAnalyzerConfig() *AnalyzerConfig {
	search := maqam.DefaultSearchConfig()

	return &AnalyzerConfig{
		BinsPerOctave: maqam.DefaultBinsPerOctave,
		Tolerance:     search.Tolerance,
		Boundaries:    search.Boundaries,
		ShareGhammaz:  search.ShareGhammaz,

		SampleRate:    22050,
		WindowSize:    4096,
		HopSize:       512,
		ReferenceFreq: 261.63, // C4
		MinFreq:       80.0,
		MaxFreq:       5000.0,
		WindowType:    "hann",
		RemoveDC:      true,

		TimelineWindowSeconds: 8.0,
		TimelineHopSeconds:    2.0,
		TimelineWorkers:       1,
		SmoothWindows:         1,

		UseBuiltinModels:      true,
		UseProfileClassifier:  false,
		ClassifierTemperature: 0.1,

		LogLevel: "info",
	}
}

// SearchConfig returns the symbolic search settings
func (c *AnalyzerConfig) SearchConfig() maqam.SearchConfig {
	search := maqam.DefaultSearchConfig()
	search.Boundaries = slices.Clone(c.Boundaries)
	search.Tolerance = c.Tolerance
	search.ShareGhammaz = c.ShareGhammaz
	return search
}

// TimelineFrames converts the timeline window and hop to chroma frames
func (c *AnalyzerConfig) TimelineFrames(sampleRate int) (window, hop int) {
	framesPerSecond := float64(sampleRate) / float64(c.HopSize)
	window = max(1, int(c.TimelineWindowSeconds*framesPerSecond))
	hop = max(1, int(c.TimelineHopSeconds*framesPerSecond))
	return window, hop
}

// Validate checks ranges and cross-field constraints
func (c *AnalyzerConfig) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	check(c.BinsPerOctave > 0, "bins_per_octave must be positive")
	check(c.Tolerance >= 0, "tolerance must not be negative")
	check(len(c.Boundaries) > 0, "at least one boundary is required")
	for _, b := range c.Boundaries {
		check(b > 0 && b < c.BinsPerOctave, "boundary %d outside (0, %d)", b, c.BinsPerOctave)
	}

	check(c.SampleRate > 0, "sample_rate must be positive")
	check(c.WindowSize > 0, "window_size must be positive")
	check(c.HopSize > 0, "hop_size must be positive")
	check(c.ReferenceFreq > 0, "reference_freq must be positive")
	check(c.MinFreq >= 0 && c.MinFreq < c.MaxFreq, "frequency range [%g, %g] is empty", c.MinFreq, c.MaxFreq)
	check(slices.Contains(windowing.Names, strings.ToLower(c.WindowType)), "unknown window_type %q", c.WindowType)

	check(c.TimelineWindowSeconds > 0, "timeline_window_seconds must be positive")
	check(c.TimelineHopSeconds > 0, "timeline_hop_seconds must be positive")
	check(c.TimelineWorkers >= 0, "timeline_workers must not be negative")
	check(c.SmoothWindows >= 1, "smooth_windows must be at least 1")
	check(c.ClassifierTemperature > 0, "classifier_temperature must be positive")

	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// LoadFromEnv starts from the defaults, loads the given .env files (or
// ./.env when present) and applies MAQAM_* overrides. Variables already set
// in the environment win over file values.
func LoadFromEnv(files ...string) (*AnalyzerConfig, error) {
	if len(files) > 0 {
		if err := godotenv.Load(files...); err != nil {
			return nil, fmt.Errorf("failed to load env files: %w", err)
		}
	} else if err := godotenv.Load(); err != nil {
		logging.Debug("No .env file found, using environment variables")
	}

	c := DefaultAnalyzerConfig()
	e := envReader{}

	c.BinsPerOctave = e.getInt("MAQAM_BINS_PER_OCTAVE", c.BinsPerOctave)
	c.Tolerance = e.getInt("MAQAM_TOLERANCE", c.Tolerance)
	if c.BinsPerOctave != maqam.DefaultBinsPerOctave && c.BinsPerOctave > 0 {
		c.Boundaries = maqam.BoundariesFor(c.BinsPerOctave)
	}
	c.Boundaries = e.getInts("MAQAM_BOUNDARIES", c.Boundaries)
	c.ShareGhammaz = e.getBool("MAQAM_SHARE_GHAMMAZ", c.ShareGhammaz)

	c.SampleRate = e.getInt("MAQAM_SAMPLE_RATE", c.SampleRate)
	c.WindowSize = e.getInt("MAQAM_WINDOW_SIZE", c.WindowSize)
	c.HopSize = e.getInt("MAQAM_HOP_SIZE", c.HopSize)
	c.ReferenceFreq = e.getFloat("MAQAM_REFERENCE_FREQ", c.ReferenceFreq)
	c.MinFreq = e.getFloat("MAQAM_MIN_FREQ", c.MinFreq)
	c.MaxFreq = e.getFloat("MAQAM_MAX_FREQ", c.MaxFreq)
	c.WindowType = e.getString("MAQAM_WINDOW_TYPE", c.WindowType)
	c.RemoveDC = e.getBool("MAQAM_REMOVE_DC", c.RemoveDC)

	c.TimelineWindowSeconds = e.getFloat("MAQAM_TIMELINE_WINDOW", c.TimelineWindowSeconds)
	c.TimelineHopSeconds = e.getFloat("MAQAM_TIMELINE_HOP", c.TimelineHopSeconds)
	c.TimelineWorkers = e.getInt("MAQAM_TIMELINE_WORKERS", c.TimelineWorkers)
	c.SmoothWindows = e.getInt("MAQAM_SMOOTH_WINDOWS", c.SmoothWindows)

	c.UseBuiltinModels = e.getBool("MAQAM_BUILTIN_MODELS", c.UseBuiltinModels)
	c.ModelsPath = e.getString("MAQAM_MODELS_PATH", c.ModelsPath)
	c.UseProfileClassifier = e.getBool("MAQAM_PROFILE_CLASSIFIER", c.UseProfileClassifier)
	c.ClassifierTemperature = e.getFloat("MAQAM_CLASSIFIER_TEMPERATURE", c.ClassifierTemperature)

	c.LogLevel = e.getString("MAQAM_LOG_LEVEL", c.LogLevel)

	if err := errors.Join(e.errs...); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// envReader collects parse errors so every bad variable is reported at once
type envReader struct {
	errs []error
}

func (e *envReader) getString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (e *envReader) getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return n
}

func (e *envReader) getFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return f
}

func (e *envReader) getBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return b
}

// getInts parses a comma separated list such as "12,15,18,21"
func (e *envReader) getInts(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []int
	for _, field := range strings.Split(value, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return defaultValue
		}
		out = append(out, n)
	}
	return out
}
