package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/RyanBlaney/sonido-maqam/algorithms/chroma"
	"github.com/RyanBlaney/sonido-maqam/algorithms/filters"
	"github.com/RyanBlaney/sonido-maqam/algorithms/maqam"
	"github.com/RyanBlaney/sonido-maqam/algorithms/seyir"
	"github.com/RyanBlaney/sonido-maqam/algorithms/windowing"
	"github.com/RyanBlaney/sonido-maqam/analyzer/config"
	"github.com/RyanBlaney/sonido-maqam/logging"
	"github.com/RyanBlaney/sonido-maqam/transcode"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

var (
	// ErrEmptyInput is returned when there is nothing to analyze
	ErrEmptyInput = errors.New("empty input")

	// ErrFeatureExtraction wraps chroma extraction failures
	ErrFeatureExtraction = errors.New("feature extraction failed")

	// ErrScoring wraps transition or classifier failures
	ErrScoring = errors.New("scoring failed")
)

// Report is the outcome of one fused analysis
type Report struct {
	ID               string                `json:"id"`
	Timestamp        time.Time             `json:"timestamp"`
	Tonic            int                   `json:"tonic"` // chroma bin used as bin 0
	SequenceLength   int                   `json:"sequence_length"`
	Prediction       maqam.FusedPrediction `json:"prediction"`
	TransitionScores map[string]float64    `json:"transition_scores"`
	ClassifierScores map[string]float64    `json:"classifier_scores"`
	ProcessingTime   time.Duration         `json:"processing_time"`
}

// Summary renders the report on one line
func (r *Report) Summary() string {
	return fmt.Sprintf("%s (%.0f%% confidence, %s by %s, %s notes)",
		r.Prediction.Maqam,
		r.Prediction.Confidence*100,
		r.Prediction.Jins1+"/"+r.Prediction.Jins2,
		r.Prediction.SelectedBy,
		humanize.Comma(int64(r.SequenceLength)),
	)
}

var _ maqam.ScoreSource = (*MaqamAnalyzer)(nil)

// MaqamAnalyzer runs the whole pipeline: samples to chroma, chroma to a
// tonic-relative sequence, sequence to symbolic and statistical scores, and
// finally the fused prediction or a timeline.
type MaqamAnalyzer struct {
	config     *config.AnalyzerConfig
	catalog    *maqam.Catalog
	predictor  *maqam.Predictor
	tracker    *maqam.Tracker
	models     *seyir.ModelSet
	classifier seyir.Classifier
	logger     logging.Logger
}

// NewMaqamAnalyzer validates the configuration and wires the scorers. A nil
// config uses DefaultAnalyzerConfig.
func NewMaqamAnalyzer(cfg *config.AnalyzerConfig, opts ...Option) (*MaqamAnalyzer, error) {
	if cfg == nil {
		cfg = config.DefaultAnalyzerConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = logging.WithFields(logging.Fields{
			"component": "maqam_analyzer",
		})
	}
	level, _ := logging.ParseLevel(cfg.LogLevel) // checked by Validate
	o.logger.SetLevel(level)

	if o.catalog == nil {
		o.catalog = maqam.DefaultCatalog()
	}
	if o.catalog.BinsPerOctave() != cfg.BinsPerOctave {
		return nil, fmt.Errorf("%w: catalog has %d bins per octave, config has %d",
			config.ErrInvalidConfig, o.catalog.BinsPerOctave(), cfg.BinsPerOctave)
	}

	models, err := loadModels(cfg, o)
	if err != nil {
		return nil, err
	}

	classifier := o.classifier
	if classifier == nil && cfg.UseProfileClassifier && models.Len() > 0 {
		classifier = seyir.NewProfileClassifier(models, cfg.ClassifierTemperature)
	}

	predictor := maqam.NewPredictor(maqam.NewSearcher(o.catalog, cfg.SearchConfig()))

	o.logger.Debug("Maqam analyzer ready", logging.Fields{
		"bins_per_octave": cfg.BinsPerOctave,
		"maqamat":         len(o.catalog.MaqamNames()),
		"models":          models.Len(),
		"classifier":      classifier != nil,
	})

	return &MaqamAnalyzer{
		config:     cfg,
		catalog:    o.catalog,
		predictor:  predictor,
		tracker:    maqam.NewTracker(predictor),
		models:     models,
		classifier: classifier,
		logger:     o.logger,
	}, nil
}

func loadModels(cfg *config.AnalyzerConfig, o *options) (*seyir.ModelSet, error) {
	var (
		models *seyir.ModelSet
		err    error
	)

	switch {
	case o.models != nil:
		models = o.models
	case cfg.ModelsPath != "":
		models, err = loadModelFile(cfg.ModelsPath, cfg.BinsPerOctave)
	case cfg.UseBuiltinModels:
		models, err = seyir.BuiltinModels(o.catalog, cfg.BinsPerOctave)
	default:
		models = seyir.NewModelSet(cfg.BinsPerOctave)
	}
	if err != nil {
		return nil, err
	}

	if models.Bins() != cfg.BinsPerOctave {
		return nil, fmt.Errorf("%w: models have %d bins, config has %d", seyir.ErrInvalidModel, models.Bins(), cfg.BinsPerOctave)
	}
	return models, nil
}

func loadModelFile(path string, bins int) (*seyir.ModelSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open models: %w", err)
	}
	defer f.Close()

	models, err := seyir.LoadModels(f, bins)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return models, nil
}

// Config returns the analyzer configuration
func (a *MaqamAnalyzer) Config() *config.AnalyzerConfig {
	return a.config
}

// Models returns the transition models used for scoring
func (a *MaqamAnalyzer) Models() *seyir.ModelSet {
	return a.models
}

// AnalyzeSequence is the symbolic-only path over a tonic-relative sequence
func (a *MaqamAnalyzer) AnalyzeSequence(sequence []int) maqam.Prediction {
	return a.predictor.Analyze(sequence)
}

// Scores computes the transition log-likelihoods and classifier
// probabilities of a sequence. It makes the analyzer a maqam.ScoreSource.
func (a *MaqamAnalyzer) Scores(ctx context.Context, sequence []int) (map[string]float64, map[string]float64, error) {
	transition := a.models.Score(sequence)

	classifier := map[string]float64{}
	if a.classifier != nil {
		features := seyir.TransitionMatrix(sequence, a.config.BinsPerOctave)

		probabilities, err := a.classifier.PredictProba(ctx, features)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: classifier: %w", ErrScoring, err)
		}
		classifier = probabilities
	}

	return transition, classifier, nil
}

// Predict fuses the symbolic analysis of a tonic-relative sequence with the
// statistical scores
func (a *MaqamAnalyzer) Predict(ctx context.Context, sequence []int) (*Report, error) {
	if len(sequence) == 0 {
		return nil, fmt.Errorf("%w: no pitch sequence", ErrEmptyInput)
	}
	return a.predict(ctx, sequence, 0)
}

func (a *MaqamAnalyzer) predict(ctx context.Context, sequence []int, tonic int) (*Report, error) {
	start := time.Now()

	logger := a.logger.WithFields(logging.Fields{
		"function": "Predict",
		"notes":    humanize.Comma(int64(len(sequence))),
		"tonic":    tonic,
	})

	transition, classifier, err := a.Scores(ctx, sequence)
	if err != nil {
		logger.Error(err, "Failed to score sequence")
		return nil, err
	}

	report := &Report{
		ID:               uuid.New().String(),
		Timestamp:        start,
		Tonic:            tonic,
		SequenceLength:   len(sequence),
		Prediction:       a.predictor.Predict(sequence, transition, classifier),
		TransitionScores: transition,
		ClassifierScores: classifier,
	}
	report.ProcessingTime = time.Since(start)

	logger.Debug("Prediction completed", logging.Fields{
		"maqam":       report.Prediction.Maqam,
		"confidence":  report.Prediction.Confidence,
		"selected_by": report.Prediction.SelectedBy,
		"took":        report.ProcessingTime.String(),
	})

	return report, nil
}

// AnalyzeChromagram finds the tonic of a frame-major chromagram, reduces it
// to a tonic-relative sequence and predicts
func (a *MaqamAnalyzer) AnalyzeChromagram(ctx context.Context, chromagram [][]float64) (*Report, error) {
	sequence, tonic, err := a.sequence(chromagram)
	if err != nil {
		return nil, err
	}
	return a.predict(ctx, sequence, tonic)
}

func (a *MaqamAnalyzer) sequence(chromagram [][]float64) ([]int, int, error) {
	if err := a.checkChromagram(chromagram); err != nil {
		return nil, 0, err
	}

	tonic, _ := chroma.FindTonic(chromagram)
	return chroma.ToSequence(chromagram, tonic, a.config.BinsPerOctave), tonic, nil
}

func (a *MaqamAnalyzer) checkChromagram(chromagram [][]float64) error {
	if len(chromagram) == 0 {
		return fmt.Errorf("%w: no chroma frames", ErrEmptyInput)
	}
	for t, frame := range chromagram {
		if len(frame) != a.config.BinsPerOctave {
			return fmt.Errorf("%w: frame %d has %d bins, want %d", ErrFeatureExtraction, t, len(frame), a.config.BinsPerOctave)
		}
	}
	return nil
}

// resolveSampleRate resolves a caller-supplied rate; 0 means the configured rate
func (a *MaqamAnalyzer) resolveSampleRate(rate int) (int, error) {
	switch {
	case rate == 0:
		return a.config.SampleRate, nil
	case rate < 0:
		return 0, fmt.Errorf("%w: sample rate must be positive, got %d", config.ErrInvalidConfig, rate)
	}
	return rate, nil
}

// Chromagram extracts the analyzer's chroma representation from mono
// samples. A sampleRate of 0 uses the configured rate.
func (a *MaqamAnalyzer) Chromagram(samples []float64, sampleRate int) ([][]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrEmptyInput)
	}
	sampleRate, err := a.resolveSampleRate(sampleRate)
	if err != nil {
		return nil, err
	}

	window, err := windowing.New(a.config.WindowType, a.config.WindowSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeatureExtraction, err)
	}

	if a.config.RemoveDC {
		samples = filters.NewDCRemoval().ProcessBuffer(samples)
	}

	extractor := chroma.NewChromaSTFT(sampleRate, a.config.BinsPerOctave, a.config.ReferenceFreq)
	extractor.SetFrequencyRange(a.config.MinFreq, a.config.MaxFreq)

	chromagram, err := extractor.ComputeChroma(samples, a.config.WindowSize, a.config.HopSize, window)
	if err != nil {
		a.logger.Error(err, "Failed to compute chroma", logging.Fields{
			"samples":     humanize.Comma(int64(len(samples))),
			"sample_rate": sampleRate,
		})
		return nil, fmt.Errorf("%w: %w", ErrFeatureExtraction, err)
	}

	return chromagram, nil
}

// AnalyzeSamples runs the full pipeline on mono PCM
func (a *MaqamAnalyzer) AnalyzeSamples(ctx context.Context, samples []float64, sampleRate int) (*Report, error) {
	chromagram, err := a.Chromagram(samples, sampleRate)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeChromagram(ctx, chromagram)
}

// AnalyzeAudio downmixes decoded audio and runs the full pipeline
func (a *MaqamAnalyzer) AnalyzeAudio(ctx context.Context, audio *transcode.AudioData) (*Report, error) {
	if audio == nil {
		return nil, fmt.Errorf("%w: audio data cannot be nil", ErrEmptyInput)
	}
	if err := audio.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmptyInput, err)
	}
	return a.AnalyzeSamples(ctx, audio.Mono(), audio.SampleRate)
}

// Timeline tracks the maqam over a chromagram whose frames are HopSize
// samples apart at sampleRate (0 for the configured rate). The tonic is
// taken over the whole recording.
func (a *MaqamAnalyzer) Timeline(ctx context.Context, chromagram [][]float64, sampleRate int) (*maqam.Timeline, error) {
	if err := a.checkChromagram(chromagram); err != nil {
		return nil, err
	}
	sampleRate, err := a.resolveSampleRate(sampleRate)
	if err != nil {
		return nil, err
	}

	tonic, _ := chroma.FindTonic(chromagram)
	window, hop := a.config.TimelineFrames(sampleRate)

	params := maqam.TimelineParams{
		WindowFrames:  window,
		HopFrames:     hop,
		SampleRate:    sampleRate,
		HopSize:       a.config.HopSize,
		Tonic:         tonic,
		BinsPerOctave: a.config.BinsPerOctave,
		Workers:       a.config.TimelineWorkers,
		SmoothWindows: a.config.SmoothWindows,
	}

	a.logger.Debug("Tracking timeline", logging.Fields{
		"frames":        humanize.Comma(int64(len(chromagram))),
		"window_frames": window,
		"hop_frames":    hop,
		"tonic":         tonic,
	})

	return a.tracker.Track(ctx, chromagram, params, a)
}

// TimelineSamples extracts chroma from mono PCM and tracks it
func (a *MaqamAnalyzer) TimelineSamples(ctx context.Context, samples []float64, sampleRate int) (*maqam.Timeline, error) {
	chromagram, err := a.Chromagram(samples, sampleRate)
	if err != nil {
		return nil, err
	}
	return a.Timeline(ctx, chromagram, sampleRate)
}

// JinsStructure returns the declared jins pair of a maqam
func (a *MaqamAnalyzer) JinsStructure(name string) maqam.Structure {
	return a.catalog.JinsStructure(name)
}

// ScaleTemplate returns the octave template of a maqam
func (a *MaqamAnalyzer) ScaleTemplate(name string) ([]int, bool) {
	return a.catalog.ScaleTemplate(name)
}
