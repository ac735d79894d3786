package maqam

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/RyanBlaney/sonido-maqam/algorithms/chroma"
	"github.com/RyanBlaney/sonido-maqam/algorithms/common"
	"github.com/RyanBlaney/sonido-maqam/logging"
	"github.com/remeh/sizedwaitgroup"
)

var (
	// ErrScoreSource wraps failures of the statistical scorers
	ErrScoreSource = errors.New("score source failed")

	// ErrInvalidParams is returned for unusable window settings
	ErrInvalidParams = errors.New("invalid timeline parameters")
)

// ScoreSource supplies the transition and classifier maps for one window
type ScoreSource interface {
	Scores(ctx context.Context, sequence []int) (transition, classifier map[string]float64, err error)
}

// ScoreSourceFunc adapts a function to ScoreSource
type ScoreSourceFunc func(ctx context.Context, sequence []int) (map[string]float64, map[string]float64, error)

func (f ScoreSourceFunc) Scores(ctx context.Context, sequence []int) (map[string]float64, map[string]float64, error) {
	return f(ctx, sequence)
}

// TimelineParams describes the windowing and the frame clock
type TimelineParams struct {
	WindowFrames  int `json:"window_frames"`
	HopFrames     int `json:"hop_frames"`
	SampleRate    int `json:"sample_rate"`
	HopSize       int `json:"hop_size"` // samples per chroma frame
	Tonic         int `json:"tonic"`
	BinsPerOctave int `json:"bins_per_octave"`

	Workers       int `json:"workers"`        // <= 1 runs windows in order
	SmoothWindows int `json:"smooth_windows"` // minimum run before a change counts
}

func (p TimelineParams) validate() error {
	switch {
	case p.WindowFrames <= 0:
		return fmt.Errorf("%w: window frames must be positive", ErrInvalidParams)
	case p.HopFrames <= 0:
		return fmt.Errorf("%w: hop frames must be positive", ErrInvalidParams)
	case p.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidParams)
	case p.HopSize <= 0:
		return fmt.Errorf("%w: hop size must be positive", ErrInvalidParams)
	case p.BinsPerOctave <= 0:
		return fmt.Errorf("%w: bins per octave must be positive", ErrInvalidParams)
	}
	return nil
}

func (p TimelineParams) frameTime(frame int) float64 {
	return float64(frame) * float64(p.HopSize) / float64(p.SampleRate)
}

// TimelineWindow is the fused prediction for one slice of the recording
type TimelineWindow struct {
	Start      float64 `json:"start"` // seconds
	End        float64 `json:"end"`
	StartFrame int     `json:"start_frame"`
	EndFrame   int     `json:"end_frame"` // exclusive
	Maqam      string  `json:"maqam"`
	Jins1      string  `json:"jins1"`
	Jins2      string  `json:"jins2"`
	Confidence float64 `json:"confidence"`
}

// Modulation marks a change of maqam between windows
type Modulation struct {
	Time   float64 `json:"time"`
	From   string  `json:"from"`
	To     string  `json:"to"`
	Window int     `json:"window"` // index of the first window of the new maqam
}

// Timeline is the windowed analysis of a whole recording
type Timeline struct {
	Windows     []TimelineWindow `json:"windows"`
	Modulations []Modulation     `json:"modulations"`
	Dominant    string           `json:"dominant"`
}

// Tracker runs the fused prediction over sliding windows
type Tracker struct {
	predictor *Predictor
	logger    logging.Logger
}

// NewTracker creates a tracker. A nil predictor uses the defaults.
func NewTracker(predictor *Predictor) *Tracker {
	if predictor == nil {
		predictor = NewPredictor(nil)
	}

	return &Tracker{
		predictor: predictor,
		logger: logging.WithFields(logging.Fields{
			"component": "timeline_tracker",
		}),
	}
}

type frameSpan struct {
	start, end int
}

// windowSpans slides over frames and drops a trailing window shorter than
// a quarter of the full length
func windowSpans(frames, window, hop int) []frameSpan {
	var spans []frameSpan
	for start := 0; start < frames; start += hop {
		end := min(start+window, frames)
		if (end-start)*4 < window {
			break
		}
		spans = append(spans, frameSpan{start: start, end: end})
	}
	return spans
}

// Track predicts every window of a frame-major chromagram. scores may be nil,
// in which case each window is fused from its symbolic result alone.
func (t *Tracker) Track(ctx context.Context, chromagram [][]float64, params TimelineParams, scores ScoreSource) (*Timeline, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	spans := windowSpans(len(chromagram), params.WindowFrames, params.HopFrames)
	windows := make([]TimelineWindow, len(spans))

	logger := t.logger.WithFields(logging.Fields{
		"function": "Track",
		"frames":   len(chromagram),
		"windows":  len(spans),
		"workers":  params.Workers,
	})
	logger.Debug("Starting timeline")

	process := func(ctx context.Context, i int) error {
		span := spans[i]
		sequence := chroma.ToSequence(chromagram[span.start:span.end], params.Tonic, params.BinsPerOctave)

		var transition, classifier map[string]float64
		if scores != nil {
			var err error
			transition, classifier, err = scores.Scores(ctx, sequence)
			if err != nil {
				return fmt.Errorf("%w: window %d: %w", ErrScoreSource, i, err)
			}
		}

		fused := t.predictor.Predict(sequence, transition, classifier)
		windows[i] = TimelineWindow{
			Start:      params.frameTime(span.start),
			End:        params.frameTime(span.end),
			StartFrame: span.start,
			EndFrame:   span.end,
			Maqam:      fused.Maqam,
			Jins1:      fused.Jins1,
			Jins2:      fused.Jins2,
			Confidence: fused.Confidence,
		}
		return nil
	}

	var err error
	if params.Workers > 1 {
		err = t.trackParallel(ctx, len(spans), params.Workers, process)
	} else {
		for i := range spans {
			if err = ctx.Err(); err != nil {
				break
			}
			if err = process(ctx, i); err != nil {
				break
			}
		}
	}
	if err != nil {
		logger.Error(err, "Timeline aborted")
		return nil, err
	}

	labels := make([]string, len(windows))
	for i, w := range windows {
		labels[i] = w.Maqam
	}
	dominant, _ := common.Mode(labels)
	if dominant == "" {
		dominant = Unknown
	}

	timeline := &Timeline{
		Windows:     windows,
		Modulations: DetectModulations(windows, params.SmoothWindows),
		Dominant:    dominant,
	}

	logger.Debug("Timeline completed", logging.Fields{
		"modulations": len(timeline.Modulations),
		"dominant":    timeline.Dominant,
	})

	return timeline, nil
}

func (t *Tracker) trackParallel(ctx context.Context, n, workers int, process func(context.Context, int) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		once     sync.Once
		firstErr error
	)
	// the first failure stops new windows from being scheduled and cancels
	// the context handed to windows already running
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	wg := sizedwaitgroup.New(workers)
	for i := range n {
		if err := ctx.Err(); err != nil {
			fail(err)
			break
		}

		wg.Add()
		go func(i int) {
			defer wg.Done()
			if err := process(ctx, i); err != nil {
				fail(err)
			}
		}(i)
	}
	wg.Wait()

	return firstErr
}

// DetectModulations reports every change of maqam between consecutive
// windows. With minRun > 1 a new maqam must hold for minRun windows before
// it counts; the event is stamped at the first window of that run.
func DetectModulations(windows []TimelineWindow, minRun int) []Modulation {
	minRun = max(minRun, 1)
	events := []Modulation{}
	if len(windows) == 0 {
		return events
	}

	current := windows[0].Maqam
	for i := 1; i < len(windows); {
		if windows[i].Maqam == current {
			i++
			continue
		}

		run := i
		for run < len(windows) && windows[run].Maqam == windows[i].Maqam {
			run++
		}

		if run-i >= minRun {
			events = append(events, Modulation{
				Time:   windows[i].Start,
				From:   current,
				To:     windows[i].Maqam,
				Window: i,
			})
			current = windows[i].Maqam
		}
		i = run
	}

	return events
}
