package maqam

import (
	"github.com/RyanBlaney/sonido-maqam/algorithms/common"
)

// Source names a signal taking part in fusion
type Source string

const (
	SourceSymbolic   Source = "symbolic"
	SourceClassifier Source = "classifier"
	SourceTransition Source = "transition"
)

// Contribution is one confidence value that entered the fused average
type Contribution struct {
	Source Source  `json:"source"`
	Value  float64 `json:"value"`
}

// FusedPrediction is the final answer. The embedded Prediction names the
// winning maqam with the unified confidence; Jins1/Jins2 are the jins heard
// by the symbolic path.
type FusedPrediction struct {
	Prediction
	SelectedBy    Source         `json:"selected_by"`
	Symbolic      Prediction     `json:"symbolic"`
	Contributions []Contribution `json:"contributions"`
}

// Fuse reconciles a symbolic prediction with statistical scores.
//
// Selection is strict priority: classifier arg-max, then transition arg-max,
// then the symbolic maqam. Confidence is computed afterwards as the mean of
// the symbolic confidence (whichever maqam it named), the classifier
// probability of the winner, and the winner's min-max scaled transition
// score when the transition map has a usable range.
func Fuse(symbolic Prediction, transition, classifier map[string]float64) FusedPrediction {
	winner, selectedBy := symbolic.Maqam, SourceSymbolic
	if name, ok := common.ArgMaxKey(classifier); ok {
		winner, selectedBy = name, SourceClassifier
	} else if name, ok := common.ArgMaxKey(transition); ok {
		winner, selectedBy = name, SourceTransition
	}

	// symbolic confidence counts even when another source picked the winner
	contributions := []Contribution{{Source: SourceSymbolic, Value: symbolic.Confidence}}
	if p, ok := classifier[winner]; ok {
		contributions = append(contributions, Contribution{Source: SourceClassifier, Value: p})
	}
	if score, ok := transition[winner]; ok {
		if scaled, ok := common.MinMaxScale(score, common.MapValues(transition)); ok {
			contributions = append(contributions, Contribution{Source: SourceTransition, Value: scaled})
		}
	}

	values := make([]float64, len(contributions))
	for i, c := range contributions {
		values[i] = c.Value
	}

	fused := FusedPrediction{
		Prediction:    symbolic,
		SelectedBy:    selectedBy,
		Symbolic:      symbolic,
		Contributions: contributions,
	}
	fused.Confidence = common.Clamp01(common.Mean(values))

	if winner != symbolic.Maqam {
		fused.Maqam = winner
		fused.Family = ""
		fused.Variant = false
		fused.Kind = KindStatistical
	}

	return fused
}

// Predictor runs the segmentation search and fuses its result with
// externally computed scores
type Predictor struct {
	searcher *Searcher
}

// NewPredictor wraps a searcher. A nil searcher uses the default catalog and
// search settings.
func NewPredictor(searcher *Searcher) *Predictor {
	if searcher == nil {
		searcher = NewSearcher(nil, DefaultSearchConfig())
	}
	return &Predictor{searcher: searcher}
}

// Searcher exposes the symbolic stage
func (p *Predictor) Searcher() *Searcher {
	return p.searcher
}

// Analyze is the symbolic-only path
func (p *Predictor) Analyze(sequence []int) Prediction {
	return p.searcher.Analyze(sequence)
}

// Predict is the fused path. Either score map may be nil or empty.
func (p *Predictor) Predict(sequence []int, transition, classifier map[string]float64) FusedPrediction {
	fused := Fuse(p.searcher.Analyze(sequence), transition, classifier)

	if fused.Kind == KindStatistical {
		if s, ok := p.searcher.Catalog().Structure(fused.Maqam); ok {
			fused.Family = s.Family
		}
	}

	return fused
}
