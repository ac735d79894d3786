package maqam

// Unknown names a jins or maqam the engine could not identify
const Unknown = "Unknown"

// Kind tags how a Prediction was reached
type Kind int

const (
	KindUnknown     Kind = iota // no usable segmentation
	KindExact                   // jins1 and jins2 match a declared structure
	KindVariant                 // jins2 matches the structure's alternate jins
	KindFallback                // only jins1 was usable, name is "<jins1>-based"
	KindStatistical             // chosen by classifier or transition scores over the symbolic pick
)

func (k Kind) String() string {
	switch k {
	case KindExact:
		return "exact"
	case KindVariant:
		return "variant"
	case KindFallback:
		return "fallback"
	case KindStatistical:
		return "statistical"
	default:
		return "unknown"
	}
}

// Match is the best jins template for a set of observed positions
type Match struct {
	Jins       string  `json:"jins"`
	Confidence float64 `json:"confidence"` // coverage ratio in [0, 1]
}

// Known reports whether a template was matched at all
func (m Match) Known() bool {
	return m.Jins != Unknown && m.Confidence > 0
}

func unknownMatch() Match {
	return Match{Jins: Unknown, Confidence: 0}
}

// Prediction is the symbolic classification of a pitch sequence
type Prediction struct {
	Maqam      string  `json:"maqam"`
	Jins1      string  `json:"jins1"`
	Jins2      string  `json:"jins2"`
	Confidence float64 `json:"confidence"`
	Family     string  `json:"family,omitempty"`
	Variant    bool    `json:"variant,omitempty"`
	Kind       Kind    `json:"kind"`

	// Jins2Root is the boundary bin the search settled on; only meaningful
	// when HasBoundary is set.
	Jins2Root   int  `json:"jins2_root,omitempty"`
	HasBoundary bool `json:"has_boundary"`
}

// UnknownPrediction is the sentinel returned when nothing could be matched
func UnknownPrediction() Prediction {
	return Prediction{
		Maqam:      Unknown,
		Jins1:      Unknown,
		Jins2:      Unknown,
		Confidence: 0,
		Kind:       KindUnknown,
	}
}

// IsUnknown reports whether p is the unknown sentinel
func (p Prediction) IsUnknown() bool {
	return p.Kind == KindUnknown
}
