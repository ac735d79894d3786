package maqam

const (
	// VariantPenalty scales confidence when jins2 only matches a structure's
	// alternate jins
	VariantPenalty = 0.9

	// FallbackPenalty scales the jins1 confidence when no structure matches
	FallbackPenalty = 0.6
)

// InferMaqam maps a matched jins pair onto the catalog.
//
// Structures are scanned in catalog order and the first one whose jins1
// matches and whose jins2 or alternate jins2 matches wins. Otherwise the
// result is a synthetic "<jins1>-based" prediction carrying jins1's family.
func (c *Catalog) InferMaqam(jins1, jins2 Match) Prediction {
	for _, s := range c.structures {
		if s.Jins1 != jins1.Jins {
			continue
		}

		mean := (jins1.Confidence + jins2.Confidence) / 2

		switch {
		case s.Jins2 == jins2.Jins:
			return Prediction{
				Maqam:      s.Name,
				Jins1:      jins1.Jins,
				Jins2:      jins2.Jins,
				Confidence: mean,
				Family:     s.Family,
				Kind:       KindExact,
			}
		case s.AltJins2 != "" && s.AltJins2 == jins2.Jins:
			return Prediction{
				Maqam:      s.Name,
				Jins1:      jins1.Jins,
				Jins2:      jins2.Jins,
				Confidence: mean * VariantPenalty,
				Family:     s.Family,
				Variant:    true,
				Kind:       KindVariant,
			}
		}
	}

	fallback := Prediction{
		Maqam:      jins1.Jins + "-based",
		Jins1:      jins1.Jins,
		Jins2:      jins2.Jins,
		Confidence: jins1.Confidence * FallbackPenalty,
		Kind:       KindFallback,
	}
	if j, ok := c.Jins(jins1.Jins); ok {
		fallback.Family = j.Family
	}

	return fallback
}
