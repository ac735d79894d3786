package maqam

// DefaultBinsPerOctave gives 3 bins per semitone: a quarter tone is 1.5
// bins and a neutral second falls on 4-5 bins.
const DefaultBinsPerOctave = 36

// DefaultJins2Roots are the degrees jins2 may start on at 36 bins:
// diminished 4th, perfect 4th, tritone, perfect 5th.
var DefaultJins2Roots = []int{12, 15, 18, 21}

// Order matters: matching ties are resolved by position in this table, and
// no template may be a subset of a later one.
var defaultAjnas = []Jins{
	{Name: "Bayati", Intervals: []int{0, 5, 9, 15}, Character: "neutral", Family: "Bayati", Description: "neutral 2nd, whole, whole"},
	{Name: "Rast", Intervals: []int{0, 6, 10, 15}, Character: "neutral", Family: "Rast", Description: "whole, neutral 2nd, whole"},
	{Name: "Nahawand", Intervals: []int{0, 6, 9, 15}, Character: "minor", Family: "Nahawand", Description: "whole, half, whole"},
	{Name: "Hijaz", Intervals: []int{0, 3, 12, 15}, Character: "hijaz", Family: "Hijaz", Description: "half, augmented 2nd, half"},
	{Name: "Kurd", Intervals: []int{0, 3, 9, 15}, Character: "minor", Family: "Kurd", Description: "half, whole, whole"},
	{Name: "Sikah", Intervals: []int{0, 4, 10, 15}, Character: "neutral", Family: "Sikah", Description: "starts on a neutral degree"},
	{Name: "Ajam", Intervals: []int{0, 6, 12, 15}, Character: "major", Family: "Ajam", Description: "whole, whole, half"},
	{Name: "Saba", Intervals: []int{0, 5, 9, 12}, Character: "saba", Family: "Saba", Description: "neutral 2nd, whole, diminished 4th"},
	{Name: "Nikriz", Intervals: []int{0, 6, 9, 18, 21}, Character: "hijaz", Family: "Nikriz", Description: "whole, half, augmented 2nd, half"},
	{Name: "Athar Kurd", Intervals: []int{0, 3, 9, 18}, Character: "minor", Family: "Kurd", Description: "half, whole, augmented 2nd"},
	{Name: "Saba Zamzam", Intervals: []int{0, 3, 9, 12}, Character: "saba", Family: "Saba", Description: "half, whole, half"},
}

var defaultStructures = []Structure{
	{
		Name: "Bayati", Family: "Bayati",
		Jins1: "Bayati", Jins2: "Nahawand", Jins2Root: 15, AltJins2: "Rast",
		Modulations: []string{"Rast", "Hijaz", "Saba", "Nahawand"},
		Scale:       []int{0, 5, 9, 15, 21, 24, 30},
	},
	{
		Name: "Rast", Family: "Rast",
		Jins1: "Rast", Jins2: "Rast", Jins2Root: 21, AltJins2: "Nahawand",
		Modulations: []string{"Bayati", "Sikah", "Nahawand", "Hijaz"},
		Scale:       []int{0, 6, 10, 15, 21, 27, 31},
	},
	{
		Name: "Nahawand", Family: "Nahawand",
		Jins1: "Nahawand", Jins2: "Hijaz", Jins2Root: 21, AltJins2: "Kurd",
		Modulations: []string{"Kurd", "Hijaz", "Rast"},
		Scale:       []int{0, 6, 9, 15, 21, 24, 33},
	},
	{
		Name: "Hijaz", Family: "Hijaz",
		Jins1: "Hijaz", Jins2: "Rast", Jins2Root: 15, AltJins2: "Nahawand",
		Modulations: []string{"Rast", "Bayati", "Nahawand"},
		Scale:       []int{0, 3, 12, 15, 21, 25, 30},
	},
	{
		Name: "Kurd", Family: "Kurd",
		Jins1: "Kurd", Jins2: "Nahawand", Jins2Root: 15,
		Modulations: []string{"Bayati", "Hijaz"},
		Scale:       []int{0, 3, 9, 15, 21, 24, 30},
	},
	{
		Name: "Sikah", Family: "Sikah",
		Jins1: "Sikah", Jins2: "Rast", Jins2Root: 15,
		Modulations: []string{"Rast", "Hijaz"},
	},
	{
		Name: "Ajam", Family: "Ajam",
		Jins1: "Ajam", Jins2: "Ajam", Jins2Root: 21,
		Modulations: []string{"Nahawand", "Kurd"},
		Scale:       []int{0, 6, 12, 15, 21, 27, 33},
	},
	{
		Name: "Saba", Family: "Saba",
		Jins1: "Saba", Jins2: "Hijaz", Jins2Root: 12,
		Modulations: []string{"Bayati", "Hijaz", "Ajam"},
	},
	{
		Name: "Suznak", Family: "Rast",
		Jins1: "Rast", Jins2: "Hijaz", Jins2Root: 21,
		Modulations: []string{"Rast", "Nahawand"},
	},
	{
		Name: "Husseini", Family: "Bayati",
		Jins1: "Bayati", Jins2: "Bayati", Jins2Root: 21,
		Modulations: []string{"Rast", "Bayati"},
	},
	{
		Name: "Bayati Shuri", Family: "Bayati",
		Jins1: "Bayati", Jins2: "Hijaz", Jins2Root: 15,
		Modulations: []string{"Bayati", "Hijaz"},
	},
	{
		Name: "Hijaz Kar", Family: "Hijaz",
		Jins1: "Hijaz", Jins2: "Hijaz", Jins2Root: 21,
		Modulations: []string{"Nahawand", "Nikriz"},
	},
	{
		Name: "Nikriz", Family: "Nikriz",
		Jins1: "Nikriz", Jins2: "Nahawand", Jins2Root: 21, AltJins2: "Rast",
		Modulations: []string{"Rast", "Nahawand"},
	},
	{
		Name: "Athar Kurd", Family: "Kurd",
		Jins1: "Athar Kurd", Jins2: "Nikriz", Jins2Root: 21,
		Modulations: []string{"Kurd", "Nikriz"},
	},
	{
		Name: "Saba Zamzam", Family: "Saba",
		Jins1: "Saba Zamzam", Jins2: "Hijaz", Jins2Root: 12,
		Modulations: []string{"Saba", "Kurd"},
	},
}

var defaultCatalog = MustNewCatalog(DefaultBinsPerOctave, DefaultJins2Roots, defaultAjnas, defaultStructures)

// DefaultCatalog returns the built-in 36-bin catalog, shared process-wide
func DefaultCatalog() *Catalog {
	return defaultCatalog
}
