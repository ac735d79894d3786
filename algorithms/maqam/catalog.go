package maqam

import (
	"errors"
	"fmt"
	"slices"
)

// ErrInvalidCatalog is wrapped by every catalog construction error
var ErrInvalidCatalog = errors.New("invalid maqam catalog")

// Jins is a short melodic cell expressed as bin offsets from its own root
type Jins struct {
	Name        string `json:"name"`
	Intervals   []int  `json:"intervals"`             // strictly increasing, first is 0
	Character   string `json:"character"`             // neutral, minor, major, hijaz, saba
	Family      string `json:"family,omitempty"`      // optional family tag
	Upper       bool   `json:"upper,omitempty"`       // root is conceptually the highest note
	Description string `json:"description,omitempty"` // interval summary for display
}

// Structure declares a maqam as jins1 on the tonic plus jins2 on a higher
// degree
type Structure struct {
	Name        string   `json:"name"`
	Jins1       string   `json:"jins1"`
	Jins1Root   int      `json:"jins1_root"` // always 0
	Jins2       string   `json:"jins2"`
	Jins2Root   int      `json:"jins2_root"`            // ghammaz, in bins
	AltJins2    string   `json:"alt_jins2,omitempty"`   // descending or variant form
	Modulations []string `json:"modulations,omitempty"` // informational only
	Scale       []int    `json:"scale,omitempty"`       // explicit octave template, display only
	Family      string   `json:"family,omitempty"`
}

// Catalog is an immutable, ordered table of jins templates and maqam
// structures. Iteration order is declaration order and drives every
// tie-break. A Catalog is safe for concurrent use.
type Catalog struct {
	binsPerOctave int
	validRoots    []int

	ajnas      []Jins
	jinsIndex  map[string]int
	structures []Structure
	maqamIndex map[string]int
}

// NewCatalog validates and freezes the given definitions. The slices are
// copied; later changes by the caller are not observed.
func NewCatalog(binsPerOctave int, validRoots []int, ajnas []Jins, structures []Structure) (*Catalog, error) {
	if binsPerOctave <= 0 {
		return nil, fmt.Errorf("%w: bins per octave must be positive, got %d", ErrInvalidCatalog, binsPerOctave)
	}
	if len(validRoots) == 0 {
		return nil, fmt.Errorf("%w: no valid jins2 roots", ErrInvalidCatalog)
	}

	c := &Catalog{
		binsPerOctave: binsPerOctave,
		validRoots:    slices.Clone(validRoots),
		ajnas:         make([]Jins, 0, len(ajnas)),
		jinsIndex:     make(map[string]int, len(ajnas)),
		structures:    make([]Structure, 0, len(structures)),
		maqamIndex:    make(map[string]int, len(structures)),
	}

	for _, j := range ajnas {
		if err := c.validateJins(j); err != nil {
			return nil, err
		}
		j.Intervals = slices.Clone(j.Intervals)
		c.jinsIndex[j.Name] = len(c.ajnas)
		c.ajnas = append(c.ajnas, j)
	}

	for _, s := range structures {
		if err := c.validateStructure(s); err != nil {
			return nil, err
		}
		s.Modulations = slices.Clone(s.Modulations)
		s.Scale = slices.Clone(s.Scale)
		c.maqamIndex[s.Name] = len(c.structures)
		c.structures = append(c.structures, s)
	}

	return c, nil
}

// MustNewCatalog is NewCatalog for static tables; it panics on invalid data
func MustNewCatalog(binsPerOctave int, validRoots []int, ajnas []Jins, structures []Structure) *Catalog {
	c, err := NewCatalog(binsPerOctave, validRoots, ajnas, structures)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Catalog) validateJins(j Jins) error {
	if j.Name == "" || j.Name == Unknown {
		return fmt.Errorf("%w: jins name %q is reserved or empty", ErrInvalidCatalog, j.Name)
	}
	if _, dup := c.jinsIndex[j.Name]; dup {
		return fmt.Errorf("%w: duplicate jins %q", ErrInvalidCatalog, j.Name)
	}
	if len(j.Intervals) == 0 || j.Intervals[0] != 0 {
		return fmt.Errorf("%w: jins %q must start at offset 0", ErrInvalidCatalog, j.Name)
	}
	if err := c.validateOffsets(j.Intervals); err != nil {
		return fmt.Errorf("%w: jins %q: %v", ErrInvalidCatalog, j.Name, err)
	}
	return nil
}

func (c *Catalog) validateStructure(s Structure) error {
	if s.Name == "" || s.Name == Unknown {
		return fmt.Errorf("%w: maqam name %q is reserved or empty", ErrInvalidCatalog, s.Name)
	}
	if _, dup := c.maqamIndex[s.Name]; dup {
		return fmt.Errorf("%w: duplicate maqam %q", ErrInvalidCatalog, s.Name)
	}
	if s.Jins1Root != 0 {
		return fmt.Errorf("%w: maqam %q: jins1 must sit on the tonic", ErrInvalidCatalog, s.Name)
	}
	if !slices.Contains(c.validRoots, s.Jins2Root) {
		return fmt.Errorf("%w: maqam %q: jins2 root %d not in %v", ErrInvalidCatalog, s.Name, s.Jins2Root, c.validRoots)
	}
	for _, name := range []string{s.Jins1, s.Jins2} {
		if _, ok := c.jinsIndex[name]; !ok {
			return fmt.Errorf("%w: maqam %q references unknown jins %q", ErrInvalidCatalog, s.Name, name)
		}
	}
	if s.AltJins2 != "" {
		if _, ok := c.jinsIndex[s.AltJins2]; !ok {
			return fmt.Errorf("%w: maqam %q references unknown alternate jins %q", ErrInvalidCatalog, s.Name, s.AltJins2)
		}
	}
	if len(s.Scale) > 0 {
		if err := c.validateOffsets(s.Scale); err != nil {
			return fmt.Errorf("%w: maqam %q scale: %v", ErrInvalidCatalog, s.Name, err)
		}
	}
	return nil
}

func (c *Catalog) validateOffsets(offsets []int) error {
	for i, off := range offsets {
		if off < 0 || off >= c.binsPerOctave {
			return fmt.Errorf("offset %d outside [0, %d)", off, c.binsPerOctave)
		}
		if i > 0 && off <= offsets[i-1] {
			return fmt.Errorf("offsets not strictly increasing at index %d", i)
		}
	}
	return nil
}

// BinsPerOctave returns the pitch resolution the catalog is expressed in
func (c *Catalog) BinsPerOctave() int {
	return c.binsPerOctave
}

// ValidRoots returns the degrees a jins2 may be rooted on
func (c *Catalog) ValidRoots() []int {
	return slices.Clone(c.validRoots)
}

// Jins looks up a jins template by name
func (c *Catalog) Jins(name string) (Jins, bool) {
	idx, ok := c.jinsIndex[name]
	if !ok {
		return Jins{}, false
	}
	return cloneJins(c.ajnas[idx]), true
}

// Structure looks up a maqam structure by name
func (c *Catalog) Structure(name string) (Structure, bool) {
	idx, ok := c.maqamIndex[name]
	if !ok {
		return Structure{}, false
	}
	return cloneStructure(c.structures[idx]), true
}

// JinsStructure returns the declared jins structure of a maqam. Unknown
// names yield an "Unknown" structure with jins2 on the perfect fourth.
func (c *Catalog) JinsStructure(name string) Structure {
	if s, ok := c.Structure(name); ok {
		return s
	}
	return Structure{
		Name:      name,
		Jins1:     Unknown,
		Jins2:     Unknown,
		Jins1Root: 0,
		Jins2Root: c.binsPerOctave * 5 / 12,
	}
}

// ScaleTemplate returns the octave template of a maqam: the explicit scale
// when declared, otherwise jins1 joined with jins2 shifted to its root.
func (c *Catalog) ScaleTemplate(name string) ([]int, bool) {
	s, ok := c.Structure(name)
	if !ok {
		return nil, false
	}
	if len(s.Scale) > 0 {
		return s.Scale, true
	}

	j1 := c.ajnas[c.jinsIndex[s.Jins1]]
	j2 := c.ajnas[c.jinsIndex[s.Jins2]]

	scale := slices.Clone(j1.Intervals)
	for _, off := range j2.Intervals {
		if bin := s.Jins2Root + off; bin < c.binsPerOctave {
			scale = append(scale, bin)
		}
	}
	slices.Sort(scale)
	return slices.Compact(scale), true
}

// JinsNames lists jins names in catalog order
func (c *Catalog) JinsNames() []string {
	names := make([]string, len(c.ajnas))
	for i, j := range c.ajnas {
		names[i] = j.Name
	}
	return names
}

// MaqamNames lists maqam names in catalog order
func (c *Catalog) MaqamNames() []string {
	names := make([]string, len(c.structures))
	for i, s := range c.structures {
		names[i] = s.Name
	}
	return names
}

func cloneJins(j Jins) Jins {
	j.Intervals = slices.Clone(j.Intervals)
	return j
}

func cloneStructure(s Structure) Structure {
	s.Modulations = slices.Clone(s.Modulations)
	s.Scale = slices.Clone(s.Scale)
	return s
}
