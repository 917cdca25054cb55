package tolerance

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"contourqa/internal/failure"
)

// Category names one tolerance group.
type Category string

const (
	Points     Category = "points"
	VCuts      Category = "vcuts"
	Additional Category = "additional"
)

// MaxThreshold is the largest accepted threshold in millimetres.
const MaxThreshold = 50.0

var allCategories = []Category{Points, VCuts, Additional}

// Categories returns every known category in display order.
func Categories() []Category {
	cp := make([]Category, len(allCategories))
	copy(cp, allCategories)
	return cp
}

// ParseCategory converts a string into a known Category.
func ParseCategory(value string) (Category, bool) {
	normalized := Category(strings.ToLower(strings.TrimSpace(value)))
	for _, c := range allCategories {
		if c == normalized {
			return c, true
		}
	}
	return "", false
}

// Setting is the threshold and display colour of one category.
type Setting struct {
	Threshold float64 `json:"threshold"`
	Color     string  `json:"color"`
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// ValidateThreshold rejects non-finite, negative, or oversized thresholds.
func ValidateThreshold(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return failure.Wrap(failure.ErrValidation, "tolerance", "threshold", "must be a finite number", nil)
	}
	if v < 0 || v > MaxThreshold {
		return failure.Wrap(failure.ErrValidation, "tolerance", "threshold", fmt.Sprintf("%g outside [0, %g]", v, MaxThreshold), nil)
	}
	return nil
}

// Validate checks the threshold range and the #rrggbb colour form. An empty
// colour is accepted.
func (s Setting) Validate() error {
	if err := ValidateThreshold(s.Threshold); err != nil {
		return err
	}
	if s.Color != "" && !colorPattern.MatchString(s.Color) {
		return failure.Wrap(failure.ErrValidation, "tolerance", "color", fmt.Sprintf("%q is not #rrggbb", s.Color), nil)
	}
	return nil
}

// Profile is an immutable snapshot of every category.
type Profile struct {
	settings map[Category]Setting
	version  uint64
}

// Version is the registry publication number of this snapshot, or zero for
// a profile that was never published.
func (p *Profile) Version() uint64 {
	if p == nil {
		return 0
	}
	return p.version
}

// NewProfile builds a snapshot from settings. Missing categories read as zero.
func NewProfile(settings map[Category]Setting) *Profile {
	cp := make(map[Category]Setting, len(settings))
	for k, v := range settings {
		cp[k] = v
	}
	return &Profile{settings: cp}
}

// Get returns the setting of category c.
func (p *Profile) Get(c Category) Setting {
	if p == nil {
		return Setting{}
	}
	return p.settings[c]
}

// Threshold returns the threshold of category c.
func (p *Profile) Threshold(c Category) float64 {
	return p.Get(c).Threshold
}

// Settings returns a copy of all settings.
func (p *Profile) Settings() map[Category]Setting {
	out := make(map[Category]Setting, len(allCategories))
	if p == nil {
		return out
	}
	for k, v := range p.settings {
		out[k] = v
	}
	return out
}

func (p *Profile) with(c Category, s Setting) *Profile {
	next := p.Settings()
	next[c] = s
	return &Profile{settings: next}
}
