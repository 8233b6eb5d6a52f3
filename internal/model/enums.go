package model

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// ErrUnknownValue is returned when a label does not name a member of a closed enum.
var ErrUnknownValue = errors.New("unknown value")

// normalizeLabel makes user- and file-supplied labels comparable: NFC so that
// decomposed accents ("saúde" typed as u + combining acute) match, then case
// folding so "Saúde" and "SAÚDE" do too.
func normalizeLabel(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

// Category groups goals by life area.
type Category string

const (
	CategoryFinancial    Category = "financial"
	CategoryLife         Category = "life"
	CategoryHealth       Category = "health"
	CategoryProfessional Category = "professional"
	CategoryOther        Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFinancial,
	CategoryLife,
	CategoryHealth,
	CategoryProfessional,
	CategoryOther,
}

// legacyCategories maps the Portuguese labels written by earlier releases.
var legacyCategories = map[string]Category{
	"financeira":   CategoryFinancial,
	"vida":         CategoryLife,
	"saúde":        CategoryHealth,
	"saude":        CategoryHealth,
	"profissional": CategoryProfessional,
	"outros":       CategoryOther,
}

// ParseCategory resolves a category label. Legacy Portuguese labels are accepted.
func ParseCategory(s string) (Category, error) {
	key := normalizeLabel(s)
	switch c := Category(key); c {
	case CategoryFinancial, CategoryLife, CategoryHealth, CategoryProfessional, CategoryOther:
		return c, nil
	}
	if c, ok := legacyCategories[key]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: category %q", ErrUnknownValue, s)
}

// Valid reports whether c is a declared category.
func (c Category) Valid() bool {
	switch c {
	case CategoryFinancial, CategoryLife, CategoryHealth, CategoryProfessional, CategoryOther:
		return true
	default:
		return false
	}
}

func (c Category) String() string { return string(c) }

// Label returns the display name.
func (c Category) Label() string {
	switch c {
	case CategoryFinancial:
		return "Financial"
	case CategoryLife:
		return "Life"
	case CategoryHealth:
		return "Health"
	case CategoryProfessional:
		return "Professional"
	case CategoryOther:
		return "Other"
	default:
		return fmt.Sprintf("Unknown(%s)", string(c))
	}
}

func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: category %q", ErrUnknownValue, string(c))
	}
	return []byte(c), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Horizon is a goal's target time frame.
type Horizon string

const (
	HorizonShort Horizon = "short_term" // about a year
	HorizonMid   Horizon = "mid_term"   // two to five years
	HorizonLong  Horizon = "long_term"  // a decade
)

// Horizons lists every horizon from nearest to farthest.
var Horizons = []Horizon{HorizonShort, HorizonMid, HorizonLong}

// ParseHorizon resolves a horizon label. "short", "mid" and "long" are accepted shorthands.
func ParseHorizon(s string) (Horizon, error) {
	switch key := normalizeLabel(s); key {
	case string(HorizonShort), "short", "short-term":
		return HorizonShort, nil
	case string(HorizonMid), "mid", "mid-term":
		return HorizonMid, nil
	case string(HorizonLong), "long", "long-term":
		return HorizonLong, nil
	default:
		return "", fmt.Errorf("%w: horizon %q", ErrUnknownValue, s)
	}
}

// Valid reports whether h is a declared horizon.
func (h Horizon) Valid() bool {
	switch h {
	case HorizonShort, HorizonMid, HorizonLong:
		return true
	default:
		return false
	}
}

func (h Horizon) String() string { return string(h) }

// Label returns the display name including the rough duration.
func (h Horizon) Label() string {
	switch h {
	case HorizonShort:
		return "Short term (1 year)"
	case HorizonMid:
		return "Mid term (2-5 years)"
	case HorizonLong:
		return "Long term (1 decade)"
	default:
		return fmt.Sprintf("Unknown(%s)", string(h))
	}
}

// Rank orders horizons from nearest (0) to farthest.
func (h Horizon) Rank() int {
	switch h {
	case HorizonShort:
		return 0
	case HorizonMid:
		return 1
	case HorizonLong:
		return 2
	default:
		return 3
	}
}

func (h Horizon) MarshalText() ([]byte, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("%w: horizon %q", ErrUnknownValue, string(h))
	}
	return []byte(h), nil
}

func (h *Horizon) UnmarshalText(b []byte) error {
	parsed, err := ParseHorizon(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Status is the lifecycle state of a goal.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// ParseStatus resolves a status label.
func ParseStatus(s string) (Status, error) {
	switch st := Status(normalizeLabel(s)); st {
	case StatusActive, StatusCompleted, StatusAbandoned:
		return st, nil
	default:
		return "", fmt.Errorf("%w: status %q", ErrUnknownValue, s)
	}
}

// Valid reports whether s is a declared status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCompleted, StatusAbandoned:
		return true
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: status %q", ErrUnknownValue, string(s))
	}
	return []byte(s), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// CheckInType is the cadence a check-in reviews.
type CheckInType string

const (
	CheckInMonthly   CheckInType = "monthly"
	CheckInQuarterly CheckInType = "quarterly"
	CheckInYearly    CheckInType = "yearly"
)

// ParseCheckInType resolves a check-in type label.
func ParseCheckInType(s string) (CheckInType, error) {
	switch t := CheckInType(normalizeLabel(s)); t {
	case CheckInMonthly, CheckInQuarterly, CheckInYearly:
		return t, nil
	default:
		return "", fmt.Errorf("%w: check-in type %q", ErrUnknownValue, s)
	}
}

// Valid reports whether t is a declared check-in type.
func (t CheckInType) Valid() bool {
	switch t {
	case CheckInMonthly, CheckInQuarterly, CheckInYearly:
		return true
	default:
		return false
	}
}

func (t CheckInType) String() string { return string(t) }

func (t CheckInType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: check-in type %q", ErrUnknownValue, string(t))
	}
	return []byte(t), nil
}

func (t *CheckInType) UnmarshalText(b []byte) error {
	parsed, err := ParseCheckInType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
