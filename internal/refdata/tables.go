// Package refdata holds the read-only reference tables that drive person
// generation: birth and marriage rates, first name and surname
// frequencies, and life expectancy.
package refdata

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rcliao/family-tree/internal/model"
)

var (
	// ErrMissingReferenceData is returned when a table has no row for the
	// requested key. Callers recover with documented defaults.
	ErrMissingReferenceData = errors.New("missing reference data")

	// ErrInvalidTable is returned when a row violates its table's domain
	// (negative weight, probability outside [0,1], empty name).
	ErrInvalidTable = errors.New("invalid reference table")
)

// SurnameWeighting selects where surname weights come from.
type SurnameWeighting string

const (
	// RankOnly weights every surname by the global rank probability.
	RankOnly SurnameWeighting = "rank_only"
	// DecadeScoped weights surnames by the rank probability recorded for
	// the decade, falling back to the global value for that rank.
	DecadeScoped SurnameWeighting = "decade_scoped"
)

// ValidSurnameWeightings are the allowed weighting policies.
var ValidSurnameWeightings = map[SurnameWeighting]bool{
	RankOnly:     true,
	DecadeScoped: true,
}

// Rates are the per-decade birth and marriage statistics.
type Rates struct {
	BirthRate    float64 `json:"birth_rate"`
	MarriageRate float64 `json:"marriage_rate"`
}

// WeightedName is a candidate name with its sampling weight.
type WeightedName struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// RateProvider supplies birth and marriage rates by decade.
type RateProvider interface {
	RatesFor(decade int) (Rates, error)
}

// NameProvider supplies weighted first names and surnames by decade.
type NameProvider interface {
	FirstNamesFor(decade int, gender model.Gender) []WeightedName
	SurnamesFor(decade int, weighting SurnameWeighting) []WeightedName
}

// LifespanProvider supplies life expectancy at birth.
type LifespanProvider interface {
	ExpectancyFor(year int) (float64, error)
}

// RateRow is one line of the rates table.
type RateRow struct {
	Decade       int
	BirthRate    float64
	MarriageRate float64
}

// FirstNameRow is one line of the first name table.
type FirstNameRow struct {
	Decade    int
	Gender    model.Gender
	Name      string
	Frequency float64
}

// SurnameRow is one line of the surname table. Decade 0 applies to every
// decade without rows of its own.
type SurnameRow struct {
	Decade int
	Rank   int
	Name   string
}

// RankProbabilityRow maps a surname rank to a probability. Decade 0 is
// the global table.
type RankProbabilityRow struct {
	Decade      int
	Rank        int
	Probability float64
}

// LifespanRow is the expectancy at birth for a year.
type LifespanRow struct {
	Year       int
	Expectancy float64
}

// Rows is the raw content of all reference tables.
type Rows struct {
	Rates             []RateRow
	FirstNames        []FirstNameRow
	Surnames          []SurnameRow
	RankProbabilities []RankProbabilityRow
	Lifespans         []LifespanRow
}

type firstNameKey struct {
	decade int
	gender model.Gender
}

// Tables is an indexed, immutable view over Rows. It implements
// RateProvider, NameProvider and LifespanProvider.
type Tables struct {
	rows            Rows
	rates           map[int]Rates
	firstNames      map[firstNameKey][]WeightedName
	surnames        map[int][]SurnameRow
	rankProbs       map[int]float64
	decadeRankProbs map[int]map[int]float64
	lifespans       map[int]float64
}

// New validates rows and builds the lookup indexes. Later rows win when a
// key repeats in the rates, rank and lifespan tables.
func New(rows Rows) (*Tables, error) {
	t := &Tables{
		rows:            rows,
		rates:           make(map[int]Rates),
		firstNames:      make(map[firstNameKey][]WeightedName),
		surnames:        make(map[int][]SurnameRow),
		rankProbs:       make(map[int]float64),
		decadeRankProbs: make(map[int]map[int]float64),
		lifespans:       make(map[int]float64),
	}

	for _, r := range rows.Rates {
		if r.BirthRate < 0 {
			return nil, fmt.Errorf("%w: negative birth rate %v for %s", ErrInvalidTable, r.BirthRate, DecadeLabel(r.Decade))
		}
		if r.MarriageRate < 0 || r.MarriageRate > 1 {
			return nil, fmt.Errorf("%w: marriage rate %v for %s outside [0,1]", ErrInvalidTable, r.MarriageRate, DecadeLabel(r.Decade))
		}
		t.rates[r.Decade] = Rates{BirthRate: r.BirthRate, MarriageRate: r.MarriageRate}
	}

	for _, r := range rows.FirstNames {
		if r.Name == "" {
			return nil, fmt.Errorf("%w: empty first name in %s", ErrInvalidTable, DecadeLabel(r.Decade))
		}
		if !model.ValidGenders[r.Gender] {
			return nil, fmt.Errorf("%w: first name %q has gender %q", ErrInvalidTable, r.Name, r.Gender)
		}
		if r.Frequency < 0 {
			return nil, fmt.Errorf("%w: first name %q has negative frequency", ErrInvalidTable, r.Name)
		}
		k := firstNameKey{decade: r.Decade, gender: r.Gender}
		t.firstNames[k] = append(t.firstNames[k], WeightedName{Name: r.Name, Weight: r.Frequency})
	}

	for _, r := range rows.Surnames {
		if r.Name == "" {
			return nil, fmt.Errorf("%w: empty surname at rank %d", ErrInvalidTable, r.Rank)
		}
		if r.Rank < 1 {
			return nil, fmt.Errorf("%w: surname %q has rank %d", ErrInvalidTable, r.Name, r.Rank)
		}
		t.surnames[r.Decade] = append(t.surnames[r.Decade], r)
	}
	for _, list := range t.surnames {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Rank < list[j].Rank })
	}

	for _, r := range rows.RankProbabilities {
		if r.Probability < 0 {
			return nil, fmt.Errorf("%w: negative probability for rank %d", ErrInvalidTable, r.Rank)
		}
		if r.Decade == 0 {
			t.rankProbs[r.Rank] = r.Probability
			continue
		}
		m, ok := t.decadeRankProbs[r.Decade]
		if !ok {
			m = make(map[int]float64)
			t.decadeRankProbs[r.Decade] = m
		}
		m[r.Rank] = r.Probability
	}

	for _, r := range rows.Lifespans {
		if r.Expectancy <= 0 {
			return nil, fmt.Errorf("%w: non-positive expectancy for %d", ErrInvalidTable, r.Year)
		}
		t.lifespans[r.Year] = r.Expectancy
	}

	return t, nil
}

// Rows returns the raw rows the tables were built from.
func (t *Tables) Rows() Rows {
	return t.rows
}

// RatesFor returns the rates for decade.
func (t *Tables) RatesFor(decade int) (Rates, error) {
	r, ok := t.rates[decade]
	if !ok {
		return Rates{}, fmt.Errorf("%w: rates for %s", ErrMissingReferenceData, DecadeLabel(decade))
	}
	return r, nil
}

// FirstNamesFor returns the weighted first names for decade and gender.
// The returned slice must not be modified.
func (t *Tables) FirstNamesFor(decade int, gender model.Gender) []WeightedName {
	return t.firstNames[firstNameKey{decade: decade, gender: gender}]
}

// SurnamesFor returns the decade's surnames in rank order, weighted by the
// rank probability chosen by weighting. Surnames without a decade serve
// decades that have none of their own. A rank with no known probability
// weighs 0; when no rank is known at all every surname weighs 1.
func (t *Tables) SurnamesFor(decade int, weighting SurnameWeighting) []WeightedName {
	rows, ok := t.surnames[decade]
	if !ok {
		rows = t.surnames[0]
	}
	if len(rows) == 0 {
		return nil
	}

	out := make([]WeightedName, len(rows))
	known := false
	for i, r := range rows {
		w, ok := t.rankWeight(decade, r.Rank, weighting)
		if ok {
			known = true
		}
		out[i] = WeightedName{Name: r.Name, Weight: w}
	}
	if !known {
		for i := range out {
			out[i].Weight = 1
		}
	}
	return out
}

func (t *Tables) rankWeight(decade, rank int, weighting SurnameWeighting) (float64, bool) {
	if weighting == DecadeScoped {
		if w, ok := t.decadeRankProbs[decade][rank]; ok {
			return w, true
		}
	}
	w, ok := t.rankProbs[rank]
	return w, ok
}

// ExpectancyFor returns the life expectancy for year, or for the start of
// its decade when the exact year is absent.
func (t *Tables) ExpectancyFor(year int) (float64, error) {
	if e, ok := t.lifespans[year]; ok {
		return e, nil
	}
	if e, ok := t.lifespans[floorDecade(year)]; ok {
		return e, nil
	}
	return 0, fmt.Errorf("%w: life expectancy for %d", ErrMissingReferenceData, year)
}

// Counts returns the number of rows per table.
func (t *Tables) Counts() map[string]int {
	return map[string]int{
		"rates":              len(t.rows.Rates),
		"first_names":        len(t.rows.FirstNames),
		"last_names":         len(t.rows.Surnames),
		"rank_probabilities": len(t.rows.RankProbabilities),
		"life_expectancy":    len(t.rows.Lifespans),
	}
}
