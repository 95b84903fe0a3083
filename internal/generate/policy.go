// Package generate builds a family tree: a person factory that samples
// names and lifespans from the reference tables, and an engine that grows
// descendants from a founding couple up to a horizon year.
package generate

import (
	"fmt"

	"github.com/rcliao/family-tree/internal/model"
	"github.com/rcliao/family-tree/internal/refdata"
)

// ChildCountStrategy selects how many children a person has.
type ChildCountStrategy string

const (
	// RoundedMean rounds the decade's birth rate (half to even) and spaces
	// the children evenly between ages 25 and 45.
	RoundedMean ChildCountStrategy = "rounded_mean"
	// Wiggle draws the count from [ceil(rate-1.5), ceil(rate+1.5)] and
	// scatters birth years uniformly between ages 25 and 45.
	Wiggle ChildCountStrategy = "wiggle"
)

// Traversal selects the order in which descendants are expanded.
type Traversal string

const (
	DepthFirst   Traversal = "depth_first"
	BreadthFirst Traversal = "breadth_first"
)

// Fallbacks used when a reference table has no row for a key.
const (
	DefaultBirthRate      = 2.0
	DefaultMarriageRate   = 0.5
	DefaultLifeExpectancy = 80.0
	DefaultLastName       = "Smith"
)

// DefaultFirstName is the fallback first name for a gender.
func DefaultFirstName(g model.Gender) string {
	if g == model.Female {
		return "Jane"
	}
	return "John"
}

// Policy holds the generation choices that differ between the known
// variants of the algorithm.
type Policy struct {
	ChildCount       ChildCountStrategy       `json:"child_count" yaml:"child_count" env:"CHILD_COUNT"`
	SurnameWeighting refdata.SurnameWeighting `json:"surname_weighting" yaml:"surname_weighting" env:"SURNAME_WEIGHTING"`
	Traversal        Traversal                `json:"traversal" yaml:"traversal" env:"TRAVERSAL"`
	// HorizonYear is the last year in which a child may be born.
	HorizonYear int `json:"horizon_year" yaml:"horizon_year" env:"HORIZON_YEAR"`
}

// DefaultPolicy is the classic behaviour: rounded-mean child counts,
// global rank weights, depth-first expansion, horizon 2120.
func DefaultPolicy() Policy {
	return Policy{
		ChildCount:       RoundedMean,
		SurnameWeighting: refdata.RankOnly,
		Traversal:        DepthFirst,
		HorizonYear:      refdata.MaxYear,
	}
}

// Validate checks every option against its allowed values.
func (p Policy) Validate() error {
	switch p.ChildCount {
	case RoundedMean, Wiggle:
	default:
		return fmt.Errorf("invalid child_count %q (valid: rounded_mean, wiggle)", p.ChildCount)
	}
	if !refdata.ValidSurnameWeightings[p.SurnameWeighting] {
		return fmt.Errorf("invalid surname_weighting %q (valid: rank_only, decade_scoped)", p.SurnameWeighting)
	}
	switch p.Traversal {
	case DepthFirst, BreadthFirst:
	default:
		return fmt.Errorf("invalid traversal %q (valid: depth_first, breadth_first)", p.Traversal)
	}
	if p.HorizonYear < refdata.MinYear {
		return fmt.Errorf("horizon_year must be at least %d, got %d", refdata.MinYear, p.HorizonYear)
	}
	return nil
}
