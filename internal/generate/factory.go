package generate

import (
	"context"
	"io"
	"log/slog"
	"math"
	"math/rand"

	"github.com/rcliao/family-tree/internal/logging"
	"github.com/rcliao/family-tree/internal/model"
	"github.com/rcliao/family-tree/internal/population"
	"github.com/rcliao/family-tree/internal/refdata"
	"github.com/rcliao/family-tree/internal/sample"
)

// Factory manufactures people from the reference tables. Random draws
// happen in a fixed order (gender, first name, surname, lifespan jitter)
// on the shared source, so a seed reproduces the same people.
type Factory struct {
	rng       *rand.Rand
	names     refdata.NameProvider
	lifespans refdata.LifespanProvider
	ids       *population.IDSource
	weighting refdata.SurnameWeighting
	logger    *slog.Logger
}

// NewFactory returns a factory drawing from rng. A nil logger discards.
func NewFactory(rng *rand.Rand, names refdata.NameProvider, lifespans refdata.LifespanProvider,
	ids *population.IDSource, weighting refdata.SurnameWeighting, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Factory{
		rng:       rng,
		names:     names,
		lifespans: lifespans,
		ids:       ids,
		weighting: weighting,
		logger:    logger,
	}
}

type createOptions struct {
	firstName string
	lastName  string
	gender    model.Gender
}

// Option forces an attribute instead of sampling it.
type Option func(*createOptions)

// WithLastName forces the surname; used for descendants.
func WithLastName(name string) Option {
	return func(o *createOptions) { o.lastName = name }
}

// WithGender forces the gender.
func WithGender(g model.Gender) Option {
	return func(o *createOptions) { o.gender = g }
}

// WithFirstName forces the first name; used for named founders.
func WithFirstName(name string) Option {
	return func(o *createOptions) { o.firstName = name }
}

// Create returns a new person born in yearBorn. It never fails: missing
// reference rows fall back to the package defaults.
func (f *Factory) Create(yearBorn int, opts ...Option) *model.Person {
	var o createOptions
	for _, opt := range opts {
		opt(&o)
	}

	decade := refdata.DecadeOf(yearBorn)

	gender := o.gender
	if gender == "" {
		gender = model.Genders[f.rng.Intn(len(model.Genders))]
	}

	firstName := o.firstName
	if firstName == "" {
		firstName = f.sampleName(f.names.FirstNamesFor(decade, gender), DefaultFirstName(gender), "first_name", decade)
	}

	lastName := o.lastName
	if lastName == "" {
		lastName = f.sampleName(f.names.SurnamesFor(decade, f.weighting), DefaultLastName, "last_name", decade)
	}

	p := &model.Person{
		ID:        f.ids.Next(),
		FirstName: firstName,
		LastName:  lastName,
		YearBorn:  yearBorn,
		YearDied:  yearBorn + f.lifespan(yearBorn),
		Gender:    gender,
	}
	f.logger.Log(context.Background(), logging.LevelTrace, "person created", "id", p.ID, "person", p.String())
	return p
}

func (f *Factory) sampleName(candidates []refdata.WeightedName, fallback, table string, decade int) string {
	names := make([]string, len(candidates))
	weights := make([]float64, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
		weights[i] = c.Weight
	}

	name, err := sample.Choose(f.rng, names, weights)
	if err != nil {
		f.logger.Debug("name fallback", "table", table, "decade", refdata.DecadeLabel(decade), "fallback", fallback, "err", err)
		return fallback
	}
	return name
}

// lifespan returns round(expectancy) plus a whole-year jitter drawn
// uniformly from [-10, 10], never less than one year.
func (f *Factory) lifespan(yearBorn int) int {
	expectancy, err := f.lifespans.ExpectancyFor(yearBorn)
	if err != nil {
		f.logger.Debug("life expectancy fallback", "year", yearBorn, "fallback", DefaultLifeExpectancy, "err", err)
		expectancy = DefaultLifeExpectancy
	}

	years := int(math.Round(expectancy)) + sample.IntBetween(f.rng, -10, 10)
	if years < 1 {
		years = 1
	}
	return years
}
