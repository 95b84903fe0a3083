package generate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/rcliao/family-tree/internal/model"
	"github.com/rcliao/family-tree/internal/population"
	"github.com/rcliao/family-tree/internal/refdata"
	"github.com/rcliao/family-tree/internal/sample"
)

// Reference is the full set of tables the engine reads.
type Reference interface {
	refdata.RateProvider
	refdata.NameProvider
	refdata.LifespanProvider
}

// Founder describes one member of the founding couple. Empty fields are
// sampled like any other person.
type Founder struct {
	FirstName string       `json:"first_name" yaml:"first_name" env:"FIRST_NAME"`
	LastName  string       `json:"last_name" yaml:"last_name" env:"LAST_NAME"`
	YearBorn  int          `json:"year_born" yaml:"year_born" env:"YEAR_BORN"`
	Gender    model.Gender `json:"gender" yaml:"gender" env:"GENDER"`
}

// DefaultFounders returns the couple the simulation starts from: a man
// and a woman named Jones born in 1950. Their first names are sampled.
func DefaultFounders() [2]Founder {
	return [2]Founder{
		{LastName: "Jones", YearBorn: refdata.MinYear, Gender: model.Male},
		{LastName: "Jones", YearBorn: refdata.MinYear, Gender: model.Female},
	}
}

// Stats summarizes a generation run.
type Stats struct {
	People        int `json:"people"`
	Partners      int `json:"partners"`
	Children      int `json:"children"`
	SkippedBirths int `json:"skipped_births"`
	Generations   int `json:"generations"`
}

// Engine grows a family tree into a population store.
type Engine struct {
	rng     *rand.Rand
	rates   refdata.RateProvider
	factory *Factory
	store   *population.Store
	policy  Policy
	logger  *slog.Logger
	stats   Stats
}

// NewEngine wires an engine over ref. Every random draw, including those
// made by the factory, comes from rng.
func NewEngine(rng *rand.Rand, ref Reference, store *population.Store, ids *population.IDSource,
	policy Policy, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		rng:     rng,
		rates:   ref,
		factory: NewFactory(rng, ref, ref, ids, policy.SurnameWeighting, logger),
		store:   store,
		policy:  policy,
		logger:  logger,
	}
}

// Factory returns the person factory the engine uses.
func (e *Engine) Factory() *Factory {
	return e.factory
}

// Stats returns counters accumulated since the engine was created.
func (e *Engine) Stats() Stats {
	s := e.stats
	s.People = e.store.TotalCount()
	return s
}

// SeedFounders creates the founding couple, links them and adds both to
// the store. The first founder is returned as the generation root.
func (e *Engine) SeedFounders(a, b Founder) (*model.Person, error) {
	pa := e.createFounder(a)
	pb := e.createFounder(b)
	if err := e.store.Add(pa); err != nil {
		return nil, fmt.Errorf("add founder: %w", err)
	}
	if err := e.store.Add(pb); err != nil {
		return nil, fmt.Errorf("add founder: %w", err)
	}
	if err := e.store.LinkPartners(pa, pb); err != nil {
		return nil, fmt.Errorf("link founders: %w", err)
	}
	return pa, nil
}

func (e *Engine) createFounder(f Founder) *model.Person {
	var opts []Option
	if f.FirstName != "" {
		opts = append(opts, WithFirstName(f.FirstName))
	}
	if f.LastName != "" {
		opts = append(opts, WithLastName(f.LastName))
	}
	if f.Gender != "" {
		opts = append(opts, WithGender(f.Gender))
	}
	return e.factory.Create(f.YearBorn, opts...)
}

// Run seeds the founding couple and generates their descendants.
func (e *Engine) Run(ctx context.Context, a, b Founder) (*model.Person, error) {
	root, err := e.SeedFounders(a, b)
	if err != nil {
		return nil, err
	}
	if err := e.Generate(ctx, root); err != nil {
		return nil, err
	}
	return root, nil
}

// Generate attaches a partner and descendants to root until no child can
// be born by the policy's horizon year. root is added to the store if it
// is not there yet.
func (e *Engine) Generate(ctx context.Context, root *model.Person) error {
	if e.store.Get(root.ID) == nil {
		if err := e.store.Add(root); err != nil {
			return err
		}
	}

	var err error
	if e.policy.Traversal == BreadthFirst {
		err = e.breadthFirst(ctx, root)
	} else {
		err = e.depthFirst(ctx, root, 1)
	}
	if err != nil {
		return err
	}

	e.logger.Debug("generation finished",
		"root", root.FullName(),
		"people", e.store.TotalCount(),
		"partners", e.stats.Partners,
		"children", e.stats.Children,
		"skipped_births", e.stats.SkippedBirths,
		"generations", e.stats.Generations)
	return nil
}

// depthFirst creates each child and descends into it before the next
// sibling is born.
func (e *Engine) depthFirst(ctx context.Context, p *model.Person, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.noteDepth(depth)

	years, err := e.visit(p)
	if err != nil {
		return err
	}
	for _, year := range years {
		child, err := e.bear(p, year)
		if err != nil {
			return err
		}
		if err := e.depthFirst(ctx, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// breadthFirst creates all of a person's children before expanding the
// next person in the queue.
func (e *Engine) breadthFirst(ctx context.Context, root *model.Person) error {
	type item struct {
		person *model.Person
		depth  int
	}
	queue := []item{{person: root, depth: 1}}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		it := queue[0]
		queue = queue[1:]
		e.noteDepth(it.depth)

		years, err := e.visit(it.person)
		if err != nil {
			return err
		}
		for _, year := range years {
			child, err := e.bear(it.person, year)
			if err != nil {
				return err
			}
			queue = append(queue, item{person: child, depth: it.depth + 1})
		}
	}
	return nil
}

func (e *Engine) noteDepth(depth int) {
	if depth > e.stats.Generations {
		e.stats.Generations = depth
	}
}

// visit runs the partner trial for p and returns the birth years of the
// children that fall within the horizon.
func (e *Engine) visit(p *model.Person) ([]int, error) {
	rates := e.ratesFor(refdata.DecadeOf(p.YearBorn))

	if !p.HasPartner() && sample.Bernoulli(e.rng, rates.MarriageRate) {
		if err := e.marry(p); err != nil {
			return nil, err
		}
	}

	scheduled := e.birthYears(p.YearBorn, e.childCount(rates.BirthRate))
	years := scheduled[:0]
	for _, y := range scheduled {
		if y > e.policy.HorizonYear {
			e.stats.SkippedBirths++
			continue
		}
		years = append(years, y)
	}
	return years, nil
}

// marry creates a partner born within ten years of p. Partners bring
// their own surname and are never expanded.
func (e *Engine) marry(p *model.Person) error {
	year := refdata.ClampYear(p.YearBorn + sample.IntBetween(e.rng, -10, 10))
	partner := e.factory.Create(year)
	if err := e.store.Add(partner); err != nil {
		return fmt.Errorf("add partner: %w", err)
	}
	if err := e.store.LinkPartners(p, partner); err != nil {
		return fmt.Errorf("link partner: %w", err)
	}
	e.stats.Partners++
	return nil
}

// bear creates p's child born in year. Children inherit p's surname.
func (e *Engine) bear(p *model.Person, year int) (*model.Person, error) {
	child := e.factory.Create(year, WithLastName(p.LastName))
	if err := e.store.Add(child); err != nil {
		return nil, fmt.Errorf("add child: %w", err)
	}
	if err := e.store.AddChild(p, child); err != nil {
		return nil, fmt.Errorf("add child: %w", err)
	}
	e.stats.Children++
	return child, nil
}

func (e *Engine) ratesFor(decade int) refdata.Rates {
	r, err := e.rates.RatesFor(decade)
	if err != nil {
		e.logger.Debug("rates fallback", "decade", refdata.DecadeLabel(decade), "err", err)
		return refdata.Rates{BirthRate: DefaultBirthRate, MarriageRate: DefaultMarriageRate}
	}
	return r
}

func (e *Engine) childCount(rate float64) int {
	var n int
	switch e.policy.ChildCount {
	case Wiggle:
		n = sample.IntBetween(e.rng, int(math.Ceil(rate-1.5)), int(math.Ceil(rate+1.5)))
	default:
		n = int(math.RoundToEven(rate))
	}
	if n < 0 {
		return 0
	}
	return n
}

// birthYears schedules n children of a parent born in parentYear, all
// between the parent's 25th and 45th year.
func (e *Engine) birthYears(parentYear, n int) []int {
	if n <= 0 {
		return nil
	}
	years := make([]int, n)

	if e.policy.ChildCount == Wiggle {
		for i := range years {
			years[i] = sample.IntBetween(e.rng, parentYear+25, parentYear+45)
		}
		sort.Ints(years)
		return years
	}

	if n == 1 {
		years[0] = parentYear + 35
		return years
	}
	gap := 20.0 / float64(n-1)
	for i := range years {
		years[i] = int(float64(parentYear+25) + float64(i)*gap)
	}
	return years
}
