package generate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/family-tree/internal/model"
	"github.com/rcliao/family-tree/internal/population"
	"github.com/rcliao/family-tree/internal/refdata"
)

func newFactory(t *testing.T, tables *refdata.Tables, seed int64) *Factory {
	t.Helper()
	return NewFactory(rand.New(rand.NewSource(seed)), tables, tables,
		population.NewIDSource(testEpoch, seed), refdata.RankOnly, nil)
}

func TestFactory_Create(t *testing.T) {
	f := newFactory(t, newTables(t, 2, 0.5), 1)

	for year := refdata.MinYear; year <= refdata.MaxYear; year++ {
		p := f.Create(year)
		require.NotEmpty(t, p.ID)
		assert.Greater(t, p.YearDied, p.YearBorn)
		assert.True(t, model.ValidGenders[p.Gender], "gender %q", p.Gender)
		assert.Contains(t, []string{"Brown", "Wilson"}, p.LastName)
		if p.Gender == model.Male {
			assert.Contains(t, []string{"Alan", "Brian"}, p.FirstName)
		} else {
			assert.Contains(t, []string{"Cara", "Dana"}, p.FirstName)
		}
		// expectancy 78 with jitter in [-10, 10]
		assert.GreaterOrEqual(t, p.YearDied-p.YearBorn, 68)
		assert.LessOrEqual(t, p.YearDied-p.YearBorn, 88)
	}
}

func TestFactory_LifespanJitterCoversBothEnds(t *testing.T) {
	f := newFactory(t, newTables(t, 2, 0.5), 6)

	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		p := f.Create(1960)
		lifespan := p.YearDied - p.YearBorn
		require.GreaterOrEqual(t, lifespan, 68)
		require.LessOrEqual(t, lifespan, 88)
		seen[lifespan] = true
	}
	assert.True(t, seen[68], "jitter of -10 never drawn")
	assert.True(t, seen[88], "jitter of +10 never drawn")
	assert.Len(t, seen, 21)
}

func TestFactory_ForcedAttributes(t *testing.T) {
	f := newFactory(t, newTables(t, 2, 0.5), 2)

	p := f.Create(1980, WithLastName("Jones"), WithGender(model.Female), WithFirstName("Molly"))
	assert.Equal(t, "Molly", p.FirstName)
	assert.Equal(t, "Jones", p.LastName)
	assert.Equal(t, model.Female, p.Gender)
	assert.Equal(t, 1980, p.YearBorn)
	assert.Empty(t, p.PartnerID)
	assert.Empty(t, p.ChildIDs)
}

func TestFactory_FallsBackWithoutReferenceData(t *testing.T) {
	empty, err := refdata.New(refdata.Rows{})
	require.NoError(t, err)
	f := newFactory(t, empty, 3)

	for i := 0; i < 200; i++ {
		p := f.Create(1990)
		assert.Equal(t, DefaultFirstName(p.Gender), p.FirstName)
		assert.Equal(t, DefaultLastName, p.LastName)
		lifespan := p.YearDied - p.YearBorn
		assert.GreaterOrEqual(t, lifespan, int(DefaultLifeExpectancy)-10)
		assert.LessOrEqual(t, lifespan, int(DefaultLifeExpectancy)+10)
	}
}

func TestFactory_ShortExpectancyStillOutlivesBirth(t *testing.T) {
	tables, err := refdata.New(refdata.Rows{
		Lifespans: []refdata.LifespanRow{{Year: 1950, Expectancy: 0.5}},
	})
	require.NoError(t, err)
	f := newFactory(t, tables, 4)

	for i := 0; i < 200; i++ {
		p := f.Create(1950)
		assert.Greater(t, p.YearDied, p.YearBorn)
	}
}

func TestFactory_GenderIsRoughlyUniform(t *testing.T) {
	f := newFactory(t, newTables(t, 2, 0.5), 5)

	counts := map[model.Gender]int{}
	for i := 0; i < 2000; i++ {
		counts[f.Create(2000).Gender]++
	}
	assert.InDelta(t, 1000, counts[model.Male], 120)
	assert.InDelta(t, 1000, counts[model.Female], 120)
}

func TestFactory_Deterministic(t *testing.T) {
	tables := newTables(t, 2, 0.5)
	a := newFactory(t, tables, 42)
	b := newFactory(t, tables, 42)

	for year := 1950; year < 2050; year++ {
		assert.Equal(t, a.Create(year), b.Create(year))
	}
}
