package generate

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rcliao/family-tree/internal/model"
	"github.com/rcliao/family-tree/internal/population"
	"github.com/rcliao/family-tree/internal/refdata"
)

var testEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// newTables returns a small reference set covering every supported decade
// with the given rates.
func newTables(t *testing.T, birthRate, marriageRate float64) *refdata.Tables {
	t.Helper()
	var rows refdata.Rows
	for d := refdata.MinYear; d <= refdata.MaxYear; d += 10 {
		rows.Rates = append(rows.Rates, refdata.RateRow{Decade: d, BirthRate: birthRate, MarriageRate: marriageRate})
		rows.FirstNames = append(rows.FirstNames,
			refdata.FirstNameRow{Decade: d, Gender: model.Male, Name: "Alan", Frequency: 3},
			refdata.FirstNameRow{Decade: d, Gender: model.Male, Name: "Brian", Frequency: 1},
			refdata.FirstNameRow{Decade: d, Gender: model.Female, Name: "Cara", Frequency: 2},
			refdata.FirstNameRow{Decade: d, Gender: model.Female, Name: "Dana", Frequency: 2},
		)
		rows.Surnames = append(rows.Surnames,
			refdata.SurnameRow{Decade: d, Rank: 1, Name: "Brown"},
			refdata.SurnameRow{Decade: d, Rank: 2, Name: "Wilson"},
		)
		rows.Lifespans = append(rows.Lifespans, refdata.LifespanRow{Year: d, Expectancy: 78})
	}
	rows.RankProbabilities = []refdata.RankProbabilityRow{
		{Rank: 1, Probability: 0.7},
		{Rank: 2, Probability: 0.3},
	}

	tables, err := refdata.New(rows)
	require.NoError(t, err)
	return tables
}

func newEngine(t *testing.T, ref Reference, policy Policy, seed int64) (*Engine, *population.Store) {
	t.Helper()
	store := population.NewStore()
	e := NewEngine(rand.New(rand.NewSource(seed)), ref, store, population.NewIDSource(testEpoch, seed), policy, nil)
	return e, store
}

// checkInvariants asserts the structural properties every generated
// population must satisfy.
func checkInvariants(t *testing.T, store *population.Store) {
	t.Helper()
	for _, p := range store.All() {
		require.Greater(t, p.YearDied, p.YearBorn, "%s dies before being born", p)
		if p.HasPartner() {
			q := store.Partner(p)
			require.NotNil(t, q, "%s has a dangling partner id", p)
			require.Equal(t, p.ID, q.PartnerID, "partner link of %s is not mutual", p)
		}
		for _, c := range store.Children(p) {
			require.Greater(t, c.YearBorn, p.YearBorn, "child %s not younger than %s", c, p)
			require.Equal(t, p.LastName, c.LastName, "child %s does not carry %s's surname", c, p)
		}
		require.Len(t, store.Children(p), len(p.ChildIDs))
	}
}
