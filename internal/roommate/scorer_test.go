package roommate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func baseProfile() Profile {
	return Profile{
		BudgetMin:         500,
		BudgetMax:         800,
		HousingType:       "apartment",
		PreferredLocation: "near_campus",
		Cleanliness:       4,
		NoiseTolerance:    3,
		SocialLevel:       3,
		SmokingAllowed:    false,
		PetsAllowed:       false,
	}
}

func TestScore_PerfectMatch(t *testing.T) {
	a, b := baseProfile(), baseProfile()
	assert.Equal(t, 100, Score(a, b))
	assert.Equal(t, 100, Score(a, a))
}

func TestScore_NoBudgetOverlap(t *testing.T) {
	a, b := baseProfile(), baseProfile()
	a.BudgetMin, a.BudgetMax = 300, 400
	b.BudgetMin, b.BudgetMax = 900, 1000
	assert.Equal(t, 75, Score(a, b))
}

func TestScore_Factors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Profile)
		want   int
	}{
		{"touching budgets still overlap", func(p *Profile) { p.BudgetMin, p.BudgetMax = 800, 900 }, 100},
		{"housing type differs", func(p *Profile) { p.HousingType = "house" }, 80},
		{"location differs", func(p *Profile) { p.PreferredLocation = "downtown" }, 85},
		{"smoking differs", func(p *Profile) { p.SmokingAllowed = true }, 93},
		{"pets differ", func(p *Profile) { p.PetsAllowed = true }, 95},
		// cleanliness 4 vs 1: (5-3)/5 * 10 = 4 of 10
		{"cleanliness far apart", func(p *Profile) { p.Cleanliness = 1 }, 94},
		// noise 3 vs 5: (5-2)/5 * 10 = 6 of 10
		{"noise two apart", func(p *Profile) { p.NoiseTolerance = 5 }, 96},
		// social 3 vs 4: (5-1)/5 * 8 = 6.4 of 8
		{"social one apart", func(p *Profile) { p.SocialLevel = 4 }, 98},
		{"everything differs", func(p *Profile) {
			p.BudgetMin, p.BudgetMax = 2000, 3000
			p.HousingType = "dorm"
			p.PreferredLocation = "suburbs"
			p.Cleanliness = 1
			p.NoiseTolerance = 5
			p.SocialLevel = 1
			p.SmokingAllowed = true
			p.PetsAllowed = true
		}, 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := baseProfile(), baseProfile()
			tt.mutate(&b)
			assert.Equal(t, tt.want, Score(a, b))
			assert.Equal(t, tt.want, Score(b, a), "score is symmetric")
		})
	}
}

func TestScore_BoundedAndDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	housing := []string{"apartment", "house", "dorm"}
	random := func() Profile {
		lo := rng.Intn(2000)
		return Profile{
			BudgetMin:         lo,
			BudgetMax:         lo + rng.Intn(800),
			HousingType:       housing[rng.Intn(len(housing))],
			PreferredLocation: housing[rng.Intn(len(housing))],
			Cleanliness:       rng.Intn(7), // includes out of range values
			NoiseTolerance:    1 + rng.Intn(5),
			SocialLevel:       1 + rng.Intn(5),
			SmokingAllowed:    rng.Intn(2) == 0,
			PetsAllowed:       rng.Intn(2) == 0,
		}
	}
	for i := 0; i < 1000; i++ {
		a, b := random(), random()
		s := Score(a, b)
		assert.GreaterOrEqual(t, s, 0)
		assert.LessOrEqual(t, s, 100)
		assert.Equal(t, s, Score(a, b))
	}
}

func TestBudgetOverlap(t *testing.T) {
	p := func(lo, hi int) Profile { return Profile{BudgetMin: lo, BudgetMax: hi} }

	assert.Equal(t, 1.0, BudgetOverlap(p(500, 800), p(500, 800)))
	assert.Equal(t, 0.0, BudgetOverlap(p(300, 400), p(900, 1000)))
	assert.InDelta(t, 0.5, BudgetOverlap(p(500, 700), p(600, 900)), 1e-9)
	assert.Equal(t, 1.0, BudgetOverlap(p(500, 900), p(600, 700)), "nested range is fully covered")
	assert.Equal(t, 1.0, BudgetOverlap(p(600, 600), p(500, 700)))
	assert.Equal(t, 1.0, BudgetOverlap(p(800, 500), p(500, 800)), "swapped bounds are normalized")
}
