// Package roommate scores compatibility between roommate-seeker profiles and ranks match
// candidates.
package roommate

import (
	"campuscart/backend/internal/config"
	"campuscart/backend/internal/models"
	"math"
)

// Profile holds the attributes of a roommate post that take part in scoring.
type Profile struct {
	BudgetMin         int
	BudgetMax         int
	HousingType       string
	PreferredLocation string
	Cleanliness       int
	NoiseTolerance    int
	SocialLevel       int
	SmokingAllowed    bool
	PetsAllowed       bool
}

func ProfileOf(p *models.RoommatePost) Profile {
	return Profile{
		BudgetMin:         p.BudgetMin,
		BudgetMax:         p.BudgetMax,
		HousingType:       p.HousingType,
		PreferredLocation: p.PreferredLocation,
		Cleanliness:       p.CleanlinessLevel,
		NoiseTolerance:    p.NoiseTolerance,
		SocialLevel:       p.SocialLevel,
		SmokingAllowed:    p.SmokingAllowed,
		PetsAllowed:       p.PetsAllowed,
	}
}

// Score returns the 0-100 compatibility of two profiles. Each factor contributes its weight
// only when satisfied; numeric lifestyle scales earn partial credit by distance.
func Score(a, b Profile) int {
	w := config.CompatibilityWeights
	var achieved, total float64

	add := func(weight int, credit float64) {
		total += float64(weight)
		achieved += float64(weight) * credit
	}

	add(w["budget"], boolCredit(budgetsOverlap(a, b)))
	add(w["housingType"], boolCredit(a.HousingType == b.HousingType))
	add(w["location"], boolCredit(a.PreferredLocation == b.PreferredLocation))
	add(w["cleanliness"], scaleCredit(a.Cleanliness, b.Cleanliness))
	add(w["noise"], scaleCredit(a.NoiseTolerance, b.NoiseTolerance))
	add(w["social"], scaleCredit(a.SocialLevel, b.SocialLevel))
	add(w["smoking"], boolCredit(a.SmokingAllowed == b.SmokingAllowed))
	add(w["pets"], boolCredit(a.PetsAllowed == b.PetsAllowed))

	if total == 0 {
		return 0
	}
	return int(math.Round(100 * achieved / total))
}

// budgetsOverlap awards the budget factor for any overlap at all.
func budgetsOverlap(a, b Profile) bool {
	aMin, aMax := orderedRange(a.BudgetMin, a.BudgetMax)
	bMin, bMax := orderedRange(b.BudgetMin, b.BudgetMax)
	return aMin <= bMax && bMin <= aMax
}

// BudgetOverlap is the share (0-1) of the narrower budget range covered by the overlap.
// It is informational and does not feed Score.
func BudgetOverlap(a, b Profile) float64 {
	aMin, aMax := orderedRange(a.BudgetMin, a.BudgetMax)
	bMin, bMax := orderedRange(b.BudgetMin, b.BudgetMax)

	lo, hi := max(aMin, bMin), min(aMax, bMax)
	if lo > hi {
		return 0
	}
	narrow := min(aMax-aMin, bMax-bMin)
	if narrow == 0 {
		return 1
	}
	return float64(hi-lo) / float64(narrow)
}

func orderedRange(lo, hi int) (int, int) {
	if hi < lo {
		return hi, lo
	}
	return lo, hi
}

func boolCredit(ok bool) float64 {
	if ok {
		return 1
	}
	return 0
}

// scaleCredit compares two 1-5 ratings; out of range values are clamped.
func scaleCredit(a, b int) float64 {
	d := clampLevel(a) - clampLevel(b)
	if d < 0 {
		d = -d
	}
	return math.Max(0, float64(5-d)/5)
}

func clampLevel(v int) int {
	return min(max(v, 1), 5)
}
