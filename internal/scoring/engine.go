// Package scoring turns the four source snapshots into a graded location
// verdict, an equipment plan, and a three-scenario financial projection.
// Every rule here is a fixed, documented constant; identical inputs always
// produce identical outputs.
package scoring

import (
	"github.com/washlytics/siteiq/internal/model"
)

// Band maxima. The four bands sum to 100.
const (
	demographicsBandMax = 35.0
	competitionBandMax  = 25.0
	realEstateBandMax   = 20.0
	trafficBandMax      = 20.0
)

// Engine scores a location from its snapshots.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Score computes the banded breakdown, total, grade, recommendation, and
// risk level for a location.
func (e *Engine) Score(
	demo model.DemographicsSnapshot,
	comp model.CompetitionSnapshot,
	realEstate model.RealEstateSnapshot,
	traffic model.TrafficSnapshot,
) model.LocationScore {
	breakdown := model.ScoreBreakdown{
		Demographics: demographicsScore(demo),
		Competition:  competitionScore(comp),
		RealEstate:   realEstateScore(realEstate),
		Traffic:      trafficScore(traffic),
	}

	total := breakdown.Demographics + breakdown.Competition + breakdown.RealEstate + breakdown.Traffic
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	return model.LocationScore{
		TotalScore:     total,
		Grade:          GradeFor(total),
		Breakdown:      breakdown,
		Recommendation: recommendationFor(total),
		RiskLevel:      riskLevelFor(total),
	}
}

// demographicsScore awards up to 35 points: 15 for renter concentration,
// 15 for median income, and a 5-point population bonus.
func demographicsScore(d model.DemographicsSnapshot) float64 {
	score := 0.0

	switch {
	case d.RenterPct >= 0.4 && d.RenterPct <= 0.7:
		score += 15
	case (d.RenterPct >= 0.25 && d.RenterPct < 0.4) || (d.RenterPct > 0.7 && d.RenterPct <= 0.8):
		score += 10
	default:
		score += 5
	}

	switch {
	case d.MedianIncome >= 35000 && d.MedianIncome <= 75000:
		score += 15
	case (d.MedianIncome >= 25000 && d.MedianIncome < 35000) || (d.MedianIncome > 75000 && d.MedianIncome <= 95000):
		score += 10
	default:
		score += 5
	}

	if d.Population > 10000 {
		score += 5
	}

	if score > demographicsBandMax {
		score = demographicsBandMax
	}
	return score
}

// competitionScore derives an opportunity score (100 minus 15 per competitor
// within a mile, minus 10 per competitor rated 4.0 or better, floored at 10)
// and bands it into the 25-point scale.
func competitionScore(c model.CompetitionSnapshot) float64 {
	opportunity := 100.0
	opportunity -= 15.0 * float64(c.WithinMiles(1.0))
	opportunity -= 10.0 * float64(c.RatedAtLeast(4.0))
	if opportunity < 10 {
		opportunity = 10
	}

	switch {
	case opportunity >= 75:
		return competitionBandMax
	case opportunity >= 50:
		return 15
	case opportunity >= 25:
		return 10
	default:
		return 5
	}
}

// realEstateScore rewards the affordable-but-viable value range.
func realEstateScore(r model.RealEstateSnapshot) float64 {
	v := r.AvgPropertyValue
	switch {
	case v >= 150000 && v <= 400000:
		return realEstateBandMax
	case (v >= 100000 && v < 150000) || (v > 400000 && v <= 600000):
		return 15
	default:
		return 10
	}
}

func trafficScore(t model.TrafficSnapshot) float64 {
	s := t.AccessibilityScore * 0.2
	if s < 0 {
		return 0
	}
	if s > trafficBandMax {
		return trafficBandMax
	}
	return s
}

// gradeCutoff pairs a minimum total score with its letter grade.
type gradeCutoff struct {
	min   float64
	grade string
}

var gradeCutoffs = []gradeCutoff{
	{90, "A+"},
	{85, "A"},
	{80, "A-"},
	{75, "B+"},
	{70, "B"},
	{65, "B-"},
	{60, "C+"},
	{55, "C"},
	{50, "C-"},
	{45, "D+"},
	{40, "D"},
}

// GradeFor maps a total score to its letter grade.
func GradeFor(total float64) string {
	for _, c := range gradeCutoffs {
		if total >= c.min {
			return c.grade
		}
	}
	return "F"
}

func recommendationFor(total float64) model.Recommendation {
	switch {
	case total >= 80:
		return model.StronglyRecommended
	case total >= 65:
		return model.Recommended
	case total >= 50:
		return model.PossibleWithCaution
	case total >= 35:
		return model.NotIdeal
	default:
		return model.NotRecommended
	}
}

func riskLevelFor(total float64) model.RiskLevel {
	switch {
	case total >= 70:
		return model.RiskLow
	case total >= 50:
		return model.RiskModerate
	default:
		return model.RiskHigh
	}
}
