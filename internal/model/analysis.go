// Package model defines the typed records that flow through the site
// analysis pipeline: resolved locations, source snapshots, scores, and the
// immutable LocationAnalysis aggregate.
package model

import "time"

// DataSource marks whether a snapshot came from a live provider or a
// deterministic local estimate.
type DataSource string

const (
	DataSourceAPI       DataSource = "api"
	DataSourceEstimated DataSource = "estimated"
)

// ThreatLevel classifies how dangerous a nearby competitor is.
type ThreatLevel string

const (
	ThreatLow    ThreatLevel = "low"
	ThreatMedium ThreatLevel = "medium"
	ThreatHigh   ThreatLevel = "high"
)

// Recommendation is the verdict derived from the total score.
type Recommendation string

const (
	StronglyRecommended Recommendation = "strongly_recommended"
	Recommended         Recommendation = "recommended"
	PossibleWithCaution Recommendation = "possible_with_caution"
	NotIdeal            Recommendation = "not_ideal"
	NotRecommended      Recommendation = "not_recommended"
)

// RiskLevel is a coarse risk classification derived from the total score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskModerate RiskLevel = "moderate"
	RiskHigh     RiskLevel = "high"
)

// Coordinates is a WGS84 lat/lng pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// ResolvedLocation is the canonical output of geocoding. Immutable once
// created for a query.
type ResolvedLocation struct {
	Address     string      `json:"address"`
	Coordinates Coordinates `json:"coordinates"`
	PlaceID     string      `json:"place_id,omitempty"`
	Source      string      `json:"source"` // "google" or "census"
}

// DemographicsSnapshot holds tract-level demographic variables for a
// coordinate. Produced fresh on every query, never updated in place.
type DemographicsSnapshot struct {
	Population       int        `json:"population"`
	MedianIncome     int        `json:"median_income"`
	Households       int        `json:"households"`
	RenterPct        float64    `json:"renter_percentage"` // 0.0-1.0
	AvgHouseholdSize float64    `json:"avg_household_size"`
	TractID          string     `json:"tract_id,omitempty"`
	DataSource       DataSource `json:"data_source"`
}

// CompetitorRecord is one nearby laundry business.
type CompetitorRecord struct {
	Name            string      `json:"name"`
	PlaceID         string      `json:"place_id,omitempty"`
	DistanceMiles   float64     `json:"distance_miles"`
	Rating          float64     `json:"rating"`
	ReviewCount     int         `json:"review_count"`
	ThreatLevel     ThreatLevel `json:"threat_level"`
	CompetitiveGaps []string    `json:"competitive_gaps,omitempty"`
}

// CompetitionSnapshot is the full set of competitors found for a location.
// Owned exclusively by one LocationAnalysis.
type CompetitionSnapshot struct {
	Competitors []CompetitorRecord `json:"competitors"`
	DataSource  DataSource         `json:"data_source"`
}

// WithinMiles counts competitors within the given radius.
func (c CompetitionSnapshot) WithinMiles(radius float64) int {
	n := 0
	for _, comp := range c.Competitors {
		if comp.DistanceMiles <= radius {
			n++
		}
	}
	return n
}

// RatedAtLeast counts competitors with a rating at or above the threshold.
func (c CompetitionSnapshot) RatedAtLeast(rating float64) int {
	n := 0
	for _, comp := range c.Competitors {
		if comp.Rating >= rating {
			n++
		}
	}
	return n
}

// RealEstateSnapshot holds the averaged assessed value of parcels near a
// coordinate.
type RealEstateSnapshot struct {
	AvgPropertyValue float64    `json:"avg_property_value"`
	SampleSize       int        `json:"sample_size"`
	DataSource       DataSource `json:"data_source"`
}

// TrafficSnapshot holds the accessibility estimate for a coordinate.
type TrafficSnapshot struct {
	AccessibilityScore float64    `json:"accessibility_score"` // 0-100
	TrafficLevel       string     `json:"traffic_level"`       // "low", "moderate", "high"
	DataSource         DataSource `json:"data_source"`
}

// ScoreBreakdown holds the per-category sub-scores that sum to the total.
type ScoreBreakdown struct {
	Demographics float64 `json:"demographics"` // 0-35
	Competition  float64 `json:"competition"`  // 0-25
	RealEstate   float64 `json:"real_estate"`  // 0-20
	Traffic      float64 `json:"traffic"`      // 0-20
}

// LocationScore is the scored verdict for a location.
type LocationScore struct {
	TotalScore     float64        `json:"total_score"` // clamped to [0,100]
	Grade          string         `json:"grade"`
	Breakdown      ScoreBreakdown `json:"score_breakdown"`
	Recommendation Recommendation `json:"recommendation"`
	RiskLevel      RiskLevel      `json:"risk_level"`
}

// MachineLine is one line item in an equipment plan.
type MachineLine struct {
	Type     string  `json:"type"` // e.g. "washer_20lb"
	Count    int     `json:"count"`
	UnitCost float64 `json:"unit_cost"`
}

// FinancingOption is a fixed-catalog financing offer.
type FinancingOption struct {
	Name       string  `json:"name"`
	TermMonths int     `json:"term_months"`
	RatePct    float64 `json:"rate_pct"`
	DownPct    float64 `json:"down_pct"`
}

// EquipmentPlan is the recommended machine mix and cost estimate.
type EquipmentPlan struct {
	BrandTier          string            `json:"brand_tier"` // "value", "standard", "premium"
	Machines           []MachineLine     `json:"machines"`
	TotalInvestment    float64           `json:"total_investment"`
	MonthlyMaintenance float64           `json:"monthly_maintenance"`
	FinancingOptions   []FinancingOption `json:"financing_options"`
}

// MachineCount returns the total number of machines across all lines.
func (p EquipmentPlan) MachineCount() int {
	n := 0
	for _, m := range p.Machines {
		n += m.Count
	}
	return n
}

// RevenueScenario is one row of the financial projection table.
type RevenueScenario struct {
	Name            string  `json:"name"` // "conservative", "base", "optimistic"
	MonthlyRevenue  float64 `json:"monthly_revenue"`
	MonthlyExpenses float64 `json:"monthly_expenses"`
	NetMonthly      float64 `json:"net_monthly"`
	PaybackYears    float64 `json:"payback_years"`
}

// FinancialProjection holds the three-scenario projection.
type FinancialProjection struct {
	Scenarios []RevenueScenario `json:"scenarios"`
}

// LocationAnalysis is the aggregate root: one completed analysis for one
// address. Immutable after creation; cached and reused for pricing only.
type LocationAnalysis struct {
	AnalysisID   string               `json:"analysis_id"`
	AnalysisType string               `json:"analysis_type"` // tier key at generation time
	Location     ResolvedLocation     `json:"location"`
	Demographics DemographicsSnapshot `json:"demographics"`
	Competition  CompetitionSnapshot  `json:"competition"`
	RealEstate   RealEstateSnapshot   `json:"real_estate"`
	Traffic      TrafficSnapshot      `json:"traffic"`
	Score        LocationScore        `json:"score"`
	Equipment    EquipmentPlan        `json:"equipment"`
	Financials   FinancialProjection  `json:"financials"`
	CreatedAt    time.Time            `json:"created_at"`
}

// Estimated reports whether any source fetcher degraded to a local estimate.
func (a *LocationAnalysis) Estimated() bool {
	return a.Demographics.DataSource == DataSourceEstimated ||
		a.Competition.DataSource == DataSourceEstimated ||
		a.RealEstate.DataSource == DataSourceEstimated ||
		a.Traffic.DataSource == DataSourceEstimated
}

// CacheEntry records that an analysis exists for a (address, analysis_type)
// key, for reuse-pricing lookups. Last write wins on key collisions.
type CacheEntry struct {
	CacheKey    string    `json:"cache_key"`
	AnalysisID  string    `json:"analysis_id"`
	OwnerID     string    `json:"owning_user_id"`
	GeneratedAt time.Time `json:"generated_at"`
}
