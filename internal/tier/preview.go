package tier

import (
	"fmt"

	"github.com/washlytics/siteiq/internal/model"
)

// Mask strings for redacted fields. Redaction replaces values with these
// exact constants, so masking an already-masked preview changes nothing.
const (
	MaskNumeric = "•••••"
	MaskPremium = "🔒 PREMIUM CONTENT"
)

const upsellMessage = "Upgrade to Full Enterprise to unlock every section of this report."

// BuildPreview renders a completed analysis into the display-string form
// that redaction operates on. No masking happens here.
func BuildPreview(a *model.LocationAnalysis, t Tier) *model.PreviewReport {
	p := &model.PreviewReport{
		AnalysisID: a.AnalysisID,
		DepthLevel: t.DepthLevel,
		TierKey:    t.Key,
		BasicInfo: model.PreviewBasicInfo{
			Address:        a.Location.Address,
			OverallGrade:   a.Score.Grade,
			TotalScore:     fmt.Sprintf("%.1f", a.Score.TotalScore),
			Recommendation: string(a.Score.Recommendation),
		},
	}

	p.Demographics = model.PreviewSection{Fields: []model.PreviewField{
		{Key: "population", Value: fmt.Sprintf("%d", a.Demographics.Population)},
		{Key: "median_income", Value: fmt.Sprintf("$%d", a.Demographics.MedianIncome)},
		{Key: "households", Value: fmt.Sprintf("%d", a.Demographics.Households)},
		{Key: "renter_pct", Value: fmt.Sprintf("%.0f%%", a.Demographics.RenterPct*100)},
		{Key: "data_source", Value: string(a.Demographics.DataSource)},
	}}

	p.Competition = model.PreviewCompetition{
		CompetitorCount: fmt.Sprintf("%d", len(a.Competition.Competitors)),
		NearbyCount:     fmt.Sprintf("%d", a.Competition.WithinMiles(1.0)),
	}
	for _, c := range a.Competition.Competitors {
		p.Competition.CompetitorDetails = append(p.Competition.CompetitorDetails,
			fmt.Sprintf("%s (%.1f mi, %.1f★, %s threat)", c.Name, c.DistanceMiles, c.Rating, c.ThreatLevel))
	}
	for _, c := range a.Competition.Competitors {
		if c.ThreatLevel == model.ThreatHigh {
			p.Competition.TopThreat = c.Name
			break
		}
	}
	if p.Competition.TopThreat == "" && len(a.Competition.Competitors) > 0 {
		p.Competition.TopThreat = a.Competition.Competitors[0].Name
	}

	p.RealEstate = model.PreviewSection{Fields: []model.PreviewField{
		{Key: "avg_property_value", Value: fmt.Sprintf("$%.0f", a.RealEstate.AvgPropertyValue)},
		{Key: "sample_size", Value: fmt.Sprintf("%d", a.RealEstate.SampleSize)},
		{Key: "data_source", Value: string(a.RealEstate.DataSource)},
	}}

	if len(a.Financials.Scenarios) > 0 {
		var base model.RevenueScenario
		for _, s := range a.Financials.Scenarios {
			if s.Name == "base" {
				base = s
			}
		}
		p.ROIPreview = model.PreviewROI{
			EstimatedMonthlyRevenue: fmt.Sprintf("$%.0f", base.MonthlyRevenue),
			DetailedProjections:     projectionsSummary(a.Financials),
			PaybackEstimate:         fmt.Sprintf("%.1f years", base.PaybackYears),
		}
	}

	p.Equipment = model.PreviewSection{Fields: []model.PreviewField{
		{Key: "brand_tier", Value: a.Equipment.BrandTier},
		{Key: "machine_count", Value: fmt.Sprintf("%d", a.Equipment.MachineCount())},
		{Key: "total_investment", Value: fmt.Sprintf("$%.0f", a.Equipment.TotalInvestment)},
		{Key: "monthly_maintenance", Value: fmt.Sprintf("$%.0f", a.Equipment.MonthlyMaintenance)},
	}}

	return p
}

func projectionsSummary(f model.FinancialProjection) string {
	out := ""
	for i, s := range f.Scenarios {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s: $%.0f/mo net $%.0f", s.Name, s.MonthlyRevenue, s.NetMonthly)
	}
	return out
}

// Redact masks every field in the tier's excludes list and attaches the
// upsell message when anything was hidden. Basic info always passes through
// unmasked. Idempotent: redacting a redacted preview is a no-op.
func (p *Policy) Redact(preview *model.PreviewReport, t Tier) *model.PreviewReport {
	out := *preview
	out.DepthLevel = t.DepthLevel
	out.TierKey = t.Key

	excluded := make(map[string]bool, len(t.Excludes))
	for _, f := range t.Excludes {
		excluded[f] = true
	}

	if excluded[FieldDemographics] {
		out.Demographics = maskSection(out.Demographics)
	}
	if excluded[FieldRealEstate] {
		out.RealEstate = maskSection(out.RealEstate)
	}
	if excluded[FieldCompetitorDetail] {
		out.Competition.CompetitorDetails = nil
		out.Competition.TopThreat = MaskPremium
	}
	if excluded[FieldROIRevenue] {
		out.ROIPreview.EstimatedMonthlyRevenue = MaskNumeric
	}
	if excluded[FieldROIProjections] {
		out.ROIPreview.DetailedProjections = MaskPremium
	}
	if excluded[FieldROIPayback] {
		out.ROIPreview.PaybackEstimate = MaskNumeric
	}
	if excluded[FieldEquipment] {
		out.Equipment = maskSection(out.Equipment)
	}

	if len(t.Excludes) > 0 {
		out.Upsell = upsellMessage
	} else {
		out.Upsell = ""
	}
	return &out
}

func maskSection(s model.PreviewSection) model.PreviewSection {
	masked := model.PreviewSection{Fields: make([]model.PreviewField, len(s.Fields))}
	for i, f := range s.Fields {
		masked.Fields[i] = model.PreviewField{Key: f.Key, Value: MaskNumeric}
	}
	return masked
}
