package model

// PreviewReport mirrors a LocationAnalysis with every value rendered as a
// display string, so entitlement redaction can replace individual fields
// with masked placeholders without changing the shape.
type PreviewReport struct {
	AnalysisID   string             `json:"analysis_id"`
	DepthLevel   int                `json:"depth_level"`
	TierKey      string             `json:"tier_key"`
	BasicInfo    PreviewBasicInfo   `json:"basic_info"`
	Demographics PreviewSection     `json:"demographics"`
	Competition  PreviewCompetition `json:"competition"`
	RealEstate   PreviewSection     `json:"real_estate"`
	ROIPreview   PreviewROI         `json:"roi_preview"`
	Equipment    PreviewSection     `json:"equipment"`
	Upsell       string             `json:"upsell,omitempty"`
}

// PreviewBasicInfo is always present regardless of tier.
type PreviewBasicInfo struct {
	Address        string `json:"address"`
	OverallGrade   string `json:"overall_grade"`
	TotalScore     string `json:"total_score"`
	Recommendation string `json:"recommendation"`
}

// PreviewSection is a generic ordered field list for one report section.
type PreviewSection struct {
	Fields []PreviewField `json:"fields"`
}

// Get returns the value for a field key, or empty string if absent.
func (s PreviewSection) Get(key string) string {
	for _, f := range s.Fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}

// PreviewField is one key/value pair in a preview section.
type PreviewField struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// PreviewCompetition summarizes the competitor landscape.
type PreviewCompetition struct {
	CompetitorCount   string   `json:"competitor_count"`
	NearbyCount       string   `json:"nearby_count"` // within 1 mile
	CompetitorDetails []string `json:"competitor_details,omitempty"`
	TopThreat         string   `json:"top_threat"`
}

// PreviewROI carries the revenue projection preview.
type PreviewROI struct {
	EstimatedMonthlyRevenue string `json:"estimated_monthly_revenue"`
	DetailedProjections     string `json:"detailed_projections"`
	PaybackEstimate         string `json:"payback_estimate"`
}
