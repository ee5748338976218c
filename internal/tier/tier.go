// Package tier implements the depth-tier entitlement policy: the static
// tier table, preview redaction, and cache-reuse pricing.
package tier

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Depth levels run 1 (free preview) through 5 (monitoring).
const (
	MinDepth = 1
	MaxDepth = 5
)

var (
	ErrInvalidTier  = eris.New("tier: unknown tier key")
	ErrInvalidDepth = eris.New("tier: depth level out of range")
)

// Tier is one row of the entitlement table.
type Tier struct {
	Key        string   `yaml:"key"`
	Name       string   `yaml:"name"`
	Price      float64  `yaml:"price"`
	Monthly    bool     `yaml:"monthly"`
	DepthLevel int      `yaml:"depth_level"`
	Includes   []string `yaml:"includes"`
	Excludes   []string `yaml:"excludes"`
}

// Section and field identifiers used in includes/excludes lists.
const (
	FieldDemographics     = "demographics"
	FieldRealEstate       = "real_estate"
	FieldCompetitorDetail = "competition.details"
	FieldROIRevenue       = "roi.revenue"
	FieldROIProjections   = "roi.detailed_projections"
	FieldROIPayback       = "roi.payback"
	FieldEquipment        = "equipment"
)

var allFields = []string{
	FieldDemographics,
	FieldRealEstate,
	FieldCompetitorDetail,
	FieldROIRevenue,
	FieldROIProjections,
	FieldROIPayback,
	FieldEquipment,
}

// DefaultTiers returns the built-in five-tier table. Basic info (address,
// grade, total score, recommendation) is never excluded at any tier.
func DefaultTiers() []Tier {
	return []Tier{
		{
			Key: "basic_scout", Name: "Basic Scout", Price: 0, DepthLevel: 1,
			Includes: []string{},
			Excludes: allFields,
		},
		{
			Key: "market_insights", Name: "Market Insights", Price: 49, DepthLevel: 2,
			Includes: []string{FieldDemographics, FieldRealEstate, FieldROIRevenue},
			Excludes: []string{FieldCompetitorDetail, FieldROIProjections, FieldROIPayback, FieldEquipment},
		},
		{
			Key: "competitor_intel", Name: "Competitor Intel", Price: 99, DepthLevel: 3,
			Includes: []string{FieldDemographics, FieldRealEstate, FieldROIRevenue, FieldCompetitorDetail},
			Excludes: []string{FieldROIProjections, FieldROIPayback, FieldEquipment},
		},
		{
			Key: "full_enterprise", Name: "Full Enterprise", Price: 199, DepthLevel: 4,
			Includes: allFields,
			Excludes: []string{},
		},
		{
			Key: "real_time_monitoring", Name: "Real-Time Monitoring", Price: 299, Monthly: true, DepthLevel: 5,
			Includes: allFields,
			Excludes: []string{},
		},
	}
}

// Policy resolves tiers and applies entitlement rules.
type Policy struct {
	tiers []Tier
}

// NewPolicy builds a policy over the default tier table.
func NewPolicy() *Policy {
	return &Policy{tiers: DefaultTiers()}
}

// NewPolicyFromFile builds a policy from a YAML tier table, for deployments
// that override prices or entitlements without a rebuild.
func NewPolicyFromFile(path string) (*Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "tier: read tier table")
	}

	var doc struct {
		Tiers []Tier `yaml:"tiers"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, eris.Wrap(err, "tier: parse tier table")
	}
	if len(doc.Tiers) == 0 {
		return nil, eris.New("tier: tier table is empty")
	}

	seen := make(map[int]bool)
	for _, t := range doc.Tiers {
		if t.Key == "" {
			return nil, eris.New("tier: tier with empty key")
		}
		if t.DepthLevel < MinDepth || t.DepthLevel > MaxDepth {
			return nil, eris.Wrapf(ErrInvalidDepth, "tier %q", t.Key)
		}
		if seen[t.DepthLevel] {
			return nil, eris.Errorf("tier: duplicate depth level %d", t.DepthLevel)
		}
		seen[t.DepthLevel] = true
	}
	return &Policy{tiers: doc.Tiers}, nil
}

// Tiers returns the active tier table.
func (p *Policy) Tiers() []Tier {
	return p.tiers
}

// ByKey resolves a tier by its key.
func (p *Policy) ByKey(key string) (Tier, error) {
	for _, t := range p.tiers {
		if t.Key == key {
			return t, nil
		}
	}
	return Tier{}, eris.Wrapf(ErrInvalidTier, "%q", key)
}

// ByDepth resolves a tier by depth level.
func (p *Policy) ByDepth(depth int) (Tier, error) {
	for _, t := range p.tiers {
		if t.DepthLevel == depth {
			return t, nil
		}
	}
	return Tier{}, eris.Wrapf(ErrInvalidDepth, "%d", depth)
}

// ValidateDepth rejects depth levels outside the table before any fetch
// work is spent.
func (p *Policy) ValidateDepth(depth int) error {
	if depth < MinDepth || depth > MaxDepth {
		return eris.Wrapf(ErrInvalidDepth, "%d", depth)
	}
	_, err := p.ByDepth(depth)
	return err
}

// ValidateTier rejects unknown tier keys.
func (p *Policy) ValidateTier(key string) error {
	_, err := p.ByKey(key)
	return err
}
