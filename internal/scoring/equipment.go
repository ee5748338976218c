package scoring

import (
	"github.com/washlytics/siteiq/internal/model"
)

// maintenancePerMachineMonth is the flat monthly maintenance estimate.
const maintenancePerMachineMonth = 45.0

// Income band boundaries for equipment selection.
const (
	valueBandMaxIncome    = 40000
	standardBandMaxIncome = 60000
)

// machineCatalogs holds the fixed machine mix per brand tier. Counts and
// unit costs reflect a roughly 2,000 sq ft store.
var machineCatalogs = map[string][]model.MachineLine{
	"value": {
		{Type: "washer_20lb", Count: 8, UnitCost: 3500},
		{Type: "washer_30lb", Count: 4, UnitCost: 4500},
		{Type: "dryer_30lb", Count: 6, UnitCost: 3000},
		{Type: "dryer_45lb", Count: 4, UnitCost: 3800},
	},
	"standard": {
		{Type: "washer_20lb", Count: 6, UnitCost: 4200},
		{Type: "washer_40lb", Count: 6, UnitCost: 5800},
		{Type: "dryer_30lb", Count: 6, UnitCost: 3600},
		{Type: "dryer_50lb", Count: 4, UnitCost: 4600},
	},
	"premium": {
		{Type: "washer_20lb", Count: 4, UnitCost: 5200},
		{Type: "washer_40lb", Count: 6, UnitCost: 7000},
		{Type: "washer_60lb", Count: 2, UnitCost: 9000},
		{Type: "dryer_50lb", Count: 8, UnitCost: 5500},
	},
}

// financingCatalog is the fixed offer list attached to every plan. Offers
// are informational, never queried live.
var financingCatalog = []model.FinancingOption{
	{Name: "equipment_loan", TermMonths: 60, RatePct: 8.5, DownPct: 0.10},
	{Name: "sba_7a", TermMonths: 120, RatePct: 7.25, DownPct: 0.15},
	{Name: "lease_to_own", TermMonths: 48, RatePct: 11.0, DownPct: 0.05},
}

// Advisor recommends an equipment plan from demographics.
type Advisor struct{}

func NewAdvisor() *Advisor {
	return &Advisor{}
}

// Recommend selects the brand tier by median income and fills in the fixed
// catalog, investment total, maintenance, and financing offers.
func (a *Advisor) Recommend(demo model.DemographicsSnapshot) model.EquipmentPlan {
	tier := "standard"
	switch {
	case demo.MedianIncome < valueBandMaxIncome:
		tier = "value"
	case demo.MedianIncome >= standardBandMaxIncome:
		tier = "premium"
	}

	catalog := machineCatalogs[tier]
	machines := make([]model.MachineLine, len(catalog))
	copy(machines, catalog)

	plan := model.EquipmentPlan{
		BrandTier:        tier,
		Machines:         machines,
		FinancingOptions: financingCatalog,
	}
	for _, m := range machines {
		plan.TotalInvestment += float64(m.Count) * m.UnitCost
	}
	plan.MonthlyMaintenance = float64(plan.MachineCount()) * maintenancePerMachineMonth
	return plan
}
