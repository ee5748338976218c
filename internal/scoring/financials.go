package scoring

import (
	"math"

	"github.com/washlytics/siteiq/internal/model"
)

// Revenue model constants. The per-machine monthly revenue grows linearly
// with the location score, scaled by tract population demand.
const (
	revenuePerMachineBase  = 280.0 // monthly revenue floor per machine
	revenuePerScorePoint   = 3.2   // added per point of total score
	demandReferencePop     = 10000.0
	demandMultiplierFloor  = 0.6
	demandMultiplierCeil   = 1.4
	fixedMonthlyOverhead   = 2500.0 // rent, utilities, insurance proxy
	variableExpenseRate    = 0.18   // supplies, card fees, misc
	conservativeMultiplier = 0.75
	optimisticMultiplier   = 1.25
)

// Project builds the conservative, base, and optimistic revenue scenarios
// for a plan at a scored location. Pure function of its inputs.
func Project(demo model.DemographicsSnapshot, score model.LocationScore, plan model.EquipmentPlan) model.FinancialProjection {
	demand := float64(demo.Population) / demandReferencePop
	demand = math.Max(demandMultiplierFloor, math.Min(demandMultiplierCeil, demand))

	perMachine := revenuePerMachineBase + revenuePerScorePoint*score.TotalScore
	baseRevenue := float64(plan.MachineCount()) * perMachine * demand

	scenarios := []struct {
		name string
		mult float64
	}{
		{"conservative", conservativeMultiplier},
		{"base", 1.0},
		{"optimistic", optimisticMultiplier},
	}

	proj := model.FinancialProjection{Scenarios: make([]model.RevenueScenario, 0, len(scenarios))}
	for _, s := range scenarios {
		revenue := round2(baseRevenue * s.mult)
		expenses := round2(fixedMonthlyOverhead + plan.MonthlyMaintenance + revenue*variableExpenseRate)
		net := round2(revenue - expenses)

		payback := 0.0 // zero means the scenario never pays back
		if net > 0 {
			payback = round2(plan.TotalInvestment / (net * 12))
		}

		proj.Scenarios = append(proj.Scenarios, model.RevenueScenario{
			Name:            s.name,
			MonthlyRevenue:  revenue,
			MonthlyExpenses: expenses,
			NetMonthly:      net,
			PaybackYears:    payback,
		})
	}
	return proj
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
