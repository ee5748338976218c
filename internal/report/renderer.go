// Package report renders a completed location analysis into a multi-section
// PDF document.
package report

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/rotisserie/eris"

	"github.com/washlytics/siteiq/internal/model"
)

// UserInfo identifies the report recipient on the cover page.
type UserInfo struct {
	Name  string
	Email string
}

// maxCompetitorRows caps the competitor table.
const maxCompetitorRows = 10

// Renderer assembles analysis PDFs. Safe for concurrent use; each Render
// call builds its own document.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render produces the full PDF for an analysis. Sections whose source data
// is empty are omitted. On any build error no partial bytes are returned.
func (r *Renderer) Render(a *model.LocationAnalysis, user UserInfo) ([]byte, error) {
	if a == nil {
		return nil, eris.New("report: nil analysis")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 20)

	r.coverPage(pdf, a, user)
	r.executiveSummary(pdf, a)
	r.demographicsSection(pdf, a)
	r.competitorSection(pdf, a)
	r.financialSection(pdf, a)
	r.riskSection(pdf, a)
	r.recommendationSection(pdf, a)
	r.methodologyAppendix(pdf)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, eris.Wrap(err, "report: render pdf")
	}
	return buf.Bytes(), nil
}

// gradeBadgeColor maps a letter grade family to the badge fill color.
func gradeBadgeColor(grade string) (r, g, b int) {
	if grade == "" {
		return 220, 53, 69 // red
	}
	switch grade[0] {
	case 'A':
		return 40, 167, 69 // green
	case 'B':
		return 0, 123, 255 // blue
	case 'C':
		return 255, 193, 7 // yellow
	default:
		return 220, 53, 69 // red
	}
}

func (r *Renderer) coverPage(pdf *gofpdf.Fpdf, a *model.LocationAnalysis, user UserInfo) {
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 14, "Laundromat Site Intelligence Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 13)
	pdf.CellFormat(0, 8, a.Location.Address, "", 1, "C", false, 0, "")
	pdf.Ln(10)

	// grade badge
	cr, cg, cb := gradeBadgeColor(a.Score.Grade)
	pdf.SetFillColor(cr, cg, cb)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 36)
	badgeW := 50.0
	pdf.SetX((210 - badgeW) / 2)
	pdf.CellFormat(badgeW, 24, a.Score.Grade, "", 1, "C", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Overall score: %.1f / 100", a.Score.TotalScore), "", 1, "C", false, 0, "")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 10)
	if user.Name != "" {
		pdf.CellFormat(0, 6, "Prepared for: "+user.Name, "", 1, "C", false, 0, "")
	}
	if user.Email != "" {
		pdf.CellFormat(0, 6, user.Email, "", 1, "C", false, 0, "")
	}
	pdf.CellFormat(0, 6, "Generated "+a.CreatedAt.Format(time.DateOnly), "", 1, "C", false, 0, "")
}

func (r *Renderer) sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(0, 10, title, "", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func (r *Renderer) executiveSummary(pdf *gofpdf.Fpdf, a *model.LocationAnalysis) {
	pdf.AddPage()
	r.sectionTitle(pdf, "Executive Summary")

	verdict := map[model.Recommendation]string{
		model.StronglyRecommended: "an excellent laundromat site",
		model.Recommended:         "a solid laundromat site",
		model.PossibleWithCaution: "a workable site with notable caveats",
		model.NotIdeal:            "a below-average site for this business",
		model.NotRecommended:      "a poor fit for a laundromat",
	}[a.Score.Recommendation]

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, fmt.Sprintf(
		"%s scores %.1f out of 100 (grade %s), making it %s. "+
			"The score combines tract demographics (%.1f/35), competitive pressure (%.1f/25), "+
			"real estate positioning (%.1f/20), and site accessibility (%.1f/20).",
		a.Location.Address, a.Score.TotalScore, a.Score.Grade, verdict,
		a.Score.Breakdown.Demographics, a.Score.Breakdown.Competition,
		a.Score.Breakdown.RealEstate, a.Score.Breakdown.Traffic,
	), "", "L", false)

	if a.Estimated() {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 5, "One or more data sources were unavailable; the affected sections use deterministic local estimates and are marked accordingly.", "", "L", false)
	}
}

func (r *Renderer) tableRow(pdf *gofpdf.Fpdf, widths []float64, cells []string, header bool) {
	style := ""
	if header {
		style = "B"
		pdf.SetFillColor(235, 235, 235)
	}
	pdf.SetFont("Helvetica", style, 10)
	for i, c := range cells {
		pdf.CellFormat(widths[i], 7, c, "1", 0, "L", header, 0, "")
	}
	pdf.Ln(-1)
}

func (r *Renderer) demographicsSection(pdf *gofpdf.Fpdf, a *model.LocationAnalysis) {
	d := a.Demographics
	if d.Population == 0 && d.Households == 0 {
		return
	}

	pdf.Ln(8)
	r.sectionTitle(pdf, "Demographics")

	w := []float64{70, 60}
	r.tableRow(pdf, w, []string{"Metric", "Value"}, true)
	r.tableRow(pdf, w, []string{"Population (tract)", fmt.Sprintf("%d", d.Population)}, false)
	r.tableRow(pdf, w, []string{"Median household income", fmt.Sprintf("$%d", d.MedianIncome)}, false)
	r.tableRow(pdf, w, []string{"Households", fmt.Sprintf("%d", d.Households)}, false)
	r.tableRow(pdf, w, []string{"Renter share", fmt.Sprintf("%.0f%%", d.RenterPct*100)}, false)
	r.tableRow(pdf, w, []string{"Avg household size", fmt.Sprintf("%.1f", d.AvgHouseholdSize)}, false)
	r.tableRow(pdf, w, []string{"Data source", string(d.DataSource)}, false)
}

func (r *Renderer) competitorSection(pdf *gofpdf.Fpdf, a *model.LocationAnalysis) {
	if len(a.Competition.Competitors) == 0 {
		return
	}

	pdf.Ln(8)
	r.sectionTitle(pdf, "Competitors")

	rows := make([]model.CompetitorRecord, len(a.Competition.Competitors))
	copy(rows, a.Competition.Competitors)
	sort.Slice(rows, func(i, j int) bool { return rows[i].DistanceMiles < rows[j].DistanceMiles })
	if len(rows) > maxCompetitorRows {
		rows = rows[:maxCompetitorRows]
	}

	w := []float64{60, 25, 20, 25, 25}
	r.tableRow(pdf, w, []string{"Name", "Distance", "Rating", "Reviews", "Threat"}, true)
	for _, c := range rows {
		r.tableRow(pdf, w, []string{
			c.Name,
			fmt.Sprintf("%.1f mi", c.DistanceMiles),
			fmt.Sprintf("%.1f", c.Rating),
			fmt.Sprintf("%d", c.ReviewCount),
			string(c.ThreatLevel),
		}, false)
	}
}

func (r *Renderer) financialSection(pdf *gofpdf.Fpdf, a *model.LocationAnalysis) {
	if len(a.Financials.Scenarios) == 0 {
		return
	}

	pdf.Ln(8)
	r.sectionTitle(pdf, "Financial Scenarios")

	w := []float64{35, 40, 40, 35, 30}
	r.tableRow(pdf, w, []string{"Scenario", "Revenue/mo", "Expenses/mo", "Net/mo", "Payback"}, true)
	for _, s := range a.Financials.Scenarios {
		payback := "n/a"
		if s.PaybackYears > 0 {
			payback = fmt.Sprintf("%.1f yr", s.PaybackYears)
		}
		r.tableRow(pdf, w, []string{
			s.Name,
			fmt.Sprintf("$%.0f", s.MonthlyRevenue),
			fmt.Sprintf("$%.0f", s.MonthlyExpenses),
			fmt.Sprintf("$%.0f", s.NetMonthly),
			payback,
		}, false)
	}

	if a.Equipment.TotalInvestment > 0 {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, fmt.Sprintf(
			"Assumes the recommended %s equipment package: %d machines, $%.0f total investment, $%.0f/month maintenance.",
			a.Equipment.BrandTier, a.Equipment.MachineCount(),
			a.Equipment.TotalInvestment, a.Equipment.MonthlyMaintenance,
		), "", "L", false)
	}
}

func (r *Renderer) bulletList(pdf *gofpdf.Fpdf, items []string) {
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		pdf.CellFormat(6, 6, "-", "", 0, "L", false, 0, "")
		pdf.MultiCell(0, 6, item, "", "L", false)
	}
}

func (r *Renderer) riskSection(pdf *gofpdf.Fpdf, a *model.LocationAnalysis) {
	risks := riskBullets(a)
	opportunities := opportunityBullets(a)
	if len(risks) == 0 && len(opportunities) == 0 {
		return
	}

	pdf.Ln(8)
	if len(risks) > 0 {
		r.sectionTitle(pdf, "Risks")
		r.bulletList(pdf, risks)
	}
	if len(opportunities) > 0 {
		pdf.Ln(4)
		r.sectionTitle(pdf, "Opportunities")
		r.bulletList(pdf, opportunities)
	}
}

func riskBullets(a *model.LocationAnalysis) []string {
	var out []string
	if a.Score.TotalScore < 50 {
		out = append(out, "Overall score falls below the usual investment threshold.")
	}
	if n := a.Competition.WithinMiles(1.0); n >= 2 {
		out = append(out, fmt.Sprintf("%d competitors operate within one mile of the site.", n))
	}
	for _, c := range a.Competition.Competitors {
		if c.ThreatLevel == model.ThreatHigh {
			out = append(out, fmt.Sprintf("%s is a high-threat competitor %.1f miles away.", c.Name, c.DistanceMiles))
			break
		}
	}
	if a.RealEstate.AvgPropertyValue > 400000 {
		out = append(out, "Average property values exceed the affordable range for this format.")
	}
	if a.Estimated() {
		out = append(out, "Parts of this analysis rely on estimated data; verify before committing capital.")
	}
	return out
}

func opportunityBullets(a *model.LocationAnalysis) []string {
	var out []string
	if a.Demographics.RenterPct >= 0.4 && a.Demographics.RenterPct <= 0.7 {
		out = append(out, "Renter concentration sits in the prime demand range for shared laundry.")
	}
	if a.Competition.WithinMiles(1.0) == 0 {
		out = append(out, "No direct competitor operates within one mile.")
	}
	seen := map[string]bool{}
	for _, c := range a.Competition.Competitors {
		for _, gap := range c.CompetitiveGaps {
			if !seen[gap] {
				seen[gap] = true
				out = append(out, fmt.Sprintf("Nearby competitor weakness: %s (%s).", gap, c.Name))
			}
		}
	}
	return out
}

func (r *Renderer) recommendationSection(pdf *gofpdf.Fpdf, a *model.LocationAnalysis) {
	pdf.Ln(8)
	r.sectionTitle(pdf, "Recommendation")

	text := map[model.Recommendation]string{
		model.StronglyRecommended: "Proceed. This site shows strong fundamentals across demographics, competition, and cost; move to lease negotiation and permitting.",
		model.Recommended:         "Proceed with standard diligence. Fundamentals support the investment; validate lease terms and utility capacity.",
		model.PossibleWithCaution: "Viable only with favorable lease economics. Re-run the analysis before committing and negotiate aggressively on rent.",
		model.NotIdeal:            "Keep searching. The fundamentals here underperform comparable markets; consider adjacent tracts.",
		model.NotRecommended:      "Do not proceed at this location.",
	}[a.Score.Recommendation]

	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, text, "", "L", false)
}

func (r *Renderer) methodologyAppendix(pdf *gofpdf.Fpdf) {
	pdf.AddPage()
	r.sectionTitle(pdf, "Appendix: Methodology")

	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5,
		"Scores combine four weighted components: demographics (35 points, from census tract "+
			"population, income, and renter share), competition (25 points, from an opportunity score "+
			"penalizing nearby and highly rated competitors), real estate (20 points, from average "+
			"assessed property value), and accessibility (20 points). Letter grades follow fixed "+
			"cutoffs from A+ (90 and above) to F (below 40). When a live data provider is unavailable "+
			"the affected component uses a deterministic local estimate and is labeled 'estimated'. "+
			"Financial scenarios apply fixed conservative and optimistic multipliers to a base revenue "+
			"model driven by machine count, location score, and tract population.",
		"", "L", false)
}
