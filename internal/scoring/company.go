package scoring

import (
	"fmt"
	"strings"

	"github.com/kiranshivaraju/reportgen/pkg/models"
)

// Derived columns appended to vendor-report rows.
const (
	ColMoneyRank   = "money_rank"
	ColSwitchRank  = "switch_rank"
	ColAIReasoning = "ai_reasoning"
)

// VendorDerivedColumns lists the columns EnrichCompanies appends, in order.
var VendorDerivedColumns = []string{ColMoneyRank, ColSwitchRank, ColAIReasoning}

// HighValueForms are form-type tags that earn the complex-form revenue bonus
// when they appear anywhere in a company's last form type.
var HighValueForms = []string{"S-1", "S-3", "10-K", "10-Q", "8-K", "DEF 14A", "424B"}

var (
	MoneyRanks = CutTable{
		{Min: 6, Label: "$$$$"},
		{Min: 4, Label: "$$$"},
		{Min: 2, Label: "$$"},
		{Min: 0, Label: "$"},
	}
	SwitchRanks = CutTable{
		{Min: 6, Label: "Very Likely"},
		{Min: 4, Label: "Likely"},
		{Min: 3, Label: "Possible"},
		{Min: 2, Label: "Low"},
		{Min: 0, Label: "Very Low"},
	}
)

// CompanyAssessment is the score result attached to one vendor-report row.
type CompanyAssessment struct {
	RevenueScore int
	SwitchScore  int
	MoneyRank    string
	SwitchRank   string
	Reasoning    string
}

// AssessCompany scores one company's relationship with vendorName.
func AssessCompany(c models.Company, vendorName string) CompanyAssessment {
	revenue := atLeast(float64(c.TotalFilings), Step{80, 3}, Step{40, 2}, Step{15, 1})
	revenue += atLeast(c.QESPct, Step{70, 2}, Step{35, 1})
	revenue += boolPoints(hasHighValueForm(c.LastFormType), 1)

	switchScore := below(c.QESPct, Step{20, 3}, Step{40, 2}, Step{55, 1})
	switchScore += atLeast(float64(c.OtherAgents), Step{3, 2}, Step{1, 1})
	switchScore += boolPoints(!c.Dominant, 1)

	return CompanyAssessment{
		RevenueScore: revenue,
		SwitchScore:  switchScore,
		MoneyRank:    MoneyRanks.Label(revenue),
		SwitchRank:   SwitchRanks.Label(switchScore),
		Reasoning: fmt.Sprintf("Total filings=%d, %s share=%.2f%%, other agents=%d, dominant=%s.",
			c.TotalFilings, vendorName, c.QESPct, c.OtherAgents, titleBool(c.Dominant)),
	}
}

// titleBool spells a flag as True or False, the form analysts see in the
// existing reports.
func titleBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func hasHighValueForm(formType string) bool {
	upper := strings.ToUpper(formType)
	for _, tag := range HighValueForms {
		if strings.Contains(upper, tag) {
			return true
		}
	}
	return false
}

// EnrichCompanies scores every company and returns copies of their records
// with the derived columns appended. Input records are not modified.
func EnrichCompanies(companies []models.Company, vendorName string) []models.Record {
	out := make([]models.Record, 0, len(companies))
	for _, c := range companies {
		a := AssessCompany(c, vendorName)
		rec := c.Record.Clone()
		rec.Set(ColMoneyRank, a.MoneyRank)
		rec.Set(ColSwitchRank, a.SwitchRank)
		rec.Set(ColAIReasoning, a.Reasoning)
		out = append(out, rec)
	}
	return out
}
