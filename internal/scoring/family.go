package scoring

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kiranshivaraju/reportgen/pkg/models"
)

// Derived columns appended to every fund row of the family report.
const (
	ColFamilyOpenness       = "family_openness_to_switch"
	ColFamilyPotentialValue = "family_potential_value_to_ea"
	ColFamilyScript         = "family_conversation_script"
	ColFamilyReasoning      = "family_ai_reasoning"
	ColFamilyTier           = "family_priority_tier"
	ColFamilyProblems       = "family_likely_problems"
)

// FamilyDerivedColumns lists the derived columns in the order they are appended.
var FamilyDerivedColumns = []string{
	ColFamilyOpenness, ColFamilyPotentialValue, ColFamilyScript,
	ColFamilyReasoning, ColFamilyTier, ColFamilyProblems,
}

var (
	ValueLabels = CutTable{
		{Min: 5, Label: "$$$$"},
		{Min: 3, Label: "$$$"},
		{Min: 2, Label: "$$"},
		{Min: 0, Label: "$"},
	}
	OpennessLabels = CutTable{
		{Min: 5, Label: "Very High"},
		{Min: 4, Label: "High"},
		{Min: 3, Label: "Medium"},
		{Min: 2, Label: "Low"},
		{Min: 0, Label: "Very Low"},
	}
	PriorityTiers = CutTable{
		{Min: 8, Label: "Tier 1"},
		{Min: 5, Label: "Tier 2"},
		{Min: 3, Label: "Tier 3"},
		{Min: 0, Label: "Tier 4"},
	}
)

// ConversationScript is the fixed opener shown on every family page.
const ConversationScript = "We support multi-fund filing operations with predictable execution, " +
	"tight turnaround, and clean regulator-ready output. " +
	"Could we review one recent high-volume filing cycle and identify where " +
	"we can reduce touches and improve filing reliability across your funds?"

// Advisory sentences for the likely-problems list.
const (
	ProblemConcentration = "Most filings route through a single agent, so one missed deadline or staffing gap affects the whole family."
	ProblemFragmented    = "Funds use several agent groups on average, which tends to produce inconsistent formatting and duplicated review cycles."
	ProblemVolume        = "High filing volume points to peak-season capacity pressure around N-PORT and N-CEN deadlines."
	ProblemFundCount     = "A large number of funds increases coordination overhead across series and share classes."
	ProblemNone          = "No specific operational issues stand out from filing patterns in the window."
)

// FamilyAssessment is the score result attached to one fund family.
type FamilyAssessment struct {
	Family         string
	Funds          int
	TotalFilings   int
	QESFilings     int
	QESShare       float64
	AvgAgentGroups float64
	EverFiledByEA  bool

	ValueScore     int
	SwitchScore    int
	PotentialValue string
	Openness       string
	Tier           string

	ConversationScript string
	Reasoning          string
	LikelyProblems     []string
}

// AssessFamily scores a family from its member funds.
func AssessFamily(name string, funds []models.Fund) FamilyAssessment {
	a := FamilyAssessment{Family: name, Funds: len(funds)}

	agentGroups := 0
	for _, f := range funds {
		a.TotalFilings += f.TotalFilings
		a.QESFilings += f.QESFilings
		agentGroups += f.TotalAgentGroups
		a.EverFiledByEA = a.EverFiledByEA || f.EverFiledByEA
	}
	if a.TotalFilings > 0 {
		a.QESShare = float64(a.QESFilings) / float64(a.TotalFilings) * 100.0
	}
	if a.Funds > 0 {
		a.AvgAgentGroups = float64(agentGroups) / float64(a.Funds)
	}

	a.ValueScore = atLeast(float64(a.TotalFilings), Step{1000, 3}, Step{300, 2}, Step{100, 1})
	a.ValueScore += atLeast(float64(a.Funds), Step{10, 2}, Step{4, 1})

	a.SwitchScore = below(a.QESShare, Step{25, 3}, Step{50, 2}, Step{70, 1})
	a.SwitchScore += atLeast(a.AvgAgentGroups, Step{4, 2}, Step{2, 1})
	a.SwitchScore += boolPoints(a.EverFiledByEA, 1)

	a.PotentialValue = ValueLabels.Label(a.ValueScore)
	a.Openness = OpennessLabels.Label(a.SwitchScore)
	a.Tier = PriorityTiers.Label(a.ValueScore + a.SwitchScore)

	a.ConversationScript = ConversationScript
	a.Reasoning = fmt.Sprintf("Funds=%d, total filings=%d, QES share=%.2f%%, avg agent groups used=%.2f.",
		a.Funds, a.TotalFilings, a.QESShare, a.AvgAgentGroups)
	a.LikelyProblems = likelyProblems(a)

	return a
}

func likelyProblems(a FamilyAssessment) []string {
	var out []string
	if a.QESShare >= 70 {
		out = append(out, ProblemConcentration)
	}
	if a.AvgAgentGroups >= 3 {
		out = append(out, ProblemFragmented)
	}
	if a.TotalFilings >= 300 {
		out = append(out, ProblemVolume)
	}
	if a.Funds >= 10 {
		out = append(out, ProblemFundCount)
	}
	if len(out) == 0 {
		out = append(out, ProblemNone)
	}
	return out
}

// Family is one group of funds with its assessment.
type Family struct {
	Name       string
	Funds      []models.Fund
	Assessment FamilyAssessment
}

// GroupFamilies groups funds by family name, drops funds with an empty family,
// and returns families sorted by name. Fund order within a family follows input order.
func GroupFamilies(funds []models.Fund) []Family {
	byName := make(map[string][]models.Fund)
	for _, f := range funds {
		if f.Family == "" {
			continue
		}
		byName[f.Family] = append(byName[f.Family], f)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	families := make([]Family, 0, len(names))
	for _, name := range names {
		members := byName[name]
		families = append(families, Family{
			Name:       name,
			Funds:      members,
			Assessment: AssessFamily(name, members),
		})
	}
	return families
}

// EnrichFamilies returns one record per grouped fund, in family order, with
// the family's derived columns appended.
func EnrichFamilies(families []Family) []models.Record {
	var out []models.Record
	for _, fam := range families {
		a := fam.Assessment
		for _, f := range fam.Funds {
			rec := f.Record.Clone()
			rec.Set(ColFamilyOpenness, a.Openness)
			rec.Set(ColFamilyPotentialValue, a.PotentialValue)
			rec.Set(ColFamilyScript, a.ConversationScript)
			rec.Set(ColFamilyReasoning, a.Reasoning)
			rec.Set(ColFamilyTier, a.Tier)
			rec.Set(ColFamilyProblems, strings.Join(a.LikelyProblems, " "))
			out = append(out, rec)
		}
	}
	if out == nil {
		return []models.Record{}
	}
	return out
}
