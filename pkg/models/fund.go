package models

import "strings"

// Column names produced by the NCEN family query.
const (
	ColFamilyName       = "ncen_family_investment_company_name"
	ColFundName         = "companyName"
	ColFundCIK          = "companyCik"
	ColInvestmentType   = "ncen_investment_company_type"
	ColTotalSeries      = "ncen_total_series"
	ColAccessionRows    = "ncen_accession_rows"
	ColAdminNames       = "ncen_admin_names"
	ColAdviserNames     = "ncen_adviser_names"
	ColAdviserTypes     = "ncen_adviser_types"
	ColFundTotalFilings = "total_filings_in_window"
	ColFundQESFilings   = "qes_filings_in_window"
	ColFundQESPct       = "qes_pct_of_company_filings_in_window"
	ColEverFiledByEA    = "ever_filed_by_edgar_agents_llc_in_window"
	ColTotalAgentGroups = "total_agent_groups_used_in_window"
	ColAgentGroupsUsed  = "agent_groups_used_in_window"
	ColFormTypeCounts   = "form_type_counts_in_window"
)

// FundColumns is the declared column list of the family query, used when a
// run returns no rows.
var FundColumns = []string{
	ColFamilyName, ColFundName, ColFundCIK, ColInvestmentType, ColTotalSeries,
	ColAccessionRows, ColAdminNames, ColAdviserNames, ColAdviserTypes,
	ColFundTotalFilings, ColFundQESFilings, ColFundQESPct, ColEverFiledByEA,
	ColTotalAgentGroups, ColAgentGroupsUsed, ColFormTypeCounts,
}

// Fund is one fund row of the family report.
type Fund struct {
	Family           string
	Name             string
	CIK              string
	TotalFilings     int
	QESFilings       int
	QESPct           float64
	EverFiledByEA    bool
	TotalAgentGroups int
	FormTypeCounts   string

	// Record keeps every column for display and export.
	Record Record
}

// FundFromRecord validates and decodes a family-report row.
func FundFromRecord(r Record) (Fund, error) {
	if err := r.Require(ColFamilyName); err != nil {
		return Fund{}, err
	}
	return Fund{
		Family:           strings.TrimSpace(r.Display(ColFamilyName)),
		Name:             r.Display(ColFundName),
		CIK:              r.String(ColFundCIK),
		TotalFilings:     r.Int(ColFundTotalFilings),
		QESFilings:       r.Int(ColFundQESFilings),
		QESPct:           r.Float(ColFundQESPct),
		EverFiledByEA:    r.Bool(ColEverFiledByEA),
		TotalAgentGroups: r.Int(ColTotalAgentGroups),
		FormTypeCounts:   r.Display(ColFormTypeCounts),
		Record:           r,
	}, nil
}

// FundsFromRecords decodes every row, failing on the first invalid one.
func FundsFromRecords(rows []Record) ([]Fund, error) {
	funds := make([]Fund, 0, len(rows))
	for _, r := range rows {
		f, err := FundFromRecord(r)
		if err != nil {
			return nil, err
		}
		funds = append(funds, f)
	}
	return funds, nil
}
