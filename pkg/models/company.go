package models

// Column names produced by the vendor query.
const (
	ColCompanyName       = "companyName"
	ColCompanyCIK        = "companyCIK"
	ColTotalFilings      = "total_filings"
	ColQESFilings        = "qes_filings"
	ColQESPercentage     = "qes_percentage"
	ColQESDominant       = "is_qes_dominant_filer"
	ColOtherAgentsCount  = "other_agents_count"
	ColQESVendorSince    = "qes_vendor_since"
	ColQESLastFilingDate = "qes_last_filing_date"
	ColQESLastFormType   = "qes_last_form_type"
)

// CompanyColumns is the declared column list of the vendor query.
var CompanyColumns = []string{
	ColCompanyName, ColCompanyCIK, ColTotalFilings, ColQESFilings,
	ColQESPercentage, ColQESDominant, ColOtherAgentsCount, ColQESVendorSince,
	ColQESLastFilingDate, ColQESLastFormType,
}

// Company is one row of the vendor report.
type Company struct {
	Name         string
	CIK          string
	TotalFilings int
	QESPct       float64
	OtherAgents  int
	Dominant     bool
	LastFormType string

	Record Record
}

// CompanyFromRecord validates and decodes a vendor-report row.
func CompanyFromRecord(r Record) (Company, error) {
	if err := r.Require(ColTotalFilings, ColQESPercentage, ColOtherAgentsCount, ColQESDominant); err != nil {
		return Company{}, err
	}
	return Company{
		Name:         r.Display(ColCompanyName),
		CIK:          r.String(ColCompanyCIK),
		TotalFilings: r.Int(ColTotalFilings),
		QESPct:       r.Float(ColQESPercentage),
		OtherAgents:  r.Int(ColOtherAgentsCount),
		Dominant:     r.Bool(ColQESDominant),
		LastFormType: r.Display(ColQESLastFormType),
		Record:       r,
	}, nil
}

// CompaniesFromRecords decodes every row, failing on the first invalid one.
func CompaniesFromRecords(rows []Record) ([]Company, error) {
	out := make([]Company, 0, len(rows))
	for _, r := range rows {
		c, err := CompanyFromRecord(r)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
