package render

import (
	"sort"
	"strconv"
	"strings"

	"github.com/kiranshivaraju/reportgen/internal/scoring"
	"github.com/kiranshivaraju/reportgen/pkg/models"
)

// Separators of the form-type count field, e.g. "N-PORT-P=12;N-CEN=1".
const (
	formSegmentSep = ";"
	formPairSep    = "="
)

// FormCount is the number of filings of one form type.
type FormCount struct {
	FormType string
	Count    int
}

// PriorityEntry is one line of the summary's family list.
type PriorityEntry struct {
	Family         string
	Tier           string
	PotentialValue string
	Openness       string
}

// Summary aggregates every fund in the run for the leading report section.
type Summary struct {
	TotalFunds    int
	TotalFamilies int
	TotalFilings  int
	QESFilings    int
	QESShare      float64
	FormCounts    []FormCount
	Priority      []PriorityEntry
}

// ParseFormCounts decodes a form-type count field. Segments without a
// separator, with an empty form type, or with a non-integer count are skipped.
func ParseFormCounts(field string) map[string]int {
	out := make(map[string]int)
	for _, seg := range strings.Split(field, formSegmentSep) {
		form, count, ok := strings.Cut(seg, formPairSep)
		if !ok {
			continue
		}
		form = strings.TrimSpace(form)
		if form == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil {
			continue
		}
		out[form] += n
	}
	return out
}

// Summarize builds the run summary. With dedupe set, funds sharing a CIK
// contribute their form-type counts once.
func Summarize(funds []models.Fund, families []scoring.Family, dedupe bool) Summary {
	s := Summary{
		TotalFunds:    len(funds),
		TotalFamilies: len(families),
	}

	forms := make(map[string]int)
	seen := make(map[string]bool)
	for _, f := range funds {
		s.TotalFilings += f.TotalFilings
		s.QESFilings += f.QESFilings

		if dedupe && f.CIK != "" {
			if seen[f.CIK] {
				continue
			}
			seen[f.CIK] = true
		}
		for form, n := range ParseFormCounts(f.FormTypeCounts) {
			forms[form] += n
		}
	}
	if s.TotalFilings > 0 {
		s.QESShare = float64(s.QESFilings) / float64(s.TotalFilings) * 100.0
	}

	s.FormCounts = make([]FormCount, 0, len(forms))
	for form, n := range forms {
		s.FormCounts = append(s.FormCounts, FormCount{FormType: form, Count: n})
	}
	sort.Slice(s.FormCounts, func(i, j int) bool {
		if s.FormCounts[i].Count != s.FormCounts[j].Count {
			return s.FormCounts[i].Count > s.FormCounts[j].Count
		}
		return s.FormCounts[i].FormType < s.FormCounts[j].FormType
	})

	s.Priority = make([]PriorityEntry, 0, len(families))
	for _, fam := range families {
		s.Priority = append(s.Priority, PriorityEntry{
			Family:         fam.Name,
			Tier:           fam.Assessment.Tier,
			PotentialValue: fam.Assessment.PotentialValue,
			Openness:       fam.Assessment.Openness,
		})
	}
	sort.SliceStable(s.Priority, func(i, j int) bool {
		return s.Priority[i].Family < s.Priority[j].Family
	})

	return s
}
