// Package scoring computes the fixed heuristic scores attached to report rows.
// Every function is pure and deterministic.
package scoring

// Cut maps every score at or above Min to Label.
type Cut struct {
	Min   int
	Label string
}

// CutTable is ordered from highest Min to lowest. The final entry is the
// floor label returned for any score below the other cuts.
type CutTable []Cut

// Label returns the label of the first cut whose Min is at most score.
func (t CutTable) Label(score int) string {
	for _, c := range t {
		if score >= c.Min {
			return c.Label
		}
	}
	if len(t) == 0 {
		return ""
	}
	return t[len(t)-1].Label
}

// Step adds points for the first threshold reached, checked in order.
type Step struct {
	Threshold float64
	Points    int
}

// atLeast returns the points of the first step whose threshold v reaches.
// Steps must be ordered from highest threshold to lowest.
func atLeast(v float64, steps ...Step) int {
	for _, s := range steps {
		if v >= s.Threshold {
			return s.Points
		}
	}
	return 0
}

// below returns the points of the first step whose threshold v is under.
// Steps must be ordered from lowest threshold to highest.
func below(v float64, steps ...Step) int {
	for _, s := range steps {
		if v < s.Threshold {
			return s.Points
		}
	}
	return 0
}

func boolPoints(cond bool, points int) int {
	if cond {
		return points
	}
	return 0
}
