package rating

import "strings"

// Adjustments are temporary rating deltas keyed by team, applied only at
// prediction time.
type Adjustments map[string]float64

// Injury is a reported player availability status.
type Injury struct {
	Team   string `json:"team"`
	Player string `json:"player"`
	Status string `json:"status"`
}

// InjuryImpact maps a free-text injury status to a rating delta.
func InjuryImpact(status string) float64 {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "out"), strings.Contains(s, "suspended"):
		return -25
	case strings.Contains(s, "doubtful"):
		return -15
	case strings.Contains(s, "questionable"):
		return -10
	case strings.Contains(s, "day-to-day"), strings.Contains(s, "day to day"):
		return -8
	default:
		return -5
	}
}

// AdjustmentsFromInjuries sums the impact of every injury per team.
func AdjustmentsFromInjuries(injuries []Injury) Adjustments {
	adj := make(Adjustments)
	for _, inj := range injuries {
		adj[inj.Team] += InjuryImpact(inj.Status)
	}
	return adj
}

// Merge returns a new set with other added on top of a.
func (a Adjustments) Merge(other Adjustments) Adjustments {
	out := make(Adjustments, len(a)+len(other))
	for team, d := range a {
		out[team] += d
	}
	for team, d := range other {
		out[team] += d
	}
	return out
}
