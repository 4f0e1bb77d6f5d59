package staking

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/sports-edge/internal/odds"
)

// ParlayLeg is one selection in a parlay with its estimated hit probability.
type ParlayLeg struct {
	Candidate
	LegProb float64 `json:"leg_prob"`
}

// Parlay is a combined bet. Leg outcomes are treated as independent, so
// combined odds and probability are plain products; correlated legs make
// the probability optimistic.
type Parlay struct {
	Legs          []ParlayLeg `json:"legs"`
	DecimalOdds   float64     `json:"decimal_odds"`
	AmericanOdds  int         `json:"american_odds"`
	HitProb       float64     `json:"hit_prob"`
	ExpectedValue float64     `json:"expected_value"`
}

// legProb recovers the model probability as (1+EV)/decimal, capped.
func (a *Allocator) legProb(c Candidate) float64 {
	if c.DecimalOdds <= 1 {
		return 0
	}
	p := (1 + c.ExpectedValue) / c.DecimalOdds
	if p > a.cfg.LegProbCap {
		p = a.cfg.LegProbCap
	}
	return p
}

// SelectParlayLegs builds the parlay with the best hit probability from
// independent legs (at most one per game). Legs are ranked by capped hit
// probability and the parlay starts with the two most likely ones.
//
// Leg count rule: a further leg is added only while it lowers the combined
// hit probability by less than ParlayMargin (absolute, e.g. 0.10 = 10
// points). A drop equal to or above the margin stops growth, so the parlay
// keeps fewer legs; MaxParlayLegs bounds the size.
//
// It returns false when fewer than two legs are available.
func (a *Allocator) SelectParlayLegs(candidates []Candidate) (Parlay, bool) {
	byGame := make(map[string]ParlayLeg)
	for _, c := range candidates {
		if c.ExpectedValue <= 0 {
			continue
		}
		leg := ParlayLeg{Candidate: c, LegProb: a.legProb(c)}
		if leg.LegProb <= 0 {
			continue
		}
		if prev, ok := byGame[c.GameID]; !ok || leg.LegProb > prev.LegProb {
			byGame[c.GameID] = leg
		}
	}
	if len(byGame) < 2 {
		return Parlay{}, false
	}

	legs := make([]ParlayLeg, 0, len(byGame))
	for _, leg := range byGame {
		legs = append(legs, leg)
	}
	sort.Slice(legs, func(i, j int) bool {
		if legs[i].LegProb != legs[j].LegProb {
			return legs[i].LegProb > legs[j].LegProb
		}
		return legs[i].GameID < legs[j].GameID
	})

	n := 2
	combined := legs[0].LegProb * legs[1].LegProb
	for n < a.cfg.MaxParlayLegs && n < len(legs) {
		next := combined * legs[n].LegProb
		if combined-next >= a.cfg.ParlayMargin {
			break
		}
		combined = next
		n++
	}

	parlay := ParlayStats(legs[:n])
	a.logger.WithFields(logrus.Fields{
		"legs":           n,
		"available_legs": len(legs),
		"hit_prob":       parlay.HitProb,
		"decimal_odds":   parlay.DecimalOdds,
		"expected_value": parlay.ExpectedValue,
	}).Debug("Parlay legs selected")
	return parlay, true
}

// ParlayStats combines legs assuming independence.
func ParlayStats(legs []ParlayLeg) Parlay {
	p := Parlay{Legs: append([]ParlayLeg(nil), legs...), DecimalOdds: 1, HitProb: 1}
	if len(legs) == 0 {
		p.DecimalOdds, p.HitProb = 0, 0
		return p
	}
	for _, leg := range legs {
		p.DecimalOdds *= leg.DecimalOdds
		p.HitProb *= leg.LegProb
	}
	p.ExpectedValue = p.DecimalOdds*p.HitProb - 1
	if american, err := odds.DecimalToAmerican(p.DecimalOdds); err == nil {
		p.AmericanOdds = american
	}
	return p
}
