package ratecard

import (
	domain "lending-engine/internal/domain/ratecard"
)

type Rule string

const (
	RuleRepeat  Rule = "repeat"
	RuleSegment Rule = "segment"
	RuleBracket Rule = "bracket"
)

// bracketRule selects among bracket cards that already contain the score
// and match the FDC status.
type bracketRule struct {
	name    Rule
	accepts func(q Query, c domain.RateCard) bool
}

// Evaluated top to bottom; the first rule with a candidate wins.
var bracketRules = []bracketRule{
	{name: RuleSegment, accepts: func(q Query, c domain.RateCard) bool {
		return c.Segment != nil && *c.Segment != "" && *c.Segment == string(q.Risk.Segment)
	}},
	{name: RuleBracket, accepts: func(_ Query, c domain.RateCard) bool {
		return c.Segment == nil || *c.Segment == ""
	}},
}

func inBracket(q Query, c domain.RateCard) bool {
	if c.IsFDC != q.IsFDC || !c.Contains(q.Risk.Score) {
		return false
	}
	return c.RiskBand == "" || q.Risk.RiskBand == "" || c.RiskBand == q.Risk.RiskBand
}

// newestCard breaks ties on created_at, then id.
func newestCard(cards []domain.RateCard) *domain.RateCard {
	var best *domain.RateCard
	for i := range cards {
		c := &cards[i]
		if best == nil || c.CreatedAt.After(best.CreatedAt) ||
			(c.CreatedAt.Equal(best.CreatedAt) && c.ID > best.ID) {
			best = c
		}
	}
	return best
}

func newestRepeat(cards []domain.RepeatRateCard) *domain.RepeatRateCard {
	var best *domain.RepeatRateCard
	for i := range cards {
		c := &cards[i]
		if best == nil || c.CreatedAt.After(best.CreatedAt) ||
			(c.CreatedAt.Equal(best.CreatedAt) && c.ID > best.ID) {
			best = c
		}
	}
	return best
}
