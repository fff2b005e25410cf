package funnel

import (
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/revenue"
)

type Outcome string

const (
	Won  Outcome = "Won"
	Lost Outcome = "Lost"
	Open Outcome = "Open"
)

// Outcomes lists every outcome in display order.
var Outcomes = []Outcome{Won, Lost, Open}

func OutcomeOf(d entity.Deal) Outcome {
	switch {
	case d.IsClosedWon:
		return Won
	case d.IsClosed:
		return Lost
	default:
		return Open
	}
}

// OutcomeCount is the number of deals with one outcome.
type OutcomeCount struct {
	Outcome Outcome
	Deals   int
}

// Negotiation summarizes the deals that entered Contract Negotiation.
type Negotiation struct {
	Deals    int
	Outcomes []OutcomeCount
	// WinRate is Won/Deals*100 rounded to a whole percent, 0 with no deals.
	WinRate int
	// AvgWon and AvgLost are nil when no deal of that outcome has an amount.
	AvgWon  *float64
	AvgLost *float64
}

// Count returns the number of deals with outcome o.
func (n Negotiation) Count(o Outcome) int {
	for _, c := range n.Outcomes {
		if c.Outcome == o {
			return c.Deals
		}
	}
	return 0
}

func ComputeNegotiation(deals []entity.Deal) Negotiation {
	final := FinalStage()
	byOutcome := make(map[Outcome][]entity.Deal)
	n := Negotiation{}
	for _, d := range deals {
		if final.Entered(d) == nil {
			continue
		}
		n.Deals++
		o := OutcomeOf(d)
		byOutcome[o] = append(byOutcome[o], d)
	}

	for _, o := range Outcomes {
		n.Outcomes = append(n.Outcomes, OutcomeCount{Outcome: o, Deals: len(byOutcome[o])})
	}
	n.WinRate = wholePercent(len(byOutcome[Won]), n.Deals)
	n.AvgWon = meanAmount(byOutcome[Won])
	n.AvgLost = meanAmount(byOutcome[Lost])
	return n
}

func meanAmount(deals []entity.Deal) *float64 {
	s := revenue.AmountStats(deals)
	if !s.HasData() {
		return nil
	}
	return &s.Mean
}
