package revenue

import (
	"sort"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
)

// Stats summarizes deal amounts. Deals without an amount are left out of
// Sum, Mean and Count; zero amounts are counted.
type Stats struct {
	Sum   float64
	Mean  float64
	Count int
}

// HasData reports whether at least one amount contributed.
func (s Stats) HasData() bool { return s.Count > 0 }

// AmountStats aggregates the non-null amounts of deals.
func AmountStats(deals []entity.Deal) Stats {
	var s Stats
	for _, d := range deals {
		if d.Amount == nil {
			continue
		}
		s.Sum += *d.Amount
		s.Count++
	}
	if s.Count > 0 {
		s.Mean = s.Sum / float64(s.Count)
	}
	return s
}

// ACV is the Average Contract Value summary over closed-won deals.
type ACV struct {
	TotalRevenue float64
	Average      float64
	// WonContracts counts every won deal, including those without an amount.
	WonContracts int
	HasAmounts   bool
	ByType       []TypeRevenue
	Histogram    []Bucket
}

// TypeRevenue is the revenue of one deal type.
type TypeRevenue struct {
	DealType string
	Stats
}

// HistogramBuckets matches the dashboard's deal size distribution.
const HistogramBuckets = 10

// ComputeACV summarizes won deals: totals, mean, breakdown by deal type and
// the deal size histogram.
func ComputeACV(deals []entity.Deal) ACV {
	won := WonDeals(deals)
	all := AmountStats(won)
	return ACV{
		TotalRevenue: all.Sum,
		Average:      all.Mean,
		WonContracts: len(won),
		HasAmounts:   all.HasData(),
		ByType:       ByDealType(won),
		Histogram:    Histogram(won, HistogramBuckets),
	}
}

// ByDealType groups deals by type, sorted by type name. Deals without a
// type are left out.
func ByDealType(deals []entity.Deal) []TypeRevenue {
	groups := make(map[string][]entity.Deal)
	for _, d := range deals {
		if d.DealType == "" {
			continue
		}
		groups[d.DealType] = append(groups[d.DealType], d)
	}
	out := make([]TypeRevenue, 0, len(groups))
	for t, ds := range groups {
		out = append(out, TypeRevenue{DealType: t, Stats: AmountStats(ds)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DealType < out[j].DealType })
	return out
}
