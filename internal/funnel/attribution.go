package funnel

import (
	"math"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
)

// StageCount is the number of deals attributed to, or entering, a stage.
type StageCount struct {
	Stage string
	Deals int
	// PercentOfFirst is Deals relative to the first entry of the list,
	// rounded to a whole percent. Only set by Counts.
	PercentOfFirst int
}

// Losses breaks lost deals down by the last stage they reached.
type Losses struct {
	Total int
	// ByStage holds every stage in pipeline order followed by Unknown,
	// including stages with no losses.
	ByStage []StageCount
	// AtFinalStage is the number lost at Contract Negotiation.
	AtFinalStage int
	// PercentAtFinalStage is AtFinalStage/Total*100 rounded to a whole
	// percent, 0 when nothing was lost.
	PercentAtFinalStage int
}

// LostDeals returns deals that closed without being won.
func LostDeals(deals []entity.Deal) []entity.Deal {
	var out []entity.Deal
	for _, d := range deals {
		if d.IsLost() {
			out = append(out, d)
		}
	}
	return out
}

func ComputeLosses(deals []entity.Deal) Losses {
	counts := make(map[string]int, len(Stages)+1)
	lost := LostDeals(deals)
	for _, d := range lost {
		counts[LastStage(d)]++
	}

	l := Losses{Total: len(lost)}
	for _, s := range Stages {
		l.ByStage = append(l.ByStage, StageCount{Stage: s.Name, Deals: counts[s.Name]})
	}
	l.ByStage = append(l.ByStage, StageCount{Stage: Unknown, Deals: counts[Unknown]})

	l.AtFinalStage = counts[FinalStage().Name]
	l.PercentAtFinalStage = wholePercent(l.AtFinalStage, l.Total)
	return l
}

// Counts returns, per stage, the deals with an entry date for that stage.
// Stages are counted independently so a later stage can exceed an earlier
// one when deals skip stages.
func Counts(deals []entity.Deal) []StageCount {
	out := make([]StageCount, len(Stages))
	for i, s := range Stages {
		out[i].Stage = s.Name
		for _, d := range deals {
			if s.Entered(d) != nil {
				out[i].Deals++
			}
		}
	}
	for i := range out {
		out[i].PercentOfFirst = wholePercent(out[i].Deals, out[0].Deals)
	}
	return out
}

func wholePercent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
