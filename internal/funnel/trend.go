package funnel

import (
	"math"
	"sort"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
)

// MonthWinRate is one month of the win-rate trend.
type MonthWinRate struct {
	Month string // 2006-01
	Won   int
	Lost  int
	Total int
	// WinRate is Won/Total*100 rounded to one decimal.
	WinRate float64
}

// WinRateTrend groups closed deals by the month of their close date. Deals
// without a close date are left out. Months are sorted ascending.
func WinRateTrend(deals []entity.Deal) []MonthWinRate {
	byMonth := make(map[string]*MonthWinRate)
	for _, d := range deals {
		if !d.IsClosed || d.CloseDate == nil {
			continue
		}
		key := d.CloseDate.Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = &MonthWinRate{Month: key}
			byMonth[key] = m
		}
		if d.IsClosedWon {
			m.Won++
		} else {
			m.Lost++
		}
		m.Total++
	}

	out := make([]MonthWinRate, 0, len(byMonth))
	for _, m := range byMonth {
		m.WinRate = math.Round(float64(m.Won)/float64(m.Total)*1000) / 10
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
