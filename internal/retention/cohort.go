// Package retention groups users into monthly cohorts by first activity and
// measures how many of them come back in the following months.
package retention

import (
	"math"
	"sort"
	"time"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
)

// MaxOffset is the last month offset reported (M1..M3).
const MaxOffset = 3

// Month is a calendar month counted from year 0, so offsets are plain subtraction.
type Month int

func MonthOf(t time.Time) Month {
	return Month(t.Year()*12 + int(t.Month()) - 1)
}

// Start returns the first instant of the month in UTC.
func (m Month) Start() time.Time {
	return time.Date(int(m)/12, time.Month(int(m)%12+1), 1, 0, 0, 0, 0, time.UTC)
}

func (m Month) String() string {
	return m.Start().Format("2006-01")
}

// Cohort is one row of the retention table.
type Cohort struct {
	Month Month
	// Users[k] is the number of distinct users active at offset k; Users[0] is M0.
	Users [MaxOffset + 1]int
	// Percent[k] is Users[k] / Users[0] * 100 rounded to one decimal; Percent[0] is 100.
	Percent [MaxOffset + 1]float64
}

// Starting is the cohort size (M0).
func (c Cohort) Starting() int { return c.Users[0] }

// Cohorts computes the retention table ordered by cohort month. The most
// recent cohort is dropped because it has not had time to return yet.
// Events without a user or a timestamp are ignored.
func Cohorts(events []entity.Event) []Cohort {
	first := make(map[string]Month)
	for _, e := range events {
		if e.UserID == "" || e.Timestamp == nil {
			continue
		}
		m := MonthOf(*e.Timestamp)
		if cur, ok := first[e.UserID]; !ok || m < cur {
			first[e.UserID] = m
		}
	}

	type key struct {
		cohort Month
		offset int
	}
	active := make(map[key]map[string]struct{})
	for _, e := range events {
		if e.UserID == "" || e.Timestamp == nil {
			continue
		}
		cohort := first[e.UserID]
		offset := int(MonthOf(*e.Timestamp) - cohort)
		if offset < 0 || offset > MaxOffset {
			continue
		}
		k := key{cohort, offset}
		if active[k] == nil {
			active[k] = make(map[string]struct{})
		}
		active[k][e.UserID] = struct{}{}
	}

	byMonth := make(map[Month]*Cohort)
	for k, users := range active {
		c, ok := byMonth[k.cohort]
		if !ok {
			c = &Cohort{Month: k.cohort}
			byMonth[k.cohort] = c
		}
		c.Users[k.offset] = len(users)
	}

	out := make([]Cohort, 0, len(byMonth))
	for _, c := range byMonth {
		for k := range c.Percent {
			c.Percent[k] = Percent(c.Users[k], c.Users[0])
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })

	if len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out
}

// Percent returns part/whole*100 rounded to one decimal, or 0 when whole is 0.
func Percent(part, whole int) float64 {
	if whole <= 0 {
		return 0
	}
	return math.Round(float64(part)/float64(whole)*1000) / 10
}

// HeatLevels is the number of colour steps in the retention table.
const HeatLevels = 6

// Heat maps a retention percentage to a colour step in [0, HeatLevels-1].
func Heat(pct float64) int {
	switch {
	case pct <= 0:
		return 0
	case pct >= 100:
		return HeatLevels - 1
	}
	return int(pct/100*float64(HeatLevels-1)) + 1
}
