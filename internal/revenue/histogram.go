package revenue

import (
	"math"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
)

// Bucket is a histogram bin [Low, High); the last bin also includes High.
type Bucket struct {
	Low   float64
	High  float64
	Count int
}

// Histogram splits the non-null amounts into n equal-width bins between the
// smallest and largest amount. All-equal amounts produce a single bin.
func Histogram(deals []entity.Deal, n int) []Bucket {
	if n <= 0 {
		return nil
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, d := range deals {
		if d.Amount == nil {
			continue
		}
		lo = math.Min(lo, *d.Amount)
		hi = math.Max(hi, *d.Amount)
	}
	if math.IsInf(lo, 1) {
		return nil
	}
	if lo == hi {
		b := Bucket{Low: lo, High: hi}
		for _, d := range deals {
			if d.Amount != nil {
				b.Count++
			}
		}
		return []Bucket{b}
	}

	width := (hi - lo) / float64(n)
	out := make([]Bucket, n)
	for i := range out {
		out[i].Low = lo + float64(i)*width
		out[i].High = lo + float64(i+1)*width
	}
	out[n-1].High = hi
	for _, d := range deals {
		if d.Amount == nil {
			continue
		}
		i := int((*d.Amount - lo) / width)
		if i >= n {
			i = n - 1
		}
		out[i].Count++
	}
	return out
}
