// Package funnel attributes deals to pipeline stages and summarizes outcomes.
package funnel

import (
	"time"

	"github.com/ovaphlow/pitchfork/service-bi-dashboard/internal/dataset/entity"
)

// Stage is one pipeline step with the accessor for its entry date.
type Stage struct {
	Name    string
	Entered func(entity.Deal) *time.Time
}

// Unknown is the attribution of a deal with no stage entry dates.
const Unknown = "Unknown"

// Stages is the pipeline in order. Attribution and funnel counts both read it.
var Stages = []Stage{
	{Name: "Pre-pitch", Entered: func(d entity.Deal) *time.Time { return d.EnteredPrePitch }},
	{Name: "Pitching", Entered: func(d entity.Deal) *time.Time { return d.EnteredPitching }},
	{Name: "Product Testing", Entered: func(d entity.Deal) *time.Time { return d.EnteredProductTesting }},
	{Name: "Price Offering", Entered: func(d entity.Deal) *time.Time { return d.EnteredPriceOffering }},
	{Name: "Contract Negotiation", Entered: func(d entity.Deal) *time.Time { return d.EnteredContractNegotiation }},
}

// LastStage returns the latest stage in pipeline order with an entry date,
// or Unknown. Entry dates are not compared: a deal with only Contract
// Negotiation populated is attributed there.
func LastStage(d entity.Deal) string {
	for i := len(Stages) - 1; i >= 0; i-- {
		if Stages[i].Entered(d) != nil {
			return Stages[i].Name
		}
	}
	return Unknown
}

// FinalStage is the last pipeline stage.
func FinalStage() Stage {
	return Stages[len(Stages)-1]
}
