package entity

import "time"

// Deal is a HubSpot CRM deal. Nullable columns are pointers; stage entry
// dates are not guaranteed to be sequential.
type Deal struct {
	ID          string
	CompanyID   string
	Amount      *float64
	DealType    string
	IsClosed    bool
	IsClosedWon bool
	CreateDate  *time.Time
	CloseDate   *time.Time

	EnteredPrePitch            *time.Time
	EnteredPitching            *time.Time
	EnteredProductTesting      *time.Time
	EnteredPriceOffering       *time.Time
	EnteredContractNegotiation *time.Time
}

// IsLost reports a closed deal that was not won.
func (d Deal) IsLost() bool {
	return d.IsClosed && !d.IsClosedWon
}
