package entity

// Company is a HubSpot company. Empty Country or Industry means missing.
type Company struct {
	ID       string
	Country  string
	Industry string
}

// Contact is a HubSpot contact, only used to cross-check the customer count.
type Contact struct {
	ID             string
	CompanyID      string
	LifecycleStage string
}
