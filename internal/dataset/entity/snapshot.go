package entity

import "time"

// Snapshot holds the four tables as loaded at startup. It is built once and
// shared read-only by every computation; nothing mutates it after Load.
type Snapshot struct {
	ID       string
	Source   string
	LoadedAt time.Time

	Events    []Event
	Deals     []Deal
	Companies []Company
	Contacts  []Contact
}

// Tables is the raw output of a source before it is stamped into a Snapshot.
type Tables struct {
	Events    []Event
	Deals     []Deal
	Companies []Company
	Contacts  []Contact

	// Coerced counts values per table that were present but unparseable.
	Coerced map[string]int
}
