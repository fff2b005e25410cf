package entity

import "time"

// Event is one backend user action.
type Event struct {
	UserID    string
	Timestamp *time.Time // nil when the source value could not be parsed
}
