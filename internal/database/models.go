package database

import (
	"time"
)

// Scheme identifies a cycle grid: the epoch it is anchored to and the
// length of one cycle. Calendars for different schemes never mix.
type Scheme struct {
	Epoch           string `json:"epoch"` // YYYY-MM-DD
	CycleLengthDays int    `json:"cycle_length_days"`
}

// Calendar is the stored list of cycles starting in one calendar year.
type Calendar struct {
	ID          int64         `json:"id"`
	Scheme      Scheme        `json:"scheme"`
	Year        int           `json:"year"`
	GeneratedAt time.Time     `json:"generated_at"`
	Cycles      []StoredCycle `json:"cycles"`
}

// StoredCycle is one persisted cycle of a calendar.
type StoredCycle struct {
	ID            int64  `json:"-"`
	CalendarID    int64  `json:"-"`
	Year          int    `json:"year"`
	Ordinal       int    `json:"ordinal"`
	Identifier    string `json:"identifier"`     // e.g. "0301"
	EffectiveDate string `json:"effective_date"` // YYYY-MM-DD
	EndDate       string `json:"end_date"`       // YYYY-MM-DD, inclusive
}

// Stats summarizes the store contents.
type Stats struct {
	Calendars int `json:"calendars"`
	Cycles    int `json:"cycles"`
}
