package remote

import "time"

// DayCount is one day of GitHub's own contribution calendar.
type DayCount struct {
	Date  string
	Count int
}

// Repository is the subset of repository metadata used to pick commit sources.
type Repository struct {
	FullName  string
	UpdatedAt time.Time
}
