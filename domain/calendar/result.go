// Package calendar holds the contribution calendar data model: the trailing
// window, the per-date contribution map, and the week-aligned grid served to
// clients.
package calendar

// DaysPerWeek is the fixed number of days in every Week.
const DaysPerWeek = 7

// Day is one calendar date and its contribution count.
type Day struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Week is seven consecutive days, Sunday first.
type Week struct {
	Days []Day `json:"days"`
}

// Result is the wire contract between the proxy and its clients. The shape is
// the same whichever source produced the counts.
type Result struct {
	Weeks []Week `json:"weeks"`
	User  string `json:"user"`
	Total int    `json:"total"`
}

// NewResult builds the week grid for m and attributes it to user.
func NewResult(user string, m ContributionMap) Result {
	return Result{
		Weeks: BuildWeeks(m),
		User:  user,
		Total: m.Total(),
	}
}

// Days flattens the grid into a single oldest-first slice.
func (r Result) Days() []Day {
	days := make([]Day, 0, len(r.Weeks)*DaysPerWeek)
	for _, w := range r.Weeks {
		days = append(days, w.Days...)
	}
	return days
}

// Source identifies which acquisition path produced a result.
type Source string

const (
	SourceGraphQL Source = "graphql"
	SourceREST    Source = "rest"
	SourceMock    Source = "mock"
)

// Authoritative reports whether the counts reflect real GitHub activity.
// Synthetic mock data is not authoritative.
func (s Source) Authoritative() bool {
	return s == SourceGraphQL || s == SourceREST
}

func (s Source) String() string {
	return string(s)
}
