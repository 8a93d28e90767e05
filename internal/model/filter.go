package model

import "strings"

// Filter selects a task subset by due date or completion
type Filter string

const (
	FilterAll       Filter = "all"
	FilterToday     Filter = "today"
	FilterUpcoming  Filter = "upcoming"
	FilterOverdue   Filter = "overdue"
	FilterCompleted Filter = "completed"
	FilterPending   Filter = "pending"
)

// AllFilters returns the filter tags in display order
func AllFilters() []Filter {
	return []Filter{FilterAll, FilterToday, FilterUpcoming, FilterOverdue, FilterCompleted, FilterPending}
}

// ParseFilter maps a name to a filter tag; the empty string means all
func ParseFilter(s string) (Filter, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, true
	}
	for _, f := range AllFilters() {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Label returns the display name for a filter
func (f Filter) Label() string {
	switch f {
	case FilterAll:
		return "All Tasks"
	case FilterToday:
		return "Today"
	case FilterUpcoming:
		return "Upcoming"
	case FilterOverdue:
		return "Overdue"
	case FilterCompleted:
		return "Completed"
	case FilterPending:
		return "Pending"
	default:
		return "Unknown"
	}
}

// Matches reports whether the task belongs to the filter on the given day
func (f Filter) Matches(t Task, today Date) bool {
	switch f {
	case FilterToday:
		return t.IsDueToday(today)
	case FilterUpcoming:
		return t.IsUpcoming(today)
	case FilterOverdue:
		return t.IsOverdue(today)
	case FilterCompleted:
		return t.Completed
	case FilterPending:
		return !t.Completed
	default:
		return true
	}
}

// Next cycles through AllFilters
func (f Filter) Next() Filter {
	filters := AllFilters()
	for i, candidate := range filters {
		if candidate == f {
			return filters[(i+1)%len(filters)]
		}
	}
	return FilterAll
}

// Prev cycles backwards through AllFilters
func (f Filter) Prev() Filter {
	filters := AllFilters()
	for i, candidate := range filters {
		if candidate == f {
			return filters[(i+len(filters)-1)%len(filters)]
		}
	}
	return FilterAll
}
