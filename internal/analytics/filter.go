package analytics

import (
	"sort"
	"strings"
)

// SortField selects the user-table sort column.
type SortField string

const (
	SortByName SortField = "name"
	SortByUses SortField = "uses"
	SortByTime SortField = "time"
	SortByLast SortField = "last"
)

// ParseSortField normalizes a raw field name, defaulting to uses.
func ParseSortField(raw string) SortField {
	switch SortField(raw) {
	case SortByName, SortByUses, SortByTime, SortByLast:
		return SortField(raw)
	default:
		return SortByUses
	}
}

// UserSort is the active sort state of the user table.
type UserSort struct {
	Field      SortField `json:"field"`
	Descending bool      `json:"descending"`
}

// Toggle applies a header click: the same field flips direction, a new
// field resets to descending.
func (s UserSort) Toggle(field SortField) UserSort {
	if s.Field == field {
		return UserSort{Field: field, Descending: !s.Descending}
	}
	return UserSort{Field: field, Descending: true}
}

// FilterUsers returns the users whose name or email contains query
// (case-insensitive). An empty query matches everyone. The result is a
// fresh slice; the input is never reordered.
func FilterUsers(users []UserAggregate, query string) []UserAggregate {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]UserAggregate, 0, len(users))
	for i := range users {
		u := users[i]
		if q == "" ||
			strings.Contains(strings.ToLower(u.Email), q) ||
			strings.Contains(strings.ToLower(u.Name), q) {
			out = append(out, u)
		}
	}
	return out
}

// SortUsers stable-sorts users in place by the given field and direction.
func SortUsers(users []UserAggregate, by UserSort) {
	less := func(i, j int) bool { return users[i].Uses < users[j].Uses }
	switch by.Field {
	case SortByName:
		less = func(i, j int) bool { return users[i].Name < users[j].Name }
	case SortByTime:
		less = func(i, j int) bool { return users[i].TimeSavedMinutes < users[j].TimeSavedMinutes }
	case SortByLast:
		less = func(i, j int) bool { return users[i].LastActive.Before(users[j].LastActive) }
	}
	if by.Descending {
		asc := less
		less = func(i, j int) bool { return asc(j, i) }
	}
	sort.SliceStable(users, less)
}
