package incident

import (
	"fmt"
	"time"
)

// Filter narrows a dataset the way the dashboard sidebar does: by alarm date
// window, main incident type, city and a response-time ceiling.
type Filter struct {
	From     time.Time `json:"from,omitempty"` // inclusive alarm date; zero = unbounded
	To       time.Time `json:"to,omitempty"`   // inclusive alarm date; zero = unbounded
	MainType string    `json:"main_type,omitempty"`
	City     string    `json:"city,omitempty"`

	// MaxResponseMinutes excludes incidents whose response time exceeds the
	// ceiling. Values <= 0 disable the ceiling. When active, incidents with a
	// missing response time are excluded as well.
	MaxResponseMinutes float64 `json:"max_response_minutes,omitempty"`
}

// IsZero reports whether the filter imposes no constraints.
func (f Filter) IsZero() bool {
	return f.From.IsZero() && f.To.IsZero() && f.MainType == "" && f.City == "" && f.MaxResponseMinutes <= 0
}

// Matches reports whether a single incident passes the filter.
func (f Filter) Matches(in *Incident) bool {
	if !f.From.IsZero() || !f.To.IsZero() {
		if !in.HasAlarm() {
			return false
		}
		date := in.AlarmDate()
		if !f.From.IsZero() && date.Before(dateOnly(f.From)) {
			return false
		}
		if !f.To.IsZero() && date.After(dateOnly(f.To)) {
			return false
		}
	}
	if f.MainType != "" && in.MainType != f.MainType {
		return false
	}
	if f.City != "" && in.City != f.City {
		return false
	}
	if f.MaxResponseMinutes > 0 {
		if !in.HasResponseTime() || in.ResponseMinutes > f.MaxResponseMinutes {
			return false
		}
	}
	return true
}

// Apply returns the subset of records passing the filter. A zero filter
// returns the input slice unchanged.
func (f Filter) Apply(records []Incident) []Incident {
	if f.IsZero() {
		return records
	}
	out := make([]Incident, 0, len(records))
	for i := range records {
		if f.Matches(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}

// CacheKey returns a stable string identity for the filter, usable as a map
// key when caching per-filter results.
func (f Filter) CacheKey() string {
	return fmt.Sprintf("%s|%s|%s|%s|%g",
		formatDate(f.From), formatDate(f.To), f.MainType, f.City, f.MaxResponseMinutes)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
