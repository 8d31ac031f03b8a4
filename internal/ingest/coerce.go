package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// timestampFormats are tried in order when coercing datetime cells. The NERIS
// export writes RFC3339 with offsets; the remaining layouts cover hand-edited
// files.
var timestampFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05-07",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// ParseTime coerces a cell to a UTC timestamp. The zero time signals a
// missing or unparseable value.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// ParseFloat coerces a cell to a float64, NaN on failure. Thousands
// separators are tolerated since spreadsheet exports often carry them.
func ParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	s = strings.ReplaceAll(s, ",", "")
	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(val, 0) {
		return math.NaN()
	}
	return val
}

// ParseBool coerces a cell to a boolean, nil when missing or unrecognized.
// The source encodes booleans as Postgres-style 't'/'f'.
func ParseBool(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "t", "true", "1", "yes", "y":
		v := true
		return &v
	case "f", "false", "0", "no", "n":
		v := false
		return &v
	}
	return nil
}

// LooksNumeric reports whether a cell parses as a number.
func LooksNumeric(s string) bool {
	return !math.IsNaN(ParseFloat(s))
}

// LooksTimestamp reports whether a cell parses as a datetime.
func LooksTimestamp(s string) bool {
	return !ParseTime(s).IsZero()
}

// LooksBoolean reports whether a cell parses as a boolean.
func LooksBoolean(s string) bool {
	return ParseBool(s) != nil
}
