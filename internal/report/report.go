package report

import (
	"fmt"
	"strconv"
	"strings"

	"incidentscope/domain/core"
)

// Report is a generated markdown artifact.
type Report struct {
	ID          core.ReportID  `json:"id"`
	Title       string         `json:"title"`
	GeneratedAt core.Timestamp `json:"generated_at"`
	Markdown    string         `json:"markdown"`
}

func newReport(title, markdown string) *Report {
	return &Report{
		ID:          core.ReportID(core.NewID()),
		Title:       title,
		GeneratedAt: core.Now(),
		Markdown:    markdown,
	}
}

// groupThousands renders an integer with comma separators (12345 -> "12,345").
func groupThousands(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func groupThousandsFloat(v float64) string {
	return groupThousands(int(v))
}

func pct(part, whole int) string {
	if whole == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(part)/float64(whole))
}
