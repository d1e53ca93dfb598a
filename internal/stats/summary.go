// Package stats derives presence figures from attendance history.
package stats

import "attendance-tracker/internal/model"

// Summary is the aggregate of a run of marks.
type Summary struct {
	Present    int `json:"present"`
	Absent     int `json:"absent"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Summarize counts present and absent rows and rounds the presence share
// half-up to a whole percent. Rows with any other status are ignored.
// The result does not depend on row order.
func Summarize(rows []model.HistoryRow) Summary {
	var s Summary
	for _, r := range rows {
		switch r.Status {
		case model.StatusPresent:
			s.Present++
		case model.StatusAbsent:
			s.Absent++
		}
	}
	s.Total = s.Present + s.Absent
	s.Percentage = Percent(s.Present, s.Total)
	return s
}

// Percent returns round-half-up(part/total*100), or 0 when total is 0.
func Percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (part*200 + total) / (2 * total)
}
