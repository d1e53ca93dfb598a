package model

import "strings"

// Status is a persisted attendance mark. "Unmarked" is the absence of a row
// and has no Status value.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
)

// WholeDay is the period number of a legacy whole-day mark.
const WholeDay = 0

// Valid returns true when the status can be persisted.
func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent:
		return true
	default:
		return false
	}
}

// ParseStatus accepts present/absent in any letter case ("Present" is what the
// old whole-day sheet sent).
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", Invalidf("status %q must be present or absent", s)
	}
	return st, nil
}
