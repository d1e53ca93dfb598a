package attendance

import (
	"strings"

	"attendance-tracker/internal/model"
)

// HistoryFilter bounds a student's history. Both ends are inclusive
// calendar days; nil means unbounded.
type HistoryFilter struct {
	From *model.Date
	To   *model.Date
}

// JoinedFilter narrows the cross-student report.
type JoinedFilter struct {
	StudentID *int64
	From      *model.Date
	To        *model.Date
}

func (f HistoryFilter) validate() error {
	return checkRange(f.From, f.To)
}

func (f JoinedFilter) validate() error {
	if f.StudentID != nil && *f.StudentID <= 0 {
		return model.Invalidf("student_id must be greater than 0")
	}
	return checkRange(f.From, f.To)
}

func checkRange(from, to *model.Date) error {
	if from != nil && to != nil && to.Before(*from) {
		return model.Invalidf("from %s is after to %s", from, to)
	}
	return nil
}

// where collects parameterized predicates. Values never enter the SQL text.
type where struct {
	clauses []string
	args    []any
}

func (w *where) add(clause string, arg any) {
	w.clauses = append(w.clauses, clause)
	w.args = append(w.args, arg)
}

func (w *where) dateRange(column string, from, to *model.Date) {
	if from != nil {
		w.add(column+" >= ?", *from)
	}
	if to != nil {
		w.add(column+" <= ?", *to)
	}
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}
