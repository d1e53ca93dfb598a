package model

import "time"

// Record is one stored attendance fact, keyed by (student, date, period).
type Record struct {
	ID        int64     `db:"id" json:"id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	ClassID   *int64    `db:"class_id" json:"class_id"`
	Date      Date      `db:"date" json:"date"`
	PeriodNo  int       `db:"period_no" json:"period_no"`
	Status    Status    `db:"status" json:"status"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Mark is one cell of a period sheet. Status is kept as the raw client value
// so that unmarked cells can be skipped rather than rejected.
type Mark struct {
	StudentID int64  `db:"student_id" json:"student_id"`
	PeriodNo  int    `db:"period_no" json:"period_no"`
	Status    Status `db:"status" json:"status"`
}

// Sheet is a teacher's submission for one class on one day.
type Sheet struct {
	ClassID int64  `json:"class_id"`
	Date    Date   `json:"date"`
	Records []Mark `json:"records"`
}

// HistoryRow is a student's view of a single mark.
type HistoryRow struct {
	Date     Date   `db:"date" json:"date"`
	PeriodNo int    `db:"period_no" json:"period_no"`
	Status   Status `db:"status" json:"status"`
}

// JoinedRow is a cross-student report line.
type JoinedRow struct {
	ID          int64  `db:"id" json:"id"`
	StudentID   int64  `db:"student_id" json:"student_id"`
	AdmissionNo string `db:"admission_no" json:"admission_no"`
	Name        string `db:"name" json:"name"`
	Date        Date   `db:"date" json:"date"`
	PeriodNo    int    `db:"period_no" json:"period_no"`
	Status      Status `db:"status" json:"status"`
}
