package attendance

import (
	"context"

	"github.com/jmoiron/sqlx"

	"attendance-tracker/internal/model"
	"attendance-tracker/internal/store"
)

// An overwrite moves the cell to the sheet that wrote it last.
const upsertMark = `
	INSERT INTO attendance (student_id, class_id, date, period_no, status)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (student_id, date, period_no) DO UPDATE SET
		status = excluded.status,
		class_id = excluded.class_id,
		updated_at = CURRENT_TIMESTAMP
`

// The student's current class is copied onto the whole-day row.
const upsertWholeDay = `
	INSERT INTO attendance (student_id, class_id, date, period_no, status)
	VALUES (?, (SELECT class_id FROM students WHERE id = ?), ?, 0, ?)
	ON CONFLICT (student_id, date, period_no) DO UPDATE SET
		status = excluded.status,
		class_id = excluded.class_id,
		updated_at = CURRENT_TIMESTAMP
`

// Repository runs attendance SQL. Writes take the executor so they can run
// inside a caller's transaction.
type Repository struct {
	db *store.DB
}

// NewRepository creates a repo.
func NewRepository(db *store.DB) *Repository {
	return &Repository{db: db}
}

// UpsertMarks writes marks in order through one prepared statement.
func (r *Repository) UpsertMarks(ctx context.Context, tx *sqlx.Tx, classID int64, date model.Date, marks []model.Mark) error {
	stmt, err := tx.PreparexContext(ctx, tx.Rebind(upsertMark))
	if err != nil {
		return store.Classify(err)
	}
	defer stmt.Close()

	for _, m := range marks {
		if _, err := stmt.ExecContext(ctx, m.StudentID, classID, date, m.PeriodNo, m.Status); err != nil {
			return store.Classify(err)
		}
	}
	return nil
}

// UpsertWholeDay writes a legacy whole-day mark.
func (r *Repository) UpsertWholeDay(ctx context.Context, studentID int64, date model.Date, status model.Status) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(upsertWholeDay), studentID, studentID, date, status)
	return store.Classify(err)
}

// Periodwise returns the period marks of one class on one day.
func (r *Repository) Periodwise(ctx context.Context, classID int64, date model.Date) ([]model.Mark, error) {
	marks := []model.Mark{}
	err := r.db.SelectContext(ctx, &marks, r.db.Rebind(`
		SELECT student_id, period_no, status
		FROM attendance
		WHERE class_id = ? AND date = ? AND period_no > 0
		ORDER BY student_id, period_no
	`), classID, date)
	if err != nil {
		return nil, store.Classify(err)
	}
	return marks, nil
}

// History returns one student's marks, newest day first.
func (r *Repository) History(ctx context.Context, studentID int64, f HistoryFilter) ([]model.HistoryRow, error) {
	var w where
	w.add("student_id = ?", studentID)
	w.dateRange("date", f.From, f.To)

	query := "SELECT date, period_no, status FROM attendance" + w.String() + " ORDER BY date DESC, period_no"

	rows := []model.HistoryRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), w.args...); err != nil {
		return nil, store.Classify(err)
	}
	return rows, nil
}

// HistoryJoined returns marks joined with student identity, newest first.
func (r *Repository) HistoryJoined(ctx context.Context, f JoinedFilter) ([]model.JoinedRow, error) {
	var w where
	if f.StudentID != nil {
		w.add("a.student_id = ?", *f.StudentID)
	}
	w.dateRange("a.date", f.From, f.To)

	query := `SELECT a.id, a.student_id, s.admission_no, s.name, a.date, a.period_no, a.status
		FROM attendance a
		JOIN students s ON s.id = a.student_id` + w.String() + `
		ORDER BY a.date DESC, s.admission_no, a.period_no`

	rows := []model.JoinedRow{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), w.args...); err != nil {
		return nil, store.Classify(err)
	}
	return rows, nil
}
