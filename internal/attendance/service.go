// Package attendance is the ledger of per-period and whole-day marks.
package attendance

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"attendance-tracker/internal/metrics"
	"attendance-tracker/internal/model"
	"attendance-tracker/internal/store"
)

// Roster answers the referential checks a sheet needs before it is written.
type Roster interface {
	ClassExists(ctx context.Context, id int64) (bool, error)
	MissingStudents(ctx context.Context, ids []int64) ([]int64, error)
	MissingPeriods(ctx context.Context, nos []int) ([]int, error)
}

// BatchResult counts what a sheet submission did.
type BatchResult struct {
	Written  int     `json:"written"`
	Skipped  int     `json:"skipped"`
	Students []int64 `json:"-"`
}

// Service coordinates sheet submissions and history reads.
type Service struct {
	db     *store.DB
	repo   *Repository
	roster Roster
}

// NewService creates a ledger backed by db.
func NewService(db *store.DB, roster Roster) *Service {
	return &Service{db: db, repo: NewRepository(db), roster: roster}
}

// MarkBatch writes a class's sheet for one day in a single transaction.
// Cells whose status is neither present nor absent are skipped. Either
// every remaining cell is stored or none is.
func (s *Service) MarkBatch(ctx context.Context, sheet model.Sheet) (BatchResult, error) {
	res, err := s.markBatch(ctx, sheet)
	switch {
	case err == nil:
		metrics.BatchesTotal.WithLabelValues(metrics.OutcomeCommitted).Inc()
		metrics.MarksWritten.Add(float64(res.Written))
		metrics.MarksSkipped.Add(float64(res.Skipped))
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrNotFound):
		metrics.BatchesTotal.WithLabelValues(metrics.OutcomeRejected).Inc()
	default:
		metrics.BatchesTotal.WithLabelValues(metrics.OutcomeRolledBack).Inc()
		logger.Error.Printf("sheet for class %d on %s rolled back: %v", sheet.ClassID, sheet.Date, err)
	}
	return res, err
}

func (s *Service) markBatch(ctx context.Context, sheet model.Sheet) (BatchResult, error) {
	if sheet.ClassID <= 0 {
		return BatchResult{}, model.Invalidf("class_id is required")
	}
	if sheet.Date.IsZero() {
		return BatchResult{}, model.Invalidf("date is required")
	}
	if sheet.Records == nil {
		return BatchResult{}, model.Invalidf("records must be a list")
	}

	marks, skipped, err := partition(sheet.Records)
	if err != nil {
		return BatchResult{}, err
	}
	if err := s.checkRefs(ctx, sheet.ClassID, marks); err != nil {
		return BatchResult{}, err
	}

	result := BatchResult{Written: len(marks), Skipped: skipped, Students: distinctStudents(marks)}
	if len(marks) == 0 {
		logger.Debug.Printf("sheet for class %d on %s had nothing to write", sheet.ClassID, sheet.Date)
		return result, nil
	}

	err = s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		return s.repo.UpsertMarks(ctx, tx, sheet.ClassID, sheet.Date, marks)
	})
	if err != nil {
		return BatchResult{}, err
	}

	logger.Debug.Printf("sheet for class %d on %s committed: written=%d skipped=%d",
		sheet.ClassID, sheet.Date, result.Written, result.Skipped)
	return result, nil
}

// partition drops unmarked cells and rejects malformed identifiers among
// the rest.
func partition(records []model.Mark) ([]model.Mark, int, error) {
	marks := make([]model.Mark, 0, len(records))
	skipped := 0
	for i, rec := range records {
		if !rec.Status.Valid() {
			skipped++
			continue
		}
		if rec.StudentID <= 0 {
			return nil, 0, model.Invalidf("records[%d]: student_id is required", i)
		}
		if rec.PeriodNo < 1 {
			return nil, 0, model.Invalidf("records[%d]: period_no must be at least 1", i)
		}
		marks = append(marks, rec)
	}
	return marks, skipped, nil
}

// checkRefs runs before the transaction opens so that a bad reference
// never fails a write halfway through.
func (s *Service) checkRefs(ctx context.Context, classID int64, marks []model.Mark) error {
	ok, err := s.roster.ClassExists(ctx, classID)
	if err != nil {
		return err
	}
	if !ok {
		return model.NotFoundf("class %d", classID)
	}
	if len(marks) == 0 {
		return nil
	}

	missing, err := s.roster.MissingStudents(ctx, distinctStudents(marks))
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return model.NotFoundf("students %v", missing)
	}

	missingPeriods, err := s.roster.MissingPeriods(ctx, distinctPeriods(marks))
	if err != nil {
		return err
	}
	if len(missingPeriods) > 0 {
		return model.NotFoundf("periods %v", missingPeriods)
	}
	return nil
}

// MarkOne records a whole-day mark, overwriting any earlier one for the
// same student and day.
func (s *Service) MarkOne(ctx context.Context, studentID int64, date model.Date, status string) error {
	if studentID <= 0 {
		return model.Invalidf("student_id is required")
	}
	if date.IsZero() {
		return model.Invalidf("date is required")
	}
	st, err := model.ParseStatus(status)
	if err != nil {
		return err
	}

	missing, err := s.roster.MissingStudents(ctx, []int64{studentID})
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return model.NotFoundf("student %d", studentID)
	}

	if err := s.repo.UpsertWholeDay(ctx, studentID, date, st); err != nil {
		return fmt.Errorf("whole-day mark for student %d: %w", studentID, err)
	}
	metrics.MarksWritten.Inc()
	return nil
}

// Periodwise returns the stored cells of a class's sheet, for rehydrating
// the sheet in the teacher UI.
func (s *Service) Periodwise(ctx context.Context, classID int64, date model.Date) ([]model.Mark, error) {
	if classID <= 0 {
		return nil, model.Invalidf("class_id is required")
	}
	if date.IsZero() {
		return nil, model.Invalidf("date is required")
	}
	return s.repo.Periodwise(ctx, classID, date)
}

// History returns a student's marks within the optional bounds. An unknown
// student is NotFound rather than an empty history.
func (s *Service) History(ctx context.Context, studentID int64, f HistoryFilter) ([]model.HistoryRow, error) {
	if studentID <= 0 {
		return nil, model.Invalidf("student id is required")
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	missing, err := s.roster.MissingStudents(ctx, []int64{studentID})
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, model.NotFoundf("student %d", studentID)
	}
	return s.repo.History(ctx, studentID, f)
}

// HistoryJoined returns the cross-student report.
func (s *Service) HistoryJoined(ctx context.Context, f JoinedFilter) ([]model.JoinedRow, error) {
	if err := f.validate(); err != nil {
		return nil, err
	}
	return s.repo.HistoryJoined(ctx, f)
}

func distinctStudents(marks []model.Mark) []int64 {
	seen := make(map[int64]bool, len(marks))
	var ids []int64
	for _, m := range marks {
		if !seen[m.StudentID] {
			seen[m.StudentID] = true
			ids = append(ids, m.StudentID)
		}
	}
	return ids
}

func distinctPeriods(marks []model.Mark) []int {
	seen := make(map[int]bool)
	var nos []int
	for _, m := range marks {
		if !seen[m.PeriodNo] {
			seen[m.PeriodNo] = true
			nos = append(nos, m.PeriodNo)
		}
	}
	return nos
}
