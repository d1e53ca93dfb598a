// Package roster owns students, classes, periods and teacher accounts.
package roster

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"attendance-tracker/internal/auth"
	"attendance-tracker/internal/model"
	"attendance-tracker/internal/store"
)

const studentColumns = "id, admission_no, name, password_hash, class_id, created_at, updated_at"

// Store persists roster entities.
type Store struct {
	db         *store.DB
	bcryptCost int
}

// New creates a roster store. Passwords are hashed with bcryptCost.
func New(db *store.DB, bcryptCost int) *Store {
	return &Store{db: db, bcryptCost: bcryptCost}
}

// CreateStudent validates, hashes the password and inserts a student.
func (s *Store) CreateStudent(ctx context.Context, in model.StudentInput) (model.Student, error) {
	in.AdmissionNo = strings.TrimSpace(in.AdmissionNo)
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return model.Student{}, err
	}
	if err := s.requireClass(ctx, in.ClassID); err != nil {
		return model.Student{}, err
	}
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.Student{}, err
	}

	var id int64
	err = s.db.QueryRowxContext(ctx, s.db.Rebind(`
		INSERT INTO students (admission_no, name, password_hash, class_id)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), in.AdmissionNo, in.Name, hash, in.ClassID).Scan(&id)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return model.Student{}, model.Conflictf("admission number %q already exists", in.AdmissionNo)
		}
		return model.Student{}, store.Classify(err)
	}

	logger.Debug.Printf("student %d created: admission_no=%s", id, in.AdmissionNo)
	return s.GetStudent(ctx, id)
}

// ListStudents returns students ordered by admission number, optionally
// restricted to one class.
func (s *Store) ListStudents(ctx context.Context, classID *int64) ([]model.Student, error) {
	query := "SELECT " + studentColumns + " FROM students"
	var args []any
	if classID != nil {
		query += " WHERE class_id = ?"
		args = append(args, *classID)
	}
	query += " ORDER BY admission_no"

	students := []model.Student{}
	if err := s.db.SelectContext(ctx, &students, s.db.Rebind(query), args...); err != nil {
		return nil, store.Classify(err)
	}
	return students, nil
}

// GetStudent returns one student by id.
func (s *Store) GetStudent(ctx context.Context, id int64) (model.Student, error) {
	var st model.Student
	err := s.db.GetContext(ctx, &st, s.db.Rebind("SELECT "+studentColumns+" FROM students WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Student{}, model.NotFoundf("student %d", id)
	}
	if err != nil {
		return model.Student{}, store.Classify(err)
	}
	return st, nil
}

// UpdateStudent replaces every editable field of a student.
func (s *Store) UpdateStudent(ctx context.Context, id int64, in model.StudentInput) (model.Student, error) {
	in.AdmissionNo = strings.TrimSpace(in.AdmissionNo)
	in.Name = strings.TrimSpace(in.Name)
	if err := in.Validate(); err != nil {
		return model.Student{}, err
	}
	if err := s.requireClass(ctx, in.ClassID); err != nil {
		return model.Student{}, err
	}
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.Student{}, err
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
		UPDATE students
		SET admission_no = ?, name = ?, password_hash = ?, class_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`), in.AdmissionNo, in.Name, hash, in.ClassID, id)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return model.Student{}, model.Conflictf("admission number %q already exists", in.AdmissionNo)
		}
		return model.Student{}, store.Classify(err)
	}
	if err := requireAffected(res, "student %d", id); err != nil {
		return model.Student{}, err
	}
	return s.GetStudent(ctx, id)
}

// ChangePassword sets a new password for a student.
func (s *Store) ChangePassword(ctx context.Context, id int64, newPassword string) error {
	if newPassword == "" {
		return model.Invalidf("new_password is required")
	}
	if err := model.CheckPasswordLength("new_password", newPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		"UPDATE students SET password_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"), hash, id)
	if err != nil {
		return store.Classify(err)
	}
	return requireAffected(res, "student %d", id)
}

// AuthenticateStudent verifies an admission number and password.
func (s *Store) AuthenticateStudent(ctx context.Context, admissionNo, password string) (model.Student, error) {
	var st model.Student
	err := s.db.GetContext(ctx, &st, s.db.Rebind("SELECT "+studentColumns+" FROM students WHERE admission_no = ?"),
		strings.TrimSpace(admissionNo))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Student{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return model.Student{}, store.Classify(err)
	}
	if !auth.CheckPassword(st.PasswordHash, password) {
		return model.Student{}, auth.ErrInvalidCredentials
	}
	return st, nil
}

// MissingStudents returns the ids in ids that have no student row.
func (s *Store) MissingStudents(ctx context.Context, ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT id FROM students WHERE id IN (?)", ids)
	if err != nil {
		return nil, err
	}
	var found []int64
	if err := s.db.SelectContext(ctx, &found, s.db.Rebind(query), args...); err != nil {
		return nil, store.Classify(err)
	}

	seen := make(map[int64]bool, len(found))
	for _, id := range found {
		seen[id] = true
	}
	var missing []int64
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
			seen[id] = true
		}
	}
	return missing, nil
}

func (s *Store) requireClass(ctx context.Context, classID *int64) error {
	if classID == nil {
		return nil
	}
	ok, err := s.ClassExists(ctx, *classID)
	if err != nil {
		return err
	}
	if !ok {
		return model.NotFoundf("class %d", *classID)
	}
	return nil
}

func requireAffected(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return store.Classify(err)
	}
	if n == 0 {
		return model.NotFoundf(format, args...)
	}
	return nil
}
