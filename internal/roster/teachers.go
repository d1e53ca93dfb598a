package roster

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/shrimpsizemoose/trekker/logger"

	"attendance-tracker/internal/auth"
	"attendance-tracker/internal/model"
	"attendance-tracker/internal/store"
)

// CreateTeacher registers a teacher account.
func (s *Store) CreateTeacher(ctx context.Context, empID, name, password string) (model.Teacher, error) {
	empID, name = strings.TrimSpace(empID), strings.TrimSpace(name)
	switch {
	case empID == "":
		return model.Teacher{}, model.Invalidf("emp_id is required")
	case name == "":
		return model.Teacher{}, model.Invalidf("name is required")
	case password == "":
		return model.Teacher{}, model.Invalidf("password is required")
	}
	if err := model.CheckPasswordLength("password", password); err != nil {
		return model.Teacher{}, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return model.Teacher{}, err
	}

	var id int64
	err = s.db.QueryRowxContext(ctx, s.db.Rebind(
		"INSERT INTO teachers (emp_id, name, password_hash) VALUES (?, ?, ?) RETURNING id"),
		empID, name, hash).Scan(&id)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return model.Teacher{}, model.Conflictf("teacher %q already exists", empID)
		}
		return model.Teacher{}, store.Classify(err)
	}
	logger.Info.Printf("teacher %d created: emp_id=%s", id, empID)

	var t model.Teacher
	if err := s.db.GetContext(ctx, &t, s.db.Rebind(
		"SELECT id, emp_id, name, password_hash, created_at FROM teachers WHERE id = ?"), id); err != nil {
		return model.Teacher{}, store.Classify(err)
	}
	return t, nil
}

// AuthenticateTeacher verifies an employee id and password.
func (s *Store) AuthenticateTeacher(ctx context.Context, empID, password string) (model.Teacher, error) {
	var t model.Teacher
	err := s.db.GetContext(ctx, &t, s.db.Rebind(
		"SELECT id, emp_id, name, password_hash, created_at FROM teachers WHERE emp_id = ?"), strings.TrimSpace(empID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Teacher{}, auth.ErrInvalidCredentials
	}
	if err != nil {
		return model.Teacher{}, store.Classify(err)
	}
	if !auth.CheckPassword(t.PasswordHash, password) {
		return model.Teacher{}, auth.ErrInvalidCredentials
	}
	return t, nil
}
