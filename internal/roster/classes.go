package roster

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shrimpsizemoose/trekker/logger"

	"attendance-tracker/internal/model"
	"attendance-tracker/internal/store"
)

// CreateClass inserts a class. Names are unique.
func (s *Store) CreateClass(ctx context.Context, name string) (model.Class, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Class{}, model.Invalidf("name is required")
	}
	if len(name) > 100 {
		return model.Class{}, model.Invalidf("name must be at most 100 characters")
	}

	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind("INSERT INTO classes (name) VALUES (?) RETURNING id"), name).Scan(&id)
	if err != nil {
		if store.IsUniqueViolation(err) {
			return model.Class{}, model.Conflictf("class %q already exists", name)
		}
		return model.Class{}, store.Classify(err)
	}
	logger.Debug.Printf("class %d created: %s", id, name)

	var c model.Class
	if err := s.db.GetContext(ctx, &c, s.db.Rebind("SELECT id, name, created_at FROM classes WHERE id = ?"), id); err != nil {
		return model.Class{}, store.Classify(err)
	}
	return c, nil
}

// ListClasses returns all classes ordered by name.
func (s *Store) ListClasses(ctx context.Context) ([]model.Class, error) {
	classes := []model.Class{}
	if err := s.db.SelectContext(ctx, &classes, "SELECT id, name, created_at FROM classes ORDER BY name, id"); err != nil {
		return nil, store.Classify(err)
	}
	return classes, nil
}

// ClassExists reports whether a class with id exists.
func (s *Store) ClassExists(ctx context.Context, id int64) (bool, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, s.db.Rebind("SELECT COUNT(*) FROM classes WHERE id = ?"), id); err != nil {
		return false, store.Classify(err)
	}
	return n > 0, nil
}

// ListPeriods returns the daily slots ordered by period number.
func (s *Store) ListPeriods(ctx context.Context) ([]model.Period, error) {
	periods := []model.Period{}
	if err := s.db.SelectContext(ctx, &periods, "SELECT id, period_no, label FROM periods ORDER BY period_no"); err != nil {
		return nil, store.Classify(err)
	}
	return periods, nil
}

// MissingPeriods returns the period numbers in nos that are not defined.
func (s *Store) MissingPeriods(ctx context.Context, nos []int) ([]int, error) {
	if len(nos) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In("SELECT period_no FROM periods WHERE period_no IN (?)", nos)
	if err != nil {
		return nil, err
	}
	var found []int
	if err := s.db.SelectContext(ctx, &found, s.db.Rebind(query), args...); err != nil {
		return nil, store.Classify(err)
	}

	seen := make(map[int]bool, len(found))
	for _, no := range found {
		seen[no] = true
	}
	var missing []int
	for _, no := range nos {
		if !seen[no] {
			missing = append(missing, no)
			seen[no] = true
		}
	}
	return missing, nil
}
