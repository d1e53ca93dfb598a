package roster_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance-tracker/internal/auth"
	"attendance-tracker/internal/model"
)

func TestTeacherAccounts(t *testing.T) {
	ctx := context.Background()
	r := setupRoster(t)

	created, err := r.CreateTeacher(ctx, "T01", "Meena", "chalk")
	require.NoError(t, err)
	assert.Equal(t, "T01", created.EmpID)

	_, err = r.CreateTeacher(ctx, "T01", "Other", "x")
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = r.CreateTeacher(ctx, "", "Nameless", "x")
	assert.ErrorIs(t, err, model.ErrValidation)

	got, err := r.AuthenticateTeacher(ctx, "T01", "chalk")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = r.AuthenticateTeacher(ctx, "T01", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = r.AuthenticateTeacher(ctx, "T99", "chalk")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
