package repositories_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TAF-Playground/TAF-DataDev/pkg/apperrors"
	"github.com/TAF-Playground/TAF-DataDev/pkg/models"
	"github.com/TAF-Playground/TAF-DataDev/pkg/repositories"
	"github.com/TAF-Playground/TAF-DataDev/pkg/testhelpers"
)

func strPtr(s string) *string { return &s }

func TestConnectionRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	store := testhelpers.NewSQLiteStore(t)
	repo := repositories.NewConnectionRepository(store.Gorm)

	port := 5432
	c := &models.ConnectionProfile{
		Name:     "warehouse",
		DBType:   "postgresql",
		Host:     strPtr("db.internal"),
		Port:     &port,
		Database: strPtr("orders"),
		Username: strPtr("app"),
		Password: strPtr(""),
	}
	require.NoError(t, repo.Create(ctx, c))
	assert.True(t, strings.HasPrefix(c.ID, "db_"))
	assert.False(t, c.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "warehouse", got.Name)
	require.NotNil(t, got.Port)
	assert.Equal(t, 5432, *got.Port)
	require.NotNil(t, got.Password, "empty password is kept distinct from a missing one")
	assert.Equal(t, "", *got.Password)
	assert.Nil(t, got.ConnectionString)

	got.Host = nil
	got.Description = strPtr("primary")
	require.NoError(t, repo.Update(ctx, got))

	updated, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, updated.Host, "cleared field is written")
	assert.Equal(t, "primary", *updated.Description)
	assert.Equal(t, "warehouse", updated.Name)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, c.ID))
	_, err = repo.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConnectionRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewConnectionRepository(testhelpers.NewSQLiteStore(t).Gorm)

	_, err := repo.GetByID(ctx, "db_missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, "db_missing"), apperrors.ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &models.ConnectionProfile{ID: "db_missing", Name: "x", DBType: "sqlite"}), apperrors.ErrNotFound)
}

func TestConnectionRepository_ListOrder(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewConnectionRepository(testhelpers.NewSQLiteStore(t).Gorm)

	for _, name := range []string{"first", "second", "third"} {
		require.NoError(t, repo.Create(ctx, &models.ConnectionProfile{Name: name, DBType: "sqlite"}))
	}

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "first", list[0].Name)
	assert.Equal(t, "third", list[2].Name)
}
