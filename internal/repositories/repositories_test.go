package repositories_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cartracker/internal/models"
	"cartracker/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a private in-memory SQLite database with the schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Car{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func userRepos(t *testing.T) map[string]repositories.UserRepository {
	return map[string]repositories.UserRepository{
		"gorm":   repositories.NewGORMUserRepository(newTestDB(t)),
		"memory": repositories.NewMemoryUserRepository(),
	}
}

func carRepos(t *testing.T) map[string]repositories.CarRepository {
	return map[string]repositories.CarRepository{
		"gorm":   repositories.NewGORMCarRepository(newTestDB(t)),
		"memory": repositories.NewMemoryCarRepository(),
	}
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	for name, repo := range userRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			user := &models.User{Username: "alice", Password: "hash"}
			require.NoError(t, repo.Create(ctx, user))
			assert.NotEmpty(t, user.ID)
			assert.False(t, user.CreatedAt.IsZero())

			got, err := repo.GetByUsername(ctx, "alice")
			require.NoError(t, err)
			assert.Equal(t, user.ID, got.ID)

			got, err = repo.GetByID(ctx, user.ID)
			require.NoError(t, err)
			assert.Equal(t, "alice", got.Username)

			// usernames are case-sensitive
			_, err = repo.GetByUsername(ctx, "Alice")
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			_, err = repo.GetByID(ctx, "missing")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	for name, repo := range userRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Create(ctx, &models.User{Username: "bob", Password: "h1"}))

			err := repo.Create(ctx, &models.User{Username: "bob", Password: "h2"})
			assert.ErrorIs(t, err, repositories.ErrDuplicateUsername)

			n, err := repo.Count(ctx)
			require.NoError(t, err)
			assert.EqualValues(t, 1, n)
		})
	}
}

func TestCarRepository_ListIsScopedAndOrdered(t *testing.T) {
	for name, repo := range carRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, m := range []string{"Civic", "Golf", "Model 3"} {
				require.NoError(t, repo.Create(ctx, &models.Car{UserID: "u1", Model: m, Year: 2020, MPG: 30, FuelType: models.FuelGasoline}))
				time.Sleep(2 * time.Millisecond)
			}
			require.NoError(t, repo.Create(ctx, &models.Car{UserID: "u2", Model: "Corolla", Year: 2015, MPG: 33, FuelType: models.FuelHybrid}))

			cars, err := repo.ListByUser(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, cars, 3)
			assert.Equal(t, "Civic", cars[0].Model)
			assert.Equal(t, "Golf", cars[1].Model)
			assert.Equal(t, "Model 3", cars[2].Model)
			assert.Equal(t, []string{}, cars[0].Features)

			cars, err = repo.ListByUser(ctx, "nobody")
			require.NoError(t, err)
			assert.Empty(t, cars)
			assert.NotNil(t, cars)
		})
	}
}

func TestCarRepository_UpdatePartial(t *testing.T) {
	for name, repo := range carRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			car := &models.Car{UserID: "u1", Model: "Civic", Year: 2020, MPG: 35, FuelType: models.FuelGasoline, Features: []string{"sunroof", "gps"}}
			require.NoError(t, repo.Create(ctx, car))
			created := car.UpdatedAt
			time.Sleep(2 * time.Millisecond)

			year := 2021
			fuel := models.FuelHybrid
			require.NoError(t, repo.Update(ctx, car.ID, models.CarUpdate{Year: &year, FuelType: &fuel}))

			got, err := repo.GetByID(ctx, car.ID)
			require.NoError(t, err)
			assert.Equal(t, "Civic", got.Model)
			assert.Equal(t, 2021, got.Year)
			assert.Equal(t, 35, got.MPG)
			assert.Equal(t, models.FuelHybrid, got.FuelType)
			assert.Equal(t, []string{"sunroof", "gps"}, got.Features)
			assert.True(t, got.UpdatedAt.After(created))

			require.NoError(t, repo.Update(ctx, car.ID, models.CarUpdate{Features: []string{}}))
			got, err = repo.GetByID(ctx, car.ID)
			require.NoError(t, err)
			assert.Empty(t, got.Features)

			err = repo.Update(ctx, "missing", models.CarUpdate{Year: &year})
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}

func TestCarRepository_Delete(t *testing.T) {
	for name, repo := range carRepos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			car := &models.Car{UserID: "u1", Model: "Civic", Year: 2020, MPG: 35, FuelType: models.FuelGasoline}
			require.NoError(t, repo.Create(ctx, car))

			require.NoError(t, repo.Delete(ctx, car.ID))
			_, err := repo.GetByID(ctx, car.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)

			err = repo.Delete(ctx, car.ID)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
		})
	}
}

func TestMemoryCarRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemoryCarRepository()
	car := &models.Car{UserID: "u1", Model: "Civic", Features: []string{"gps"}}
	require.NoError(t, repo.Create(ctx, car))

	cars, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	cars[0].Features[0] = "changed"

	got, err := repo.GetByID(ctx, car.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"gps"}, got.Features)
}
