package user_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/skillora/skillora-server/internal/features/user"
	"github.com/skillora/skillora-server/pkg/database"
	"github.com/skillora/skillora-server/pkg/types"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return db
}

func TestCreateHashesPasswordAndDefaultsRole(t *testing.T) {
	db := testDB(t)

	usr, err := user.Create(db, user.CreateInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "Ada@Example.COM",
		Password:  "correct-horse",
	})
	require.NoError(t, err)

	assert.Equal(t, types.RoleStudent, usr.Role)
	assert.Equal(t, "ada@example.com", usr.Email)
	assert.NotEqual(t, "correct-horse", usr.Password)
	assert.True(t, usr.ComparePassword("correct-horse"))
	assert.False(t, usr.ComparePassword("wrong"))
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	db := testDB(t)

	_, err := user.Create(db, user.CreateInput{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	_, err = user.Create(db, user.CreateInput{
		FirstName: "Other", LastName: "Person",
		Email: "ADA@example.com", Password: "different-pass",
	})
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestCreateRejectsShortPassword(t *testing.T) {
	db := testDB(t)

	_, err := user.Create(db, user.CreateInput{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Password: "short",
	})
	assert.ErrorIs(t, err, user.ErrInvalidPassword)
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	db := testDB(t)

	_, err := user.Create(db, user.CreateInput{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Password: "correct-horse",
		Role: types.Role("admin"),
	})
	assert.ErrorIs(t, err, user.ErrInvalidRole)
}

func TestUpdateProfileMergesFields(t *testing.T) {
	db := testDB(t)

	usr, err := user.Create(db, user.CreateInput{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	bio := "Analytical engines."
	updated, err := user.UpdateProfile(db, usr.ID, user.ProfileInput{Bio: &bio})
	require.NoError(t, err)

	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, bio, updated.Bio)
}

func TestChangePassword(t *testing.T) {
	db := testDB(t)

	usr, err := user.Create(db, user.CreateInput{
		FirstName: "Ada", LastName: "Lovelace",
		Email: "ada@example.com", Password: "correct-horse",
	})
	require.NoError(t, err)

	require.NoError(t, user.ChangePassword(db, usr.ID, "new-password-1"))

	reloaded, err := user.Get(db, usr.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.ComparePassword("new-password-1"))
	assert.False(t, reloaded.ComparePassword("correct-horse"))
}
