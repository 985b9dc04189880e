package progress_test

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/skillora/skillora-server/internal/features/module"
	"github.com/skillora/skillora-server/internal/features/progress"
	"github.com/skillora/skillora-server/pkg/database"
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

func TestGetOrCreateIsLazy(t *testing.T) {
	db := testDB(t)
	userID, courseID := uuid.New(), uuid.New()

	first, err := progress.GetOrCreate(db, userID, courseID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, first.ID)

	second, err := progress.GetOrCreate(db, userID, courseID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.False(t, second.LastAccessed.Before(first.LastAccessed))

	completed, err := progress.CompletedIDs(db, first.ID)
	require.NoError(t, err)
	assert.Empty(t, completed)
}

func TestCompleteIsIdempotent(t *testing.T) {
	db := testDB(t)
	userID, courseID, moduleID := uuid.New(), uuid.New(), uuid.New()

	prog, err := progress.Complete(db, userID, courseID, moduleID)
	require.NoError(t, err)

	_, err = progress.Complete(db, userID, courseID, moduleID)
	require.NoError(t, err)

	completed, err := progress.CompletedIDs(db, prog.ID)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, moduleID, completed[0])
}

func TestCompletionSurvivesModuleDelete(t *testing.T) {
	db := testDB(t)
	userID, courseID := uuid.New(), uuid.New()

	mod, err := module.Create(db, courseID, module.CreateInput{Title: "Intro"})
	require.NoError(t, err)

	prog, err := progress.Complete(db, userID, courseID, mod.ID)
	require.NoError(t, err)

	require.NoError(t, module.Delete(db, courseID, mod.ID))

	// The completion record now references a module that no longer
	// exists; nothing cleans it up.
	completed, err := progress.CompletedIDs(db, prog.ID)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, mod.ID, completed[0])

	_, err = module.Get(db, courseID, mod.ID)
	assert.ErrorIs(t, err, module.ErrModuleNotFound)
}

func TestProgressScopedPerCourse(t *testing.T) {
	db := testDB(t)
	userID := uuid.New()
	courseA, courseB := uuid.New(), uuid.New()

	progA, err := progress.Complete(db, userID, courseA, uuid.New())
	require.NoError(t, err)

	progB, err := progress.GetOrCreate(db, userID, courseB)
	require.NoError(t, err)
	assert.NotEqual(t, progA.ID, progB.ID)

	completed, err := progress.CompletedIDs(db, progB.ID)
	require.NoError(t, err)
	assert.Empty(t, completed)
}
