package module_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/skillora/skillora-server/internal/features/module"
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

func seedModules(t *testing.T, db *gorm.DB, courseID uuid.UUID, titles ...string) []module.Module {
	t.Helper()

	modules := make([]module.Module, 0, len(titles))
	for _, title := range titles {
		mod, err := module.Create(db, courseID, module.CreateInput{Title: title})
		require.NoError(t, err)
		modules = append(modules, mod)
	}
	return modules
}

func TestCreateAppendsAtEnd(t *testing.T) {
	db := testDB(t)
	courseID := uuid.New()

	modules := seedModules(t, db, courseID, "Intro", "Middle", "Outro")

	for i, mod := range modules {
		assert.Equal(t, i, mod.Position)
	}

	listed, err := module.ListByCourse(db, courseID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, "Intro", listed[0].Title)
	assert.Equal(t, "Outro", listed[2].Title)
}

func TestCreateRequiresTitle(t *testing.T) {
	db := testDB(t)

	_, err := module.Create(db, uuid.New(), module.CreateInput{})
	assert.ErrorIs(t, err, module.ErrMissingTitle)
}

func TestReorderChangesOnlyPositions(t *testing.T) {
	db := testDB(t)
	courseID := uuid.New()

	modules := seedModules(t, db, courseID, "A", "B", "C")
	reversed := []uuid.UUID{modules[2].ID, modules[0].ID, modules[1].ID}

	reordered, err := module.Reorder(db, courseID, reversed)
	require.NoError(t, err)
	require.Len(t, reordered, 3)

	assert.Equal(t, modules[2].ID, reordered[0].ID)
	assert.Equal(t, modules[0].ID, reordered[1].ID)
	assert.Equal(t, modules[1].ID, reordered[2].ID)
	assert.Equal(t, "C", reordered[0].Title)
}

func TestReorderRejectsBadLists(t *testing.T) {
	db := testDB(t)
	courseID := uuid.New()

	modules := seedModules(t, db, courseID, "A", "B", "C")

	cases := map[string][]uuid.UUID{
		"missing id":   {modules[0].ID, modules[1].ID},
		"duplicate id": {modules[0].ID, modules[0].ID, modules[1].ID},
		"foreign id":   {modules[0].ID, modules[1].ID, uuid.New()},
	}

	for name, ids := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := module.Reorder(db, courseID, ids)
			assert.ErrorIs(t, err, module.ErrInvalidOrder)
		})
	}

	// A rejected reorder leaves the original order intact.
	listed, err := module.ListByCourse(db, courseID)
	require.NoError(t, err)
	assert.Equal(t, modules[0].ID, listed[0].ID)
}

func TestDeleteClosesPositionGap(t *testing.T) {
	db := testDB(t)
	courseID := uuid.New()

	modules := seedModules(t, db, courseID, "A", "B", "C")
	require.NoError(t, module.Delete(db, courseID, modules[1].ID))

	listed, err := module.ListByCourse(db, courseID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, 0, listed[0].Position)
	assert.Equal(t, 1, listed[1].Position)
	assert.Equal(t, "C", listed[1].Title)
}

func TestSetContentPreservesCreatedAt(t *testing.T) {
	db := testDB(t)
	courseID := uuid.New()

	modules := seedModules(t, db, courseID, "Intro")

	first, err := module.SetContent(db, courseID, modules[0].ID, "v1")
	require.NoError(t, err)
	require.NotNil(t, first.ContentCreatedAt)
	firstStamp := *first.ContentCreatedAt

	time.Sleep(5 * time.Millisecond)

	second, err := module.SetContent(db, courseID, modules[0].ID, "v2")
	require.NoError(t, err)
	require.NotNil(t, second.ContentBody)
	assert.Equal(t, "v2", *second.ContentBody)
	require.NotNil(t, second.ContentCreatedAt)
	assert.Equal(t, firstStamp.Unix(), second.ContentCreatedAt.Unix())
}

func TestUpdateMergesFields(t *testing.T) {
	db := testDB(t)
	courseID := uuid.New()

	modules := seedModules(t, db, courseID, "Intro")

	desc := "What this course covers."
	updated, err := module.Update(db, courseID, modules[0].ID, module.UpdateInput{Description: &desc})
	require.NoError(t, err)

	assert.Equal(t, "Intro", updated.Title)
	assert.Equal(t, desc, updated.Description)
}

func TestGetScopedToCourse(t *testing.T) {
	db := testDB(t)

	modules := seedModules(t, db, uuid.New(), "Intro")

	_, err := module.Get(db, uuid.New(), modules[0].ID)
	assert.ErrorIs(t, err, module.ErrModuleNotFound)
}
