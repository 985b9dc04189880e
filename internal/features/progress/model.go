package progress

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/skillora/skillora-server/pkg/types"
)

// CourseProgress is the single record per (user, course) holding
// completion state. It is created lazily and only ever grows; nothing
// removes a completion, even when the completed module is later deleted.
type CourseProgress struct {
	types.BaseModel

	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_course;column:user_id" json:"userId"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_course;column:course_id" json:"courseId"`

	LastAccessed time.Time `gorm:"not null;column:last_accessed" json:"lastAccessed"`

	Completed []CompletedModule `gorm:"foreignKey:ProgressID" json:"-"`
}

// TableName overrides the default table name.
func (CourseProgress) TableName() string { return "course_progress" }

// CompletedModule marks one module complete within a progress record. The
// compound unique index makes completion idempotent at the constraint
// level.
type CompletedModule struct {
	types.BaseModel

	ProgressID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_completed_progress_module;column:progress_id" json:"progressId"`
	ModuleID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_completed_progress_module;column:module_id" json:"moduleId"`
}

// TableName overrides the default table name.
func (CompletedModule) TableName() string { return "completed_modules" }

// GetOrCreate returns the progress record for (user, course), creating an
// empty one on first access, and stamps LastAccessed.
func GetOrCreate(db *gorm.DB, userID, courseID uuid.UUID) (CourseProgress, error) {
	var prog CourseProgress
	err := db.Where(CourseProgress{UserID: userID, CourseID: courseID}).
		Attrs(CourseProgress{LastAccessed: time.Now()}).
		FirstOrCreate(&prog).Error
	if err != nil {
		return prog, err
	}

	prog.LastAccessed = time.Now()
	err = db.Model(&CourseProgress{}).
		Where("id = ?", prog.ID).
		UpdateColumn("last_accessed", prog.LastAccessed).Error

	return prog, err
}

// Complete marks the module complete for (user, course). Completing an
// already completed module is a no-op.
func Complete(db *gorm.DB, userID, courseID, moduleID uuid.UUID) (CourseProgress, error) {
	prog, err := GetOrCreate(db, userID, courseID)
	if err != nil {
		return prog, err
	}

	record := CompletedModule{ProgressID: prog.ID, ModuleID: moduleID}
	err = db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error

	return prog, err
}

// CompletedIDs returns the ids of the modules completed under a progress
// record, oldest completion first.
func CompletedIDs(db *gorm.DB, progressID uuid.UUID) ([]uuid.UUID, error) {
	var records []CompletedModule
	err := db.Where("progress_id = ?", progressID).Order("created_at ASC").Find(&records).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ModuleID)
	}
	return ids, nil
}
