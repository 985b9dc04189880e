package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role represents user role levels
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
)

// Valid reports whether the role is one of the supported values.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleInstructor
}

// CourseLevel represents course difficulty levels
type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
)

// Valid reports whether the level is one of the supported values.
func (l CourseLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// CourseStatus represents course publication state. Stored but never
// transitioned by any endpoint; the catalog does not filter on it.
type CourseStatus string

const (
	StatusDraft     CourseStatus = "draft"
	StatusPublished CourseStatus = "published"
	StatusArchived  CourseStatus = "archived"
)

// BaseModel contains common fields for all models. IDs are assigned in
// BeforeCreate rather than by a database default so the same models work
// against postgres and the sqlite test driver.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// BeforeCreate assigns a UUID when one was not provided.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
