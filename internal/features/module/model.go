package module

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillora/skillora-server/pkg/types"
)

// Module is a titled content unit nested within a course. Identity is the
// stable id; ordering lives in the position column and is rewritten as a
// whole on reorder.
type Module struct {
	types.BaseModel

	CourseID    uuid.UUID `gorm:"type:uuid;not null;index;column:course_id" json:"courseId"`
	Title       string    `gorm:"type:varchar(100);not null" json:"title"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	Position    int       `gorm:"not null" json:"position"`

	ContentBody      *string    `gorm:"type:text;column:content_body" json:"-"`
	ContentCreatedAt *time.Time `gorm:"column:content_created_at" json:"-"`
}

// TableName overrides the default table name.
func (Module) TableName() string { return "modules" }

// Content is the serialized shape of a module's content payload.
type Content struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// MarshalJSON renders the content columns as a nested content object,
// omitted entirely while no content has been set.
func (m Module) MarshalJSON() ([]byte, error) {
	type alias Module
	payload := struct {
		alias
		Content *Content `json:"content,omitempty"`
	}{alias: alias(m)}

	if m.ContentBody != nil {
		content := Content{Content: *m.ContentBody}
		if m.ContentCreatedAt != nil {
			content.CreatedAt = *m.ContentCreatedAt
		}
		payload.Content = &content
	}

	return json.Marshal(payload)
}

// CreateInput carries data for creating a module.
type CreateInput struct {
	Title       string
	Description string
}

// UpdateInput captures the mutable module fields. Nil means "leave as is".
type UpdateInput struct {
	Title       *string
	Description *string
}

// ListByCourse returns a course's modules in display order.
func ListByCourse(db *gorm.DB, courseID uuid.UUID) ([]Module, error) {
	var modules []Module
	err := db.Where("course_id = ?", courseID).Order("position ASC").Find(&modules).Error
	return modules, err
}

// Get retrieves one module belonging to the course.
func Get(db *gorm.DB, courseID, moduleID uuid.UUID) (Module, error) {
	var mod Module
	err := db.First(&mod, "id = ? AND course_id = ?", moduleID, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return mod, ErrModuleNotFound
		}
		return mod, err
	}
	return mod, nil
}

// Create appends a new module at the end of the course's order.
func Create(db *gorm.DB, courseID uuid.UUID, input CreateInput) (Module, error) {
	if input.Title == "" {
		return Module{}, ErrMissingTitle
	}

	var mod Module
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Module{}).Where("course_id = ?", courseID).Count(&count).Error; err != nil {
			return err
		}

		mod = Module{
			CourseID:    courseID,
			Title:       input.Title,
			Description: input.Description,
			Position:    int(count),
		}
		return tx.Create(&mod).Error
	})

	return mod, err
}

// Update merges the provided fields into the module.
func Update(db *gorm.DB, courseID, moduleID uuid.UUID, input UpdateInput) (Module, error) {
	mod, err := Get(db, courseID, moduleID)
	if err != nil {
		return mod, err
	}

	if input.Title != nil {
		if *input.Title == "" {
			return mod, ErrMissingTitle
		}
		mod.Title = *input.Title
	}
	if input.Description != nil {
		mod.Description = *input.Description
	}

	if err := db.Save(&mod).Error; err != nil {
		return mod, err
	}

	return mod, nil
}

// SetContent replaces the module's content body. The content timestamp is
// stamped on first set and preserved on subsequent replacements.
func SetContent(db *gorm.DB, courseID, moduleID uuid.UUID, body string) (Module, error) {
	mod, err := Get(db, courseID, moduleID)
	if err != nil {
		return mod, err
	}

	mod.ContentBody = &body
	if mod.ContentCreatedAt == nil {
		now := time.Now()
		mod.ContentCreatedAt = &now
	}

	if err := db.Save(&mod).Error; err != nil {
		return mod, err
	}

	return mod, nil
}

// Delete removes the module and closes the gap in the remaining order.
// Completion records referencing the module are not touched.
func Delete(db *gorm.DB, courseID, moduleID uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		mod, err := Get(tx, courseID, moduleID)
		if err != nil {
			return err
		}

		if err := tx.Delete(&Module{}, "id = ?", mod.ID).Error; err != nil {
			return err
		}

		return tx.Model(&Module{}).
			Where("course_id = ? AND position > ?", courseID, mod.Position).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
	})
}

// Reorder rewrites the course's module order from the given id list. The
// list must be exactly a permutation of the existing module ids.
func Reorder(db *gorm.DB, courseID uuid.UUID, ids []uuid.UUID) ([]Module, error) {
	var reordered []Module
	err := db.Transaction(func(tx *gorm.DB) error {
		existing, err := ListByCourse(tx, courseID)
		if err != nil {
			return err
		}

		if len(ids) != len(existing) {
			return ErrInvalidOrder
		}

		known := make(map[uuid.UUID]bool, len(existing))
		for _, mod := range existing {
			known[mod.ID] = true
		}

		seen := make(map[uuid.UUID]bool, len(ids))
		for _, id := range ids {
			if !known[id] || seen[id] {
				return ErrInvalidOrder
			}
			seen[id] = true
		}

		for position, id := range ids {
			err := tx.Model(&Module{}).
				Where("id = ? AND course_id = ?", id, courseID).
				UpdateColumn("position", position).Error
			if err != nil {
				return err
			}
		}

		reordered, err = ListByCourse(tx, courseID)
		return err
	})

	return reordered, err
}
