package course

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/skillora/skillora-server/internal/features/module"
	"github.com/skillora/skillora-server/internal/features/user"
	"github.com/skillora/skillora-server/pkg/pagination"
	"github.com/skillora/skillora-server/pkg/types"
	"github.com/skillora/skillora-server/pkg/validation"
)

// Course is a catalog entry owned by an instructor. Modules are ordered
// by their position column.
type Course struct {
	types.BaseModel

	Title       string            `gorm:"type:varchar(100);not null" json:"title"`
	Slug        string            `gorm:"type:varchar(120);not null;index" json:"slug"`
	Description string            `gorm:"type:text;not null" json:"description"`
	Category    string            `gorm:"type:varchar(50);not null" json:"category"`
	Level       types.CourseLevel `gorm:"type:varchar(20);not null" json:"level"`
	Thumbnail   string            `gorm:"type:text;not null;default:''" json:"thumbnail"`
	Status      types.CourseStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`

	InstructorID uuid.UUID  `gorm:"type:uuid;not null;index;column:instructor_id" json:"instructorId"`
	Instructor   *user.User `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`

	Modules []module.Module `gorm:"foreignKey:CourseID" json:"modules,omitempty"`
}

// TableName overrides the default table name.
func (Course) TableName() string { return "courses" }

// Enrollment links a student to a course. The compound unique index is
// the single source of truth for membership; there is no mirrored list
// on the user side.
type Enrollment struct {
	types.BaseModel

	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_course_user;column:course_id" json:"courseId"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_course_user;index;column:user_id" json:"userId"`
}

// TableName overrides the default table name.
func (Enrollment) TableName() string { return "enrollments" }

// CreateInput carries data for creating a course.
type CreateInput struct {
	Title        string
	Description  string
	Category     string
	Level        types.CourseLevel
	Thumbnail    string
	InstructorID uuid.UUID
}

// UpdateInput captures the mutable course fields. Nil means "leave as is".
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Level       *string
	Thumbnail   *string
}

// WithStudentCount pairs an instructor's course with its enrollment count.
type WithStudentCount struct {
	Course
	StudentCount int64 `json:"studentCount"`
}

// List returns catalog courses newest first. Pagination is applied only
// when the caller asked for it.
func List(db *gorm.DB, params pagination.Params) ([]Course, int64, error) {
	var total int64
	if err := db.Model(&Course{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := db.Preload("Instructor").Order("created_at DESC")
	if params.Requested {
		query = query.Offset(params.Skip).Limit(params.Limit)
	}

	var courses []Course
	if err := query.Find(&courses).Error; err != nil {
		return nil, 0, err
	}

	return courses, total, nil
}

// Get retrieves a course with its instructor and ordered modules.
func Get(db *gorm.DB, id uuid.UUID) (Course, error) {
	var crs Course
	err := db.
		Preload("Instructor").
		Preload("Modules", func(tx *gorm.DB) *gorm.DB { return tx.Order("position ASC") }).
		First(&crs, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return crs, ErrCourseNotFound
		}
		return crs, err
	}
	return crs, nil
}

// Create inserts a new draft course for the instructor.
func Create(db *gorm.DB, input CreateInput) (Course, error) {
	if input.Title == "" || input.Description == "" || input.Category == "" {
		return Course{}, ErrMissingFields
	}
	if !input.Level.Valid() {
		return Course{}, ErrInvalidLevel
	}

	crs := Course{
		Title:        input.Title,
		Slug:         validation.Slugify(input.Title),
		Description:  input.Description,
		Category:     input.Category,
		Level:        input.Level,
		Thumbnail:    input.Thumbnail,
		Status:       types.StatusDraft,
		InstructorID: input.InstructorID,
	}

	if err := db.Create(&crs).Error; err != nil {
		return Course{}, err
	}

	return crs, nil
}

// Update merges the provided fields into the course. Only the owning
// instructor may update; a title change regenerates the slug.
func Update(db *gorm.DB, id, instructorID uuid.UUID, input UpdateInput) (Course, error) {
	crs, err := Get(db, id)
	if err != nil {
		return crs, err
	}
	if crs.InstructorID != instructorID {
		return crs, ErrNotOwner
	}

	if input.Title != nil {
		crs.Title = *input.Title
		crs.Slug = validation.Slugify(*input.Title)
	}
	if input.Description != nil {
		crs.Description = *input.Description
	}
	if input.Category != nil {
		crs.Category = *input.Category
	}
	if input.Level != nil {
		level := types.CourseLevel(*input.Level)
		if !level.Valid() {
			return crs, ErrInvalidLevel
		}
		crs.Level = level
	}
	if input.Thumbnail != nil {
		crs.Thumbnail = *input.Thumbnail
	}

	if err := db.Omit("Instructor", "Modules").Save(&crs).Error; err != nil {
		return crs, err
	}

	return crs, nil
}

// Delete removes the course together with its modules and enrollments.
// Progress rows are left in place; completions may afterwards reference
// module ids that no longer exist.
func Delete(db *gorm.DB, id, instructorID uuid.UUID) (Course, error) {
	crs, err := Get(db, id)
	if err != nil {
		return crs, err
	}
	if crs.InstructorID != instructorID {
		return crs, ErrNotOwner
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&module.Module{}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&Enrollment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Course{}, "id = ?", id).Error
	})

	return crs, err
}

// Enroll adds the student to the course. The unique index makes the
// insert safe against concurrent duplicates.
func Enroll(db *gorm.DB, courseID, userID uuid.UUID) error {
	var exists int64
	if err := db.Model(&Course{}).Where("id = ?", courseID).Count(&exists).Error; err != nil {
		return err
	}
	if exists == 0 {
		return ErrCourseNotFound
	}

	enrolled, err := IsEnrolled(db, courseID, userID)
	if err != nil {
		return err
	}
	if enrolled {
		return ErrAlreadyEnrolled
	}

	return db.Create(&Enrollment{CourseID: courseID, UserID: userID}).Error
}

// IsEnrolled reports whether the user is enrolled in the course.
func IsEnrolled(db *gorm.DB, courseID, userID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&Enrollment{}).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	return count > 0, err
}

// EnrolledCourses returns the courses the user is enrolled in, newest
// enrollment first.
func EnrolledCourses(db *gorm.DB, userID uuid.UUID) ([]Course, error) {
	var courses []Course
	err := db.Preload("Instructor").
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.user_id = ?", userID).
		Order("enrollments.created_at DESC").
		Find(&courses).Error
	return courses, err
}

// ByInstructor returns the instructor's courses with per-course student
// counts.
func ByInstructor(db *gorm.DB, instructorID uuid.UUID) ([]WithStudentCount, error) {
	var courses []Course
	err := db.Where("instructor_id = ?", instructorID).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}

	result := make([]WithStudentCount, 0, len(courses))
	for _, crs := range courses {
		var count int64
		if err := db.Model(&Enrollment{}).Where("course_id = ?", crs.ID).Count(&count).Error; err != nil {
			return nil, err
		}
		result = append(result, WithStudentCount{Course: crs, StudentCount: count})
	}

	return result, nil
}

// Students returns the deduplicated roster of students enrolled in any of
// the instructor's courses.
func Students(db *gorm.DB, instructorID uuid.UUID) ([]user.User, error) {
	var students []user.User
	err := db.Distinct("users.*").
		Model(&user.User{}).
		Joins("JOIN enrollments ON enrollments.user_id = users.id").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.instructor_id = ?", instructorID).
		Order("users.first_name ASC").
		Find(&students).Error
	return students, err
}

// Source exposes course facts to the module feature without creating an
// import cycle.
type Source struct{}

// InstructorOf returns the owning instructor of a course, or
// gorm.ErrRecordNotFound when the course does not exist.
func (Source) InstructorOf(db *gorm.DB, courseID uuid.UUID) (uuid.UUID, error) {
	var row struct {
		InstructorID uuid.UUID
	}
	err := db.Model(&Course{}).Select("instructor_id").Where("id = ?", courseID).Take(&row).Error
	return row.InstructorID, err
}
