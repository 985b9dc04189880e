package course

import "errors"

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrNotOwner        = errors.New("course belongs to another instructor")
	ErrAlreadyEnrolled = errors.New("already enrolled in this course")
	ErrMissingFields   = errors.New("title, description and category are required")
	ErrInvalidLevel    = errors.New("level must be beginner, intermediate or advanced")
)
