package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/skillora/skillora-server/pkg/types"
)

// User represents a Skillora account. The role is fixed at registration;
// no endpoint changes it afterwards, and accounts are never deleted.
type User struct {
	types.BaseModel

	FirstName      string     `gorm:"type:varchar(50);not null;column:first_name" json:"firstName"`
	LastName       string     `gorm:"type:varchar(50);not null;column:last_name" json:"lastName"`
	Email          string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Password       string     `gorm:"type:varchar(255);not null" json:"-"`
	Role           types.Role `gorm:"type:varchar(20);not null;default:'student';index" json:"role"`
	Bio            string     `gorm:"type:varchar(500);not null;default:''" json:"bio"`
	ProfilePicture string     `gorm:"type:text;not null;default:'';column:profile_picture" json:"profilePicture"`
	LastLogin      *time.Time `gorm:"column:last_login" json:"lastLogin,omitempty"`
}

// TableName overrides the default table name.
func (User) TableName() string { return "users" }

// CreateInput carries data for creating a new user.
type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      types.Role
}

// ProfileInput captures the mutable profile fields. Nil means "leave as is".
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Bio       *string
}

// Get retrieves a user by ID.
func Get(db *gorm.DB, id uuid.UUID) (User, error) {
	var usr User
	if err := db.First(&usr, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usr, ErrUserNotFound
		}
		return usr, err
	}
	return usr, nil
}

// GetByEmail retrieves a user by email, case-insensitively.
func GetByEmail(db *gorm.DB, email string) (User, error) {
	var usr User
	normalized := NormalizeEmail(email)
	if err := db.First(&usr, "email = ?", normalized).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usr, ErrUserNotFound
		}
		return usr, err
	}
	return usr, nil
}

// Create inserts a new user with a hashed password. The email must not be
// taken by an existing account.
func Create(db *gorm.DB, input CreateInput) (User, error) {
	if len(input.Password) < 8 {
		return User{}, ErrInvalidPassword
	}

	role := input.Role
	if role == "" {
		role = types.RoleStudent
	}
	if !role.Valid() {
		return User{}, ErrInvalidRole
	}

	if _, err := GetByEmail(db, input.Email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return User{}, err
	}

	usr := User{
		FirstName: strings.TrimSpace(input.FirstName),
		LastName:  strings.TrimSpace(input.LastName),
		Email:     NormalizeEmail(input.Email),
		Role:      role,
	}

	if err := usr.SetPassword(input.Password); err != nil {
		return User{}, err
	}

	if err := db.Create(&usr).Error; err != nil {
		return User{}, err
	}

	return usr, nil
}

// UpdateProfile merges the provided profile fields into the user.
func UpdateProfile(db *gorm.DB, id uuid.UUID, input ProfileInput) (User, error) {
	usr, err := Get(db, id)
	if err != nil {
		return usr, err
	}

	if input.FirstName != nil {
		usr.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		usr.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Bio != nil {
		usr.Bio = strings.TrimSpace(*input.Bio)
	}

	if err := db.Save(&usr).Error; err != nil {
		return usr, err
	}

	return usr, nil
}

// ChangePassword replaces the stored hash after the caller has verified
// the current password.
func ChangePassword(db *gorm.DB, id uuid.UUID, newPassword string) error {
	if len(newPassword) < 8 {
		return ErrInvalidPassword
	}

	usr, err := Get(db, id)
	if err != nil {
		return err
	}

	if err := usr.SetPassword(newPassword); err != nil {
		return err
	}

	return db.Model(&User{}).Where("id = ?", id).Update("password", usr.Password).Error
}

// TouchLastLogin stamps the last-login time.
func TouchLastLogin(db *gorm.DB, id uuid.UUID) error {
	now := time.Now()
	return db.Model(&User{}).Where("id = ?", id).Update("last_login", now).Error
}

// SetPassword hashes and stores the password on the struct.
func (u *User) SetPassword(plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), 10)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// ComparePassword reports whether the plaintext matches the stored hash.
func (u *User) ComparePassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// NormalizeEmail lowercases and trims an email address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
