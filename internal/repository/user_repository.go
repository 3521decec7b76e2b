package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/emrealmaoglu/trailium/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidInput = errors.New("invalid input")
)

// userOrderings maps the accepted ?ordering= values to ORDER BY clauses.
var userOrderings = map[string]string{
	"id":        "id ASC",
	"-id":       "id DESC",
	"username":  "username ASC",
	"-username": "username DESC",
}

// UserRepository handles all database operations for users
type UserRepository interface {
	GetUser(ctx context.Context, userID uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	// ListQuery returns the filtered, ordered user query used by the paginated listing
	ListQuery(ctx context.Context, search, ordering string) *gorm.DB

	UpdateFields(ctx context.Context, user *models.User, fields map[string]interface{}) error
	Deactivate(ctx context.Context, userID uint) error
	SetRoles(ctx context.Context, username string, staff, superuser bool) (*models.User, error)
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetUser gets a user by ID
func (r *userRepository) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, userID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername gets a user by username (case-insensitive)
func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", username).
		First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListQuery matches search against username, email and full name
// case-insensitively. Unknown orderings fall back to id.
func (r *userRepository) ListQuery(ctx context.Context, search, ordering string) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.User{})

	if term := strings.TrimSpace(search); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		query = query.Where(
			"LOWER(username) LIKE ? OR LOWER(email) LIKE ? OR LOWER(full_name) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	order, ok := userOrderings[ordering]
	if !ok {
		order = userOrderings["id"]
	}
	return query.Order(order)
}

// UpdateFields writes only the given columns
func (r *userRepository) UpdateFields(ctx context.Context, user *models.User, fields map[string]interface{}) error {
	if user == nil || user.ID == 0 {
		return ErrInvalidInput
	}
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(user).Updates(fields).Error
}

// Deactivate soft deletes a user by clearing is_active
func (r *userRepository) Deactivate(ctx context.Context, userID uint) error {
	result := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetRoles grants or revokes the staff and superuser flags
func (r *userRepository) SetRoles(ctx context.Context, username string, staff, superuser bool) (*models.User, error) {
	user, err := r.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := r.UpdateFields(ctx, user, map[string]interface{}{
		"is_staff":     staff,
		"is_superuser": superuser,
	}); err != nil {
		return nil, err
	}
	user.IsStaff = staff
	user.IsSuperuser = superuser
	return user, nil
}
