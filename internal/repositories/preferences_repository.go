package repositories

import (
	"context"

	"github.com/hat-forum/backend/internal/models"
	"gorm.io/gorm"
)

// PreferencesRepository defines the interface for user preference storage.
// The save path is deliberately a check-then-branch pair rather than an
// atomic upsert: callers fetch first and then either create or update.
// Concurrent saves for the same user are last-write-wins.
type PreferencesRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.UserPreferences, error)
	Create(ctx context.Context, prefs *models.UserPreferences) error
	Update(ctx context.Context, prefs *models.UserPreferences) error
}

// PostgresPreferencesRepository implements PreferencesRepository for PostgreSQL
type PostgresPreferencesRepository struct {
	db *gorm.DB
}

// NewPostgresPreferencesRepository creates a new PostgresPreferencesRepository
func NewPostgresPreferencesRepository(db *gorm.DB) *PostgresPreferencesRepository {
	return &PostgresPreferencesRepository{db: db}
}

// GetByUserID retrieves the preferences row for a user. Returns
// gorm.ErrRecordNotFound when the user has no stored preferences.
func (r *PostgresPreferencesRepository) GetByUserID(ctx context.Context, userID string) (*models.UserPreferences, error) {
	var prefs models.UserPreferences
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&prefs).Error; err != nil {
		return nil, err
	}
	return &prefs, nil
}

// Create inserts a new preferences row
func (r *PostgresPreferencesRepository) Create(ctx context.Context, prefs *models.UserPreferences) error {
	return r.db.WithContext(ctx).Create(prefs).Error
}

// Update saves an existing preferences row in place
func (r *PostgresPreferencesRepository) Update(ctx context.Context, prefs *models.UserPreferences) error {
	return r.db.WithContext(ctx).Save(prefs).Error
}
