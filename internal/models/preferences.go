package models

// Color scheme values accepted for user preferences.
const (
	SchemeLight  = "light"
	SchemeDark   = "dark"
	SchemeSystem = "system"
)

// UserPreferences stores per-user display preferences. One row per user;
// the row is created lazily on first write and never deleted.
type UserPreferences struct {
	ID                uint   `json:"id,omitempty" gorm:"primaryKey"`
	UserID            string `json:"user_id" gorm:"uniqueIndex"`
	ColorScheme       string `json:"color_scheme"`
	ShowContentOnFeed bool   `json:"show_content_on_feed"`
	ShowImagesOnFeed  bool   `json:"show_images_on_feed"`
}

// DefaultPreferences synthesizes the record returned for a user with no
// stored preferences. Nothing is written to the store.
func DefaultPreferences(userID string) *UserPreferences {
	return &UserPreferences{
		UserID:            userID,
		ColorScheme:       SchemeLight,
		ShowContentOnFeed: false,
		ShowImagesOnFeed:  false,
	}
}

// SavePreferencesRequest defines the request body for saving preferences.
// An empty color scheme falls back to "light".
type SavePreferencesRequest struct {
	ColorScheme       string `json:"color_scheme" validate:"omitempty,oneof=light dark system"`
	ShowContentOnFeed bool   `json:"show_content_on_feed"`
	ShowImagesOnFeed  bool   `json:"show_images_on_feed"`
}
