package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/hat-forum/backend/internal/middleware"
	"github.com/hat-forum/backend/internal/models"
	"github.com/hat-forum/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PreferencesHandler handles per-user display preferences
type PreferencesHandler struct {
	preferencesRepository repositories.PreferencesRepository
}

// NewPreferencesHandler creates a new PreferencesHandler
func NewPreferencesHandler(prefsRepo repositories.PreferencesRepository) *PreferencesHandler {
	return &PreferencesHandler{preferencesRepository: prefsRepo}
}

// RegisterPreferencesRoutes registers preference routes
func (h *PreferencesHandler) RegisterPreferencesRoutes(protected *echo.Group) {
	protected.GET("/preferences", h.GetPreferences)
	protected.POST("/preferences", h.SavePreferences)
}

// GetPreferences returns the caller's stored preferences. A user with no
// stored row gets the defaults (light, false, false); nothing is written.
func (h *PreferencesHandler) GetPreferences(c echo.Context) error {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	prefs, err := h.preferencesRepository.GetByUserID(c.Request().Context(), sess.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusOK, models.DefaultPreferences(sess.Email))
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, prefs)
}

// SavePreferences writes the caller's preferences. Existence is checked
// first and the write branches between update and insert. This is not an
// atomic upsert: concurrent saves for the same user are last-write-wins.
func (h *PreferencesHandler) SavePreferences(c echo.Context) error {
	sess := middleware.SessionFromContext(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
	}

	var req models.SavePreferencesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	scheme := req.ColorScheme
	if scheme == "" {
		scheme = models.SchemeLight
	}

	existing, err := h.preferencesRepository.GetByUserID(c.Request().Context(), sess.Email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		prefs := &models.UserPreferences{
			UserID:            sess.Email,
			ColorScheme:       scheme,
			ShowContentOnFeed: req.ShowContentOnFeed,
			ShowImagesOnFeed:  req.ShowImagesOnFeed,
		}
		if err := h.preferencesRepository.Create(c.Request().Context(), prefs); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, prefs)
	}

	existing.ColorScheme = scheme
	existing.ShowContentOnFeed = req.ShowContentOnFeed
	existing.ShowImagesOnFeed = req.ShowImagesOnFeed
	if err := h.preferencesRepository.Update(c.Request().Context(), existing); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, existing)
}
