package router

import (
	"fmt"
	"log"
	"net/http"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/hat-forum/backend/internal/handlers"
	"github.com/hat-forum/backend/internal/middleware"
	"github.com/hat-forum/backend/internal/models"
	"github.com/hat-forum/backend/internal/repositories"
	"github.com/hat-forum/backend/pkg/config"
	"github.com/hat-forum/backend/pkg/oauth"
	"github.com/hat-forum/backend/pkg/storage"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.HTTPErrorHandler = HTTPErrorHandler
	log.Println("Global middleware configured.")
}

// HTTPErrorHandler shapes every failure as {"error": ..., "details": ...}.
// Backend error messages pass through verbatim.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := echo.Map{"error": "Internal server error"}

	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		body = echo.Map{"error": fmt.Sprintf("%v", he.Message)}
		if he.Internal != nil {
			body["details"] = he.Internal.Error()
		}
	} else {
		body["details"] = err.Error()
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		log.Printf("Error handler failed to write response: %v", err)
	}
}

// SetupRoutes configures all application routes and injects dependencies.
// firebaseAuthClient and googleProvider may be nil when the corresponding
// session provider is not configured.
func SetupRoutes(
	e *echo.Echo,
	pgdb *gorm.DB,
	mgClient *mongo.Client,
	firebaseAuthClient *fbauth.Client,
	googleProvider *oauth.GoogleProvider,
	blobStore storage.BlobStore,
	cfg *config.Config,
) {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Comment{},
		&models.UserPreferences{},
	)
	if err != nil {
		log.Fatalf("Failed to auto migrate models: %v", err)
	}
	log.Println("PostgreSQL auto-migrations completed for all models.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mgClient.Database(cfg.MongoDatabase))
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	prefsRepo := repositories.NewPostgresPreferencesRepository(pgdb)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, firebaseAuthClient, googleProvider, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Println("Auth routes configured.")

	// --- Public reads and session-protected mutations ---
	public := e.Group("/api/v1")
	protected := e.Group("/api/v1")
	if cfg.AuthMode == "firebase" && firebaseAuthClient != nil {
		protected.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient))
		log.Println("Firebase session middleware applied to mutating routes.")
	} else {
		protected.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
		log.Println("JWT session middleware applied to mutating routes.")
	}

	// Post routes (feed, detail, create/update/delete, upvote)
	postHandler := handlers.NewPostHandler(postRepo, commentRepo)
	postHandler.RegisterPostRoutes(public, protected)
	log.Println("Post routes configured.")

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo)
	commentHandler.RegisterCommentRoutes(public, protected)
	log.Println("Comment routes configured.")

	// Preference routes
	preferencesHandler := handlers.NewPreferencesHandler(prefsRepo)
	preferencesHandler.RegisterPreferencesRoutes(protected)
	log.Println("Preference routes configured.")

	// Upload route
	uploadHandler := handlers.NewUploadHandler(blobStore)
	uploadHandler.RegisterUploadRoutes(protected)
	log.Println("Upload route configured.")

	log.Println("All routes configured.")
}
