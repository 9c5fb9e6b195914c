package routes

import (
	"net/http"

	"github.com/thinh1311ss/IE105/internal/config"
	"github.com/thinh1311ss/IE105/internal/handlers"
	"github.com/thinh1311ss/IE105/internal/logger"
	"github.com/thinh1311ss/IE105/internal/middleware"
	"github.com/thinh1311ss/IE105/internal/services"
	"github.com/thinh1311ss/IE105/internal/services/storage"
)

// SetupRoutes registers the API endpoints and wraps the mux with the CORS
// middleware.
func SetupRoutes(pipeline *services.Pipeline, store *storage.UploadStore, cfg *config.Config, logger *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/predict", handlers.PredictHandler(pipeline, logger))
	mux.HandleFunc("/api/health", handlers.HealthHandler())
	mux.HandleFunc("/api/uploads", handlers.UploadsHandler(store, logger))

	return middleware.CORSMiddleware(cfg.AllowedOrigin, mux)
}
