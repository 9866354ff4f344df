package routes

import (
	"net/http"

	"github.com/foldervault/foldervault/internal/app"
	"github.com/foldervault/foldervault/internal/handler"
	"github.com/foldervault/foldervault/internal/middleware"
	"github.com/foldervault/foldervault/internal/model"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	storage := handler.NewStorageHandler(app.FolderService)
	folder := handler.NewFolderHandler(app.FolderService)
	status := handler.NewStatusHandler(app.Cfg.AppName, app.Cfg.AppEnv)

	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /api/status", status.Status)

	rateLimiter := middleware.RateLimitAuth()
	mux.HandleFunc("POST /api/auth/login", rateLimiter(auth.Login))

	// Storage (authenticated)
	mux.HandleFunc("POST /api/v1/storage/share", middleware.RequireAuth(storage.Share))
	mux.HandleFunc("GET /api/v1/storage/download", middleware.RequireAuth(storage.Download))

	// Folder CRUD (authenticated; listing all folders is admin-only)
	requireAdmin := middleware.RequireRole(model.RoleAdmin)
	mux.HandleFunc("GET /api/v1/folders", requireAdmin(folder.List))
	mux.HandleFunc("GET /api/v1/folders/{id}", middleware.RequireAuth(folder.Get))
	mux.HandleFunc("POST /api/v1/folders", middleware.RequireAuth(folder.Create))
	mux.HandleFunc("PUT /api/v1/folders/{id}", middleware.RequireAuth(folder.Update))
	mux.HandleFunc("DELETE /api/v1/folders/{id}", middleware.RequireAuth(folder.Delete))

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.RequestLogging,
		middleware.CORS(app.Cfg.CORSAllowedOrigins),
		middleware.AuthMiddleware(app.AuthService),
	)
}
