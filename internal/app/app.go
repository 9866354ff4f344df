package app

import (
	"fmt"

	"github.com/foldervault/foldervault/internal/config"
	"github.com/foldervault/foldervault/internal/db"
	"github.com/foldervault/foldervault/internal/repository"
	"github.com/foldervault/foldervault/internal/service"
	"github.com/foldervault/foldervault/internal/storage"
	"github.com/jmoiron/sqlx"
)

type App struct {
	Cfg           *config.Config
	DB            *sqlx.DB
	AuthService   *service.AuthService
	FolderService *service.FolderService
	EmailService  *service.EmailService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	userRepository := repository.NewUserRepository(database)
	folderRepository := repository.NewFolderRepository(database)
	fileRepository := repository.NewFileRepository(database)

	// Blob storage
	fileStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	emailService := service.NewEmailService(cfg.ResendAPIKey, cfg.EmailFrom, cfg.AppName, cfg.IsDevelopment())
	authService := service.NewAuthService(userRepository, cfg.JWTSecret, cfg.JWTExpiry)
	folderService := service.NewFolderService(folderRepository, fileRepository, userRepository, fileStorage, emailService)

	return &App{
		Cfg:           cfg,
		DB:            database,
		AuthService:   authService,
		FolderService: folderService,
		EmailService:  emailService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
