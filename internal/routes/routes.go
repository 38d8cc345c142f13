package routes

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/redis/go-redis/v9"

	"github.com/evn/timesheet_backend/config"
	"github.com/evn/timesheet_backend/internal/handlers"
	adminHandlers "github.com/evn/timesheet_backend/internal/handlers/admin"
	authHandlers "github.com/evn/timesheet_backend/internal/handlers/auth"
	importHandlers "github.com/evn/timesheet_backend/internal/handlers/imports"
	payrollHandlers "github.com/evn/timesheet_backend/internal/handlers/payroll"
	reportHandlers "github.com/evn/timesheet_backend/internal/handlers/reports"
	"github.com/evn/timesheet_backend/internal/middleware"
	"github.com/evn/timesheet_backend/internal/pkg/response"
	"github.com/evn/timesheet_backend/internal/services"
	authService "github.com/evn/timesheet_backend/internal/services/auth"
)

// Setup инициализирует и возвращает настроенный маршрутизатор.
func Setup(cfg *config.Config, database *sql.DB, redisClient *redis.Client) *chi.Mux {
	jwtAuth := jwtauth.New("HS256", []byte(cfg.JwtSecret), nil)
	jwtService := authService.NewJWTService(cfg.JwtSecret, redisClient)

	reportCache := services.NewReportCache(redisClient)
	importHub := services.NewImportHub()

	authHandler := authHandlers.NewAuthHandler(database, jwtService)
	importHandler := importHandlers.NewImportHandlers(database, reportCache, importHub, cfg.GoogleCredentialsFile)
	reportHandler := reportHandlers.NewReportHandlers(database, reportCache)

	router := chi.NewRouter()
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(jwtauth.Verifier(jwtAuth))
	router.Use(middleware.AddUserIDToContext())

	// Публичные маршруты
	router.Post("/api/auth/register", authHandler.RegisterHandler)
	router.Post("/api/auth/login", authHandler.LoginHandler)
	router.Post("/api/auth/refresh", authHandler.RefreshTokenHandler)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Защищённые маршруты
	router.Group(func(r chi.Router) {
		r.Use(jwtauth.Authenticator(jwtAuth))

		r.Post("/api/logout", authHandler.LogoutHandler)

		r.Get("/api/reports", reportHandler.GetReportsHandler)
		r.Get("/api/reports/export", reportHandler.ExportReportsHandler)
		r.Get("/api/reports/batch/{batchID}", reportHandler.GetBatchReportHandler)
		r.Get("/api/batches", importHandler.ListBatchesHandler)

		r.Post("/api/template/fill", payrollHandlers.FillTemplateHandler())

		r.Get("/ws/imports", handlers.ImportProgressHandler(importHub))

		// Только для админов
		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminOnly())

			r.Post("/api/import/csv", importHandler.ImportCSVHandler)
			r.Post("/api/import/excel", importHandler.ImportExcelHandler)
			r.Post("/api/import/sheet", importHandler.ImportSheetHandler)
			r.Delete("/api/batches/{batchID}", importHandler.DeleteBatchHandler)

			r.Get("/api/admin/definitions", adminHandlers.ListDefinitionsHandler(database))
			r.Post("/api/admin/definitions", adminHandlers.SaveDefinitionHandler(database))
			r.Delete("/api/admin/definitions/{name}", adminHandlers.DeleteDefinitionHandler(database))

			r.Get("/api/admin/users", adminHandlers.ListUsersHandler(database))
			r.Patch("/api/admin/users/{userID}/role", adminHandlers.UpdateUserRoleHandler(database))
			r.Patch("/api/admin/users/{userID}/status", adminHandlers.UpdateUserStatusHandler(database))
		})
	})

	return router
}
