package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/IDINaXI/Nutrio/internal/auth"
	"github.com/IDINaXI/Nutrio/internal/blob"
	"github.com/IDINaXI/Nutrio/internal/config"
	"github.com/IDINaXI/Nutrio/internal/logger"
	"github.com/IDINaXI/Nutrio/internal/mealplans"
	"github.com/IDINaXI/Nutrio/internal/measurements"
	"github.com/IDINaXI/Nutrio/internal/nutrition"
	"github.com/IDINaXI/Nutrio/internal/reminders"
	"github.com/IDINaXI/Nutrio/internal/reports"
	"github.com/IDINaXI/Nutrio/internal/storage"
	"github.com/IDINaXI/Nutrio/internal/storage/memory"
	"github.com/IDINaXI/Nutrio/internal/storage/postgres"
	"github.com/IDINaXI/Nutrio/internal/users"
	"github.com/IDINaXI/Nutrio/internal/weights"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the HTTP server.
type Server struct {
	config     *config.Config
	log        *logger.Logger
	mux        *http.ServeMux
	storage    storage.Storage
	generator  mealplans.PlanGenerator
	blobStore  blob.Store
	authMW     *auth.Middleware
	httpServer *http.Server
}

// New wires storage, the report blob store and routes.
// generator is the meal planner built in main together with the AI gateway.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, generator mealplans.PlanGenerator) (*Server, error) {
	s := &Server{
		config:    cfg,
		log:       logger.OrNop(log).Named("server"),
		mux:       http.NewServeMux(),
		generator: generator,
	}

	s.initStorage(ctx)

	blobStore, mode, err := blob.NewBlobStore(ctx, cfg.Blob, log)
	if err != nil {
		s.storage.Close()
		return nil, err
	}
	s.blobStore = blobStore
	s.log.Infow("reports storage", "mode", mode)

	s.routes()
	return s, nil
}

// initStorage: Postgres, если задан и доступен DATABASE_URL, иначе in-memory.
func (s *Server) initStorage(ctx context.Context) {
	if s.config.DatabaseURL == "" {
		s.log.Infow("using in-memory storage", "reason", "database url is not configured")
		s.storage = memory.New()
		return
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pgStorage, err := postgres.New(connectCtx, s.config.DatabaseURL)
	if err != nil {
		s.log.Warnw("postgres unavailable, fallback to in-memory storage", "error", err)
		s.storage = memory.New()
		return
	}

	s.log.Infow("postgres connected")
	s.storage = pgStorage
}

// routes регистрирует маршруты
func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	// Auth
	authService := auth.NewService(s.config, s.storage)
	authHandler := auth.NewHandlers(authService, s.log)
	s.authMW = auth.NewMiddleware(s.config, authService)
	s.mux.HandleFunc("POST /v1/auth/register", authHandler.HandleRegister)
	s.mux.HandleFunc("POST /v1/auth/login", authHandler.HandleLogin)

	// Users
	usersService := users.NewService(s.storage)
	usersHandler := users.NewHandler(usersService)
	s.mux.HandleFunc("GET /v1/users/me", usersHandler.HandleGetMe)
	s.mux.HandleFunc("PUT /v1/users/me", usersHandler.HandleUpdateMe)

	// Nutrition targets
	nutritionHandler := nutrition.NewHandler(nutrition.NewService(usersService))
	s.mux.HandleFunc("GET /v1/nutrition/targets", nutritionHandler.HandleGetTargets)

	// Meal plans
	mealPlansService := mealplans.NewService(s.storage, usersService, s.generator, s.log)
	mealPlansHandler := mealplans.NewHandler(mealPlansService)
	s.mux.HandleFunc("POST /v1/meal-plans/generate", mealPlansHandler.HandleGenerate)
	s.mux.HandleFunc("POST /v1/meal-plans/generate/custom", mealPlansHandler.HandleGenerateCustom)
	s.mux.HandleFunc("GET /v1/meal-plans", mealPlansHandler.HandleList)
	s.mux.HandleFunc("GET /v1/meal-plans/current", mealPlansHandler.HandleGetCurrent)
	s.mux.HandleFunc("PUT /v1/meal-plans/current", mealPlansHandler.HandleReplaceCurrent)
	s.mux.HandleFunc("POST /v1/meal-plans/day/generate", mealPlansHandler.HandleGenerateDay)
	s.mux.HandleFunc("GET /v1/meal-plans/day-history", mealPlansHandler.HandleDayHistory)
	s.mux.HandleFunc("POST /v1/meal-plans/regenerate-day", mealPlansHandler.HandleRegenerateDay)

	// Weight log
	weightsHandler := weights.NewHandler(weights.NewService(s.storage, s.log))
	s.mux.HandleFunc("POST /v1/weights", weightsHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/weights", weightsHandler.HandleList)
	s.mux.HandleFunc("GET /v1/weights/latest", weightsHandler.HandleLatest)
	s.mux.HandleFunc("DELETE /v1/weights/{id}", weightsHandler.HandleDelete)

	// Body measurements
	measurementsHandler := measurements.NewHandler(measurements.NewService(s.storage))
	s.mux.HandleFunc("POST /v1/measurements", measurementsHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/measurements", measurementsHandler.HandleList)
	s.mux.HandleFunc("DELETE /v1/measurements/{id}", measurementsHandler.HandleDelete)

	// Pill reminders
	remindersHandler := reminders.NewHandler(reminders.NewService(s.storage))
	s.mux.HandleFunc("POST /v1/reminders", remindersHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/reminders", remindersHandler.HandleList)
	s.mux.HandleFunc("GET /v1/reminders/today", remindersHandler.HandleToday)
	s.mux.HandleFunc("PUT /v1/reminders/{id}", remindersHandler.HandleUpdate)
	s.mux.HandleFunc("DELETE /v1/reminders/{id}", remindersHandler.HandleDelete)

	// Reports
	reportsService := reports.NewService(s.storage, s.storage, s.blobStore, reports.Options{
		MaxRangeDays:    s.config.ReportsMaxRangeDays,
		FontPath:        s.config.ReportsFontPath,
		PresignTTL:      time.Duration(s.config.Blob.S3.PresignTTLSeconds) * time.Second,
		PublicBaseURL:   s.config.Blob.S3.PublicBaseURL,
		PreferPublicURL: s.config.Blob.S3.PreferPublicURL,
	}, s.log)
	reportsHandler := reports.NewHandlers(reportsService)
	s.mux.HandleFunc("POST /v1/reports", reportsHandler.HandleCreate)
	s.mux.HandleFunc("GET /v1/reports", reportsHandler.HandleList)
	s.mux.HandleFunc("GET /v1/reports/{id}", reportsHandler.HandleGet)
	s.mux.HandleFunc("GET /v1/reports/{id}/download", reportsHandler.HandleDownload)
	s.mux.HandleFunc("DELETE /v1/reports/{id}", reportsHandler.HandleDelete)

	// SPA
	if s.config.StaticDir != "" {
		s.mux.Handle("GET /", spaHandler{dir: s.config.StaticDir})
		s.log.Infow("serving static files", "dir", s.config.StaticDir)
	}
}

// Handler builds the middleware chain, outermost first:
// request log → metrics → CORS → rate limit → auth → router.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	handler = s.authMW.RequireAuth(handler)
	handler = RateLimitMiddleware(s.config, handler)
	handler = CORSMiddleware(s.config, handler)
	handler = MetricsMiddleware(handler)
	handler = RequestLogMiddleware(s.log, handler)
	return handler
}

// handleHealthz возвращает статус сервера
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Start runs the HTTP server and blocks until Shutdown.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// генерация рациона ждёт модель до AI_TIMEOUT_SECONDS на попытку
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	s.log.Infow("server started", "addr", "http://localhost"+addr, "auth_required", s.config.AuthRequired, "ai_mode", s.config.AIMode)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown waits for in-flight requests within ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Close closes storage and releases resources.
func (s *Server) Close() error {
	if s.storage != nil {
		return s.storage.Close()
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
