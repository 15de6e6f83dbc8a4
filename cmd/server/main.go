package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"quizforge/internal/attempt"
	"quizforge/internal/auth"
	"quizforge/internal/config"
	"quizforge/internal/generation"
	"quizforge/internal/models"
	"quizforge/internal/quiz"
	"quizforge/pkg/cache"
	"quizforge/pkg/database"
	"quizforge/pkg/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		sugar.Fatalw("failed to connect to database", "error", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Quiz{},
		&models.Question{},
		&models.Option{},
		&models.Attempt{},
	); err != nil {
		sugar.Fatalw("failed to migrate database", "error", err)
	}

	redisCache := cache.NewRedisCache(cfg.Redis.Addr)

	authRepo := auth.NewRepository(db)
	quizRepo := quiz.NewRepository(db)
	attemptRepo := attempt.NewRepository(db)

	authService := auth.NewService(authRepo, cfg.JWTSecret)
	quizService := quiz.NewService(quizRepo, redisCache, sugar)
	generationService := generation.NewService(generation.NewGeminiClient(cfg.Gemini), quizService, sugar)
	attemptService := attempt.NewService(attemptRepo, quizService, redisCache, sugar)

	authHandler := auth.NewHandler(authService, sugar)
	quizHandler := quiz.NewHandler(quizService, generationService, sugar)
	attemptHandler := attempt.NewHandler(attemptService, sugar)
	wsHub := websocket.NewHub(quizService, attemptService, cfg.JWTSecret, sugar)

	router := mux.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	handler := corsMiddleware.Handler(router)

	// Public routes.
	router.HandleFunc("/api/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/quizzes/{quizId}", quizHandler.GetQuiz).Methods("GET", "OPTIONS")

	// Authenticated routes.
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(auth.JWTMiddleware(cfg.JWTSecret))

	apiRouter.HandleFunc("/profile", authHandler.GetProfile).Methods("GET")
	apiRouter.HandleFunc("/profile", authHandler.UpdateProfile).Methods("PUT", "OPTIONS")
	apiRouter.HandleFunc("/quiz/generate", quizHandler.GenerateQuiz).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/quizzes", quizHandler.GetMyQuizzes).Methods("GET")
	apiRouter.HandleFunc("/explain", quizHandler.Explain).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/attempts", attemptHandler.SubmitAttempt).Methods("POST", "OPTIONS")
	apiRouter.HandleFunc("/attempts", attemptHandler.ListAttempts).Methods("GET")
	apiRouter.HandleFunc("/attempts/{attemptId}", attemptHandler.GetAttempt).Methods("GET")

	// WebSocket endpoint. The token rides in a query parameter, so the JWT
	// middleware does not apply here.
	router.HandleFunc("/ws/quiz/{quizId}", wsHub.HandleSession)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		sugar.Infow("server starting", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			sugar.Fatalw("failed to start server", "error", err)
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		sugar.Errorw("server forced to shutdown", "error", err)
	}
	sugar.Info("server shutdown gracefully")
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
