package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/team-todo-api/internal/config"
	"github.com/yukikurage/team-todo-api/internal/constants"
	"github.com/yukikurage/team-todo-api/internal/database"
	apierrors "github.com/yukikurage/team-todo-api/internal/errors"
	"github.com/yukikurage/team-todo-api/internal/handlers"
	"github.com/yukikurage/team-todo-api/internal/logger"
	"github.com/yukikurage/team-todo-api/internal/middleware"
	"github.com/yukikurage/team-todo-api/internal/repository"
	"github.com/yukikurage/team-todo-api/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Service: "team-todo-api", Env: cfg.AppEnv, Level: cfg.LogLevel})
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", "error", err)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.GinMode)
	if err := handlers.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	db, err := database.Connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn("failed to close database", "error", err)
		}
	}()

	if err := database.MigrateDatabase(db); err != nil {
		return err
	}

	var redisClient *redis.Client
	if addr := cfg.RedisAddr(); addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: addr, Password: cfg.RedisPassword})
		defer redisClient.Close()
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		return err
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	todoRepo := repository.NewTodoRepository(db)

	// Services
	var captcha services.CaptchaVerifier = services.NoopCaptchaVerifier{}
	if cfg.RecaptchaSecret != "" {
		captcha = services.NewRecaptchaVerifier(cfg.RecaptchaSecret, services.RecaptchaVerifyURL, &http.Client{Timeout: 5 * time.Second})
	}

	var throttle services.LoginThrottle = services.NoopLoginThrottle{}
	if redisClient != nil {
		throttle = services.NewRedisLoginThrottle(redisClient, cfg.LoginMaxAttempts, cfg.LoginLockout)
	} else {
		log.Warn("redis not configured, login throttling disabled")
	}

	var google *services.GoogleOAuth
	if cfg.GoogleEnabled() {
		google = services.NewGoogleOAuth(services.GoogleOAuthConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			CallbackURL:  cfg.GoogleCallbackURL,
		})
	}

	tokenService := services.NewTokenService(cfg.JWTSecret, cfg.JWTTTL, services.SystemClock)
	authService := services.NewAuthService(userRepo, captcha, throttle)
	teamService := services.NewTeamService(teamRepo, userRepo, services.SystemClock)
	todoService := services.NewTodoService(todoRepo, teamRepo, services.SystemClock)

	r := gin.New()
	r.Use(middleware.RequestLogger(log), gin.Recovery())
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	r.GET("/health", func(c *gin.Context) {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := database.Ping(pingCtx, db); err != nil {
			log.Warn("health check failed", "error", err)
			apierrors.ServiceUnavailable(c, "Database unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Team Todo API is running",
		})
	})

	handlers.RegisterRoutes(r.Group("/api"), handlers.Routes{
		Auth:   handlers.NewAuthHandler(authService, tokenService, google, cfg.FrontendURL, log),
		Teams:  handlers.NewTeamHandler(teamService, log),
		Todos:  handlers.NewTodoHandler(todoService, log),
		Tokens: tokenService,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           corsHandler(cfg)(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "mode", cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newSessionStore keeps sessions in redis when it is configured and in signed
// cookies otherwise.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if addr := cfg.RedisAddr(); addr != "" {
		rs, err := redisStore.NewStore(
			10,    // Redis pool size
			"tcp", // network type
			addr,
			"", // username (empty for default user)
			cfg.RedisPassword,
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session store: %w", err)
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

func corsHandler(cfg *config.Config) func(http.Handler) http.Handler {
	origins := cfg.AllowedOrigins
	if !cfg.IsProduction() && len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", constants.HeaderRequestID},
		ExposedHeaders:   []string{constants.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
