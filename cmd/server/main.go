package main // Entry point package

import (
	"context"
	"errors"
	"log" // Logging library
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4" // Echo web framework
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/ptitsvieux/backend/internal/apperr"
	"github.com/ptitsvieux/backend/internal/config" // Internal config loader
	"github.com/ptitsvieux/backend/internal/database"
	"github.com/ptitsvieux/backend/internal/handler"
	"github.com/ptitsvieux/backend/internal/middleware"
	"github.com/ptitsvieux/backend/internal/queue"
	"github.com/ptitsvieux/backend/internal/ratelimit"
	"github.com/ptitsvieux/backend/internal/repository"
	"github.com/ptitsvieux/backend/internal/router" // Internal router setup
	"github.com/ptitsvieux/backend/internal/service"
	"github.com/ptitsvieux/backend/internal/ws"
)

func main() {
	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is disabled or unreachable
	if rdb != nil {
		defer rdb.Close()
	}

	errs, errFile, err := apperr.OpenLog(cfg.ErrorLogPath)
	if err != nil {
		log.Fatalf("error log: %v", err)
	}
	defer errFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Domain events go to RabbitMQ when enabled; the consumer in this
	// process appends them to the activity log.
	var events queue.Publisher = queue.Nop{}
	if cfg.EventsEnabled {
		pub := queue.NewAMQPPublisher(cfg.RabbitURL)
		defer pub.Close()
		events = pub

		sink, f, err := queue.OpenActivityLog(cfg.ActivityLogPath)
		if err != nil {
			log.Fatalf("activity log: %v", err)
		}
		defer f.Close()
		go queue.StartActivityConsumer(ctx, cfg.RabbitURL, sink)
	}

	users := repository.NewUserRepo(db)
	annonces := repository.NewAnnonceRepo(db)
	messages := repository.NewMessageRepo(db)
	notes := repository.NewNoteRepo(db, cfg.DBDriver)
	stories := repository.NewStoryRepo(db)

	messageSvc := service.NewMessageService(messages, users, annonces, events)
	annonceSvc := service.NewAnnonceService(annonces, events)
	noteSvc := service.NewNoteService(notes, users, events)

	hub := ws.NewHub()
	go hub.Run(ctx)

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.HTTPErrorHandler = handler.HTTPErrorHandler(errs)
	if cfg.TrustProxy {
		e.IPExtractor = echo.ExtractIPFromXFFHeader()
	} else {
		e.IPExtractor = echo.ExtractIPDirect()
	}
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAccept},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit(cfg.BodyLimit))

	apiLimit := config.LoadRateLimitConfig()
	e.Use(middleware.Identify(cfg.JWTSecret))
	e.Use(middleware.RateLimit(apiLimit, ratelimit.New(rdb, apiLimit.Limit, apiLimit.Window)))
	loginCfg := config.LoginRateLimitConfig(cfg)
	loginLimit := middleware.RateLimit(loginCfg, ratelimit.New(rdb, loginCfg.Limit, loginCfg.Window))
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e, &handler.Readiness{DB: db, Redis: rdb})
	if cfg.Mounts(config.ServiceAuth) {
		router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, events), handler.NewUserHandler(users),
			users, cfg.JWTSecret, loginLimit, cache)
	}
	if cfg.Mounts(config.ServiceAnnonce) {
		router.RegisterAnnonces(e, handler.NewAnnonceHandler(annonces, users, annonceSvc), cfg.JWTSecret, cache)
	}
	if cfg.Mounts(config.ServiceStory) {
		router.RegisterStories(e, handler.NewStoryHandler(stories), cfg.JWTSecret, cache)
	}
	if cfg.Mounts(config.ServiceMessage) {
		realtime := ws.NewServer(hub, messageSvc, annonceSvc, cfg.JWTSecret, cfg.CORSOrigins, errs)
		realtime.Cache = cache
		router.RegisterMessages(e, handler.NewMessageHandler(messageSvc, hub), realtime, cfg.JWTSecret)
	}
	if cfg.Mounts(config.ServiceNote) {
		router.RegisterNotes(e, handler.NewNoteHandler(noteSvc), cfg.JWTSecret)
	}

	addr := ":" + cfg.Port // Address string with port
	log.Printf("listening on %s (env=%s, db=%s, services=%v)", addr, cfg.Env, cfg.DBDriver, cfg.Services)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) { // Start HTTP server
			log.Fatal(err) // Log and exit if server fails
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
