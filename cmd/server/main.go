package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/AnshRaj112/soullog/internal/auth"
	"github.com/AnshRaj112/soullog/internal/config"
	"github.com/AnshRaj112/soullog/internal/database"
	"github.com/AnshRaj112/soullog/internal/handlers"
	"github.com/AnshRaj112/soullog/internal/logger"
	"github.com/AnshRaj112/soullog/internal/middleware"
	"github.com/AnshRaj112/soullog/internal/routes"
	"github.com/AnshRaj112/soullog/internal/services"
	"github.com/AnshRaj112/soullog/internal/store"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logg, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to create logger: ", err)
	}
	defer logg.Sync()

	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Journal tree
	storeOpts := store.Options{Driver: cfg.StoreDriver, DiskPath: cfg.StoreDiskPath}
	if cfg.StoreDriver == store.DriverMongo {
		logg.Infow("connecting to MongoDB")
		client, db, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			logg.Fatalw("failed to connect to MongoDB", "error", err)
		}
		defer database.DisconnectMongo(client)
		storeOpts.Mongo = db
	}
	tree, err := store.Open(storeOpts)
	if err != nil {
		logg.Fatalw("failed to open journal store", "error", err)
	}
	logg.Infow("journal store ready", "driver", cfg.StoreDriver)

	// Identities, sessions and identity-change notifications
	var (
		identities auth.IdentityStore
		sessions   auth.SessionStore
		notifier   auth.Notifier
		limiter    func(http.Handler) http.Handler
	)
	switch cfg.AuthDriver {
	case config.AuthRemote:
		logg.Infow("connecting to PostgreSQL")
		pg, err := database.ConnectPostgres(cfg.PostgresURI)
		if err != nil {
			logg.Fatalw("failed to connect to PostgreSQL", "error", err)
		}
		defer pg.Close()

		logg.Infow("connecting to Redis")
		rdb, err := database.ConnectRedis(ctx, cfg.RedisURI)
		if err != nil {
			logg.Fatalw("failed to connect to Redis", "error", err)
		}
		defer rdb.Close()

		identities = auth.NewPostgresIdentities(pg)
		sessions = auth.NewRedisSessions(rdb)
		rn := auth.NewRedisNotifier(rdb, logg)
		rn.Start(ctx)
		notifier = rn
		limiter = middleware.NewRedisRateLimit(rdb, logg).Handler
	default:
		logg.Warnw("identities and sessions are kept in memory and lost on restart")
		identities = auth.NewMemoryIdentities()
		sessions = auth.NewMemorySessions()
		notifier = auth.NewHub()
	}

	authSvc := auth.NewService(identities, sessions, notifier, logg, cfg.SessionTTL)
	journal := services.NewJournal(authSvc, tree, logg, func() time.Time {
		return time.Now().In(loc)
	})

	h, err := handlers.New(handlers.Options{
		Journal:        journal,
		Auth:           authSvc,
		Log:            logg,
		Location:       loc,
		CookieSecure:   cfg.CookieSecure || cfg.IsProduction(),
		AllowedOrigins: cfg.AllowedOrigins,
	})
	if err != nil {
		logg.Fatalw("failed to load templates", "error", err)
	}

	// Setup router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logg))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → Global → Login (in-process)
	// Shared Redis window limit whenever Redis is configured
	if cfg.IsProduction() {
		l := middleware.NewLimiter()
		l.StartCleanup(ctx.Done())
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost, l) {
			r.Use(mw)
		}
		logg.Infow("production security enabled", "allowed_host", cfg.AllowedHost)
	}
	if limiter != nil {
		r.Use(limiter)
	}

	// Health check and assets (no session lookup)
	r.Get("/health", h.Health)
	r.Handle("/static/*", http.StripPrefix("/static/", h.Static()))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Device(cfg.CookieSecure || cfg.IsProduction()))
		r.Use(middleware.Session(authSvc, func(err error) {
			logg.Warnw("failed to resolve session", "error", err)
		}))
		routes.SetupRoutes(r, h)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logg.Errorw("shutdown failed", "error", err)
		}
	}()

	logg.Infow("SoulLog running", "port", cfg.Port, "env", cfg.Environment)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Fatalw("failed to start server", "error", err)
	}
	logg.Infow("server stopped")
}
