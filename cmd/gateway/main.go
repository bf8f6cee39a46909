package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	api "github.com/mind-engage/history-contest/internal/api/http"
	auth "github.com/mind-engage/history-contest/internal/auth/middleware"
	"github.com/mind-engage/history-contest/internal/cache"
	"github.com/mind-engage/history-contest/internal/config"
	"github.com/mind-engage/history-contest/internal/contest"
	"github.com/mind-engage/history-contest/internal/db"
	"github.com/mind-engage/history-contest/internal/exam"
	rbac "github.com/mind-engage/history-contest/internal/rbac"
	"github.com/mind-engage/history-contest/internal/report"
	"github.com/mind-engage/history-contest/internal/seed"
	"github.com/mind-engage/history-contest/internal/session"
	storage "github.com/mind-engage/history-contest/internal/storage"
	syncx "github.com/mind-engage/history-contest/internal/sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stderr, "contest ", log.LstdFlags|log.LUTC)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Durable store ---
	var (
		store exam.Store
		dbh   *sql.DB
	)
	if cfg.DBDriver == "memory" {
		store = exam.NewInMemoryStore()
	} else {
		octx, cancel := context.WithTimeout(ctx, 10*time.Second)
		var err error
		dbh, err = db.Open(octx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		cancel()
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		defer dbh.Close()
		store = exam.NewSQLStore(dbh, cfg.DBDriver)
	}

	// --- Cache ---
	var (
		backend cache.Backend
		pingers []func(context.Context) error
		hooks   []cache.Hook
	)
	switch cfg.CacheDriver {
	case "redis":
		rb := cache.NewRedisBackend(cache.RedisOptions{
			Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB, Prefix: cfg.RedisPrefix,
		})
		if err := rb.Ping(ctx); err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer rb.Close()
		backend = rb
		pingers = append(pingers, rb.Ping)
	default:
		mb := cache.NewMemoryBackend(nil)
		hooks = append(hooks, mb.SweepHook()) // expired sessions are never read again
		backend = mb
	}
	if dbh != nil {
		pingers = append(pingers, dbh.PingContext)
	}
	c := cache.New(backend, cache.WithStoreTimeout(cfg.StoreTimeout), cache.WithLogger(logger))

	// --- Exam core ---
	tables := contest.NewTables(c, store)
	reg := seed.NewRegistry(tables.Seeds, cfg.SeedSize)
	if _, err := contest.Boot(ctx, c, store, tables, reg, cfg.SeedScale, logger); err != nil {
		// a short question bank is fatal unless STRICT_BOOT=false, which keeps the
		// gateway up for result lookups while Initialize answers 400
		if cfg.StrictBoot || exam.KindOf(err) != exam.KindConfiguration {
			log.Fatalf("boot: %v", err)
		}
		logger.Printf("boot: %v (STRICT_BOOT=false: students cannot start until the question bank is fixed)", err)
	}
	svc := contest.NewService(tables, reg, contest.WithLogger(logger))

	// --- Background sync ---
	bs, err := storage.NewFSStore(cfg.ExportBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}
	syncer := cache.NewSyncer(c, cfg.SyncInterval, logger, nil)
	syncer.Hooks = append(hooks, report.Summary{Students: store, Blobs: bs}.Hook())
	var events *syncx.EventRepo
	if dbh != nil {
		host, _ := os.Hostname()
		events = syncx.NewEventRepo(dbh)
		syncer.Hooks = append(syncer.Hooks, syncx.CycleHook(events, host))
	}
	syncCtx, stopSync := context.WithCancel(context.Background())
	syncDone := make(chan struct{})
	go func() {
		defer close(syncDone)
		_ = syncer.Run(syncCtx)
	}()

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret, 8*time.Hour)
	dir := auth.Directory{
		AdminUser:     cfg.AdminUser,
		AdminPassHash: cfg.AdminPassHash,
		Students:      tables.Students.Get,
	}
	sessions := session.NewStore(backend, cfg.SessionIdle)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(ar chi.Router) {
		ar.Post("/Account/Login", auth.LoginHandler(authSvc, dir))

		// Protected API (JWT → role in context → RBAC)
		ar.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(authSvc))
			pr.Use(auth.AttachRole(dir, cfg.Mode == config.ModeOffline))
			pr.Use(sessions.Middleware(cfg.SecureCookies))
			api.MountContest(pr, svc, cfg.TestTime)

			pr.Route("/exports", func(er chi.Router) {
				er.Use(rbac.Require("export:view"))
				api.MountExports(er, bs)
			})

			pr.Route("/Admin", func(adm chi.Router) {
				adm.Use(rbac.Require("result:view-all"))
				adm.Get("/Students", api.AdminStudentsHandler(store))
				if events != nil {
					adm.Get("/Events", api.AdminEventsHandler(events))
				}
			})
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		for _, ping := range pingers {
			if err := ping(r.Context()); err != nil {
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Printf("listening on %s (mode=%s, db=%s, cache=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver, cfg.CacheDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Printf("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		logger.Printf("http shutdown: %v", err)
	}

	// let a running cycle finish, then push whatever is still dirty
	stopSync()
	<-syncDone
	if rep := syncer.SyncCycle(sctx); rep.Err != nil {
		logger.Printf("final sync left %d entries unsaved: %v", rep.Pending, rep.Err)
	}
}
