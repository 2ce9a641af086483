package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"careportal-platform/internal/audit"
	"careportal-platform/internal/auth"
	"careportal-platform/internal/config"
	"careportal-platform/internal/guard"
	"careportal-platform/internal/httpapi"
	"careportal-platform/internal/notify"
	"careportal-platform/internal/obs"
	"careportal-platform/internal/ownership"
	"careportal-platform/internal/session"
	"careportal-platform/pkg/logger"
	"careportal-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)
	obs.Init()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Verifier selection happens exactly once. Config validation already
	// refused AUTH_MOCK in production, so the mock branch is dev-only.
	var verifier auth.TokenVerifier
	if cfg.Auth.MockAuth {
		log.Warn("mock token verifier enabled; all trust decisions are bypassed")
		verifier = auth.NewMockVerifier(auth.DemoIdentities(), time.Hour)
	} else {
		verifier, err = auth.NewJWKSVerifier(rootCtx, cfg.Auth)
		if err != nil {
			log.Error("jwks verifier init failed", "err", err)
			os.Exit(1)
		}
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	recorder := audit.NewRecorder(audit.NewPostgresRepo(db), log, obs.AuditSinkFault)
	owners := ownership.NewSQLStore(db)

	g := guard.New(verifier, session.NewPolicy(cfg.Session), owners, recorder)

	h := httpapi.Handlers{
		Guard:     g,
		Recorder:  recorder,
		Broadcast: notify.NewRedisBroadcaster(rdb),
		Session:   cfg.Session,
		Redis:     rdb,
		Log:       log,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, g, h)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
}
