package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	shadowid "github.com/shadowid/shadowid"
	"github.com/shadowid/shadowid/internal/httpapi"
	"github.com/shadowid/shadowid/internal/identity"
	"github.com/shadowid/shadowid/internal/obs"
	promexport "github.com/shadowid/shadowid/metrics/export/prometheus"
)

var version = "0.1.0"

func main() {
	cfg, err := loadConfig()
	if err != nil {
		obs.NewLogger(os.Stderr, "text", "error").Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	logger := obs.NewLogger(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	obs.Init()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Error("redis unreachable", "addr", cfg.RedisAddr, "err", err)
		cancelPing()
		os.Exit(1)
	}
	cancelPing()

	var (
		db       *sql.DB
		provider shadowid.IdentityProvider
	)
	if cfg.PGDSN != "" {
		db, err = sql.Open("pgx", cfg.PGDSN)
		if err != nil {
			logger.Error("open postgres", "err", err)
			os.Exit(1)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)

		pg := identity.NewPostgres(db)
		schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
		if err := pg.EnsureSchema(schemaCtx); err != nil {
			logger.Error("ensure schema", "err", err)
			cancelSchema()
			os.Exit(1)
		}
		cancelSchema()
		provider = pg
	} else {
		logger.Warn("SHADOWID_PG_DSN not set, using in-memory identities")
		provider = identity.NewMemory()
	}

	engine, err := shadowid.New().
		WithConfig(cfg.Engine).
		WithRedis(rdb).
		WithIdentityProvider(provider).
		WithAuditSink(shadowid.NewJSONWriterSink(os.Stdout)).
		WithLogger(logger).
		Build()
	if err != nil {
		logger.Error("building engine", "err", err)
		os.Exit(1)
	}

	prometheus.MustRegister(promexport.NewExporter(engine))

	readyChecks := []httpapi.ReadyCheck{
		{Name: "redis", Check: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
	}
	if db != nil {
		readyChecks = append(readyChecks, httpapi.ReadyCheck{
			Name:  "postgres",
			Check: func(ctx context.Context) error { return db.PingContext(ctx) },
		})
	}

	api := httpapi.New(engine, httpapi.Options{
		Logger:      logger,
		Version:     version,
		ReadyChecks: readyChecks,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting shadowid", "version", version, "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	engine.Close()
	_ = rdb.Close()
	if db != nil {
		_ = db.Close()
	}
	logger.Info("stopped")
}
