// cmd/intake-server/main.go
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tagdesk/internal/audit"
	"tagdesk/internal/catalog"
	"tagdesk/internal/common/config"
	"tagdesk/internal/common/database"
	"tagdesk/internal/common/logger"
	"tagdesk/internal/common/observability"
	"tagdesk/internal/extractor"
	"tagdesk/internal/notify"
	"tagdesk/internal/resolver"
	"tagdesk/internal/responder"
	"tagdesk/internal/server"
	"tagdesk/internal/session"
	"tagdesk/internal/ticket"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting intake server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("intake-server")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var rdb *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer rdb.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init audit sink (optional) ---
	var sink audit.Sink = audit.NopSink{}
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		sink = audit.NewElasticsearchSink(esClient.Client, cfg.Database.Elasticsearch.Index, log)
		zapLog.Info("Elasticsearch connected successfully")
	}

	// --- Platform catalog and resolver ---
	cat := catalog.Load(cfg.Catalog.Path, log)
	holder := catalog.NewHolder(cat)
	res := resolver.New(holder)
	zapLog.Info("Platform catalog loaded", zap.Int("entities", cat.Len()))

	// --- Dialogue responder ---
	rsp := responder.NewClient(&responder.Config{
		BaseURL:    cfg.APIs.GenAI.BaseURL,
		APIKey:     cfg.APIs.GenAI.APIKey,
		Timeout:    config.GetDuration(cfg.APIs.GenAI.Timeout),
		MaxRetries: cfg.APIs.GenAI.MaxRetries,
	}, log)

	// --- Notifications (optional) ---
	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.Notifications.Email.Enabled || cfg.Notifications.SMS.Enabled {
		awsNotifier, err := notify.NewAWSNotifier(&cfg.Notifications, log)
		if err != nil {
			zapLog.Fatal("notifier init failed", zap.Error(err))
		}
		notifier = awsNotifier
		zapLog.Info("AWS notifier initialized")
	}

	// --- Session manager ---
	store := session.NewRedisStore(rdb.Client, time.Duration(cfg.Intake.SessionTTL)*time.Second, log)
	tickets := ticket.NewPostgresStore(pg.DB)
	ext := extractor.New(res, log)

	manager := session.NewManager(store, rsp, ext, res, tickets, notifier, sink, obs, log, session.ManagerOptions{
		MaxHistoryTurns: cfg.Intake.MaxHistoryTurns,
	})

	// --- HTTP server ---
	srv := server.New(&cfg.Server, manager, holder, res, log)
	addr, err := srv.Start(ctx)
	if err != nil {
		zapLog.Fatal("server start failed", zap.Error(err))
	}
	zapLog.Info("Intake server ready", zap.String("address", addr))

	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping...")

	// Give in-flight turns a moment to drain before the deferred closes run.
	time.Sleep(500 * time.Millisecond)
	zapLog.Info("Intake server stopped")
}
