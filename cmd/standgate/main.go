package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/standgate/internal/api"
	"github.com/dgallion1/standgate/internal/audit"
	"github.com/dgallion1/standgate/internal/blob"
	"github.com/dgallion1/standgate/internal/config"
	"github.com/dgallion1/standgate/internal/decision"
	"github.com/dgallion1/standgate/internal/oracle"
	"github.com/dgallion1/standgate/internal/pipeline"
	"github.com/dgallion1/standgate/internal/resolve"
	"github.com/dgallion1/standgate/internal/store"
	"github.com/dgallion1/standgate/internal/validate"
)

func main() {
	_ = godotenv.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence.
	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	st := store.New(pool)
	if err := st.Migrate(ctx); err != nil {
		log.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	// Blob storage.
	blobs, err := blob.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioSecure)
	if err != nil {
		log.Error("object storage init failed", "error", err)
		os.Exit(1)
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		log.Error("bucket init failed", "error", err)
		os.Exit(1)
	}

	// Task queue.
	redisClient, err := pipeline.ConnectRedis(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	queue := pipeline.NewQueue(redisClient, "")

	// Oracle. Without a key every oracle-backed phase degrades to
	// deterministic-only behavior.
	gemini, err := oracle.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Error("oracle init failed", "error", err)
		os.Exit(1)
	}
	if !gemini.Available() {
		log.Warn("GEMINI_API_KEY not set, AI-backed operations disabled")
	}
	oracleClient := oracle.WithRetry(gemini)

	resolver := resolve.New(st, st, cfg.MaxFolderDepth)
	evaluator := validate.NewEvaluator(oracleClient, log)
	flow := decision.New(oracleClient, log)
	recorder := audit.NewRecorder(st, log)

	worker := pipeline.NewWorker(st, blobs, resolver, evaluator, queue, log)
	orch := pipeline.NewOrchestrator(queue, worker, cfg.WorkerCount, cfg.MaxQueueSize, cfg.JobTTL, log)
	orch.Start(ctx)

	srv := api.NewServer(api.Deps{
		Store:        st,
		Blobs:        blobs,
		Orchestrator: orch,
		Resolver:     resolver,
		Evaluator:    evaluator,
		Flow:         flow,
		Gemini:       gemini,
		Oracle:       oracleClient,
		Audit:        recorder,
	}, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("starting standgate", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
