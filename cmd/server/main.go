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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"settlement-ingest-backend/internal/cache"
	"settlement-ingest-backend/internal/config"
	handler "settlement-ingest-backend/internal/handlers"
	"settlement-ingest-backend/internal/jobs"
	"settlement-ingest-backend/internal/logging"
	"settlement-ingest-backend/internal/models"
	"settlement-ingest-backend/internal/repository"
	"settlement-ingest-backend/internal/routes"
	"settlement-ingest-backend/internal/schema"
	"settlement-ingest-backend/internal/services/ingestion"
	"settlement-ingest-backend/internal/services/normalization"
)

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log.Level, cfg.Log.Format)

	db, err := config.InitDB(cfg)
	if err != nil {
		logger.WithError(err).Fatal("database")
	}

	if err := db.AutoMigrate(
		&models.SettlementTransaction{},
		&models.UploadSubmission{},
		&models.FailedBatchLog{},
	); err != nil {
		logger.WithError(err).Fatal("migrate")
	}

	transactionRepo := repository.NewSettlementTransactionRepository(db, cfg.Ingestion.InsertBatchSize)
	submissionRepo := repository.NewUploadSubmissionRepository(db)
	failedBatchRepo := repository.NewFailedBatchRepository(db)

	results := cache.NewMemory[normalization.BatchResult]()
	processor := normalization.NewProcessor(schema.DefaultRegistry(), transactionRepo, results, logger,
		normalization.WithResultTTL(cfg.Ingestion.ResultTTL),
		normalization.WithFailedBatchRecorder(failedBatchRepo),
	)
	coordinator := ingestion.NewCoordinator(ingestion.NewDecoder(cfg.Ingestion.CSVChunkSize), processor, logger)
	service := ingestion.NewService(submissionRepo, coordinator, results, logger)

	queue := jobs.NewQueue[ingestion.Submission](cfg.Ingestion.QueueSize, cfg.Ingestion.Workers, logger)
	service.SetDispatcher(queue)

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if err := queue.Start(workerCtx, service.Run); err != nil {
		logger.WithError(err).Fatal("start queue")
	}

	r := gin.New()
	r.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	r.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, handler.NewSettlementHandler(service, logger))

	srv := &http.Server{Addr: ":" + cfg.Server.Port, Handler: r}
	go func() {
		logger.WithField("addr", srv.Addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("http shutdown")
	}
	// Queued submissions finish before exit.
	if err := queue.Stop(ctx); err != nil {
		logger.WithError(err).Error("queue did not drain")
	}
}
