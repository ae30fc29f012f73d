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

	"deal-pipeline-api/config"
	"deal-pipeline-api/controllers"
	"deal-pipeline-api/middleware"
	"deal-pipeline-api/repository"
	"deal-pipeline-api/routes"
	"deal-pipeline-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	settings, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logFile, logger := config.InitLogging(settings.LogLevel, "deal-api")
	if logFile != nil {
		defer logFile.Close()
	}

	config.ConfigureMailer(settings.Mail)

	db, err := config.InitDB(settings.Database, settings.IsProduction())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	kafkaWriter := config.NewKafkaWriter(settings.Kafka)
	if kafkaWriter == nil {
		logger.Warn().Msg("kafka not configured, workflow events will not be published")
	}

	store := repository.NewGormStore(db)
	notifier := services.NewMailNotifier(store, config.SendMail, settings.AppBaseURL)
	events := services.NewKafkaEventPublisher(kafkaWriter, logger)
	docs := services.NewFileDocumentStore(settings.UploadPath)

	wf := services.NewWorkflowService(store, notifier, events, docs, logger)
	alerts := services.NewPartnerAlertService(wf)

	// Set Gin mode
	if settings.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(settings.CORSAllowedOrigins))

	routes.SetupRoutes(router,
		controllers.NewWorkflowHandler(wf, alerts, logger),
		middleware.AuthMiddleware(settings.JWTSecret, wf),
	)

	// Create upload directory if not exists
	if err := os.MkdirAll(settings.UploadPath, os.ModePerm); err != nil {
		logger.Warn().Err(err).Str("path", settings.UploadPath).Msg("failed to create upload directory")
	}

	server := &http.Server{
		Addr:              ":" + settings.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().
			Str("port", settings.ServerPort).
			Str("env", settings.Environment).
			Str("db_driver", settings.Database.Driver).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		if kafkaWriter != nil {
			if cerr := kafkaWriter.Close(); cerr != nil {
				logger.Warn().Err(cerr).Msg("failed to close kafka writer")
			}
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return
	}
	logger.Info().Msg("server stopped")
}
