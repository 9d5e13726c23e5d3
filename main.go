// File: receptionist/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"receptionist/config"
	"receptionist/database"
	appointmentRepo "receptionist/database/repository/appointment"
	callerRepo "receptionist/database/repository/caller"
	calllogRepo "receptionist/database/repository/calllog"
	"receptionist/database/repository/callstate"
	"receptionist/handlers"
	"receptionist/middleware"
	"receptionist/routes"
	"receptionist/services/ai"
	"receptionist/services/availability"
	"receptionist/services/extractor"
	"receptionist/services/receptionist"
	"receptionist/services/voice"
	"receptionist/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCallStateCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	apptRepo := appointmentRepo.NewMongoAppointmentRepo()
	callersRepo := callerRepo.NewMongoCallerRepo()
	callLogsRepo := calllogRepo.NewMongoCallLogRepo()
	stateStore := callstate.NewRedisStore(
		utils.GetCallStateClient(),
		time.Duration(config.AppConfig.CallStateTTLMinutes)*time.Minute,
	)

	// services.
	provider := ai.NewFromConfig(logger)
	engine := availability.NewEngine(apptRepo, logger)
	slotExtractor := extractor.New(provider, logger)

	voiceService := &voice.Service{
		Provider:     provider,
		Extractor:    slotExtractor,
		Store:        stateStore,
		Callers:      callersRepo,
		Ledger:       apptRepo,
		Availability: engine,
		Logger:       logger,
		Now:          time.Now,
	}
	receptionistService := &receptionist.Service{
		Provider: provider,
		Logger:   logger,
	}

	// Assemble the handler bundle.
	handlerBundle := &routes.HandlerBundle{
		Voice:        handlers.NewVoiceHandler(voiceService, callLogsRepo, logger),
		Chat:         handlers.NewChatHandler(receptionistService),
		Appointments: handlers.NewAppointmentHandler(voiceService, apptRepo, logger),
		Meta:         handlers.NewMetaHandler(apptRepo, callLogsRepo, logger),
	}

	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
