// File: notewise/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notewise/config"
	"notewise/cron"
	"notewise/database"
	deviceRepoPkg "notewise/database/repository/device"
	noteRepoPkg "notewise/database/repository/note"
	reminderRepoPkg "notewise/database/repository/reminder"
	"notewise/handlers"
	"notewise/middleware"
	"notewise/poller"
	"notewise/routes"
	"notewise/services/device"
	noteService "notewise/services/note"
	"notewise/services/notification"
	"notewise/services/reminder"
	"notewise/utils"

	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(routes.CORSMiddleware())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	noteRepo := noteRepoPkg.NewMongoNoteRepo()
	reminderRepo := reminderRepoPkg.NewMongoReminderRepo()
	deviceRepo := deviceRepoPkg.NewMongoDeviceRepo()

	// services.
	notesSvc, err := noteService.NewDefaultNoteService(noteRepo, &noteService.RedisRenderCache{Client: utils.GetCacheClient()})
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize note service: %v", err)
	}
	reminderSvc, err := reminder.NewDefaultReminderService(reminderRepo)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize reminder service: %v", err)
	}
	deviceSvc, err := device.NewDefaultDeviceService(deviceRepo)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize device service: %v", err)
	}
	notifSvc := notification.NewDefaultNotificationService()

	// Handlers and routes.
	handlerBundle := &routes.HandlerBundle{
		Note:     handlers.NewNoteHandler(notesSvc),
		Reminder: handlers.NewReminderHandler(reminderSvc),
		Device:   handlers.NewDeviceHandler(deviceSvc),
	}
	routes.RegisterNoteRoutes(router, handlerBundle)
	routes.RegisterReminderRoutes(router, handlerBundle)
	routes.RegisterDeviceRoutes(router, handlerBundle)
	routes.RegisterHealthRoute(router)

	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Background reminder machinery: the due-record scanner, the async send
	// worker, and the local evaluation loop for hosted-notebook deployments.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	cron.InitReminderWorker(reminderRepo, notifSvc)
	go cron.NewDispatcher(reminderRepo).Start(rootCtx)
	go poller.New(noteRepo, poller.LogNotifier{}, poller.DefaultInterval).Start(rootCtx)

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
	rootCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
