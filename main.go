// File: slotify/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"slotify/config"
	"slotify/cron"
	"slotify/database"
	bookingRepoPkg "slotify/database/repository/booking"
	catalogRepoPkg "slotify/database/repository/catalog"
	customerRepoPkg "slotify/database/repository/customer"
	slotRepoPkg "slotify/database/repository/slot"
	subscriptionRepoPkg "slotify/database/repository/subscription"
	"slotify/handlers"
	"slotify/middleware"
	"slotify/routes"
	"slotify/services/booking"
	"slotify/services/reservation"
	"slotify/services/ticket"
	"slotify/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitLockCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	slotRepo := slotRepoPkg.NewMongoSlotRepo()
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	subscriptionRepo := subscriptionRepoPkg.NewMongoSubscriptionRepo()
	customerRepo := customerRepoPkg.NewMongoCustomerRepo()
	catalogRepo := catalogRepoPkg.NewMongoCatalogRepo()

	for _, ensure := range []func() error{
		slotRepo.EnsureIndexes,
		bookingRepo.EnsureIndexes,
		subscriptionRepo.EnsureIndexes,
	} {
		if err := ensure(); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure indexes: %v", err)
		}
	}

	// services.
	lockTTL := time.Duration(config.AppConfig.LockTTLSeconds) * time.Second
	if lockTTL <= 0 {
		lockTTL = utils.DefaultLockTTL
	}
	lockManager := reservation.NewLockManager(utils.GetLockCacheClient(), slotRepo, lockTTL)
	lockManager.StartSweeper(context.Background(), 5*time.Minute)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTaskDB,
	})
	defer asynqClient.Close()

	ticketService := ticket.NewService(config.AppConfig.TicketSecret)

	bookingEngine := &booking.DefaultBookingEngine{
		Bookings:      bookingRepo,
		Slots:         slotRepo,
		Subscriptions: subscriptionRepo,
		Customers:     customerRepo,
		Catalog:       catalogRepo,
		Locks:         lockManager,
		Events:        booking.NewAsynqEventEmitter(asynqClient),
	}

	// Background worker draining post-commit tasks.
	cron.InitBookingWorker(bookingRepo, ticketService)

	// handlers.
	handlers.BookingService = bookingEngine
	handlers.LockService = lockManager
	handlers.TicketService = ticketService
	handlers.SlotRepo = slotRepo
	handlers.CatalogRepo = catalogRepo

	routes.RegisterRoutes(router)

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
