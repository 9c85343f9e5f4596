package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop-backend/config"
	"shop-backend/internal/api"
	"shop-backend/internal/broker"
	"shop-backend/internal/push"
	"shop-backend/internal/redisclient"
	"shop-backend/internal/service"
	"shop-backend/internal/store"
	"shop-backend/internal/util"
	"shop-backend/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting shop backend")

	tp, err := util.InitTracer("shop-backend", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	// cache is optional: without it the active-deals path falls back to the DB
	var dealCache service.DealCache
	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Printf("Redis unavailable, running without deal cache: %v", err)
	} else {
		defer redisClient.Close()
		dealCache = redisClient
		log.Println("Redis connected")
	}

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicOrder)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	// push init failure means degraded no-push mode, never a crash
	var sender push.Sender
	fcmSender, err := push.NewFCMSender(context.Background(), cfg.Push.CredentialsFile)
	if err != nil {
		log.Printf("Push transport unavailable, running without push delivery: %v", err)
	} else {
		sender = fcmSender
		log.Println("Push transport initialized")
	}

	inventory := service.NewInventoryLedger(db)
	notificationService := service.NewNotificationService(db, sender)
	orderService := service.NewOrderService(db, inventory, notificationService, eventPublisher)
	dealService := service.NewDealService(db, dealCache)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	dealWorker := worker.NewDealWorker(dealService,
		time.Duration(cfg.Scheduler.DealIntervalSeconds)*time.Second)
	go func() {
		if err := dealWorker.Start(workerCtx); err != nil && err != context.Canceled {
			log.Printf("Deal worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(orderService, dealService, notificationService, cfg.Admin.Token)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()

	log.Println("Server exited")
}
