package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chemsaver-backend/internal/api"
	"chemsaver-backend/internal/database"
	"chemsaver-backend/internal/engine"
	"chemsaver-backend/internal/mqtt"
	"chemsaver-backend/internal/services"
	"chemsaver-backend/internal/state"
	"chemsaver-backend/pkg/config"
)

func main() {
	log.Println("Starting Chemical Injection Optimizer Backend...")

	// Load configuration
	cfg := config.Load()

	// Initialize ClickHouse database
	db, err := database.NewClickHouseDB(
		cfg.ClickHouseAddr,
		cfg.ClickHouseDB,
		cfg.ClickHouseUser,
		cfg.ClickHousePass,
	)
	if err != nil {
		log.Fatalf("Failed to initialize ClickHouse: %v", err)
	}
	defer db.Close()

	// Initialize Redis-backed stream state store
	stateStore, err := state.NewStore(
		cfg.RedisAddr,
		cfg.RedisPassword,
		cfg.RedisDB,
		time.Duration(cfg.StateTTLSeconds)*time.Second,
	)
	if err != nil {
		log.Fatalf("Failed to initialize state store: %v", err)
	}
	defer stateStore.Close()

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === Initialize Optimizer Service ===
	log.Println("Initializing optimizer service...")
	optimizerConfig := services.DefaultOptimizerServiceConfig()
	optimizerConfig.TolerancePercent = cfg.TolerancePercent
	optimizerConfig.ZeroUnderDosingSavings = cfg.ZeroUnderDosingSavings
	optimizerConfig.SettingsCacheSeconds = cfg.SettingsCacheSeconds

	optimizerService := services.NewOptimizerService(db, stateStore, optimizerConfig)

	// === Initialize MQTT Client ===
	log.Println("Connecting to MQTT broker...")
	mqttConfig := mqtt.ClientConfig{
		Broker:   cfg.MQTTBroker,
		ClientID: cfg.MQTTClientID,
		Username: cfg.MQTTUsername,
		Password: cfg.MQTTPassword,
	}

	mqttClient, err := mqtt.NewClient(mqttConfig)
	if err != nil {
		log.Fatalf("Failed to initialize MQTT client: %v", err)
	}
	defer mqttClient.Close()

	// === Initialize MQTT Subscriber ===
	log.Println("Setting up MQTT subscriber...")
	subscriberConfig := mqtt.SubscriberConfig{
		ProductionTopic: cfg.MQTTTopicProduction,
	}

	subscriber := mqtt.NewSubscriber(
		mqttClient.GetNativeClient(),
		subscriberConfig,
		optimizerService.IngestChan,
	)

	if err := subscriber.SubscribeAll(); err != nil {
		log.Fatalf("Failed to subscribe to MQTT topics: %v", err)
	}

	// === Initialize MQTT Publisher ===
	log.Println("Setting up MQTT publisher...")
	publisherConfig := mqtt.PublisherConfig{
		RecommendationTopic: cfg.MQTTTopicRecommendation,
	}

	publisher := mqtt.NewPublisher(
		mqttClient.GetNativeClient(),
		publisherConfig,
		optimizerService.ResultChan,
	)

	// Start publisher and optimizer goroutines
	go publisher.Start(ctx)
	go optimizerService.Start(ctx)

	// === Initialize HTTP API ===
	log.Println("Starting HTTP API...")
	apiPipeline := engine.New(engine.Config{
		TolerancePercent:       cfg.TolerancePercent,
		ZeroUnderDosingSavings: cfg.ZeroUnderDosingSavings,
	})
	apiServer := api.NewServer(db, apiPipeline, optimizerService)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: apiServer.Router(),
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// === Log startup info ===
	log.Println("=== Chemical Injection Optimizer Backend is running ===")
	log.Printf("HTTP API listening on %s", cfg.HTTPAddr)
	log.Printf("MQTT Topics:")
	log.Printf("  - Production:     %s", cfg.MQTTTopicProduction)
	log.Printf("  - Recommendation: %s", cfg.MQTTTopicRecommendation)
	log.Println("Press Ctrl+C to exit...")

	// === Wait for interrupt signal ===
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// === Graceful shutdown ===
	log.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	cancel() // Cancel context to stop all goroutines

	// Give services time to finish processing
	time.Sleep(2 * time.Second)

	log.Println("Shutdown complete. Goodbye!")
}
