package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"helpsync/api"
	"helpsync/config"
	"helpsync/events"
	"helpsync/orchestrator"
	"helpsync/workflow"
)

func main() {
	cfgFile := flag.String("config", "", "config file (default is .helpsync.yaml)")
	flag.Parse()

	// Loads .env if present (non-fatal if missing), the config file and HELPSYNC_* variables
	settings, err := config.Load(*cfgFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := settings.ValidateAda(); err != nil {
		log.Printf("⚠️  %v (knowledge base operations will fail until it is set)", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := orchestrator.New(ctx, settings)
	defer app.Close()

	server := api.NewServer(api.Options{
		Runner:  app.Runner,
		Sources: app.Ada,
		Calls:   app.Calls,
		History: app.History,
		Addr:    settings.Server.Addr,
	})

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Println("API endpoints available:")
	log.Println("  GET  /health, /metrics")
	log.Println("  GET  /api/status, /api/comparison, /api/calls, /api/history")
	log.Println("  POST /api/fetch, /api/compare, /api/upload, /api/delete, /api/run")
	log.Println("  GET|POST /api/sources, DELETE /api/sources/:id")

	if settings.Server.Cron != "" {
		if err := server.StartCron(settings.Server.Cron); err != nil {
			log.Fatalf("Failed to start cron: %v", err)
		}
	}

	var consumer *events.Consumer
	if len(settings.Kafka.Brokers) > 0 {
		consumer, err = startConsumer(ctx, settings.Kafka, server)
		if err != nil {
			log.Printf("⚠️  Kafka trigger consumer disabled: %v", err)
		}
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	cancel()
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			log.Printf("Error closing Kafka consumer: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// startConsumer dispatches sync requests from Kafka to the server's runner
func startConsumer(ctx context.Context, cfg config.KafkaConfig, server *api.Server) (*events.Consumer, error) {
	handler := events.NewRequestHandler(func(ctx context.Context, req events.SyncRequest) error {
		return server.Dispatch(workflow.Request{
			Action:            workflow.Action(req.Action),
			KnowledgeSourceID: req.KnowledgeSourceID,
			IDs:               req.IDs,
		})
	})

	consumer, err := events.NewConsumer(events.ConsumerConfig{
		Brokers: cfg.Brokers,
		Topic:   cfg.RequestTopic,
		GroupID: cfg.GroupID,
		Handler: handler,
	})
	if err != nil {
		return nil, err
	}

	go consumer.Run(ctx)
	return consumer, nil
}
