package main

import (
	"TagSpectra/internal/alerter"
	"TagSpectra/internal/config"
	"TagSpectra/internal/engine/inbound"
	"TagSpectra/internal/engine/pipeline"
	"TagSpectra/internal/engine/recordaggregator"
	"TagSpectra/internal/model"
	"TagSpectra/internal/notification"
	"TagSpectra/internal/sink"
	"TagSpectra/internal/subscription"
	"TagSpectra/pkg/taglist"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path of the configuration file.")
	flag.Parse()

	log.Println("Starting ts-engine...")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded successfully.")

	tags, err := taglist.Read(cfg.Subscription.TagFile)
	if err != nil {
		log.Fatalf("Failed to read tag list: %v", err)
	}
	log.Printf("Tag universe loaded: %d tags", len(tags))

	// Build the configured record sinks.
	var sinks []model.Sink
	if cfg.Sinks.CSV.Enabled {
		csvSink, err := sink.NewCSVSink(cfg.Sinks.CSV.RootPath)
		if err != nil {
			log.Fatalf("Failed to create CSV sink: %v", err)
		}
		sinks = append(sinks, csvSink)
	}
	if cfg.Sinks.ClickHouse.Enabled {
		chSink, err := sink.NewClickHouseSink(cfg.Sinks.ClickHouse)
		if err != nil {
			log.Fatalf("Failed to create ClickHouse sink: %v", err)
		}
		sinks = append(sinks, chSink)
	}
	if len(sinks) == 0 {
		log.Fatalf("No record sinks enabled in config.")
	}

	var failure model.Sink
	if cfg.Sinks.FailurePath != "" {
		failureSink, err := sink.NewFailureSink(cfg.Sinks.FailurePath)
		if err != nil {
			log.Fatalf("Failed to create failure sink: %v", err)
		}
		failure = failureSink
	}

	minPublishInterval := time.Duration(cfg.Subscription.MinPublishIntervalMs) * time.Millisecond
	queue := inbound.NewQueue(cfg.Queue.Capacity)
	agg := recordaggregator.New(tags, minPublishInterval)
	pipe := pipeline.New(queue, agg, cfg.Subscription.AggregateRecords, sinks, failure,
		time.Duration(cfg.Subscription.DrainIntervalMs)*time.Millisecond)

	service, err := subscription.NewService(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to telemetry transport: %v", err)
	}

	handle, err := service.Subscribe(tags, queue, cfg.Subscription.NotifyOnTimestampOnlyChange, minPublishInterval)
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	pipe.Start()

	var alertr *alerter.Alerter
	if cfg.Alerter.Enabled {
		if cfg.SMTP.Host == "" {
			log.Println("Alerter is enabled in config, but no notifiers are configured. Alerter will not run.")
		} else {
			notifier := notification.NewEmailNotifier(cfg.SMTP)
			alertr, err = alerter.NewAlerter(&cfg.Alerter, pipe.Stats, notifier)
			if err != nil {
				log.Fatalf("Failed to create alerter: %v", err)
			}
			go alertr.Start()
			log.Println("Alerter enabled and initialized.")
		}
	}

	// Wait for a shutdown signal for graceful shutdown.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutdown signal received, stopping...")

	// Stop deliveries first so the final drain cannot race new events.
	if err := service.Unsubscribe(handle); err != nil {
		log.Printf("Failed to unsubscribe: %v", err)
	}
	pipe.Stop()
	if alertr != nil {
		alertr.Stop()
	}
	service.Close()
	log.Println("Shutdown complete.")
}
