package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"droneFoodDelivery/internal/account"
	"droneFoodDelivery/internal/config"
	"droneFoodDelivery/internal/db"
	"droneFoodDelivery/internal/events"
	grpcserver "droneFoodDelivery/internal/grpc"
	"droneFoodDelivery/internal/httpapi"
	"droneFoodDelivery/internal/lifecycle"
	"droneFoodDelivery/internal/logger"
	"droneFoodDelivery/internal/metrics"
	"droneFoodDelivery/repository"
)

func main() {
	dev := flag.Bool("dev", false, "use a development JWT secret when JWT_SECRET is unset")
	flag.Parse()

	// Load configuration
	load := config.Load
	if *dev {
		load = config.LoadWithDefaults
	}
	cfg, err := load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Component: "server"})
	log.Info("configuration loaded", "config", cfg.String())

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	// Open DB
	d, err := db.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Error("close db", "err", err)
		}
	}()
	store := repository.NewStore(d, cfg.Database.Timeout)

	publisher, closer, err := newPublisher(cfg.Events, log)
	if err != nil {
		return fmt.Errorf("events: %w", err)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			log.Error("close publisher", "err", err)
		}
	}()
	dispatcher := events.NewDispatcher(events.DispatcherConfig{QueueSize: cfg.Events.QueueSize}, log.With("component", "events"), publisher)
	dispatcher.Start(cfg.Events.Workers)
	defer dispatcher.Shutdown()

	m := metrics.New()
	svc := lifecycle.New(store,
		lifecycle.WithLogger(log.With("component", "lifecycle")),
		lifecycle.WithEvents(dispatcher),
		lifecycle.WithObserver(m),
	)

	accounts := account.New(store, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, account.WithLogger(log.With("component", "account")))

	router := httpapi.NewRouter(httpapi.NewHandler(svc, accounts, store.Repos(), log.With("component", "http")), m)
	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	httpErr := make(chan error, 1)
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- err
		}
	}()
	log.Info("HTTP server listening", "addr", cfg.HTTP.Address)

	// Start gRPC
	shutdownGRPC, err := grpcserver.StartGRPC(cfg, svc, store.Repos().Drones, log.With("component", "grpc"))
	if err != nil {
		return fmt.Errorf("start grpc: %w", err)
	}
	log.Info("gRPC server listening", "addr", cfg.GRPC.Address)

	// Wait for signal
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sigc:
		log.Info("shutting down", "signal", s.String())
	case err = <-httpErr:
		log.Error("http server failed", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error("http shutdown", "err", err)
	}
	if err := shutdownGRPC(ctx); err != nil {
		log.Error("grpc shutdown", "err", err)
	}
	if n := dispatcher.Dropped(); n > 0 {
		log.Warn("order events dropped", "count", n)
	}
	return err
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newPublisher builds the configured event publisher.
func newPublisher(cfg config.EventsConfig, log *slog.Logger) (events.Publisher, io.Closer, error) {
	switch cfg.Backend {
	case "rabbitmq":
		p, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.RabbitMQExchange)
		if err != nil {
			return nil, nil, err
		}
		log.Info("publishing order events to RabbitMQ", "exchange", cfg.RabbitMQExchange)
		return p, p, nil
	case "kafka":
		p, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, nil, err
		}
		log.Info("publishing order events to Kafka", "topic", cfg.KafkaTopic)
		return p, p, nil
	default:
		return &events.LogPublisher{Logger: log.With("component", "events")}, nopCloser{}, nil
	}
}
