package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cotne998/eCommerce-product-page/internal/catalog"
	"github.com/cotne998/eCommerce-product-page/internal/config"
	"github.com/cotne998/eCommerce-product-page/internal/publisher"
	"github.com/cotne998/eCommerce-product-page/internal/repository"
	"github.com/cotne998/eCommerce-product-page/internal/service"
	"github.com/cotne998/eCommerce-product-page/internal/store"
	"github.com/cotne998/eCommerce-product-page/pkg/circuitbreaker"
	"github.com/cotne998/eCommerce-product-page/pkg/logger"
)

// app holds the wired dependencies shared by the serve and tui commands.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	sessions store.SessionStore
	receipts repository.ReceiptRepository
	events   publisher.Publisher
	service  *service.StorefrontService
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	return logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})
}

func buildApp(ctx context.Context, cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: log}

	sessions, err := openSessions(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.sessions = sessions

	receipts, err := openReceipts(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.receipts = receipts

	a.events = openPublisher(cfg, log)

	a.service = service.NewStorefrontService(a.sessions, a.receipts, a.events, catalog.Product(), service.Options{
		AckDuration:             cfg.Storefront.AckDuration,
		MenuCloseDelay:          cfg.Storefront.MenuCloseDelay,
		ResetQuantityOnCheckout: cfg.Storefront.ResetQuantityOnCheckout,
		Logger:                  log,
	})
	return a, nil
}

func (a *app) Close() {
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			a.logger.Warn("close publisher", zap.Error(err))
		}
	}
	if a.receipts != nil {
		if err := a.receipts.Close(); err != nil {
			a.logger.Warn("close receipt repository", zap.Error(err))
		}
	}
	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			a.logger.Warn("close session store", zap.Error(err))
		}
	}
}

func openSessions(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.SessionStore, error) {
	switch cfg.Session.Store {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis connection failed: %w", err)
		}
		log.Info("session store ready", zap.String("store", "redis"), zap.String("addr", cfg.Redis.Addr))
		return store.NewRedisStore(client, cfg.Session.IdleTTL), nil
	case "memory":
		log.Info("session store ready", zap.String("store", "memory"))
		return store.NewMemoryStore(cfg.Session.IdleTTL, cfg.Session.CleanupInterval), nil
	}
	return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
}

// openReceipts returns a nil repository when receipts are disabled.
func openReceipts(ctx context.Context, cfg *config.Config, log *zap.Logger) (repository.ReceiptRepository, error) {
	switch cfg.Receipts.Store {
	case "none":
		log.Info("receipt storage disabled")
		return nil, nil
	case "sqlite":
		repo, err := repository.NewSQLiteRepository(cfg.Receipts.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := repo.RunMigrations(); err != nil {
			_ = repo.Close()
			return nil, err
		}
		log.Info("receipt repository ready", zap.String("store", "sqlite"), zap.String("path", cfg.Receipts.SQLitePath))
		return repo, nil
	case "mongo":
		db, err := repository.ConnectMongoDB(ctx, repository.MongoOptions{
			URI:            cfg.Receipts.MongoURI,
			Database:       cfg.Receipts.MongoDB,
			MaxPoolSize:    cfg.Receipts.MongoMaxPoolSize,
			ConnectTimeout: cfg.Receipts.MongoConnectTimeout,
		})
		if err != nil {
			return nil, err
		}
		repo := repository.NewMongoRepository(db)
		if err := repo.CreateIndexes(ctx); err != nil {
			_ = repo.Close()
			return nil, err
		}
		log.Info("receipt repository ready", zap.String("store", "mongo"), zap.String("database", cfg.Receipts.MongoDB))
		return repo, nil
	}
	return nil, errors.New("unknown receipts store " + cfg.Receipts.Store)
}

func openPublisher(cfg *config.Config, log *zap.Logger) publisher.Publisher {
	if !cfg.KafkaEnabled() {
		log.Info("checkout events go to the log")
		return publisher.NewLogPublisher(log)
	}
	breaker := circuitbreaker.New("kafka-checkout", circuitbreaker.Options{Logger: log})
	log.Info("checkout events go to kafka",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic))
	return publisher.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, breaker, log)
}
