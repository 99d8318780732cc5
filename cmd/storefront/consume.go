package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cotne998/eCommerce-product-page/internal/config"
	"github.com/cotne998/eCommerce-product-page/internal/consumer"
)

func newConsumeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "consume",
		Short: "Record receipts from checkout events on Kafka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConsume(cmd.Context(), opts)
		},
	}
}

func checkConsumeConfig(cfg *config.Config) error {
	if !cfg.KafkaEnabled() {
		return errors.New("consume requires kafka brokers (KAFKA_BROKERS)")
	}
	if cfg.Receipts.Store == "none" {
		return errors.New("consume requires a receipts store")
	}
	return nil
}

func runConsume(ctx context.Context, opts *rootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if err := checkConsumeConfig(cfg); err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := openReceipts(ctx, cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		return err
	}
	defer repo.Close()

	c := consumer.NewReceiptConsumer(repo, cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.GroupID, log)
	defer c.Close()

	log.Info("consuming checkout events",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
		zap.String("group_id", cfg.Kafka.GroupID))
	if err := c.Run(ctx); err != nil {
		log.Error("consumer stopped with error", zap.Error(err))
		return err
	}
	log.Info("consumer exited")
	return nil
}
