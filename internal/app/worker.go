package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"go-timeoff/internal/balance"
	"go-timeoff/internal/calendar"
	"go-timeoff/internal/compoff"
	"go-timeoff/internal/employee"
	"go-timeoff/internal/leavetype"
	"go-timeoff/internal/messaging/kafka"
	"go-timeoff/internal/messaging/kafka/producer"
	"go-timeoff/internal/shared/connection"
	"go-timeoff/internal/timesheet"
)

const expirySweepInterval = time.Hour

// RunWorker drains the outbox into Kafka and periodically expires stale
// comp-off credits, so balances stay honest even for employees nobody reads.
func RunWorker() error {
	logger := zap.L().Named("app.worker")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	kafkaWriter, err := connection.ConnectKafkaWithRetry(kafkaBroker, 5)
	if err != nil {
		return err
	}
	defer kafkaWriter.Close()

	outboxRepo := kafka.NewOutboxRepository(sqlDB)

	compoffService := compoff.NewService(
		sqlDB,
		compoff.NewRepository(gormDB),
		balance.NewRepository(gormDB),
		leavetype.NewRepository(gormDB),
		employee.NewRepository(gormDB),
		timesheet.NewRepository(gormDB),
		calendar.NewService(calendar.NewRepository(gormDB)),
		outboxRepo,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go producer.ProcessOutboxEvents(
		ctx,
		outboxRepo,
		kafkaWriter,
		logger,
		3*time.Second,
	)

	go runExpirySweep(ctx, compoffService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("worker shutting down")
	cancel()

	return nil
}

func runExpirySweep(ctx context.Context, service compoff.Service, logger *zap.Logger) {
	log := logger.Named("compoff.sweep")
	ticker := time.NewTicker(expirySweepInterval)
	defer ticker.Stop()

	log.Info("expiry sweep started", zap.Duration("interval", expirySweepInterval))

	// One pass at startup so a long-stopped worker catches up immediately.
	if err := service.SweepAll(ctx, time.Now().UTC()); err != nil {
		log.Error("expiry sweep failed", zap.Error(err))
	}

	for {
		select {
		case <-ctx.Done():
			log.Info("expiry sweep stopped")
			return
		case <-ticker.C:
			if err := service.SweepAll(ctx, time.Now().UTC()); err != nil {
				log.Error("expiry sweep failed", zap.Error(err))
			}
		}
	}
}
