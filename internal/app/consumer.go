package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gigpay/internal/compliance"
	"gigpay/internal/events"
	"gigpay/internal/exemption"
	"gigpay/internal/jurisdiction"
	"gigpay/internal/laborrule"
	"gigpay/internal/messaging/kafka/consumer"
	"gigpay/internal/shared/clock"
	"gigpay/internal/shared/connection"
	"gigpay/internal/shared/counter"
	"gigpay/internal/violation"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

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

	clk := clock.System()
	jurisdictionRepo := jurisdiction.NewRepository(gormDB)
	laborRuleRepo := laborrule.NewRepository(gormDB)
	exemptionRepo := exemption.NewRepository(gormDB)
	violationRepo := violation.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)

	resolver := jurisdiction.NewResolver(jurisdictionRepo, laborRuleRepo, clk)
	exemptionService := exemption.NewService(sqlDB, exemptionRepo, laborRuleRepo, clk)
	violationService := violation.NewService(sqlDB, violationRepo, counterRepo, clk)
	engine := compliance.NewEngine(exemptionService, violationService, clk)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.ShiftCompletedTopic,
		GroupID:        "gigpay-shift-compliance",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeShiftCompleted(ctx, reader, resolver, engine, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
