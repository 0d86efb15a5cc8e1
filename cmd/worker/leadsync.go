package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/summitops/event-pay-gateway/internal/config"
	"github.com/summitops/event-pay-gateway/internal/db"
	"github.com/summitops/event-pay-gateway/internal/dispatcher"
	"github.com/summitops/event-pay-gateway/internal/kafka"
	"github.com/summitops/event-pay-gateway/internal/logger"
	"github.com/summitops/event-pay-gateway/internal/metrics"
	"github.com/summitops/event-pay-gateway/internal/repository"
	"github.com/summitops/event-pay-gateway/internal/service/capture"
	"github.com/summitops/event-pay-gateway/internal/worker"
)

var leadsyncCmd = &cobra.Command{
	Use:   "leadsync",
	Short: "Relay captured leads to marketing/CRM providers",
	RunE:  runLeadSync,
}

func runLeadSync(cmd *cobra.Command, args []string) error {
	// 1) load config
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger.Init(cfg.Log.Level)
	defer func() { _ = logger.Log.Sync() }()

	metrics.MustRegister(prometheus.DefaultRegisterer)

	// 2) DB connection (MySQL)
	dbx, err := db.NewMySQLConnection(cfg.MySQL.DSN, db.MySQLOpts{
		MaxOpenConns:    cfg.MySQL.MaxOpenConns,
		MaxIdleConns:    cfg.MySQL.MaxIdleConns,
		ConnMaxLifetime: cfg.MySQL.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.MySQL.ConnMaxIdleTime,
		PingTimeout:     cfg.MySQL.PingTimeout,
	})
	if err != nil {
		return fmt.Errorf("mysql connect: %w", err)
	}
	defer dbx.Close()

	// 3) repositories
	leadsRepo := repository.NewLeadsRepository(dbx)

	// 4) providers → dispatcher
	var provs []dispatcher.Provider
	for _, pc := range cfg.Providers {
		if !pc.Enabled || strings.TrimSpace(pc.BaseURL) == "" {
			continue
		}
		base := strings.TrimRight(pc.BaseURL, "/")
		switch pc.Kind {
		case "mailerlite":
			provs = append(provs, dispatcher.NewMailerLiteProvider(
				pc.Name, base, pc.APIKey, pc.GroupID,
				pc.TimeoutMs, pc.Breaker.FailThreshold, pc.Breaker.OpenForMs,
			))
		case "webhook":
			provs = append(provs, dispatcher.NewWebhookProvider(
				pc.Name, base, pc.APIKey,
				pc.TimeoutMs, pc.Breaker.FailThreshold, pc.Breaker.OpenForMs,
			))
		default:
			log.Printf("skipping provider %s: unknown kind %q", pc.Name, pc.Kind)
		}
	}
	if len(provs) == 0 {
		return fmt.Errorf("no providers enabled in config")
	}
	disp := dispatcher.NewDispatcher(provs, cfg.Dispatcher.MaxAttempts)

	// 5) kafka consumer
	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = "evpay-leadsync"
	}

	consumer := kafka.NewConsumerFromConfig(kafka.Config{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          capture.LeadsKafkaTopic,
		GroupID:        groupID,
		MinBytes:       cfg.Kafka.MinBytes,
		MaxBytes:       cfg.Kafka.MaxBytes,
		CommitInterval: time.Duration(cfg.Kafka.CommitInterval) * time.Millisecond,
	})
	defer consumer.Close()

	w := worker.NewLeadSync(dbx, consumer, leadsRepo, disp)

	// tune knobs
	if cfg.Dispatcher.WorkerCount > 0 {
		w.Workers = cfg.Dispatcher.WorkerCount
	}
	if cfg.Dispatcher.BatchSize > 0 {
		w.BatchSize = cfg.Dispatcher.BatchSize
	}
	if cfg.Dispatcher.BatchWait > 0 {
		w.BatchWait = cfg.Dispatcher.BatchWait
	}

	// 6) graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf(">> leadsync started topic=%s group=%s workers=%d batchSize=%d batchWait=%s",
		capture.LeadsKafkaTopic, groupID, w.Workers, w.BatchSize, w.BatchWait)

	return w.Run(ctx)
}
