package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"dsar/internal/platform/httpserver"
	platformkafka "dsar/internal/platform/kafka"
	platformpg "dsar/internal/platform/postgres"
	kafkapublisher "dsar/pkg/platform/audit/publishers/kafka"
	auditpg "dsar/pkg/platform/audit/store/postgres"
	"dsar/pkg/platform/audit/worker"
)

func newRelayCmd(root *rootOptions) *cobra.Command {
	var (
		once      bool
		batchSize int
	)
	cmd := &cobra.Command{
		Use:   "relay",
		Short: "Publish pending audit outbox events to Kafka",
		Long: "relay polls the Postgres audit outbox and publishes pending events to the Kafka " +
			"topic of their category, in creation order, until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return errors.New("relay requires DSAR_POSTGRES_URL")
			}
			if len(cfg.Kafka.Brokers) == 0 {
				return errors.New("relay requires DSAR_KAFKA_BROKERS")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			db, err := platformpg.OpenDB(ctx, cfg.Postgres)
			if err != nil {
				return err
			}
			defer db.Close()
			kc, err := platformkafka.New(ctx, cfg.Kafka)
			if err != nil {
				return err
			}
			defer kc.Close()
			if cfg.Kafka.CreateTopics {
				if err := kc.EnsureTopics(ctx, auditTopicPartitions, auditTopicReplication, kafkapublisher.Topics()...); err != nil {
					return err
				}
			}

			w := worker.NewWorker(auditpg.New(db), kafkapublisher.New(kc.Client),
				worker.WithLogger(logger),
				worker.WithBatchSize(batchSize),
			)
			if once {
				n, err := w.RunOnce(ctx)
				logger.Info("audit relay pass finished", "relayed", n)
				return err
			}

			if cfg.OpsAddr != "" {
				p := &pipeline{logger: logger, health: map[string]httpserver.HealthFunc{}}
				p.health["kafka"] = kc.Health
				p.health["postgres"] = db.PingContext
				p.serveOps(cfg.OpsAddr, prometheus.DefaultGatherer)
				defer p.Close()
			}
			logger.Info("audit relay started")
			if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "relay one batch and exit")
	cmd.Flags().IntVar(&batchSize, "batch-size", 100, "entries fetched per poll")
	return cmd
}
