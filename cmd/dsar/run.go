package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"dsar/internal/discovery/models"
	"dsar/internal/discovery/store/memory"
	id "dsar/pkg/domain"
	"dsar/pkg/requestcontext"
)

func newRunCmd(root *rootOptions) *cobra.Command {
	var (
		sourceFilter []string
		fixtures     string
		actor        string
	)
	cmd := &cobra.Command{
		Use:   "run <run-file>",
		Short: "Execute a discovery run described by a YAML run file",
		Long: "run loads the case, subject and sources from a run file, queries every enabled " +
			"source and prints the per-category findings. The command fails when the run " +
			"ends FAILED.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			rf, err := loadRunFile(args[0])
			if err != nil {
				return err
			}
			if fixtures != "" {
				rf.Fixtures = fixtures
			}
			var fixtureFS fs.FS
			if rf.Fixtures != "" {
				fixtureFS = os.DirFS(rf.Fixtures)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reg := prometheus.NewRegistry()
			local := memory.NewInMemoryStore()
			p, err := buildPipeline(ctx, cfg, reg, logger, local, fixtureFS)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := p.Close(); cerr != nil {
					logger.Warn("shutdown", "error", cerr)
				}
			}()
			p.serveOps(cfg.OpsAddr, reg)

			svc, err := p.service(cfg, local, local)
			if err != nil {
				return err
			}

			caseID := id.NewCaseID()
			local.PutCase(rf.caseRecord(caseID), rf.subject())
			local.PutSources(caseID, rf.Sources...)

			req := models.RunRequest{
				CaseID:    caseID,
				Mode:      rf.contentMode(),
				EnableOCR: rf.EnableOCR || cfg.Detection.EnableOCR,
				EnableLLM: rf.EnableLLM || cfg.Detection.EnableLLM,
			}
			for _, raw := range sourceFilter {
				sid, err := id.ParseSourceID(raw)
				if err != nil {
					return fmt.Errorf("--source %q: %w", raw, err)
				}
				req.SourceIDs = append(req.SourceIDs, sid)
			}

			ctx = requestcontext.WithRequestID(ctx, uuid.NewString())
			if actor != "" {
				ctx = requestcontext.WithActorID(ctx, actor)
			}
			result, runErr := svc.Run(ctx, req)
			if result == nil {
				return runErr
			}
			p.flushAudit(ctx)

			view := newRunView(result)
			if root.json {
				err = writeJSON(cmd.OutOrStdout(), view)
			} else {
				err = view.writeTable(cmd.OutOrStdout())
			}
			if err != nil {
				return err
			}
			if runErr != nil {
				return runErr
			}
			if result.Status == models.RunFailed {
				return fmt.Errorf("run %s failed: %s", result.RunID, result.Error)
			}
			if result.StatusPersistError != nil {
				return fmt.Errorf("run %s completed but its status was not persisted: %w", result.RunID, result.StatusPersistError)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&sourceFilter, "source", nil, "only query these source IDs (repeatable)")
	cmd.Flags().StringVar(&fixtures, "fixtures", "", "fixture directory (overrides the run file)")
	cmd.Flags().StringVar(&actor, "actor", "", "operator recorded on audit events")
	return cmd
}

// flushAudit relays outbox events written by the run to Kafka. Events left
// behind are picked up by `dsar relay`.
func (p *pipeline) flushAudit(ctx context.Context) {
	if p.relay == nil {
		return
	}
	n, err := p.relay.RunOnce(context.WithoutCancel(ctx))
	if err != nil {
		p.logger.Warn("audit relay incomplete", "relayed", n, "error", err)
		return
	}
	p.logger.Debug("audit events relayed", "count", n)
}
