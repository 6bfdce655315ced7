package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/agentstation/nc2ldap"
	"github.com/agentstation/nc2ldap/internal/metrics"
	"github.com/agentstation/nc2ldap/internal/server"
	"github.com/agentstation/nc2ldap/pkg/constants"
)

// NewServeCommand creates the serve command.
func (a *App) NewServeCommand() *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Sync on a schedule and serve metrics",
		Long: `Serve runs a sync immediately, then every IMPORT_SCHEDULE, and exposes
Prometheus metrics on /metrics with liveness (/healthz) and readiness
(/readyz) probes. It stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.config.Sync
			if metricsAddr != "" {
				cfg.MetricsAddr = metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			src, err := a.newSource(ctx, cfg, a.logger)
			if err != nil {
				return err
			}
			client, closeDir, err := a.client(ctx, src, true, nc2ldap.WithMetrics(metrics.New(reg)))
			if err != nil {
				return err
			}
			defer closeDir()

			if result, err := client.Sync(ctx, nc2ldap.WithTimeout(constants.SyncTimeout)); err != nil {
				a.logger.Error().Err(err).Msg("Initial sync failed")
			} else {
				a.logger.Info().Msg(result.Summary())
			}

			if err := client.AutoSyncOn(); err != nil {
				return err
			}
			defer func() {
				if err := client.AutoSyncOff(); err != nil {
					a.logger.Error().Err(err).Msg("Failed to stop auto-sync")
				}
			}()

			srv := server.New(server.Config{Addr: cfg.MetricsAddr}, reg, statusOf(client), a.logger)
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "metrics listen address (default METRICS_ADDR or "+constants.DefaultMetricsAddr+")")
	return cmd
}

// statusOf adapts the client status for the readiness probe.
func statusOf(client nc2ldap.Client) server.StatusFunc {
	return func() server.Status {
		st := client.Status()
		out := server.Status{LastSync: st.LastSync, Syncing: st.Syncing}
		if st.LastError != nil {
			out.LastError = st.LastError.Error()
		}
		return out
	}
}
