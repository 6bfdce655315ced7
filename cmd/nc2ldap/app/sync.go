package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/nc2ldap"
	"github.com/agentstation/nc2ldap/internal/cmd/output"
	"github.com/agentstation/nc2ldap/pkg/constants"
	"github.com/agentstation/nc2ldap/pkg/reconcile"
)

// NewSyncCommand creates the sync command.
func (a *App) NewSyncCommand() *cobra.Command {
	var (
		dryRun   bool
		noDelete bool
		timeout  = constants.CommandTimeout
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync cycle",
		Long: `Sync fetches the address book, compares it with the phone book and
applies the differences: entries missing from the address book are removed,
new or changed contacts are added.`,
		Example: `  nc2ldap sync
  nc2ldap sync --dry-run -o yaml
  nc2ldap sync --no-delete`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.config.Sync.Validate(); err != nil {
				return err
			}
			ctx := cmd.Context()

			src, err := a.newSource(ctx, a.config.Sync, a.logger)
			if err != nil {
				return err
			}
			client, closeDir, err := a.client(ctx, src, !dryRun)
			if err != nil {
				return err
			}
			defer closeDir()

			strategy := reconcile.ApplyAll
			if noDelete {
				strategy = reconcile.ApplyAdditive
			}

			result, err := client.Sync(ctx,
				nc2ldap.WithDryRun(dryRun),
				nc2ldap.WithStrategy(strategy),
				nc2ldap.WithTimeout(timeout),
			)
			if err != nil {
				return err
			}

			if err := output.FormatResult(a.out, result, a.format()); err != nil {
				return err
			}
			// Per-operation failures were printed; still fail the command.
			return result.Errors
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would change without writing")
	cmd.Flags().BoolVar(&noDelete, "no-delete", false, "only add contacts, never remove entries")
	cmd.Flags().DurationVar(&timeout, "timeout", timeout, "timeout for the whole cycle")

	return cmd
}
