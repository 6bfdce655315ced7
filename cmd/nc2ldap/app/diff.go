package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/nc2ldap"
	"github.com/agentstation/nc2ldap/internal/carddav"
	"github.com/agentstation/nc2ldap/internal/cmd/output"
)

// NewDiffCommand creates the diff command.
func (a *App) NewDiffCommand() *cobra.Command {
	var vcfPath string

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show what a sync would change",
		Long: `Diff compares the address book with the phone book and prints the
entries a sync would remove (-) and add (+). Nothing is written.

With --vcf the cards are read from a local vCard export instead of Nextcloud.`,
		Example: `  nc2ldap diff
  nc2ldap diff -o wide
  nc2ldap diff --vcf contacts.vcf -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var src nc2ldap.Source
			if vcfPath != "" {
				src = carddav.File{Path: vcfPath}
			} else {
				if err := a.config.Sync.ValidateSource(); err != nil {
					return err
				}
				var err error
				if src, err = a.newSource(ctx, a.config.Sync, a.logger); err != nil {
					return err
				}
			}
			if err := a.config.Sync.ValidateDirectory(); err != nil {
				return err
			}

			client, closeDir, err := a.client(ctx, src, false)
			if err != nil {
				return err
			}
			defer closeDir()

			cs, err := client.Plan(ctx)
			if err != nil {
				return err
			}

			a.logger.Info().Msg(cs.String())
			return output.FormatChangeset(a.out, cs, a.format())
		},
	}

	cmd.Flags().StringVar(&vcfPath, "vcf", "", "read cards from a .vcf file instead of CardDAV")
	return cmd
}
