package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/nc2ldap/internal/cmd/output"
	"github.com/agentstation/nc2ldap/pkg/logging"
)

// Execute runs the CLI with the given arguments.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "nc2ldap",
		Short:   "Sync Nextcloud contacts into an LDAP phone book",
		Version: a.version,
		Long: `nc2ldap reads every contact of a Nextcloud (CardDAV) address book and
mirrors it into an organizationalUnit of an LDAP directory, where desk phones
and softphones look numbers up.

Settings come from flags, the environment (NEXTCLOUD_URL, LDAP_SERVER, ...),
.env files and $HOME/.nc2ldap.yaml.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", "", "config file (default is $HOME/.nc2ldap.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().StringVarP(&a.config.Format, "format", "o", "", "output format: table, wide, json, yaml")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", a.config.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("nc2ldap {{.Version}}\n")

	rootCmd.AddCommand(a.NewSyncCommand())
	rootCmd.AddCommand(a.NewDiffCommand())
	rootCmd.AddCommand(a.NewServeCommand())
	rootCmd.AddCommand(a.NewVersionCommand())

	return rootCmd
}

// setupCommand validates global flags, rebuilds the logger and loads the
// sync settings before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	if _, err := output.ParseFormat(a.config.Format); err != nil {
		return err
	}

	// Packages that log without an injected logger use the default one.
	logging.Configure(loggingConfig(a.config))
	a.logger = logging.Default()

	if cmd.Name() == "version" {
		return nil
	}
	return a.config.LoadSync()
}

// format returns the output format for command results.
func (a *App) format() output.Format {
	return output.DetectFormat(a.config.Format)
}

// ExitOnError prints an error and exits with status 1.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // exiting anyway
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
