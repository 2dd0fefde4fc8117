package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wpstrap/wpstrap/internal/version"
	"github.com/wpstrap/wpstrap/pkg/config"
	"github.com/wpstrap/wpstrap/pkg/entrypoint"
	"github.com/wpstrap/wpstrap/pkg/logging"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity  int
		configPath string
		envFile    string
	)

	rootCmd := &cobra.Command{
		Use:   "wpstrap [flags] -- command [args...]",
		Short: "Provision a WordPress container and exec its main process",
		Long: `wpstrap is a container entrypoint for WordPress. It resolves database
settings from the environment, waits for the database, makes sure
wp-config.php exists and matches the resolved settings, provisions the
authentication secrets, runs hook scripts, and finally execs the given
command as the container's main process.

With no command, wpstrap provisions and exits (useful for init containers).`,
		Example: `  # Typical container entrypoint
  wpstrap -- apache2-foreground

  # Provision only, with an extra env file
  wpstrap --env-file /run/secrets/wordpress.env`,
		Version: version.Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if envFile == "" {
				envFile = os.Getenv("WPSTRAP_ENV_FILE")
			}
			return entrypoint.Run(cmd.Context(), entrypoint.Options{
				Config:  cfg,
				Args:    args,
				EnvFile: envFile,
			})
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v DEBUG, -vv TRACE)")
	rootCmd.Flags().StringVar(&configPath, "config", "", "Path to wpstrap.toml (default "+config.DefaultPath+" when present)")
	rootCmd.Flags().StringVar(&envFile, "env-file", "", "Dotenv file loaded before resolving settings")

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print detailed version information including commit hash and build date`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("wpstrap version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Printf("Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Printf("Built:  %s\n", version.Date)
			}
		},
	}
}
