package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/s-boardman/enviroplus-datalogger/internal/app"
	"github.com/s-boardman/enviroplus-datalogger/internal/config"
)

var (
	cfg    *config.Config
	logger *slog.Logger

	dbFile   string
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "enviroplus-datalogger",
	Short: "Log environmental data from a Pimoroni Enviro+ to SQLite",
	Long: `Read one sample from every sensor on a Pimoroni Enviro+ board (climate,
light, particulate matter and gas) and append it as a single timestamped
row to a local SQLite database.

The program takes exactly one sample per invocation and exits. Run it from
cron or a systemd timer to build up a measurement log.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded

		// Flags win over the environment and the .env file.
		if cmd.Flags().Changed("db-file") {
			cfg.DBFile = dbFile
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		setupLogger()
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Info("Starting Enviro+ data logger", "db_file", cfg.DBFile)
		return app.Run(cfg, logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbFile, "db-file", "enviroplus_data.db", "SQLite database file to append measurements to")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warning, error, critical)")
}

// setupLogger configures the logger from the resolved configuration
func setupLogger() {
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	// Set as default logger
	slog.SetDefault(logger)
}
