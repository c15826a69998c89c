package main

import (
	"fmt"
	"os"

	"github.com/pranshuj73/gifzoo/config"
	"github.com/pranshuj73/gifzoo/logger"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var (
	// Global flags
	configPath string
	logLevel   string

	// TUI flags
	category  string
	startGame bool
	discordOn bool

	// serve flags
	servePort     int
	serveEndpoint string
)

// rootCmd runs the terminal UI
var rootCmd = &cobra.Command{
	Use:   "gifzoo",
	Short: "gifzoo - browse animal GIFs and play Odd One Out",
	Long: `gifzoo browses animal GIFs stored in a Hasura GraphQL backend.

Run without arguments to start the terminal UI. Use "gifzoo serve" to run
the GraphQL proxy that exposes the users table to web clients.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initLogger(); err != nil {
			return err
		}
		if logLevel == "" {
			return nil
		}
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetMinLevel(level)
		return nil
	},
	RunE: runTUI,
}

// serveCmd runs the GraphQL proxy
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the GraphQL proxy in front of Hasura",
	Long: `Serves getUsers, getUserById and addUser at /graphql, forwarding each
call to Hasura with the configured admin secret. GET /graphql opens
GraphiQL; /metrics exposes Prometheus metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// versionCmd prints the version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gifzoo version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "gifzoo version %s\n", version)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ~/.gifzoo/config.ini)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "minimum log level (debug, info, warn, error)")

	rootCmd.Flags().StringVar(&category, "category", "", "start browsing this category")
	rootCmd.Flags().BoolVarP(&startGame, "game", "g", false, "start in Odd One Out")
	rootCmd.Flags().BoolVarP(&discordOn, "discord", "d", false, "enable Discord presence")

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config, then 4000)")
	serveCmd.Flags().StringVar(&serveEndpoint, "endpoint", "", "Hasura GraphQL endpoint")

	rootCmd.AddCommand(serveCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogger() error {
	dataDir, err := config.GetDataDir()
	if err != nil {
		return err
	}
	if err := logger.Initialize(dataDir); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// loadConfig reads the INI file and applies environment overrides
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		logger.Error("Failed to load configuration", err, nil)
		return nil, err
	}

	if err := config.ApplyEnv(cfg, os.Getenv); err != nil {
		logger.Error("Invalid environment override", err, nil)
		return nil, err
	}

	logger.Info("Configuration loaded", map[string]interface{}{
		"path":     cfg.Path(),
		"endpoint": cfg.Upstream.Endpoint,
	})
	return cfg, nil
}
