package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/tallylog/tallylog/internal/config"
	"github.com/tallylog/tallylog/internal/errors"
	"github.com/tallylog/tallylog/internal/logging"
	"github.com/tallylog/tallylog/internal/supervisor"
)

var (
	// Global flags
	configFile string
	verbose    bool

	// Global configuration
	appConfig *config.Config
)

// rootCmd represents the base command; invoked with the three positional
// arguments it runs the writer until interrupted.
var rootCmd = &cobra.Command{
	Use:   "tallylog <logfile_path> <thread_count> <sleep_ms>",
	Short: "tallylog - concurrent counter writer with graceful shutdown",
	Long: `tallylog spawns a number of workers that each append a timestamped,
self-incrementing counter line to one shared log file. Writes are
serialized so lines never interleave, and an interrupt (Ctrl+C) shuts
every worker down cleanly before the file is closed.

Arguments:
  logfile_path: Path to the log file (opened in append mode)
  thread_count: Number of workers to create
  sleep_ms:     Milliseconds to sleep between log entries`,
	Example: `  # Four workers, one line each per second
  tallylog /tmp/counters.log 4 1000

  # As fast as allowed (sleeps clamp to 10ms)
  tallylog /tmp/counters.log 2 0`,
	Args: cobra.ExactArgs(3),
	RunE: runRoot,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags available to all commands
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $TALLYLOG_CONFIG or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	configPath := configFile

	if configPath == "" {
		// Check for TALLYLOG_CONFIG environment variable
		if envConfig := os.Getenv("TALLYLOG_CONFIG"); envConfig != "" {
			configPath = envConfig
		}
		// Otherwise let config package handle auto-discovery
	}

	var err error
	appConfig, err = config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Override verbose setting from command line flag if provided
	if verbose {
		appConfig.Logging.Verbose = true
		appConfig.Logging.Level = "debug"
	}
}

// GetConfig returns the global configuration
// This should be called after cobra initialization
func GetConfig() *config.Config {
	if appConfig == nil {
		// Fallback to default config if not initialized
		return config.DefaultConfig()
	}
	return appConfig
}

func runRoot(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	// The positional arguments take precedence over any file or
	// environment configuration.
	cfg.Writer.Path = args[0]

	workers, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.ConfigError("INVALID_WORKER_COUNT",
			fmt.Sprintf("thread_count must be a positive integer, got %q", args[1]), err)
	}
	cfg.Writer.Workers = workers

	sleepMs, err := strconv.Atoi(args[2])
	if err != nil {
		return errors.ConfigError("INVALID_INTERVAL",
			fmt.Sprintf("sleep_ms must be a non-negative integer, got %q", args[2]), err)
	}
	cfg.Writer.Interval = time.Duration(sleepMs) * time.Millisecond

	logger, err := logging.NewSupervisorLogger(cfg.Logging)
	if err != nil {
		return err
	}

	sup, err := supervisor.New(cfg, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Writing to %s with %d workers every %d ms.\n", cfg.Writer.Path, workers, sleepMs)
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to gracefully terminate.\n")

	// Run blocks until an interrupt arrives; a clean shutdown exits 0.
	return sup.Run()
}
