// Package cli implements the seclens command surface on top of cobra.
package cli

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/seclens/seclens-go/internal/app/tasks"
	"github.com/seclens/seclens-go/internal/config"
	"github.com/seclens/seclens-go/internal/infra/transport"
	"github.com/seclens/seclens-go/pkg/common/logger"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "seclens",
	Short: "Client for the SecLens enforcement-task API",
	Long: `Seclens fetches enforcement task records from a SecLens instance,
validates filter values against the server's current valid sets, and
exports the results as JSON, CSV, or an aligned table.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(func() { config.Init(cfgFile) })

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.config/seclens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// newLogger builds the CLI logger. Log output goes to stderr so exported
// data on stdout stays clean.
func newLogger() *logger.Logger {
	level := logger.LevelInfo
	if verbose {
		level = logger.LevelDebug
	}
	return logger.New(os.Stderr, level, "seclens", nil)
}

// newService wires the transport client and task service from the loaded
// configuration. The configuration is returned alongside so commands can
// apply its defaults, such as the paging section.
func newService(log *logger.Logger) (*tasks.Service, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	client, err := transport.NewClient(
		&http.Client{Timeout: cfg.API.Timeout},
		transport.Config{
			BaseURL:   cfg.API.BaseURL,
			APIKey:    cfg.API.Key,
			APISecret: cfg.API.Secret,
			RateLimit: cfg.API.RateLimit,
			RateBurst: cfg.API.RateBurst,
			Retry: transport.RetryConfig{
				MaxAttempts: cfg.API.Retry.MaxAttempts,
				InitialWait: cfg.API.Retry.InitialWait,
				MaxWait:     cfg.API.Retry.MaxWait,
			},
		},
		log,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating api client: %w", err)
	}

	return tasks.NewService(client, log), cfg, nil
}
