package main

import (
	"context"
	"fmt"
	"os"

	"accreditation-gateway/internal/common/config"
	"accreditation-gateway/internal/common/logger"
	"accreditation-gateway/internal/gateway"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Validated AI action gateway for accreditation workflows",
	Long: `gateway serves document verification, document suggestion, fraud detection
and predictive compliance over HTTP and Zeebe. Every action validates its input
before calling the model and validates the model's output before returning it.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a config file (default: configs/config.yaml)")
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

func newLogger(cfg *config.Config) logger.Logger {
	return logger.NewZapAdapter(logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output))
}

// offlineInvokers lets the catalog be built without a model, for commands
// that only describe actions.
func offlineInvokers(name string) gateway.Invoker {
	return func(context.Context, map[string]interface{}) (map[string]interface{}, error) {
		return nil, fmt.Errorf("action %s has no model configured", name)
	}
}
