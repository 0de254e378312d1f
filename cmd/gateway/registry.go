package main

import (
	"fmt"
	"io"
	"os"

	"accreditation-gateway/internal/actions"
	"accreditation-gateway/pkg/registry"

	"github.com/spf13/cobra"
)

var (
	registryFormat string
	registryOutput string
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Print the action registry: routes, task types and schemas",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRegistry(cmd.OutOrStdout())
	},
}

func init() {
	registryCmd.Flags().StringVarP(&registryFormat, "format", "f", registry.FormatYAML, "Output format: yaml or json")
	registryCmd.Flags().StringVarP(&registryOutput, "output", "o", "", "Write to a file instead of stdout")
	rootCmd.AddCommand(registryCmd)
}

func runRegistry(stdout io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	catalog, err := actions.Build(cfg, offlineInvokers, nil)
	if err != nil {
		return err
	}

	reg := registry.Build(cfg.App.Version, catalog.Runners())
	if err := reg.Validate(); err != nil {
		return err
	}

	if registryOutput == "" {
		return reg.Write(stdout, registryFormat)
	}

	f, err := os.Create(registryOutput)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := reg.Write(f, registryFormat); err != nil {
		return err
	}
	return f.Close()
}
