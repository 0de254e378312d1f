package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"accreditation-gateway/internal/actions"
	"accreditation-gateway/internal/document"
	"accreditation-gateway/internal/inference"

	"github.com/spf13/cobra"
)

var (
	invokeInput    string
	invokeDocument string
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <action>",
	Short: "Run one action locally and print its result envelope",
	Example: `  gateway invoke fraud-detection --document certificate.pdf
  gateway invoke document-suggestion --input institution.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInvoke(cmd, args[0])
	},
}

func init() {
	invokeCmd.Flags().StringVarP(&invokeInput, "input", "i", "", "JSON file with the action input, - for stdin")
	invokeCmd.Flags().StringVarP(&invokeDocument, "document", "d", "", "Document bound to documentDataUri (pdf, jpeg, jpg, png)")
	rootCmd.AddCommand(invokeCmd)
}

func runInvoke(cmd *cobra.Command, name string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	log := newLogger(cfg)

	input, err := readInvokeInput(cmd.InOrStdin())
	if err != nil {
		return err
	}

	model, err := inference.NewModel(cmd.Context(), cfg.GenAI, log)
	if err != nil {
		return fmt.Errorf("model init failed: %w", err)
	}
	catalog, err := actions.Build(cfg, actions.ModelInvokers(model), log)
	if err != nil {
		return err
	}

	runner, ok := catalog.Get(name)
	if !ok {
		return fmt.Errorf("unknown or disabled action %q", name)
	}

	env := runner.Run(cmd.Context(), input)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(env); err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("action %s failed with %s", name, env.Code)
	}
	return nil
}

func readInvokeInput(stdin io.Reader) (map[string]interface{}, error) {
	input := map[string]interface{}{}

	if invokeInput != "" {
		var (
			raw []byte
			err error
		)
		if invokeInput == "-" {
			raw, err = io.ReadAll(stdin)
		} else {
			raw, err = os.ReadFile(invokeInput)
		}
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		if err := json.Unmarshal(raw, &input); err != nil {
			return nil, fmt.Errorf("input must be a JSON object: %w", err)
		}
	}

	if invokeDocument != "" {
		mimeType, err := document.MIMETypeForFilename(invokeDocument)
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(invokeDocument)
		if err != nil {
			return nil, fmt.Errorf("read document: %w", err)
		}
		input["documentDataUri"] = document.EncodeDataURI(mimeType, data)
	}
	return input, nil
}
