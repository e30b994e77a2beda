package cli

import (
	"fmt"

	"github.com/nadia/taskwise/internal/config"
	"github.com/spf13/cobra"
)

var (
	confProvider string
	confAPIKey   string
	confModel    string
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Write the taskwise configuration file",
	Long: `Write the taskwise configuration file with the given provider and
API key. Existing settings are loaded first, so repeated runs only
change what you pass.`,
	RunE: runConfigure,
}

func init() {
	configureCmd.Flags().StringVar(&confProvider, "provider", "", "model provider (anthropic, openai)")
	configureCmd.Flags().StringVar(&confAPIKey, "api-key", "", "provider API key")
	configureCmd.Flags().StringVar(&confModel, "model", "", "model name")
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(cfgFile)
	cfg, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if confProvider != "" {
		cfg.Model.Provider = confProvider
	}
	if confAPIKey != "" {
		cfg.Model.APIKey = confAPIKey
	}
	if confModel != "" {
		cfg.Model.Name = confModel
	}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Configuration saved.")
	fmt.Fprintln(cmd.OutOrStdout(), "Try: taskwise chat --user you \"add buy milk to my list\"")
	return nil
}
