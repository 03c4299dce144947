package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"athena/internal/config"
	"athena/internal/logging"
	"athena/internal/session"
)

var (
	// Global flags
	verbose    bool
	apiKey     string
	workspace  string
	configPath string
	noPIN      bool

	// Loaded in PersistentPreRunE
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "athena",
	Short: "Athena - a small creature that works, trades and talks",
	Long: `Athena is an interactive companion with a tiny economy.

She works for cash, eats, sleeps, trades BTC at the live BRL quote and
answers questions through Gemini, using web search when it is available.

Run without arguments to start the interactive session.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return bootstrap()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runInteractive,
}

// askCmd asks one question and exits
var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Ask one question (web search first, plain fallback)",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

// statusCmd shows the creature status
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the creature status without starting a session",
	RunE:  runStatus,
}

// diagnoseCmd lists models and probes the quote endpoint
var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "List available Gemini models and check the quote endpoint",
	RunE:  runDiagnose,
}

// usageCmd shows token accounting
var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show Gemini token usage by mode and model",
	RunE:  runUsage,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "Gemini API key (or set GEMINI_API_KEY env)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <workspace>/.athena/config.yaml)")
	rootCmd.Flags().BoolVar(&noPIN, "no-pin", false, "Skip the PIN gate")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(diagnoseCmd)
	rootCmd.AddCommand(usageCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, session.ErrAccessDenied) && !errors.Is(err, errNoAnswer) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// bootstrap resolves the workspace, loads .env and config, and starts logging.
func bootstrap() error {
	if workspace == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to resolve workspace: %w", err)
		}
		workspace = wd
	}
	abs, err := filepath.Abs(workspace)
	if err != nil {
		return fmt.Errorf("failed to resolve workspace: %w", err)
	}
	workspace = abs

	if err := config.LoadDotEnv(workspace); err != nil {
		return err
	}
	if configPath == "" {
		configPath = config.DefaultPath(workspace)
	}
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlagOverrides(loaded)
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	cfg = loaded

	if err := logging.Initialize(workspace, cfg.Logging.Options(verbose)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logging.Root().Info("athena starting",
		zap.String("workspace", workspace),
		zap.String("config", configPath),
		zap.String("model", cfg.LLM.Model),
		zap.Bool("api_key", cfg.LLM.HasAPIKey()),
	)
	return nil
}

// applyFlagOverrides applies command-line values, which beat env and file.
func applyFlagOverrides(c *config.Config) {
	if apiKey != "" {
		c.LLM.APIKey = apiKey
	}
	if noPIN {
		c.Security.PIN = ""
	}
}
