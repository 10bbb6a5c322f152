// Package cli wires the pipeline components and exposes the docqa commands.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"docqa/internal/config"
	"docqa/internal/logger"
)

var (
	cfgPath string
	cfg     *config.AppConfig
	log     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "docqa",
	Short: "Ask grounded, citation-bearing questions about a document corpus",
	Long: `docqa chunks documents, indexes them in a vector store and answers
natural-language questions with citations back to the exact passage.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		if cfgPath == "" {
			cfg, _, err = config.LoadDefault()
		} else {
			cfg, err = config.Load(cfgPath)
		}
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		log = logger.New(cfg.Logging.Level, cfg.Logging.File)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(askCmd, indexCmd, validateCmd)
}
