package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"belle/internal/config"
	"belle/internal/logging"
)

var (
	// Global flags
	envFile  string
	logLevel string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "belle",
	Short: "BELLE - intent-dispatching console assistant",
	Long: `BELLE classifies what you type into one or more intents and routes each
to a capability: chat, realtime web search, trend advice, image generation
or image analysis. Replies are merged into one answer and the conversation
is remembered across sessions.

Run without arguments to start the interactive chat.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envErr := godotenv.Load(envFile)

		var err error
		cfg, err = config.New()
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		logger, err = logging.New(cfg.LogLevel, cfg.LogPath)
		if err != nil {
			return err
		}
		if envErr != nil {
			logger.Warn(".env file not loaded", zap.String("path", envFile), zap.Error(envErr))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runChat,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	historyCmd.AddCommand(historyResetCmd, historyBackupCmd)
	rootCmd.AddCommand(historyCmd, statsCmd, watchImagesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
