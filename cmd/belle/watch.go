package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"belle/internal/huggingface"
	"belle/internal/imagegen"
)

var watchImagesCmd = &cobra.Command{
	Use:   "watch-images",
	Short: "Generate images whenever the control file requests it",
	Long: `Watches IMAGE_CONTROL_FILE. Writing "<prompt>,True" to it generates the
images for <prompt>; the file is then reset to "False,False".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		hf, err := huggingface.New(cfg.HuggingFaceAPIKey, nil)
		if err != nil {
			return fmt.Errorf("image generation: %w", err)
		}
		w := imagegen.NewWatcher(newGenerator(hf), cfg.ImageControlFile, logger.Named("watcher"))
		fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", cfg.ImageControlFile)
		return w.Run(ctx)
	},
}
