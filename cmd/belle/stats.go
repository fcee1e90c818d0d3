package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"belle/internal/analytics"
	"belle/internal/storage"
)

var (
	statsDate string
	statsJSON bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize one day of usage from the interaction log",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		day := time.Now()
		if statsDate != "" {
			d, err := time.ParseInLocation("2006-01-02", statsDate, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --date: %w", err)
			}
			day = d
		}

		rec, err := storage.NewFileRecorder(cfg.InteractionLogPath)
		if err != nil {
			return err
		}
		events, err := rec.LoadInteractions()
		if err != nil {
			return err
		}
		stats := analytics.AnalyzeDailyLogs(events, day)

		if statsJSON {
			out, err := stats.ToJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), stats.GenerateReportSummary())
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsDate, "date", "", "day to summarize as YYYY-MM-DD (default today)")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print JSON instead of text")
}
