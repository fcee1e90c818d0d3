package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"belle/internal/history"
)

var historyFormat string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the conversation transcript",
	Long: `Prints the remembered conversation in order.

Example:
  belle history --format yaml > transcript.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(cfg.ChatLogPath(), logger.Named("history"))
		if err != nil {
			return err
		}
		var out []byte
		switch historyFormat {
		case "json":
			out, err = json.MarshalIndent(store.Snapshot(), "", "  ")
			out = append(out, '\n')
		case "yaml":
			out, err = yaml.Marshal(store.Snapshot())
		default:
			return fmt.Errorf("unknown format %q (want json or yaml)", historyFormat)
		}
		if err != nil {
			return fmt.Errorf("encode transcript: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

var historyResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the conversation transcript",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(cfg.ChatLogPath(), logger.Named("history"))
		if err != nil {
			return err
		}
		n := store.Len()
		if err := store.Reset(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d turns from %s\n", n, store.Path())
		return nil
	},
}

var historyBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write a timestamped copy of the transcript to BACKUP_DIR",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(cfg.ChatLogPath(), logger.Named("history"))
		if err != nil {
			return err
		}
		path, err := store.Backup(cfg.BackupDir, time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "json", "output format: json or yaml")
}
