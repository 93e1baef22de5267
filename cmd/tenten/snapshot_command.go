package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"tenten/pkg/subjects"
)

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage the local subject snapshot",
	}
	snapshotCmd.AddCommand(newSnapshotDownloadCommand(ctx))
	snapshotCmd.AddCommand(newSnapshotInfoCommand(ctx))
	return snapshotCmd
}

func newSnapshotDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download",
		Short: "Download all subjects from the WaniKani API into the snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			token, err := readToken(cfg.WaniKani.TokenFile)
			if err != nil {
				return err
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			dl := subjects.NewDownloader(token)
			dl.BaseURL = cfg.WaniKani.BaseURL
			count, err := dl.DownloadToFile(runCtx, cfg.Paths.Snapshot)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d subjects to %s\n", count, cfg.Paths.Snapshot)
			return nil
		},
	}
}

func newSnapshotInfoCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the size of the local snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			snap, err := subjects.Load(cfg.Paths.Snapshot)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d subjects\n", cfg.Paths.Snapshot, snap.Len())
			return nil
		},
	}
}

// readToken reads the API token from a file, preferring the
// WANIKANI_TOKEN environment variable when set.
func readToken(path string) (string, error) {
	if tok := strings.TrimSpace(os.Getenv("WANIKANI_TOKEN")); tok != "" {
		return tok, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read token file %s (or set WANIKANI_TOKEN): %w", path, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", path)
	}
	return token, nil
}
