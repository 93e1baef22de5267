package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tenten/pkg/db"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sync runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer conn.Close()

			recs, err := db.RecentSyncs(conn, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(recs) == 0 {
				fmt.Fprintln(out, "No sync runs recorded yet.")
				return nil
			}
			for _, rec := range recs {
				fmt.Fprintf(out, "%s  %-12s vocab %s, %d kanji, %d radicals",
					rec.SyncedAt.Format("2006-01-02 15:04"), rec.Word, rec.VocabStatus, rec.KanjiCreated, rec.RadicalsCreated)
				if rec.Fallback != "" {
					fmt.Fprintf(out, ", fallback %s", rec.Fallback)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	return cmd
}
