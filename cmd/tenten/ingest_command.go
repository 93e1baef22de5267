package main

import (
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"tenten/pkg/ingest"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var urlFlag string
	var fileFlag string
	var dryRun bool
	var limit int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Extract vocabulary from an article and sync each word",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (urlFlag == "") == (fileFlag == "") {
				return fmt.Errorf("pass exactly one of --url or --file")
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			var article *ingest.Article
			var err error
			if urlFlag != "" {
				article, err = ingest.FetchArticle(runCtx, nil, urlFlag)
			} else {
				var f *os.File
				f, err = os.Open(fileFlag)
				if err != nil {
					return err
				}
				defer f.Close()
				base, _ := url.Parse("http://localhost/" + fileFlag)
				article, err = ingest.ReadArticle(f, base)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Article: %s (%d chars)\n", article.Title, len(article.Text))

			analyzer, err := ingest.NewAnalyzer()
			if err != nil {
				return err
			}
			words := analyzer.CandidateWords(article.Text)
			if limit > 0 && len(words) > limit {
				words = words[:limit]
			}
			if len(words) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No candidate words found.")
				return nil
			}

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Candidates (%d): %s\n", len(words), strings.Join(words, " "))
				return nil
			}

			conn, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer conn.Close()

			p, err := ctx.newPipeline(conn)
			if err != nil {
				return err
			}

			// Individual failures (no exact dictionary match, multiple
			// unresolved kanji) are expected across a whole article; they skip
			// the word, not the run.
			var failed int
			for _, word := range words {
				if runCtx.Err() != nil {
					return runCtx.Err()
				}
				res, err := p.Run(runCtx, word)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "skip %s: %v\n", word, err)
					continue
				}
				printResult(cmd, res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Done: %d synced, %d skipped.\n", len(words)-failed, failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&urlFlag, "url", "", "Article URL to ingest")
	cmd.Flags().StringVar(&fileFlag, "file", "", "Local HTML file to ingest")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List candidate words without syncing")
	cmd.Flags().IntVar(&limit, "limit", 0, "Sync at most this many words (0 = all)")
	return cmd
}
