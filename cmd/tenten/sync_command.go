package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"tenten/pkg/pipeline"
)

func newSyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync [word]...",
		Short: "Create Anki cards for vocabulary words and their kanji dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No words given. Pass one or more vocabulary words, e.g.: tenten sync 食い止める")
				return nil
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			conn, err := ctx.openDB()
			if err != nil {
				return err
			}
			defer conn.Close()

			p, err := ctx.newPipeline(conn)
			if err != nil {
				return err
			}

			for _, word := range args {
				res, err := p.Run(runCtx, word)
				if err != nil {
					return fmt.Errorf("sync %s: %w", word, err)
				}
				printResult(cmd, res)
			}
			return nil
		},
	}
}

func printResult(cmd *cobra.Command, res *pipeline.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: vocab %s", res.Word, res.VocabStatus)
	if len(res.CreatedKanji) > 0 {
		fmt.Fprintf(out, ", kanji created: %s", strings.Join(res.CreatedKanji, " "))
	}
	if len(res.CreatedRadicals) > 0 {
		fmt.Fprintf(out, ", radicals created: %s", strings.Join(res.CreatedRadicals, ", "))
	}
	if len(res.Fallback) > 0 {
		fmt.Fprintf(out, ", furigana fallback: %s", strings.Join(res.Fallback, " "))
	}
	fmt.Fprintln(out)
}
