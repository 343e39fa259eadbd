package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"artidicia/internal/history"
	"artidicia/internal/results"
	"artidicia/internal/stream"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and curate saved generations",
	}

	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryDeleteCommand(ctx))
	historyCmd.AddCommand(newHistoryRateCommand(ctx))

	return historyCmd
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var mode string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved generations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), history.ListOptions{Limit: limit, Mode: mode})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No saved generations.")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					strconv.FormatInt(rec.ID, 10),
					humanize.Time(rec.CreatedAt),
					rec.Mode,
					rec.Style,
					rec.SourceLabel,
					stars(rec.Rating),
					humanize.Bytes(uint64(len(rec.Content))),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Saved", "Mode", "Style", "Source", "Rating", "Size"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", history.DefaultListLimit, "Maximum records to show")
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "Only show records for this mode")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var expandAll bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved generation with its blocks classified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecordID(args[0])
			if err != nil {
				return err
			}
			store, err := ctx.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			rec, err := store.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "#%d · %s · %s", rec.ID, rec.Mode, rec.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			if rec.Style != "" {
				fmt.Fprintf(out, " · %s", rec.Style)
			}
			fmt.Fprintf(out, " · %s\n", stars(rec.Rating))
			if strings.TrimSpace(rec.Comment) != "" {
				fmt.Fprintf(out, "Comment: %s\n", rec.Comment)
			}
			fmt.Fprintln(out)

			parsed := stream.Parse(rec.Content, stream.Greedy)
			if !parsed.HasBlocks() {
				fmt.Fprintln(out, results.Reflow(rec.Content))
				return nil
			}
			renderClassified(out, results.Classify(parsed.Blocks), nil, expandAll, isTerminal(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&expandAll, "all", false, "Expand working blocks too")
	return cmd
}

func newHistoryDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecordID(args[0])
			if err != nil {
				return err
			}
			store, err := ctx.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted record %d\n", id)
			return nil
		},
	}
}

func newHistoryRateCommand(ctx *commandContext) *cobra.Command {
	var comment string

	cmd := &cobra.Command{
		Use:   "rate <id> <stars>",
		Short: fmt.Sprintf("Rate a saved generation from 0 to %d stars", history.MaxRating),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseRecordID(args[0])
			if err != nil {
				return err
			}
			rating, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid rating %q", args[1])
			}
			store, err := ctx.openHistory(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.Rate(cmd.Context(), id, rating, comment); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rated record %d %s\n", id, stars(rating))
			return nil
		},
	}

	cmd.Flags().StringVar(&comment, "comment", "", "Comment stored with the rating")
	return cmd
}

func parseRecordID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid record id %q", value)
	}
	return id, nil
}

func stars(rating int) string {
	rating = min(max(rating, 0), history.MaxRating)
	return strings.Repeat("★", rating) + strings.Repeat("☆", history.MaxRating-rating)
}
