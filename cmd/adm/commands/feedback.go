// Package commands provides CLI commands for the admin tool
package commands

import (
	"context"
	"encoding/json"
	"os"
	"strconv"

	"feedbackboard/internal/models"
	"feedbackboard/internal/observability"
	"feedbackboard/internal/serviceinterfaces"
	contextutils "feedbackboard/internal/utils"

	"github.com/spf13/cobra"
)

// stdoutTarget selects standard output for export
const stdoutTarget = "-"

// FeedbackCommands returns the feedback management commands
func FeedbackCommands(registry serviceinterfaces.BoardRegistryInterface, logger *observability.Logger, opts *Options) *cobra.Command {
	feedbackCmd := &cobra.Command{
		Use:   "feedback",
		Short: "Feedback management commands",
		Long: `Feedback management commands for the library feedback board.

Available commands:
  list      - List feedback, optionally filtered by rating
  add       - Add a feedback record
  delete    - Delete one feedback record by id
  clear     - Delete all feedback
  export    - Write the CSV export to a file or stdout
  stats     - Show total, average rating and today's count`,
	}

	feedbackCmd.AddCommand(listCmd(registry, opts))
	feedbackCmd.AddCommand(addCmd(registry, logger, opts))
	feedbackCmd.AddCommand(deleteCmd(registry, logger, opts))
	feedbackCmd.AddCommand(clearCmd(registry, logger, opts))
	feedbackCmd.AddCommand(exportCmd(registry, logger, opts))
	feedbackCmd.AddCommand(feedbackStatsCmd(registry, opts))

	return feedbackCmd
}

func listCmd(registry serviceinterfaces.BoardRegistryInterface, opts *Options) *cobra.Command {
	var rating string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List feedback",
		Long:  `List feedback newest first. Use --rating to show a single rating (1-5) or "all".`,
		Args:  cobra.NoArgs,
		RunE:  runList(registry, opts, &rating, &asJSON),
	}

	cmd.Flags().StringVar(&rating, "rating", string(models.FilterAll), `rating filter: "all" or 1-5`)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the view as JSON")

	return cmd
}

func runList(registry serviceinterfaces.BoardRegistryInterface, opts *Options, rating *string, asJSON *bool) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := commandContext(cmd)

		board, err := registry.Board(ctx, opts.BoardID)
		if err != nil {
			return err
		}

		view, err := board.SetFilter(ctx, *rating)
		if err != nil {
			return err
		}

		if *asJSON {
			encoder := json.NewEncoder(opts.Out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(view)
		}

		if view.IsEmpty() {
			opts.printf("%s\n%s\n", view.EmptyTitle, view.EmptyMessage)
			return nil
		}

		opts.printf("%-14s %-6s %-20s %-22s %s\n", "ID", "RATING", "NAME", "DATE", "MESSAGE")
		for _, item := range view.Items {
			opts.printf("%-14d %-6d %-20s %-22s %s\n",
				item.ID, item.Rating, truncate(item.Name, 20), item.Date, truncate(item.Message, 60))
		}
		opts.printf("\n%s: %d\n", opts.text(contextutils.TextStatsFilterCount), view.Count)
		return nil
	}
}

func addCmd(registry serviceinterfaces.BoardRegistryInterface, logger *observability.Logger, opts *Options) *cobra.Command {
	var submission models.FeedbackSubmission

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a feedback record",
		Long:  `Add a feedback record. Name and message are required; rating is 1-5.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)

			board, err := registry.Board(ctx, opts.BoardID)
			if err != nil {
				return err
			}

			record, message, err := board.Add(ctx, submission)
			if err != nil {
				return err
			}

			logger.Info(ctx, "Feedback added from admin CLI", map[string]interface{}{
				"feedback_id": record.ID,
				"rating":      record.Rating,
			})
			opts.printf("%s\n", message)
			opts.printf("ID: %d\n", record.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&submission.Name, "name", "", "reviewer name (required)")
	cmd.Flags().StringVar(&submission.Message, "message", "", "feedback message (required)")
	cmd.Flags().IntVar(&submission.Rating, "rating", models.MaxRating, "rating from 1 to 5")

	return cmd
}

func deleteCmd(registry serviceinterfaces.BoardRegistryInterface, logger *observability.Logger, opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one feedback record",
		Long:  `Delete the feedback record with the given id. Asks for confirmation unless --yes is set.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return contextutils.WrapErrorf(contextutils.ErrInvalidInput, "invalid feedback id %q", args[0])
			}

			board, err := registry.Board(ctx, opts.BoardID)
			if err != nil {
				return err
			}

			confirmed, err := opts.confirm(opts.text(contextutils.TextConfirmDelete))
			if err != nil {
				return err
			}
			if !confirmed {
				opts.printf("%s\n", opts.text(contextutils.TextDeleteCancelled))
				return nil
			}

			deleted, err := board.Delete(ctx, id, true)
			if err != nil {
				return err
			}
			if !deleted {
				return contextutils.WrapErrorf(contextutils.ErrRecordNotFound, "feedback %d not found", id)
			}

			logger.Info(ctx, "Feedback deleted from admin CLI", map[string]interface{}{"feedback_id": id})
			opts.printf("%s\n", opts.text(contextutils.TextFeedbackDeleted))
			return nil
		},
	}
}

func clearCmd(registry serviceinterfaces.BoardRegistryInterface, logger *observability.Logger, opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all feedback",
		Long:  `Delete every feedback record on the board. Asks for confirmation unless --yes is set.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)

			board, err := registry.Board(ctx, opts.BoardID)
			if err != nil {
				return err
			}

			// An unconfirmed call only checks that there is something to clear
			if _, err := board.ClearAll(ctx, false); err != nil {
				return err
			}

			confirmed, err := opts.confirm(opts.text(contextutils.TextConfirmClear))
			if err != nil {
				return err
			}
			if !confirmed {
				opts.printf("%s\n", opts.text(contextutils.TextClearCancelled))
				return nil
			}

			message, err := board.ClearAll(ctx, true)
			if err != nil {
				return err
			}

			logger.Info(ctx, "All feedback cleared from admin CLI", map[string]interface{}{"board_id": opts.BoardID})
			opts.printf("%s\n", message)
			return nil
		},
	}
}

func exportCmd(registry serviceinterfaces.BoardRegistryInterface, logger *observability.Logger, opts *Options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export feedback as CSV",
		Long: `Export all feedback as CSV with the header Nama,Pesan,Rating,Tanggal.

Writes to the configured export filename by default; use --output - for stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)

			board, err := registry.Board(ctx, opts.BoardID)
			if err != nil {
				return err
			}

			file, err := board.Export(ctx)
			if err != nil {
				return err
			}

			if output == stdoutTarget {
				_, err := opts.Out.Write(file.Data)
				return err
			}

			path := output
			if path == "" {
				path = file.Filename
			}
			if err := os.WriteFile(path, file.Data, 0o600); err != nil {
				return contextutils.WrapErrorf(err, "failed to write export to %s", path)
			}

			logger.Info(ctx, "Feedback exported from admin CLI", map[string]interface{}{"path": path, "bytes": len(file.Data)})
			opts.printf("Exported to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", `destination file, or "-" for stdout`)

	return cmd
}

func feedbackStatsCmd(registry serviceinterfaces.BoardRegistryInterface, opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show feedback statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)

			board, err := registry.Board(ctx, opts.BoardID)
			if err != nil {
				return err
			}

			stats, err := board.Stats(ctx)
			if err != nil {
				return err
			}

			opts.printf("%-20s %d\n", opts.text(contextutils.TextStatsTotal)+":", stats.Total)
			opts.printf("%-20s %s\n", opts.text(contextutils.TextStatsAverage)+":", stats.AverageRating)
			opts.printf("%-20s %d\n", opts.text(contextutils.TextStatsToday)+":", stats.TodayCount)
			return nil
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := commandContext(cmd); ctx != nil {
		return ctx
	}
	return context.Background()
}
