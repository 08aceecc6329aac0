package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mediasorter/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string
	var status string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded sort operations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch history.Status(status) {
			case "", history.StatusSuccess, history.StatusSkipped, history.StatusFailed:
			default:
				return fmt.Errorf("unknown status %q (want success, skipped, or failed)", status)
			}
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("history is disabled in the configuration")
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), history.ListOptions{
				Limit:  limit,
				RunID:  runID,
				Status: history.Status(status),
			})
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, records)
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No operations recorded")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				detail := rec.Destination
				if rec.Status != history.StatusSuccess {
					detail = rec.Message
				}
				status := string(rec.Status)
				if rec.DryRun {
					status += " (dry run)"
				}
				rows = append(rows, []string{
					strconv.FormatInt(rec.ID, 10),
					rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					status,
					rec.Action,
					rec.Source,
					detail,
				})
			}
			columns := cols("ID", "Time", "Status", "Action", "Source", "Destination / Reason")
			columns[0].Right = true
			columns[4].Path = true
			columns[5].Path = true
			renderRows(cmd.OutOrStdout(), columns, rows)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of operations to show (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "Only show operations from this run")
	cmd.Flags().StringVar(&status, "status", "", "Only show operations with this status")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
