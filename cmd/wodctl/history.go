package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/claude/wodgen/internal/models"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent generations",
	Long: `Lists recent generation runs from the local history database, or from
the server's audit log when --server is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			records []models.GenerationRecord
			err     error
		)
		if remote() {
			records, err = newClient().QueryGenerations(cmd.Context(), historyLimit)
		} else {
			h, oerr := openHistory()
			if oerr != nil {
				return oerr
			}
			defer h.Close()
			records, err = h.Recent(cmd.Context(), historyLimit)
		}
		if err != nil {
			return err
		}

		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no generations recorded")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "WHEN\tMIN\tTARGET\tOUTCOME\tWORKOUT\tMS")
		for _, r := range records {
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%d\n",
				r.CreatedAt.Local().Format("2006-01-02 15:04"),
				r.Minutes, r.Target, outcomeLabel(r), deref(r.WorkoutTitle), r.DurationMs)
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "number of records to show")
}

func outcomeLabel(r models.GenerationRecord) string {
	if len(r.ViolationCodes) > 0 {
		return r.Outcome + " (" + strings.Join(r.ViolationCodes, ",") + ")"
	}
	return r.Outcome
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
