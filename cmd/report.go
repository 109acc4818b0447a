package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"safetyhub/internal/domain/auth"
	"safetyhub/internal/errs"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the pending signatures report",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		windowDays, _ := cmd.Flags().GetInt("window")

		actor := auth.Context{UserID: 1, Role: auth.RoleSuperAdmin}
		rows, err := deps.TalkSvc.PendingSignatures(cmd.Context(), actor, windowDays)
		if err != nil {
			return errs.Wrap(err, "query pending signatures")
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TALK\tSIGNED\tDAYS AGO\tPENDING")
		for _, row := range rows {
			fmt.Fprintf(w, "%s\t%d/%d\t%d\t%s\n",
				row.TalkTitle,
				row.TotalSigned, row.TotalDistributed,
				row.DaysSinceDistribution,
				strings.Join(row.PendingNames, ", "),
			)
		}
		if err := w.Flush(); err != nil {
			return errs.Wrap(err, "write report output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().Int("window", 30, "Trailing window in days")
}
