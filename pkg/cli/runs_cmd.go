package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded pipeline runs",
	}
	cmd.AddCommand(newRunsListCmd(), newRunsShowCmd())
	return cmd
}

func newRunsListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(envFlag(cmd))
			if err != nil {
				return err
			}
			repo, conn, err := app.openRunRepo()
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			runs, err := repo.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if outputFlag(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), runs)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN ID\tSTATUS\tROWS\tCOLUMNS\tFEATURE STORE\tSTARTED")
			for _, r := range runs {
				status := "success"
				if !r.Success {
					status = "failed"
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
					r.RunID, status, r.Rows, r.Columns, okString(r.FeatureStoreOK),
					r.StartedAt.Local().Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")
	return cmd
}

func newRunsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run, including its quality report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(envFlag(cmd))
			if err != nil {
				return err
			}
			repo, conn, err := app.openRunRepo()
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			run, err := repo.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), run)
		},
	}
}
