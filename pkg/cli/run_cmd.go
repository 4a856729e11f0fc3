package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"churnprep/internal/domain"
	"churnprep/internal/pipeline"
)

func newRunCmd() *cobra.Command {
	var localDir string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one data-preparation run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(envFlag(cmd))
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			store, closeStore, err := app.objectStore(ctx, localDir)
			if err != nil {
				return err
			}
			defer closeStore()

			repo, conn, err := app.openRunRepo()
			if err != nil {
				return err
			}
			defer func() { _ = conn.Close() }()

			p := pipeline.New(app.cfg, nil, store, app.featureStore(ctx), repo, app.logger)
			result := p.Run(ctx)

			if outputFlag(cmd) == "json" {
				if err := printJSON(cmd.OutOrStdout(), result); err != nil {
					return err
				}
			} else {
				printResult(cmd.OutOrStdout(), result)
			}

			if !result.Success {
				return fmt.Errorf("run %s failed: %s", result.RunID, result.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&localDir, "local-dir", "", "write the dataset to a local directory instead of the configured bucket")
	return cmd
}

// printResult writes a human-readable run summary.
func printResult(w io.Writer, r *domain.PipelineResult) {
	fmt.Fprintf(w, "Run:            %s\n", r.RunID)
	if !r.Success {
		fmt.Fprintf(w, "Status:         failed\n")
		fmt.Fprintf(w, "Error:          %s\n", r.Error)
		return
	}
	fmt.Fprintf(w, "Status:         success\n")
	fmt.Fprintf(w, "Data shape:     %d rows x %d columns\n", r.Rows, r.Columns)
	fmt.Fprintf(w, "Storage URI:    %s\n", r.StorageURI)
	fmt.Fprintf(w, "Feature store:  %s\n", okString(r.FeatureStoreOK))
	if r.Report != nil {
		fmt.Fprintf(w, "Label counts:   %v\n", r.Report.LabelDistribution)
		if len(r.Report.Issues) > 0 {
			fmt.Fprintf(w, "Issues:         %s\n", strings.Join(r.Report.Issues, ", "))
		} else {
			fmt.Fprintf(w, "Issues:         none\n")
		}
	}
}

func okString(ok bool) string {
	if ok {
		return "ok"
	}
	return "failed"
}
