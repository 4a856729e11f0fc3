package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the resolved configuration",
	}
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the configuration after profiles and environment overrides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(envFlag(cmd))
			if err != nil {
				return err
			}

			if outputFlag(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), app.cfg)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Environment:      %s\n", app.cfg.Env)
			fmt.Fprintf(w, "Project:          %s\n", app.cfg.ProjectID)
			fmt.Fprintf(w, "Location:         %s\n", app.cfg.Location)
			fmt.Fprintf(w, "Bucket:           %s\n", app.cfg.Bucket)
			fmt.Fprintf(w, "Data prefix:      %s\n", app.cfg.DataPrefix)
			fmt.Fprintf(w, "Feature store:    %s/%s\n", app.cfg.FeatureStoreID, app.cfg.EntityTypeID)
			fmt.Fprintf(w, "Source URL:       %s\n", app.cfg.SourceURL)
			fmt.Fprintf(w, "Fallback path:    %s\n", app.cfg.FallbackPath)
			fmt.Fprintf(w, "Metadata DB:      %s\n", app.cfg.MetaDBPath)
			fmt.Fprintf(w, "Listen address:   %s\n", app.cfg.ListenAddr)
			fmt.Fprintf(w, "Schedule:         %s\n", emptyDash(app.cfg.Schedule))
			fmt.Fprintf(w, "Log level:        %s\n", app.cfg.LogLevel)
			if len(app.cfg.Warnings) > 0 {
				fmt.Fprintf(w, "Warnings:         %s\n", strings.Join(app.cfg.Warnings, "; "))
			}
			return nil
		},
	}
}

func emptyDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
