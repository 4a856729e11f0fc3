// Package cli implements the dataprep command-line interface.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		env    string
		output string
	)

	rootCmd := &cobra.Command{
		Use:           "dataprep",
		Short:         "Churn data-preparation pipeline",
		Long:          "Batch pipeline that acquires, cleans, engineers, validates, and publishes the customer churn dataset.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment profile (development, staging, production)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "text", "output format: text or json")

	rootCmd.AddCommand(
		newRunCmd(),
		newServeCmd(),
		newRunsCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

// envFlag returns the --env persistent flag value.
func envFlag(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("env")
	return v
}

// outputFlag returns the --output persistent flag value.
func outputFlag(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

// printJSON writes indented JSON followed by a newline.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
