// Package main is the entry point for the dataprep CLI binary.
package main

import (
	"os"

	_ "github.com/mattn/go-sqlite3"

	"churnprep/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
