// Package main provides the lifelog CLI: a local-first tracker for
// expenses, sleep, diaries, and reading/music logs. The CLI is a thin
// layer over the storage engines; it hands files to the import/export
// engine and prints the returned counts or error messages verbatim.
package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
