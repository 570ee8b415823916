// Migrate command: move legacy inline images into the blob store.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var flagMigrateSweep bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Move legacy inline images into the blob store",
	Long: `Migrate rewrites records that still carry base64 image payloads so the
image lives in the blob store and the record only keeps a reference.
Safe to re-run: already-migrated records are skipped, and a record whose
image fails to store is left untouched for the next run.

With --sweep, blobs no record references anymore are removed afterwards.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&flagMigrateSweep, "sweep", false, "also remove orphaned blobs")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.MigrateAll(cmd.Context())
	if err != nil {
		return err
	}

	swept := 0
	if flagMigrateSweep {
		swept, err = a.SweepOrphans(cmd.Context())
		if err != nil {
			return err
		}
	}

	if flagJSON {
		out := struct {
			Total    int `json:"total"`
			Migrated int `json:"migrated"`
			Failed   int `json:"failed"`
			Skipped  int `json:"skipped"`
			Swept    int `json:"swept,omitempty"`
		}{res.Total, res.Migrated, res.Failed, res.Skipped, swept}
		data, err := json.Marshal(out)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Migrated %d of %d records (%d skipped, %d failed)\n",
		res.Migrated, res.Total, res.Skipped, res.Failed)
	if flagMigrateSweep {
		fmt.Printf("Swept %d orphaned blobs\n", swept)
	}
	if res.Failed > 0 {
		fmt.Println("Some images could not be stored; run migrate again to retry")
	}
	return nil
}
