// Export command: write a family's collection as a JSON export file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lifelog-dev/lifelog/internal/impexp"
	"github.com/lifelog-dev/lifelog/pkg/types"
)

var (
	flagExportDir    string
	flagExportStdout bool
)

var exportCmd = &cobra.Command{
	Use:   "export <family>",
	Short: "Export a family's records to a JSON file",
	Long: `Export writes the family's current collection as a self-contained JSON
file named <family>-<date>.json. Image attachments are inlined so the file
can be imported anywhere.

Example:
  lifelog export ledger
  lifelog export diary -o /backups
  lifelog export sleep --stdout`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagExportDir, "out-dir", "o", ".", "directory to write the export file into")
	exportCmd.Flags().BoolVar(&flagExportStdout, "stdout", false, "write the envelope to stdout instead of a file")
}

func runExport(cmd *cobra.Command, args []string) error {
	family, err := types.ParseFamily(args[0])
	if err != nil {
		return fmt.Errorf("unknown family %q, expected one of: %s", args[0], familyList())
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	engine := impexp.New(a, nil, a.Log)

	if flagExportStdout {
		return engine.Export(cmd.Context(), family, os.Stdout)
	}

	path, err := engine.ExportToFile(cmd.Context(), family, flagExportDir)
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}
