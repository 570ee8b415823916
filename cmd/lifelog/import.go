// Import command: merge an export file into the local stores.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lifelog-dev/lifelog/internal/impexp"
	"github.com/lifelog-dev/lifelog/pkg/types"
)

var flagImportYes bool

var importCmd = &cobra.Command{
	Use:   "import <family> <file>",
	Short: "Import an export file into the local store",
	Long: `Import merges a previously exported JSON file into the local store.

Records already present (same id, or same date for once-per-day families)
are skipped, never overwritten. Categories the file references that do not
exist yet are created after confirmation; --yes skips the prompt.

Families: ` + familyList() + `

Example:
  lifelog import ledger ledger-2025-01-01.json
  lifelog import diary diary-2025-01-01.json --yes`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagImportYes, "yes", false, "create missing categories without prompting")
}

func familyList() string {
	names := make([]string, 0, len(types.Families))
	for _, f := range types.Families {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func runImport(cmd *cobra.Command, args []string) error {
	family, err := types.ParseFamily(args[0])
	if err != nil {
		return fmt.Errorf("unknown family %q, expected one of: %s", args[0], familyList())
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	confirm := promptConfirm
	if flagImportYes {
		confirm = nil // engine default accepts
	}
	engine := impexp.New(a, confirm, a.Log)

	res, err := engine.Import(cmd.Context(), family, args[1])
	if err != nil {
		return err
	}

	if flagJSON {
		out, err := json.Marshal(res)
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	} else {
		fmt.Printf("Imported %d, skipped %d (of %d)\n", res.Imported, res.Skipped, res.Total)
	}

	if family.HasAttachments() && a.NeedsMigration() {
		fmt.Fprintln(os.Stderr, "Note: some records still hold inline images; run 'lifelog migrate'")
	}
	return nil
}

// promptConfirm asks on the terminal whether the missing categories may be
// created. Any answer other than y/yes declines and aborts the import.
func promptConfirm(missing []string) bool {
	fmt.Printf("The file references categories that do not exist yet:\n  %s\nCreate them? [y/N] ",
		strings.Join(missing, ", "))
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
