package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifelog-dev/lifelog/pkg/types"
)

// cliEnv pins each command invocation to throwaway config and data dirs.
type cliEnv struct {
	configDir string
	dataDir   string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	return &cliEnv{
		configDir: t.TempDir(),
		dataDir:   t.TempDir(),
	}
}

// resetFlags clears sticky package-level flag values between invocations;
// cobra only overwrites values that appear on the command line.
func resetFlags() {
	flagJSON = false
	flagImportYes = false
	flagExportDir = "."
	flagExportStdout = false
	flagMigrateSweep = false
	flagCategoryKind = "expense"
	flagLedgerAmount = ""
	flagLedgerCategory = ""
	flagLedgerDate = ""
	flagLedgerDescription = ""
	flagLedgerMonth = ""
}

// run executes the root command in-process and captures stdout.
func (env *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	full := append([]string{"--config-dir", env.configDir, "--data-dir", env.dataDir}, args...)
	rootCmd.SetArgs(full)

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	runErr := rootCmd.Execute()

	w.Close()
	os.Stdout = old
	out, readErr := io.ReadAll(r)
	require.NoError(t, readErr)
	return string(out), runErr
}

func (env *cliEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := env.run(t, args...)
	require.NoError(t, err)
	return out
}

func TestExpenseLifecycle(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "expense", "add",
		"--amount", "42.5", "--category", "餐饮",
		"--date", "2025-01-02", "--description", "午餐")
	assert.Contains(t, out, "Added expense")

	out = env.mustRun(t, "expense", "list", "--json")
	var recs []types.Expense
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs, 1)
	assert.Equal(t, "2025-01-02", recs[0].Date)
	assert.Equal(t, "餐饮", recs[0].Category)
	assert.Equal(t, "42.5", recs[0].Amount.String())

	env.mustRun(t, "expense", "delete", recs[0].ID)

	out = env.mustRun(t, "expense", "list", "--json")
	recs = nil
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	assert.Empty(t, recs)
}

func TestExpenseAddRejectsUnknownCategory(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "expense", "add", "--amount", "10", "--category", "滑雪")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "滑雪")
}

func TestImportExportRoundTrip(t *testing.T) {
	env := newCLIEnv(t)

	envelope := `{
		"version": "1.0.0",
		"exportDate": "2025-01-02T10:00:00Z",
		"expenses": [
			{"id": "e1", "date": "2025-01-01", "amount": 42.5, "category": "滑雪", "createdAt": "2025-01-01T12:00:00Z"}
		],
		"incomes": [],
		"totalExpenses": 1,
		"totalIncomes": 0
	}`
	path := filepath.Join(t.TempDir(), "ledger-2025-01-02.json")
	require.NoError(t, os.WriteFile(path, []byte(envelope), 0o644))

	// --yes creates the unknown 滑雪 category without prompting.
	out := env.mustRun(t, "import", "ledger", path, "--yes")
	assert.Contains(t, out, "Imported 1, skipped 0 (of 1)")

	out = env.mustRun(t, "category", "list", "--json")
	var cats []string
	require.NoError(t, json.Unmarshal([]byte(out), &cats))
	assert.Contains(t, cats, "滑雪")

	// Re-importing the same file only skips.
	out = env.mustRun(t, "import", "ledger", path)
	assert.Contains(t, out, "Imported 0, skipped 1 (of 1)")

	out = env.mustRun(t, "export", "ledger", "--stdout")
	assert.Contains(t, out, `"e1"`)
	assert.Contains(t, out, "42.5")

	outDir := t.TempDir()
	out = env.mustRun(t, "export", "ledger", "-o", outDir)
	assert.Contains(t, out, outDir)
}

func TestImportRejectsUnknownFamily(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run(t, "import", "grocery", "nope.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown family")
}

func TestCategoryCommands(t *testing.T) {
	env := newCLIEnv(t)

	env.mustRun(t, "category", "add", "副业", "--kind", "income")

	out := env.mustRun(t, "category", "list", "--kind", "income", "--json")
	var cats []string
	require.NoError(t, json.Unmarshal([]byte(out), &cats))
	assert.Contains(t, cats, "副业")

	env.mustRun(t, "category", "rename", "副业", "咨询", "--kind", "income")
	env.mustRun(t, "category", "delete", "咨询", "--kind", "income")

	// The fallback category cannot be deleted.
	_, err := env.run(t, "category", "delete", "其他", "--kind", "income")
	require.Error(t, err)
}

func TestMigrateOnEmptyStore(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun(t, "migrate")
	assert.Contains(t, out, "Migrated 0 of 0 records")
}

func TestFirstRunWritesDefaultConfig(t *testing.T) {
	env := newCLIEnv(t)

	env.mustRun(t, "expense", "list")

	_, err := os.Stat(filepath.Join(env.configDir, "config.yaml"))
	require.NoError(t, err)
}
