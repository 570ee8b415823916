// Ledger record commands: add, list, and delete expenses and incomes.
package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/lifelog-dev/lifelog/internal/app"
	"github.com/lifelog-dev/lifelog/internal/category"
	"github.com/lifelog-dev/lifelog/internal/store"
	"github.com/lifelog-dev/lifelog/pkg/types"
)

var (
	flagLedgerAmount      string
	flagLedgerCategory    string
	flagLedgerDate        string
	flagLedgerDescription string
	flagLedgerMonth       string
)

var expenseCmd = &cobra.Command{
	Use:   "expense",
	Short: "Record and inspect expenses",
}

var incomeCmd = &cobra.Command{
	Use:   "income",
	Short: "Record and inspect incomes",
}

func init() {
	expenseCmd.AddCommand(expenseAddCmd)
	expenseCmd.AddCommand(expenseListCmd)
	expenseCmd.AddCommand(expenseDeleteCmd)

	incomeCmd.AddCommand(incomeAddCmd)
	incomeCmd.AddCommand(incomeListCmd)
	incomeCmd.AddCommand(incomeDeleteCmd)

	for _, cmd := range []*cobra.Command{expenseAddCmd, incomeAddCmd} {
		cmd.Flags().StringVar(&flagLedgerAmount, "amount", "", "amount, e.g. 42.5 (required)")
		cmd.Flags().StringVar(&flagLedgerCategory, "category", "", "category name (required)")
		cmd.Flags().StringVar(&flagLedgerDate, "date", "", "date as 2006-01-02 (default: today)")
		cmd.Flags().StringVar(&flagLedgerDescription, "description", "", "free-form note")
	}
	for _, cmd := range []*cobra.Command{expenseListCmd, incomeListCmd} {
		cmd.Flags().StringVar(&flagLedgerMonth, "month", "", "only records of this month, e.g. 2025-01")
	}
}

// ledgerFields validates the shared add flags and returns the parsed
// values, filling in today's date when --date is omitted.
func ledgerFields(a *app.App, kind category.Kind) (amount types.Amount, date string, err error) {
	amount, err = types.NewAmount(flagLedgerAmount)
	if err != nil {
		return amount, "", err
	}
	if !amount.InRange() {
		return amount, "", fmt.Errorf("amount must be positive and at most %s", types.MaxAmount)
	}

	if !a.Categories.Contains(kind, flagLedgerCategory) {
		return amount, "", fmt.Errorf("unknown category %q, expected one of: %s",
			flagLedgerCategory, strings.Join(a.Categories.List(kind), ", "))
	}

	date = flagLedgerDate
	if date == "" {
		date = time.Now().Format(types.DateLayout)
	} else if _, perr := time.Parse(types.DateLayout, date); perr != nil {
		return amount, "", fmt.Errorf("invalid date %q, expected 2006-01-02", date)
	}
	return amount, date, nil
}

// printLedger lists records in canonical order, optionally filtered to one
// month, as text or JSON.
func printLedger[T types.Record](st *store.Store[T]) error {
	recs := st.Load()
	if flagLedgerMonth != "" {
		filtered := recs[:0]
		for _, rec := range recs {
			if strings.HasPrefix(rec.RecordDate(), flagLedgerMonth) {
				filtered = append(filtered, rec)
			}
		}
		recs = filtered
	}
	if flagJSON {
		data, err := json.Marshal(recs)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}
	for _, rec := range recs {
		fmt.Println(formatLedgerLine(rec))
	}
	return nil
}

func formatLedgerLine(rec types.Record) string {
	switch r := any(rec).(type) {
	case *types.Expense:
		return fmt.Sprintf("%s  %s  %10s  %-8s  %s", r.ID, r.Date, r.Amount, r.Category, r.Description)
	case *types.Income:
		return fmt.Sprintf("%s  %s  %10s  %-8s  %s", r.ID, r.Date, r.Amount, r.Category, r.Description)
	}
	return fmt.Sprintf("%s  %s", rec.RecordID(), rec.RecordDate())
}

var expenseAddCmd = &cobra.Command{
	Use:   "add --amount <n> --category <name>",
	Short: "Record an expense",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		amount, date, err := ledgerFields(a, category.KindExpense)
		if err != nil {
			return err
		}
		rec := &types.Expense{
			ID:          types.NewID(),
			Date:        date,
			Amount:      amount,
			Category:    flagLedgerCategory,
			Description: flagLedgerDescription,
			CreatedAt:   types.NowISO(),
		}
		if err := a.Expenses.Add(rec); err != nil {
			return err
		}
		fmt.Printf("Added expense %s\n", rec.ID)
		return nil
	},
}

var expenseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return printLedger(a.Expenses)
	},
}

var expenseDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an expense by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Expenses.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted expense %s\n", args[0])
		return nil
	},
}

var incomeAddCmd = &cobra.Command{
	Use:   "add --amount <n> --category <name>",
	Short: "Record an income",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		amount, date, err := ledgerFields(a, category.KindIncome)
		if err != nil {
			return err
		}
		rec := &types.Income{
			ID:          types.NewID(),
			Date:        date,
			Amount:      amount,
			Category:    flagLedgerCategory,
			Description: flagLedgerDescription,
			CreatedAt:   types.NowISO(),
		}
		if err := a.Incomes.Add(rec); err != nil {
			return err
		}
		fmt.Printf("Added income %s\n", rec.ID)
		return nil
	},
}

var incomeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List incomes, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return printLedger(a.Incomes)
	},
}

var incomeDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an income by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Incomes.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted income %s\n", args[0])
		return nil
	},
}
