// Category commands: manage the ledger category taxonomies.
package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lifelog-dev/lifelog/internal/category"
)

var flagCategoryKind string

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage expense and income categories",
	Long: `Category manages the ordered category lists of the two ledger families.
Every list keeps a fallback category that cannot be deleted; deleting any
other category reassigns its records to the fallback.

Select the list with --kind expense (default) or --kind income.`,
}

func init() {
	categoryCmd.PersistentFlags().StringVar(&flagCategoryKind, "kind", "expense", "taxonomy kind: expense or income")

	categoryCmd.AddCommand(categoryListCmd)
	categoryCmd.AddCommand(categoryAddCmd)
	categoryCmd.AddCommand(categoryRenameCmd)
	categoryCmd.AddCommand(categoryDeleteCmd)
	categoryCmd.AddCommand(categoryOrderCmd)
}

func categoryKind() (category.Kind, error) {
	switch flagCategoryKind {
	case "expense":
		return category.KindExpense, nil
	case "income":
		return category.KindIncome, nil
	}
	return "", fmt.Errorf("unknown kind %q, expected expense or income", flagCategoryKind)
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories in display order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := categoryKind()
		if err != nil {
			return err
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		names := a.Categories.List(kind)
		if flagJSON {
			data, err := json.Marshal(names)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}
		sentinel := a.Categories.Sentinel(kind)
		for _, name := range names {
			if name == sentinel {
				fmt.Printf("%s (fallback)\n", name)
			} else {
				fmt.Println(name)
			}
		}
		return nil
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := categoryKind()
		if err != nil {
			return err
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		added, err := a.Categories.Add(kind, args[0])
		if err != nil {
			return err
		}
		if !added {
			fmt.Printf("Category %s already exists\n", args[0])
			return nil
		}
		fmt.Printf("Added category %s\n", args[0])
		return nil
	},
}

var categoryRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a category and update its records",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := categoryKind()
		if err != nil {
			return err
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		renamed, err := a.Categories.Rename(kind, args[0], args[1])
		if err != nil {
			return err
		}
		if !renamed {
			return fmt.Errorf("cannot rename %s to %s: old name missing or new name taken", args[0], args[1])
		}
		fmt.Printf("Renamed %s to %s\n", args[0], args[1])
		return nil
	},
}

var categoryDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a category, reassigning its records to the fallback",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := categoryKind()
		if err != nil {
			return err
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		deleted, err := a.Categories.Delete(kind, args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return fmt.Errorf("cannot delete %s: not found or it is the fallback category", args[0])
		}
		fmt.Printf("Deleted category %s\n", args[0])
		return nil
	},
}

var categoryOrderCmd = &cobra.Command{
	Use:   "order <name> [name...]",
	Short: "Set the display order of all categories",
	Long: `Order persists a new display order. The arguments must name every
current category exactly once, the fallback included.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, err := categoryKind()
		if err != nil {
			return err
		}
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Categories.SaveOrder(kind, args); err != nil {
			return err
		}
		fmt.Println("Saved category order")
		return nil
	},
}
