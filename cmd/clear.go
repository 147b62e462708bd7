package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/sadopc/billr/internal/billing"
	"github.com/sadopc/billr/internal/logger"
	"github.com/spf13/cobra"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved document and restart numbering",
	Long: `Remove all saved invoices and quotations together with both number
counters. The next invoice is AINV001 and the next quotation AQUT001.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

func init() {
	rootCmd.AddCommand(clearCmd)

	clearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

func runClear(cmd *cobra.Command, _ []string) error {
	docs := billing.NewDocumentStore(env.store)
	counts := docs.Counts()

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %d invoices and %d quotations?", counts.Invoices, counts.Quotations)).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing deleted.")
			return nil
		}
	}

	if err := docs.Clear(); err != nil {
		return err
	}

	l := logger.WithComponent("clear")
	l.Info().Int("invoices", counts.Invoices).Int("quotations", counts.Quotations).Msg("storage cleared")
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d invoices and %d quotations.\n", counts.Invoices, counts.Quotations)
	return nil
}
