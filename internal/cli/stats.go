package cli

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codyseavey/tcg-catalog/internal/models"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the loaded catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		cat := engine.Catalog()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "%s %s\n", color.CyanString("Snapshot:"), cat.ID)
		fmt.Fprintf(out, "%s %d\n", color.CyanString("Cards:   "), cat.Len())
		fmt.Fprintf(out, "%s %d\n", color.CyanString("Sets:    "), cat.Lookups.Sets.Len())
		if prices := engine.Prices(); prices != nil {
			fmt.Fprintf(out, "%s %d\n", color.CyanString("Priced:  "), prices.Len())
		}

		options := cat.FilterOptions()
		fields := make([]string, 0, len(options))
		for f := range options {
			fields = append(fields, string(f))
		}
		sort.Strings(fields)

		fmt.Fprintln(out)
		for _, f := range fields {
			fmt.Fprintf(out, "%-10s %d distinct values\n", f, len(options[models.FilterField(f)]))
		}
		return nil
	},
}
