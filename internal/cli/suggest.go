package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codyseavey/tcg-catalog/internal/catalog"
)

var suggestLimit int

var suggestCmd = &cobra.Command{
	Use:   "suggest <partial name>",
	Short: "Show autocomplete suggestions for a partial card name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		suggestions := engine.Suggest(args[0], suggestLimit)
		if len(suggestions) == 0 {
			fmt.Fprintln(out, "No suggestions.")
			return nil
		}
		for _, s := range suggestions {
			fmt.Fprintf(out, "%s  %s  %s\n",
				color.HiWhiteString("%s", s.Name),
				color.CyanString("%s", s.ID),
				color.HiBlackString("%s %s/%d", s.Set.Name, s.Number, s.Set.PrintedTotal))
		}
		return nil
	},
}

func init() {
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", catalog.DefaultSuggestLimit, "maximum suggestions")
}
