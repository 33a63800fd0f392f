package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codyseavey/tcg-catalog/internal/services"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write the normalized catalog to a JSON file",
	Long: `Export normalizes the pokemon-tcg-data checkout once and stores the result,
so servers can start from it with --catalog or TCG_CATALOG_FILE.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loader, _, err := loaderFromFlags()
		if err != nil {
			return err
		}
		payload, err := loader.Load(cmd.Context())
		if err != nil {
			return err
		}
		if err := services.WritePayloadFile(args[0], payload); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d cards from %d sets to %s\n", len(payload.Cards), payload.Lookups.Sets.Len(), args[0])
		return nil
	},
}
