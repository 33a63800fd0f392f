package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codyseavey/tcg-catalog/internal/catalog"
	"github.com/codyseavey/tcg-catalog/internal/models"
)

var (
	searchFilters []string
	searchSort    string
	searchOrder   string
	searchLimit   int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search, filter and sort the catalog",
	Long: `Search lists catalog cards matching a free-text query and filters.

Filters take the form field=value[,value...] and may be repeated. Fields:
set, series, rarity, supertype, artist, types, subtypes, abilities, attacks, rules.

Examples:
  tcgq search pikachu
  tcgq search --filter types=Fire --sort hp --order desc
  tcgq search chrizard --filter set=base1 --limit 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filters, err := parseFilterFlags(searchFilters)
		if err != nil {
			return err
		}
		cr := models.Criteria{
			Filters:   filters,
			SortBy:    models.SortKey(searchSort),
			SortOrder: models.SortOrder(strings.ToLower(searchOrder)),
		}
		if len(args) == 1 {
			cr.Search = args[0]
		}
		if cr.SortBy != "" && !cr.SortBy.IsValid() {
			return fmt.Errorf("unknown sort key %q", searchSort)
		}
		if cr.SortOrder != "" && !cr.SortOrder.IsValid() {
			return fmt.Errorf("unknown sort order %q", searchOrder)
		}
		cr = catalog.FromQuery(cr)

		engine, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		cards, err := engine.Query(cr)
		if err != nil {
			return err
		}

		printCards(cmd.OutOrStdout(), cards, searchLimit)
		fmt.Fprintf(cmd.OutOrStdout(), "%d cards, sorted by %s %s\n", len(cards), cr.SortBy, cr.SortOrder)
		return nil
	},
}

func init() {
	searchCmd.Flags().StringArrayVarP(&searchFilters, "filter", "f", nil, "filter as field=v1,v2 (repeatable)")
	searchCmd.Flags().StringVarP(&searchSort, "sort", "s", "", "sort key (relevance, name, number, set, releaseDate, pokedex, rarity, artist, hp, price)")
	searchCmd.Flags().StringVarP(&searchOrder, "order", "o", "", "sort order (asc or desc)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "maximum cards to print (0 for all)")
}

// parseFilterFlags turns repeated field=v1,v2 flags into criteria filters
func parseFilterFlags(flags []string) (map[models.FilterField][]string, error) {
	var out map[models.FilterField][]string
	for _, f := range flags {
		name, values, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("filter %q must look like field=value", f)
		}
		field := models.FilterField(strings.TrimSpace(name))
		if !field.IsValid() {
			return nil, fmt.Errorf("unknown filter field %q", name)
		}
		for _, v := range strings.Split(values, ",") {
			if v = strings.TrimSpace(v); v == "" {
				continue
			}
			if out == nil {
				out = make(map[models.FilterField][]string)
			}
			out[field] = append(out[field], v)
		}
	}
	return out, nil
}

func printCards(w io.Writer, cards []models.ViewCard, limit int) {
	if limit <= 0 || limit > len(cards) {
		limit = len(cards)
	}
	name := color.New(color.FgHiWhite, color.Bold)
	id := color.New(color.FgCyan)
	dim := color.New(color.FgHiBlack)
	price := color.New(color.FgGreen)

	for i, c := range cards[:limit] {
		line := fmt.Sprintf("%4d. %s  %s  %s",
			i+1,
			name.Sprint(c.Name),
			id.Sprint(c.ID),
			dim.Sprintf("%s %s/%d", c.Set.Name, c.Number, c.Set.PrintedTotal))
		if c.Rarity != "" {
			line += "  " + c.Rarity
		}
		if v, ok := c.Price.Market(); ok {
			line += "  " + price.Sprintf("$%.2f", v)
		}
		fmt.Fprintln(w, line)
	}
	if limit < len(cards) {
		fmt.Fprintln(w, dim.Sprintf("      ... %d more", len(cards)-limit))
	}
}
