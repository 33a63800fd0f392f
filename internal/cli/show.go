package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/codyseavey/tcg-catalog/internal/models"
)

var showCmd = &cobra.Command{
	Use:   "show <card id>",
	Short: "Display every attribute of one card",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(cmd.Context())
		if err != nil {
			return err
		}
		card, ok := engine.Card(args[0])
		if !ok {
			return fmt.Errorf("card %s not found", args[0])
		}
		printCard(cmd.OutOrStdout(), card)
		return nil
	},
}

func printCard(w io.Writer, c *models.ViewCard) {
	label := color.New(color.FgCyan)
	row := func(name, value string) {
		if value != "" {
			fmt.Fprintf(w, "%s %s\n", label.Sprintf("%-10s", name+":"), value)
		}
	}

	row("Card", color.HiWhiteString("%s", c.Name))
	row("ID", c.ID)
	row("Set", fmt.Sprintf("%s (%s) %s/%d", c.Set.Name, c.Set.Series, c.Number, c.Set.PrintedTotal))
	row("Released", c.Set.ReleaseDate)
	row("Supertype", c.Supertype)
	row("Subtypes", strings.Join(c.Subtypes, ", "))
	row("Types", strings.Join(c.Types, ", "))
	row("HP", c.HP)
	row("Rarity", c.Rarity)
	row("Artist", c.Artist)
	row("Evolves", c.EvolvesFrom)

	for _, a := range c.Abilities {
		row("Ability", fmt.Sprintf("%s [%s] %s", a.Name, a.Type, a.Text))
	}
	for _, a := range c.Attacks {
		row("Attack", strings.TrimSpace(fmt.Sprintf("%s %s %s", a.Name, a.Damage, a.Text)))
	}
	for _, r := range c.Rules {
		row("Rule", r)
	}

	if c.Price != nil {
		for _, p := range c.Price.Points {
			row("Price", color.GreenString("$%.2f", p.PriceUSD)+fmt.Sprintf(" %s %s", p.Condition, p.Printing))
		}
	}
}
