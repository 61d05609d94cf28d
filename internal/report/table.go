// Package report renders ranking tables and shopping list trees for the CLI.
package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/udisondev/gw2flip/internal/craft"
)

// WriteRankings renders the opportunity table, most profitable first.
func WriteRankings(w io.Writer, opps []craft.Opportunity) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Item\tID\tRecipe\tQty\tUses\tCost\tRevenue\tProfit\tProfit/use\tROI")
	for _, o := range opps {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%s\t%s\t%s\t%s\t%s\n",
			o.Name, o.ItemID, o.RecipeID, o.Quantity, o.Uses,
			o.Cost, o.Revenue, o.Profit, o.ProfitPerStep, formatBps(o.ProfitOnCostBps),
		)
	}
	return tw.Flush()
}

// WriteShoppingList renders the plan as an indented tree: craft nodes first
// with their recipe uses, then each ingredient at its derived quantity.
func WriteShoppingList(w io.Writer, root *craft.ShoppingNode) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Item\tQty\tSource\tCost")
	root.Walk(func(n *craft.ShoppingNode, depth int) {
		name := n.Name
		if name == "" {
			name = fmt.Sprintf("item %d", n.ItemID)
		}
		label := n.Source.String()
		if n.Source == craft.SourceCraft {
			label = fmt.Sprintf("Craft x%d (recipe %d)", n.Uses, n.RecipeID)
			if n.Produced > n.Quantity {
				label += fmt.Sprintf(", +%d surplus", n.Produced-n.Quantity)
			}
		}
		fmt.Fprintf(tw, "%s%s\t%d\t%s\t%s\n",
			strings.Repeat("  ", depth), name, n.Quantity, label, n.Cost)
	})
	return tw.Flush()
}

// formatBps renders basis points as a percentage, e.g. 1234 -> "12.34%".
func formatBps(bps int64) string {
	return fmt.Sprintf("%d.%02d%%", bps/100, bps%100)
}
