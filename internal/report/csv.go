package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/udisondev/gw2flip/internal/craft"
)

// WriteRankingsCSV writes the opportunity table as CSV with raw copper
// values, suitable for spreadsheets.
func WriteRankingsCSV(w io.Writer, opps []craft.Opportunity) error {
	cw := csv.NewWriter(w)
	header := []string{
		"item_id", "name", "recipe_id", "quantity", "uses",
		"cost_copper", "revenue_copper", "profit_copper", "profit_per_use_copper", "profit_on_cost_bps",
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, o := range opps {
		row := []string{
			strconv.FormatInt(int64(o.ItemID), 10),
			o.Name,
			strconv.FormatInt(int64(o.RecipeID), 10),
			strconv.FormatInt(o.Quantity, 10),
			strconv.FormatInt(o.Uses, 10),
			strconv.FormatInt(o.Cost.Copper(), 10),
			strconv.FormatInt(o.Revenue.Copper(), 10),
			strconv.FormatInt(o.Profit.Copper(), 10),
			strconv.FormatInt(o.ProfitPerStep.Copper(), 10),
			strconv.FormatInt(o.ProfitOnCostBps, 10),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row for item %d: %w", o.ItemID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
