package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/sowing"
)

const supplyBarWidth = 8

// FormatRecommendation renders sowing needs, and the capacity plan when one
// was requested.
func FormatRecommendation(resp *app.RecommendResponse) string {
	var b strings.Builder

	lookback := fmt.Sprintf("last %d weeks", resp.LookbackWeeks)
	if resp.LookbackWeeks <= 0 {
		lookback = "all orders"
	}
	b.WriteString(Dim(fmt.Sprintf("%s · demand from %s · target %.0f days",
		resp.GeneratedAt.Format("Mon Jan 2 2006"), lookback, resp.TargetDays)) + "\n\n")

	if len(resp.Needs) == 0 {
		b.WriteString(Dim("No demand in the lookback window.") + "\n")
	} else {
		headers := []string{"CROP", "URGENCY", "SUPPLY", "DEMAND/WK", "PIPELINE", "SOW", "SEED"}
		rows := make([][]string, 0, len(resp.Needs))
		for _, n := range resp.Needs {
			sow := Dim("--")
			if n.RecommendedQty > 0 {
				sow = Bold(Quantity(n.RecommendedQty, n.BatchUnit))
			}
			rows = append(rows, []string{
				Bold(n.CropName),
				UrgencyIndicator(n.Urgency),
				RenderSupplyBar(n.DaysOfSupply, resp.TargetDays, supplyBarWidth, sowing.CriticalBelowDays),
				Amount(roundTenth(n.WeeklyDemand), n.YieldUnit),
				Quantity(n.CurrentPipeline, n.BatchUnit),
				sow,
				"$" + n.EstimatedSeedCost.StringFixed(2),
			})
		}
		b.WriteString(RenderTable(headers, rows, 3, 6))

		b.WriteString("\n")
		for _, n := range resp.Needs {
			b.WriteString(fmt.Sprintf("  %s %s\n", UrgencyStyle(n.Urgency).Render("›"), Dim(n.CropName+": "+n.Reason)))
		}
	}

	if resp.Allocations != nil || len(resp.Blockers) > 0 {
		b.WriteString("\n" + Header("Plan") + "\n")
		for _, a := range resp.Allocations {
			line := fmt.Sprintf("  %s %s", StyleGreen.Render("✔"), Bold(a.Need.CropName)+" "+Quantity(a.Allocated, a.Need.BatchUnit))
			if a.Partial {
				line += StyleYellow.Render(fmt.Sprintf(" (of %d recommended)", a.Need.RecommendedQty))
			}
			b.WriteString(line + "\n")
		}
		names := make(map[string]string, len(resp.Needs))
		for _, n := range resp.Needs {
			names[n.CropID] = n.CropName
		}
		for _, bl := range resp.Blockers {
			name := names[bl.CropID]
			if name == "" {
				name = bl.CropID
			}
			b.WriteString(fmt.Sprintf("  %s %s %s\n", StyleRed.Render("✖"), Bold(name), Dim(bl.Message)))
		}
	}

	if len(resp.UnmatchedProducts) > 0 {
		b.WriteString("\n" + StyleYellow.Render("  Unmatched products: "+strings.Join(resp.UnmatchedProducts, ", ")) + "\n")
	}
	for _, w := range resp.Warnings {
		b.WriteString(StyleYellow.Render("  WARNING: "+w) + "\n")
	}

	return RenderBox("What to sow", b.String())
}

func roundTenth(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
