package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/furrow/internal/app"
)

// FormatBoard renders the daily crew board: stage moves, harvests and sowing.
func FormatBoard(resp *app.BoardResponse) string {
	bd := resp.Board
	var b strings.Builder

	b.WriteString(Header(fmt.Sprintf("Advance (%d)", len(bd.Advance))) + "\n")
	if len(bd.Advance) == 0 {
		b.WriteString(Dim("  nothing due") + "\n")
	}
	for _, a := range bd.Advance {
		mark := StyleBlue.Render("→")
		if a.IsOverdue {
			mark = StyleRed.Render("!")
		}
		b.WriteString(fmt.Sprintf("  %s %s %s %s %s  %s\n",
			mark,
			TruncID(a.Batch.ID),
			Bold(a.Batch.DisplayName()),
			Dim(Quantity(a.Batch.Quantity, a.Batch.Unit)),
			"to "+a.SuggestedNextStage.Label,
			Dim(fmt.Sprintf("day %d of %d", a.DaysInCurrentStage, a.ExpectedDays)),
		))
	}

	b.WriteString("\n" + Header(fmt.Sprintf("Harvest (%d)", len(bd.Harvest))) + "\n")
	if len(bd.Harvest) == 0 {
		b.WriteString(Dim("  nothing ready") + "\n")
	}
	for _, h := range bd.Harvest {
		left := fmt.Sprintf("%dd left", h.DaysRemaining)
		style := StyleGreen
		if h.IsUrgent {
			left = "last day"
			style = StyleRed
		}
		b.WriteString(fmt.Sprintf("  %s %s %s %s  %s\n",
			style.Render("✂"),
			TruncID(h.Batch.ID),
			Bold(h.Batch.DisplayName()),
			Dim(Quantity(h.Batch.Quantity, h.Batch.Unit)),
			style.Render(left),
		))
	}

	b.WriteString("\n" + Header(fmt.Sprintf("Sow today (%d)", len(bd.SowToday))) + "\n")
	if len(bd.SowToday) == 0 {
		b.WriteString(Dim("  supply is healthy") + "\n")
	}
	for _, n := range bd.SowToday {
		qty := Dim("--")
		if n.RecommendedQty > 0 {
			qty = Quantity(n.RecommendedQty, n.BatchUnit)
		}
		b.WriteString(fmt.Sprintf("  %s %s %s  %s\n",
			UrgencyStyle(n.Urgency).Render("●"),
			Bold(n.CropName),
			qty,
			Dim(n.Reason),
		))
	}

	return RenderBox("Board · "+ShortDate(bd.Date), b.String())
}
