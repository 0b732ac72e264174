package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/domain"
)

// FormatBatchList renders one row per batch.
func FormatBatchList(views []app.BatchView) string {
	if len(views) == 0 {
		return Dim("No batches.") + "\n"
	}
	headers := []string{"ID", "CROP", "QTY", "STAGE", "SOWN", "HARVEST", "NEXT"}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		b := v.Batch
		rows = append(rows, []string{
			TruncID(b.ID),
			Bold(b.DisplayName()),
			Quantity(b.Quantity, b.Unit),
			StagePill(b.Stage, v.StageLabel),
			b.SowDate.Format(domain.DateLayout),
			harvestCell(v),
			nextCell(v),
		})
	}
	return RenderTable(headers, rows)
}

func harvestCell(v app.BatchView) string {
	b := v.Batch
	if b.IsHarvested() {
		if b.HarvestYield != nil {
			return Dim(Amount(*b.HarvestYield, ""))
		}
		return Dim("done")
	}
	if v.Window.InWindow {
		if v.Window.IsUrgent {
			return StyleRed.Render("last day")
		}
		return StyleGreen.Render(fmt.Sprintf("ready, %dd left", v.Window.DaysRemaining))
	}
	if b.EstimatedHarvestStart != nil {
		return RelativeDay(*b.EstimatedHarvestStart, v.GeneratedAt)
	}
	return Dim("--")
}

func nextCell(v app.BatchView) string {
	a := v.Advisory
	if a == nil || !a.HasNext {
		return Dim("--")
	}
	text := a.NextStage.Label + " " + RelativeDay(a.DueDate, v.GeneratedAt)
	switch {
	case a.IsOverdue:
		return StyleRed.Render(text)
	case a.NeedsAdvance:
		return StyleYellow.Render(text)
	default:
		return Dim(text)
	}
}

// FormatBatch renders the full detail of one batch including its stage history.
func FormatBatch(v *app.BatchView) string {
	b := v.Batch
	var s strings.Builder

	field := func(label, value string) {
		s.WriteString(fmt.Sprintf("%-14s %s\n", Dim(label), value))
	}
	field("ID", b.ID)
	field("Crop", Bold(b.DisplayName())+" "+CategoryBadge(b.Category))
	field("Quantity", Quantity(b.Quantity, b.Unit))
	field("Stage", StagePill(b.Stage, v.StageLabel))
	field("Source", string(b.Source))
	field("Sown", b.SowDate.Format(domain.DateLayout))
	if b.SoakDate != nil {
		field("Soak", DateOrDash(b.SoakDate))
	}
	if b.UncoverDate != nil {
		field("Uncover", DateOrDash(b.UncoverDate))
	}
	field("Harvest window", DateOrDash(b.EstimatedHarvestStart)+" – "+DateOrDash(b.EstimatedHarvestEnd))
	if v.Advisory != nil && v.Advisory.HasNext {
		field("Next", nextCell(*v))
	}
	if b.IsHarvested() {
		field("Harvested", DateOrDash(b.HarvestedAt))
		if b.HarvestYield != nil {
			yield := Amount(*b.HarvestYield, "")
			if b.ExpectedYield > 0 {
				yield += Dim(" of " + Amount(b.ExpectedYield, "") + " expected")
			}
			field("Yield", yield)
		}
		if v.YieldAccuracy != nil {
			field("Accuracy", accuracyCell(*v.YieldAccuracy))
		}
	} else if b.ExpectedYield > 0 {
		field("Expected", Amount(b.ExpectedYield, ""))
	}
	if b.Notes != "" {
		field("Notes", b.Notes)
	}

	if len(b.StageHistory) > 0 {
		s.WriteString("\n" + Header("History") + "\n")
		for _, h := range b.StageHistory {
			by := ""
			if h.By != "" {
				by = Dim(" by " + h.By)
			}
			s.WriteString(fmt.Sprintf("  %s  %s%s\n", Dim(h.EnteredAt.Format("2006-01-02 15:04")), h.Stage, by))
		}
	}
	return RenderBox("Batch", s.String())
}

func accuracyCell(pct int) string {
	text := fmt.Sprintf("%d%%", pct)
	switch {
	case pct < 80:
		return StyleRed.Render(text)
	case pct < 95:
		return StyleYellow.Render(text)
	default:
		return StyleGreen.Render(text)
	}
}

// FormatTransition confirms a stage change.
func FormatTransition(resp *app.TransitionResponse) string {
	b := resp.Batch
	line := fmt.Sprintf("%s %s %s: %s → %s",
		StyleGreen.Render("✔"),
		Bold(b.DisplayName()),
		TruncID(b.ID),
		resp.FromStage,
		Bold(string(resp.ToStage)),
	)
	if resp.ToStage == domain.StageHarvested && b.HarvestYield != nil {
		line += Dim(" (" + Amount(*b.HarvestYield, "") + ")")
	}
	out := line + "\n"
	if resp.EventErr != nil {
		out += StyleYellow.Render("  WARNING: event not published: "+resp.EventErr.Error()) + "\n"
	}
	return out
}

// FormatPlanted confirms a new batch.
func FormatPlanted(b *domain.Batch) string {
	out := fmt.Sprintf("%s Planted %s %s %s\n",
		StyleGreen.Render("✔"),
		Quantity(b.Quantity, b.Unit),
		Bold(b.DisplayName()),
		TruncID(b.ID),
	)
	if b.EstimatedHarvestStart != nil {
		out += Dim(fmt.Sprintf("  harvest %s – %s", DateOrDash(b.EstimatedHarvestStart), DateOrDash(b.EstimatedHarvestEnd))) + "\n"
	}
	return out
}
