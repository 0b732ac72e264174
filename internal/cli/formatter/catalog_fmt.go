package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/furrow/internal/domain"
)

// FormatVarieties renders the crop catalog.
func FormatVarieties(varieties []*domain.Variety) string {
	if len(varieties) == 0 {
		return Dim("No varieties.") + "\n"
	}
	headers := []string{"ID", "NAME", "CATEGORY", "GROW", "WINDOW", "YIELD", "SEED", "SOW ON"}
	rows := make([][]string, 0, len(varieties))
	for _, v := range varieties {
		rows = append(rows, []string{
			Dim(v.ID),
			Bold(v.Name),
			CategoryBadge(v.Category),
			fmt.Sprintf("%dd", v.GrowDays),
			fmt.Sprintf("%dd", v.HarvestWindow),
			Amount(v.YieldPerUnit, v.YieldUnit),
			"$" + v.SeedCost.StringFixed(2),
			weekdays(v.PlantingDays),
		})
	}
	return RenderTable(headers, rows, 3, 4, 6)
}

func weekdays(days []time.Weekday) string {
	if len(days) == 0 {
		return Dim("any")
	}
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.String()[:3]
	}
	return strings.Join(out, ",")
}

// FormatSchedule renders the dates a variety sown on s.SowDate goes through.
func FormatSchedule(v *domain.Variety, s domain.Schedule) string {
	var b strings.Builder
	line := func(label string, t time.Time) {
		b.WriteString(fmt.Sprintf("  %-10s %s\n", Dim(label), ShortDate(t)))
	}
	if s.SoakDate != nil {
		line("soak", *s.SoakDate)
	}
	line("sow", s.SowDate)
	if s.UncoverDate != nil {
		line("uncover", *s.UncoverDate)
	}
	line("harvest", s.HarvestStart)
	line("until", s.HarvestEnd)
	return RenderBox(v.Name, b.String())
}
