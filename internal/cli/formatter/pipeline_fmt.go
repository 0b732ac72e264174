package formatter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/alexanderramin/furrow/internal/pipeline"
)

// FormatPipeline renders the per-category stage funnel followed by the
// per-crop pipeline. names maps crop IDs to display names.
func FormatPipeline(resp *app.PipelineResponse, names map[string]string) string {
	var b strings.Builder

	for i, f := range resp.Funnels {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(Header(f.Label) + "\n")
		total := 0
		for _, s := range f.Stages {
			total += s.Units
		}
		if total == 0 {
			b.WriteString(Dim("  nothing in production") + "\n")
			continue
		}
		parts := make([]string, 0, len(f.Stages))
		for _, s := range f.Stages {
			cell := fmt.Sprintf("%s %d", s.Stage.Label, s.Units)
			if s.Units == 0 {
				cell = Dim(cell)
			}
			parts = append(parts, cell)
		}
		b.WriteString("  " + strings.Join(parts, Dim(" → ")) + Dim(fmt.Sprintf("  (%s)", Quantity(total, f.Unit))) + "\n")
	}

	if len(resp.Pipelines) > 0 {
		b.WriteString("\n")
		headers := []string{"CROP", "CATEGORY", "UNITS", "BY STAGE"}
		rows := make([][]string, 0, len(resp.Pipelines))
		for _, p := range resp.Pipelines {
			name := names[p.CropID]
			if name == "" {
				name = p.CropID
			}
			rows = append(rows, []string{
				Bold(name),
				CategoryBadge(p.Category),
				fmt.Sprintf("%d", p.CurrentPipeline),
				stageBreakdown(p.ByStage),
			})
		}
		b.WriteString(RenderTable(headers, rows, 2))
	}

	return RenderBox("Pipeline", b.String())
}

func stageBreakdown(by map[domain.StageID]pipeline.StageCount) string {
	keys := make([]string, 0, len(by))
	for id := range by {
		keys = append(keys, string(id))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, by[domain.StageID(k)].Units))
	}
	return Dim(strings.Join(parts, " "))
}
