package formatter

import (
	"fmt"
	"math"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderSupplyBar draws days of supply against the target buffer, e.g.
// [███░░░░] 3.5d. Red below critical, yellow below target, green otherwise.
func RenderSupplyBar(days, target float64, width int, critical float64) string {
	if width < 2 {
		width = 2
	}
	if target <= 0 {
		target = 1
	}
	ratio := 1.0
	if !math.IsInf(days, 1) {
		ratio = math.Max(0, days) / target
	}
	filled := min(width, int(ratio*float64(width)))

	style := StyleGreen
	switch {
	case days < critical:
		style = StyleRed
	case days < target:
		style = StyleYellow
	}

	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)
	return fmt.Sprintf("[%s] %s", style.Render(bar), formatDays(days))
}

func formatDays(days float64) string {
	if math.IsInf(days, 1) || days >= 99 {
		return "99+d"
	}
	return fmt.Sprintf("%.1fd", math.Max(0, days))
}
