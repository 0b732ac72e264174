package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		Padding(1, 2)

	if title != "" {
		return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// RelativeDay describes day relative to today by calendar days.
func RelativeDay(day, today time.Time) string {
	n := domain.DaysBetween(domain.DateOf(today), domain.DateOf(day))
	switch {
	case n == 0:
		return "today"
	case n == 1:
		return "tomorrow"
	case n == -1:
		return "yesterday"
	case n > 0:
		return fmt.Sprintf("in %dd", n)
	default:
		return fmt.Sprintf("%dd ago", -n)
	}
}

// ShortDate renders a date as "Mon Jun 16".
func ShortDate(t time.Time) string {
	return t.Format("Mon Jan 2")
}

// DateOrDash renders a nullable date, or a dim "--".
func DateOrDash(t *time.Time) string {
	if t == nil {
		return Dim("--")
	}
	return t.Format(domain.DateLayout)
}

// Quantity renders a unit count, e.g. "3 trays".
func Quantity(n int, unit domain.Unit) string {
	return fmt.Sprintf("%d %s", n, unit.Plural(n))
}

// Amount renders a measured quantity without trailing zeros, e.g. "12.5 oz".
func Amount(v float64, unit string) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if unit == "" {
		return s
	}
	return s + " " + unit
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// StagePill colors a stage label by how far along the batch is.
func StagePill(stage domain.StageID, label string) string {
	if label == "" {
		label = string(stage)
	}
	switch stage {
	case domain.StageHarvested:
		return StyleDim.Render("✔ " + label)
	case domain.StageLight, domain.StageGrowing, domain.StageFruiting:
		return StyleGreen.Render("● " + label)
	default:
		return StyleBlue.Render("○ " + label)
	}
}

// CategoryBadge renders a category in purple.
func CategoryBadge(c domain.CropCategory) string {
	if c == "" {
		return StyleDim.Render("--")
	}
	return StylePurple.Render(strings.ReplaceAll(string(c), "_", " "))
}
