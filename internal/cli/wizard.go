package cli

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/alexanderramin/furrow/internal/cli/formatter"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// furrowHuhTheme returns a huh theme using the formatter palette.
func furrowHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

// yieldForm asks for the weighed harvest. Blank means not weighed.
func yieldForm(batchName, unit string, result *string) *huh.Form {
	title := fmt.Sprintf("Harvest yield for %s", batchName)
	if unit != "" {
		title += " (" + unit + ")"
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				Description("Leave blank if the harvest was not weighed").
				Placeholder("12.5").
				Value(result).
				Validate(validateOptionalYield),
		),
	).WithTheme(furrowHuhTheme()).WithShowHelp(false)
}

var errInvalidYield = errors.New("enter a non-negative number")

// validateOptionalYield accepts empty or a finite non-negative number.
func validateOptionalYield(s string) error {
	_, err := parseOptionalYield(s)
	return err
}

func parseOptionalYield(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, errInvalidYield
	}
	return &v, nil
}

func formatYield(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
