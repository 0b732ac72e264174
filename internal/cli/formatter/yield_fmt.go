package formatter

import (
	"fmt"

	"github.com/alexanderramin/furrow/internal/app"
)

// FormatYieldReport compares catalog and observed yields. names maps variety
// IDs to display names.
func FormatYieldReport(resp *app.YieldReportResponse, names map[string]string) string {
	headers := []string{"CROP", "CATALOG", "CALIBRATED", "SAMPLES", "ACCURACY"}
	rows := make([][]string, 0, len(resp.Calibrations))
	for _, c := range resp.Calibrations {
		name := names[c.VarietyID]
		if name == "" {
			name = c.VarietyID
		}
		calibrated := Dim(Amount(c.CalibratedYield, ""))
		if c.Samples > 0 && c.CalibratedYield != c.CatalogYield {
			calibrated = Bold(Amount(c.CalibratedYield, ""))
		}
		accuracy := Dim("--")
		if c.MeanAccuracy != nil {
			accuracy = accuracyCell(*c.MeanAccuracy)
		}
		rows = append(rows, []string{
			Bold(name),
			Amount(c.CatalogYield, ""),
			calibrated,
			fmt.Sprintf("%d", c.Samples),
			accuracy,
		})
	}
	return RenderBox("Yield per unit", RenderTable(headers, rows, 1, 2, 3, 4))
}
