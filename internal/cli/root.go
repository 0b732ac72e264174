package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/catalog"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/spf13/cobra"
)

// App holds the use cases and settings the commands run against.
type App struct {
	Planning app.PlanningUseCase
	Batches  app.BatchUseCase
	Orders   app.OrderUseCase
	Catalog  *catalog.Catalog

	// Serve runs the HTTP API until ctx is done. Nil hides the serve command.
	Serve       func(ctx context.Context, addr string) error
	DefaultAddr string

	// IsInteractive reports whether prompts may be shown.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "furrow" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "furrow",
		Short:         "Production planning for an indoor farm",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newRecommendCmd(app),
		newPipelineCmd(app),
		newBoardCmd(app),
		newBatchCmd(app),
		newOrderCmd(app),
		newCatalogCmd(app),
		newYieldCmd(app),
	)
	if app.Serve != nil {
		root.AddCommand(newServeCmd(app))
	}

	return root
}

// parseDateFlag parses an optional YYYY-MM-DD flag value into a pointer.
func parseDateFlag(name, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := domain.ParseDate(value)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", name, err)
	}
	return &d, nil
}

// parseCategory accepts a category ID or its label with spaces, e.g. "leafy greens".
func parseCategory(value string) (domain.CropCategory, error) {
	if value == "" {
		return "", nil
	}
	c := domain.CropCategory(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(value)), " ", "_"))
	if !c.IsValid() {
		return "", fmt.Errorf("unknown category %q (want one of %s)", value, categoryList())
	}
	return c, nil
}

func categoryList() string {
	names := make([]string, 0, 4)
	for _, c := range domain.AllCategories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func varietyNames(cat *catalog.Catalog) map[string]string {
	out := make(map[string]string)
	for _, v := range cat.Varieties() {
		out[v.ID] = v.Name
	}
	return out
}
