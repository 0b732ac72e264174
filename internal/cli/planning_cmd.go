package cli

import (
	"fmt"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/cli/formatter"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/spf13/cobra"
)

func newRecommendCmd(a *App) *cobra.Command {
	var today, category string
	var plan bool
	var trays, ports, blocks int

	cmd := &cobra.Command{
		Use:     "recommend",
		Aliases: []string{"rec"},
		Short:   "Show what to sow, most urgent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.NewRecommendRequest()
			var err error
			if req.Now, err = parseDateFlag("today", today); err != nil {
				return err
			}
			if req.Category, err = parseCategory(category); err != nil {
				return err
			}
			req.Plan = plan

			overrides := map[string]domain.Unit{"trays": domain.UnitTray, "ports": domain.UnitPort, "blocks": domain.UnitBlock}
			values := map[string]int{"trays": trays, "ports": ports, "blocks": blocks}
			for flag, unit := range overrides {
				if !cmd.Flags().Changed(flag) {
					continue
				}
				if values[flag] < 0 {
					return fmt.Errorf("--%s must be >= 0", flag)
				}
				if req.Capacity == nil {
					req.Capacity = make(map[domain.Unit]int)
				}
				req.Capacity[unit] = values[flag]
				req.Plan = true
			}

			resp, err := a.Planning.Recommend(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatRecommendation(resp))
			return nil
		},
	}

	cmd.Flags().StringVar(&today, "today", "", "Plan as of this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&category, "category", "", "Limit to one crop category")
	cmd.Flags().BoolVar(&plan, "plan", false, "Allocate free grow-room capacity across the needs")
	cmd.Flags().IntVar(&trays, "trays", 0, "Free trays for the plan (implies --plan)")
	cmd.Flags().IntVar(&ports, "ports", 0, "Free tower ports for the plan (implies --plan)")
	cmd.Flags().IntVar(&blocks, "blocks", 0, "Free mushroom block slots for the plan (implies --plan)")

	return cmd
}

func newPipelineCmd(a *App) *cobra.Command {
	var today, category string

	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Show batches in production by crop and stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.PipelineRequest{}
			var err error
			if req.Now, err = parseDateFlag("today", today); err != nil {
				return err
			}
			if req.Category, err = parseCategory(category); err != nil {
				return err
			}
			resp, err := a.Planning.Pipeline(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatPipeline(resp, varietyNames(a.Catalog)))
			return nil
		},
	}

	cmd.Flags().StringVar(&today, "today", "", "Report as of this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&category, "category", "", "Limit to one crop category")
	return cmd
}

func newBoardCmd(a *App) *cobra.Command {
	var today string

	cmd := &cobra.Command{
		Use:   "board",
		Short: "Today's work: stage moves, harvests and sowing",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseDateFlag("today", today)
			if err != nil {
				return err
			}
			resp, err := a.Planning.Board(cmd.Context(), app.BoardRequest{Now: now})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatBoard(resp))
			return nil
		},
	}

	cmd.Flags().StringVar(&today, "today", "", "Build the board for this date (YYYY-MM-DD)")
	return cmd
}

func newYieldCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "yield [variety]",
		Short: "Compare catalog yields with harvested batches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.YieldReportRequest{}
			if len(args) == 1 {
				v, ok := a.Catalog.ResolveProduct(args[0])
				if !ok {
					return fmt.Errorf("unknown variety %q", args[0])
				}
				req.VarietyID = v.ID
			}
			resp, err := a.Planning.YieldReport(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatYieldReport(resp, varietyNames(a.Catalog)))
			return nil
		},
	}
}
