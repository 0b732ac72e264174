package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/cli/formatter"
	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/alexanderramin/furrow/internal/importer"
	"github.com/spf13/cobra"
)

func newOrderCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Import and list customer orders",
	}
	cmd.AddCommand(newOrderImportCmd(a), newOrderListCmd(a))
	return cmd
}

func newOrderImportCmd(a *App) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import an order export; existing orders are updated",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dryRun {
				export, err := importer.LoadOrderExport(args[0])
				if err != nil {
					return err
				}
				errs := importer.ValidateExport(export)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%d orders, %d problems\n", len(export.Orders), len(errs))
				for _, e := range errs {
					fmt.Fprintln(out, "  "+e.Error())
				}
				return nil
			}

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			res, err := a.Orders.Import(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatImportResult(res))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate the file without importing")
	return cmd
}

func newOrderListCmd(a *App) *cobra.Command {
	var since string
	var statuses []string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List orders",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := app.ListOrdersRequest{}
			var err error
			if req.Since, err = parseDateFlag("since", since); err != nil {
				return err
			}
			for _, s := range statuses {
				st := domain.OrderStatus(strings.ToLower(strings.TrimSpace(s)))
				if !domain.ValidOrderStatuses[st] {
					return fmt.Errorf("unknown order status %q", s)
				}
				req.Statuses = append(req.Statuses, st)
			}
			orders, err := a.Orders.List(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOrderList(orders))
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only orders for this date or later (YYYY-MM-DD)")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Only these statuses (repeatable)")
	return cmd
}
