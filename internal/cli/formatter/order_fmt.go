package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/furrow/internal/app"
	"github.com/alexanderramin/furrow/internal/domain"
)

func FormatImportResult(res *app.ImportOrdersResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s Imported %d orders (%d items)\n",
		StyleGreen.Render("✔"), res.Imported, res.Items))
	if len(res.Rejected) > 0 {
		b.WriteString(StyleYellow.Render(fmt.Sprintf("  %d rejected:", len(res.Rejected))) + "\n")
		for _, r := range res.Rejected {
			for _, line := range strings.Split(r, "\n") {
				b.WriteString(Dim("    "+line) + "\n")
			}
		}
	}
	return b.String()
}

func FormatOrderList(orders []*domain.Order) string {
	if len(orders) == 0 {
		return Dim("No orders.") + "\n"
	}
	headers := []string{"ID", "CUSTOMER", "STATUS", "DATE", "ITEMS"}
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		items := make([]string, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, fmt.Sprintf("%s ×%s", it.Name, Amount(it.Quantity, "")))
		}
		rows = append(rows, []string{
			o.ID,
			domain.CoalesceStr(o.Customer, "--"),
			orderStatus(o.Status),
			o.DemandDate().Format(domain.DateLayout),
			strings.Join(items, ", "),
		})
	}
	return RenderTable(headers, rows)
}

func orderStatus(s domain.OrderStatus) string {
	switch s {
	case domain.OrderCancelled:
		return StyleDim.Render(string(s))
	case domain.OrderPending:
		return StyleYellow.Render(string(s))
	default:
		return StyleGreen.Render(string(s))
	}
}
