package importer

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/furrow/internal/domain"
)

// ConvertOrder turns a validated import into a domain order. Items with a zero
// quantity are dropped.
func ConvertOrder(o *OrderImport) (*domain.Order, error) {
	created, err := parseTimestamp(o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", o.ID, err)
	}
	out := &domain.Order{
		ID:        o.ID,
		Customer:  strings.TrimSpace(o.Customer),
		Status:    normalizeStatus(o.Status),
		CreatedAt: created,
	}
	if o.RequestedDeliveryDate != nil {
		d, err := domain.ParseDate(*o.RequestedDeliveryDate)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", o.ID, err)
		}
		out.RequestedDeliveryDate = &d
	}
	for _, item := range o.Items {
		if item.Quantity == 0 {
			continue
		}
		out.Items = append(out.Items, domain.OrderItem{
			Name:     strings.TrimSpace(item.Name),
			Quantity: item.Quantity,
		})
	}
	return out, nil
}
