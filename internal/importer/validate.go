package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/furrow/internal/domain"
)

var validOrderStatuses = map[domain.OrderStatus]bool{
	domain.OrderPending:   true,
	domain.OrderPlaced:    true,
	domain.OrderConfirmed: true,
	domain.OrderDelivered: true,
	domain.OrderCancelled: true,
}

// ValidateOrder checks a single imported order. Returns all problems found;
// each is prefixed with the order's position and ID.
func ValidateOrder(index int, o *OrderImport) []error {
	var errs []error
	label := fmt.Sprintf("orders[%d]", index)
	if o.ID != "" {
		label += " (" + o.ID + ")"
	}

	if o.ID == "" {
		errs = append(errs, fmt.Errorf("%s: id is required", label))
	}
	if !validOrderStatuses[normalizeStatus(o.Status)] {
		errs = append(errs, fmt.Errorf("%s: invalid status %q", label, o.Status))
	}
	if o.CreatedAt == "" {
		errs = append(errs, fmt.Errorf("%s: created_at is required", label))
	} else if _, err := parseTimestamp(o.CreatedAt); err != nil {
		errs = append(errs, fmt.Errorf("%s: created_at: %w", label, err))
	}
	if o.RequestedDeliveryDate != nil {
		if _, err := domain.ParseDate(*o.RequestedDeliveryDate); err != nil {
			errs = append(errs, fmt.Errorf("%s: requested_delivery_date: %w", label, err))
		}
	}
	for j, item := range o.Items {
		if strings.TrimSpace(item.Name) == "" {
			errs = append(errs, fmt.Errorf("%s: items[%d].name is required", label, j))
		}
		if item.Quantity < 0 {
			errs = append(errs, fmt.Errorf("%s: items[%d].quantity must be >= 0, got %g", label, j, item.Quantity))
		}
	}
	return errs
}

// ValidateExport validates every order and rejects duplicate IDs.
func ValidateExport(export *OrderExport) []error {
	var errs []error
	seen := make(map[string]bool, len(export.Orders))
	for i := range export.Orders {
		o := &export.Orders[i]
		errs = append(errs, ValidateOrder(i, o)...)
		if o.ID == "" {
			continue
		}
		if seen[o.ID] {
			errs = append(errs, fmt.Errorf("orders[%d]: duplicate id %q", i, o.ID))
		}
		seen[o.ID] = true
	}
	return errs
}

func normalizeStatus(s string) domain.OrderStatus {
	return domain.OrderStatus(strings.ToLower(strings.TrimSpace(s)))
}

// parseTimestamp accepts RFC3339 or a bare YYYY-MM-DD date (midnight UTC).
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	t, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q (want RFC3339 or YYYY-MM-DD)", s)
	}
	return t, nil
}
