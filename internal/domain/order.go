package domain

import "time"

type OrderItem struct {
	Name     string
	Quantity float64
}

// Order is an external customer order. It is only read as a demand signal.
type Order struct {
	ID                    string
	Customer              string
	Status                OrderStatus
	Items                 []OrderItem
	RequestedDeliveryDate *time.Time
	CreatedAt             time.Time
}

// DemandDate is the date an order's demand is attributed to: the requested
// delivery date when present, otherwise the creation date.
func (o *Order) DemandDate() time.Time {
	if o.RequestedDeliveryDate != nil {
		return *o.RequestedDeliveryDate
	}
	return o.CreatedAt
}
