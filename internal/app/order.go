package app

import (
	"time"

	"github.com/alexanderramin/furrow/internal/domain"
	"github.com/alexanderramin/furrow/internal/importer"
)

type ImportOrdersResult struct {
	Imported int
	Items    int
	// Rejected holds validation errors for orders that were skipped.
	Rejected []string
}

type ListOrdersRequest struct {
	Since    *time.Time
	Statuses []domain.OrderStatus
}

// RecordOrderRequest is a single order as accepted by the HTTP API.
type RecordOrderRequest = importer.OrderImport
