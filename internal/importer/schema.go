// Package importer reads order exports from the storefront and converts them to
// domain orders for the demand signal.
package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// OrderExport is the top-level JSON structure of an order export file.
type OrderExport struct {
	Orders []OrderImport `json:"orders"`
}

// OrderImport is one order in the export.
type OrderImport struct {
	ID                    string       `json:"id"`
	Customer              string       `json:"customer,omitempty"`
	Status                string       `json:"status"`
	CreatedAt             string       `json:"created_at"`
	RequestedDeliveryDate *string      `json:"requested_delivery_date,omitempty"`
	Items                 []ItemImport `json:"items"`
}

type ItemImport struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
}

// LoadOrderExport reads and parses an order export file.
func LoadOrderExport(path string) (*OrderExport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeOrderExport(f)
}

// DecodeOrderExport parses an export from r. A bare JSON array of orders is
// accepted as well as the {"orders": [...]} envelope.
func DecodeOrderExport(r io.Reader) (*OrderExport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading order export: %w", err)
	}
	var export OrderExport
	if err := json.Unmarshal(data, &export); err == nil {
		return &export, nil
	}
	var bare []OrderImport
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("parsing order export: %w", err)
	}
	return &OrderExport{Orders: bare}, nil
}
