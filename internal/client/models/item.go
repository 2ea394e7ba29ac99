// Package models defines the client-side data model: inventory records,
// scan results from the barcode identification collaborator, and sync
// status values. The JSON field names form the wire format shared with the
// remote mirror, so renaming a tag is a breaking protocol change.
package models

// Status marks whether an item still needs restocking or was already bought.
type Status string

const (
	StatusActive  Status = "active"
	StatusHistory Status = "history"
)

// Item is one inventory record.
//
// AddedDate is epoch milliseconds and represents recency, not creation
// time: every state-changing mutation (restock, un-restock, barcode re-add,
// edit) refreshes it, and it is the tie-breaker for last-write-wins merges.
type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	AddedDate   int64   `json:"addedDate"`
	Status      Status  `json:"status"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	Barcode     string  `json:"barcode,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

// ScanResult is the product metadata returned by the barcode identification
// collaborator and cached per barcode in the known-products map.
type ScanResult struct {
	ProductName         string `json:"productName"`
	Description         string `json:"description,omitempty"`
	Category            string `json:"category"`
	SuggestedExpiryDays int    `json:"suggestedExpiryDays"`
	QuantityUnit        string `json:"quantityUnit"`
	Barcode             string `json:"barcode,omitempty"`
	ImageURL            string `json:"imageUrl,omitempty"`
}

// SyncState is the user-visible state of the sync subsystem.
type SyncState string

const (
	SyncSynced  SyncState = "synced"
	SyncSyncing SyncState = "syncing"
	SyncError   SyncState = "error"
)

// DefaultCategories seeds the category list on first run.
var DefaultCategories = []string{
	"Produce",
	"Dairy",
	"Meat",
	"Bakery",
	"Frozen",
	"Pantry",
	"Beverages",
	"Household",
	"Other",
}
