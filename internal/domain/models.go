package domain

import "github.com/shopspring/decimal"

func init() {
	// Prices serialize as JSON numbers to match the public API shape.
	decimal.MarshalJSONWithoutQuotes = true
}

// Part statuses.
const (
	StatusInStock = "IN_STOCK"
	StatusOnOrder = "ON_ORDER"
)

type Category struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CategoryRef is the embedded category shape returned with a part.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Part struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	PartNumber  *string         `json:"partNumber"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Status      string          `json:"status"` // IN_STOCK | ON_ORDER
	ImageURL    *string         `json:"imageUrl"`
	Description *string         `json:"description"`
	Category    *CategoryRef    `json:"category"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
}
