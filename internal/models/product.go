package models

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Validation errors surfaced by the Product pre-persist hook.
var (
	ErrProductNameRequired = errors.New("product name is required")
	ErrInvalidPrice        = errors.New("price must be greater than 0")
	ErrInvalidOfferPrice   = errors.New("offer price must be greater than 0")
	ErrOfferPriceTooHigh   = errors.New("offer price must be less than the regular price")
	ErrDuplicateStockSizes = errors.New("duplicate sizes found in stock entries")
	ErrNegativeStock       = errors.New("stock quantity must be a non-negative integer")
)

// Product is a catalog item with per-size stock.
type Product struct {
	BaseModel
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Price       float64      `json:"price"`
	OfferPrice  *float64     `json:"offer_price"`
	Image       string       `json:"image"`
	Category    string       `json:"category"`
	SubCategory string       `json:"sub_category"`
	Brand       string       `json:"brand"`
	BestSelling bool         `json:"best_selling"`
	NewArrival  bool         `json:"new_arrival"`
	Stock       []StockEntry `json:"stock"`
}

// StockEntry holds the available quantity for one size of a product. Sizes
// are unique per product, compared case-insensitively.
type StockEntry struct {
	BaseModel
	ProductID uuid.UUID `gorm:"type:uuid;index" json:"product_id"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
}

// EffectivePrice returns the offer price when set, otherwise the list price.
func (p *Product) EffectivePrice() float64 {
	if p.OfferPrice != nil {
		return *p.OfferPrice
	}
	return p.Price
}

// FindStock returns the stock entry matching size, ignoring case.
func (p *Product) FindStock(size string) *StockEntry {
	for i := range p.Stock {
		if strings.EqualFold(p.Stock[i].Size, size) {
			return &p.Stock[i]
		}
	}
	return nil
}

// BeforeSave enforces cross-field invariants before any persist.
func (p *Product) BeforeSave(tx *gorm.DB) error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrProductNameRequired
	}
	if p.Price <= 0 {
		return ErrInvalidPrice
	}
	if p.OfferPrice != nil {
		if *p.OfferPrice <= 0 {
			return ErrInvalidOfferPrice
		}
		if *p.OfferPrice >= p.Price {
			return ErrOfferPriceTooHigh
		}
	}

	seen := make(map[string]struct{}, len(p.Stock))
	for _, entry := range p.Stock {
		if entry.Quantity < 0 {
			return ErrNegativeStock
		}
		key := strings.ToLower(entry.Size)
		if _, ok := seen[key]; ok {
			return ErrDuplicateStockSizes
		}
		seen[key] = struct{}{}
	}

	return nil
}
