package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 {
	return &v
}

func validProduct() *Product {
	return &Product{
		Name:  "Denim Jacket",
		Price: 59.99,
		Stock: []StockEntry{
			{Size: "M", Quantity: 4},
			{Size: "L", Quantity: 2},
		},
	}
}

func TestProductBeforeSaveAcceptsValidProduct(t *testing.T) {
	require.NoError(t, validProduct().BeforeSave(nil))
}

func TestProductBeforeSaveRejectsMissingName(t *testing.T) {
	p := validProduct()
	p.Name = "   "
	assert.ErrorIs(t, p.BeforeSave(nil), ErrProductNameRequired)
}

func TestProductBeforeSaveRejectsNonPositivePrice(t *testing.T) {
	p := validProduct()
	p.Price = 0
	assert.ErrorIs(t, p.BeforeSave(nil), ErrInvalidPrice)
}

func TestProductBeforeSaveRejectsOfferPriceRules(t *testing.T) {
	p := validProduct()
	p.OfferPrice = floatPtr(0)
	assert.ErrorIs(t, p.BeforeSave(nil), ErrInvalidOfferPrice)

	p.OfferPrice = floatPtr(p.Price)
	assert.ErrorIs(t, p.BeforeSave(nil), ErrOfferPriceTooHigh)

	p.OfferPrice = floatPtr(p.Price - 10)
	assert.NoError(t, p.BeforeSave(nil))
}

func TestProductBeforeSaveRejectsDuplicateSizesIgnoringCase(t *testing.T) {
	p := validProduct()
	p.Stock = []StockEntry{
		{Size: "M", Quantity: 1},
		{Size: "m", Quantity: 3},
	}
	assert.ErrorIs(t, p.BeforeSave(nil), ErrDuplicateStockSizes)
}

func TestProductBeforeSaveRejectsNegativeQuantity(t *testing.T) {
	p := validProduct()
	p.Stock[0].Quantity = -1
	assert.ErrorIs(t, p.BeforeSave(nil), ErrNegativeStock)
}

func TestEffectivePrice(t *testing.T) {
	p := validProduct()
	assert.Equal(t, 59.99, p.EffectivePrice())

	p.OfferPrice = floatPtr(39.99)
	assert.Equal(t, 39.99, p.EffectivePrice())
}

func TestFindStockIgnoresCase(t *testing.T) {
	p := validProduct()

	entry := p.FindStock("m")
	require.NotNil(t, entry)
	assert.Equal(t, 4, entry.Quantity)

	assert.Nil(t, p.FindStock("XXL"))
}
