package handlers

import (
	"context"
	"errors"
	"mime/multipart"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/clothy/internal/models"
	"github.com/example/clothy/internal/storage"
	"github.com/example/clothy/internal/utils"
)

// ProductHandler serves the product catalog.
type ProductHandler struct {
	db    *gorm.DB
	store storage.Storage
}

func NewProductHandler(db *gorm.DB, store storage.Storage) *ProductHandler {
	return &ProductHandler{db: db, store: store}
}

var stockKeyPattern = regexp.MustCompile(`^stock\[(\d+)\]\.(size|quantity)$`)

// parseStockForm turns flattened stock[i].size / stock[i].quantity form keys
// into stock entries, ordered by index.
func parseStockForm(values map[string][]string) ([]models.StockEntry, error) {
	type row struct {
		size     string
		quantity string
	}
	rows := make(map[int]*row)

	for key, vals := range values {
		match := stockKeyPattern.FindStringSubmatch(key)
		if match == nil || len(vals) == 0 {
			continue
		}
		idx, _ := strconv.Atoi(match[1])
		if rows[idx] == nil {
			rows[idx] = &row{}
		}
		if match[2] == "size" {
			rows[idx].size = vals[0]
		} else {
			rows[idx].quantity = vals[0]
		}
	}

	indexes := make([]int, 0, len(rows))
	for idx := range rows {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	seen := make(map[string]struct{}, len(rows))
	entries := make([]models.StockEntry, 0, len(rows))
	for _, idx := range indexes {
		r := rows[idx]
		if strings.TrimSpace(r.size) == "" {
			return nil, errors.New("stock size is required")
		}
		quantity, err := strconv.Atoi(r.quantity)
		if err != nil || quantity < 0 {
			return nil, errors.New("stock quantity must be a non-negative integer")
		}

		key := strings.ToLower(r.size)
		if _, ok := seen[key]; ok {
			return nil, models.ErrDuplicateStockSizes
		}
		seen[key] = struct{}{}

		entries = append(entries, models.StockEntry{Size: r.size, Quantity: quantity})
	}

	return entries, nil
}

// CreateProduct handles the admin multipart create form.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form data")
	}

	get := func(key string) string {
		if vals, ok := form.Value[key]; ok && len(vals) > 0 {
			return vals[0]
		}
		return ""
	}

	name := strings.TrimSpace(get("name"))
	if name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Product name is required")
	}

	price, err := strconv.ParseFloat(get("price"), 64)
	if err != nil || price <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Price must be greater than 0")
	}

	var offerPrice *float64
	if raw := get("offer_price"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid offer price")
		}
		offerPrice = &parsed
	}

	stock, err := parseStockForm(form.Value)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	files := form.File["image"]
	if len(files) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "Product image is required")
	}
	imageURL, err := h.saveImage(c.Context(), files[0])
	if err != nil {
		return err
	}

	product := models.Product{
		Name:        name,
		Description: get("description"),
		Price:       price,
		OfferPrice:  offerPrice,
		Image:       imageURL,
		Category:    get("category"),
		SubCategory: get("sub_category"),
		Brand:       get("brand"),
		BestSelling: get("best_selling") == "true",
		NewArrival:  get("new_arrival") == "true",
		Stock:       stock,
	}

	if err := h.db.Create(&product).Error; err != nil {
		return productError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

// UpdateProduct applies a partial multipart update; absent scalar fields keep
// their current value.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Product not found")
	}

	var product models.Product
	if err := h.db.Preload("Stock").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid form data")
	}

	has := func(key string) bool {
		vals, ok := form.Value[key]
		return ok && len(vals) > 0
	}
	get := func(key string) string {
		if vals, ok := form.Value[key]; ok && len(vals) > 0 {
			return vals[0]
		}
		return ""
	}

	if has("name") {
		product.Name = strings.TrimSpace(get("name"))
	}
	if has("description") {
		product.Description = get("description")
	}
	if has("price") {
		price, err := strconv.ParseFloat(get("price"), 64)
		if err != nil || price <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Price must be greater than 0")
		}
		product.Price = price
	}
	if has("offer_price") {
		if raw := get("offer_price"); raw == "" {
			product.OfferPrice = nil
		} else {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "Invalid offer price")
			}
			product.OfferPrice = &parsed
		}
	}
	if has("category") {
		product.Category = get("category")
	}
	if has("sub_category") {
		product.SubCategory = get("sub_category")
	}
	if has("brand") {
		product.Brand = get("brand")
	}
	if has("best_selling") {
		product.BestSelling = get("best_selling") == "true"
	}
	if has("new_arrival") {
		product.NewArrival = get("new_arrival") == "true"
	}

	stockProvided := false
	for key := range form.Value {
		if stockKeyPattern.MatchString(key) {
			stockProvided = true
			break
		}
	}

	var newStock []models.StockEntry
	if stockProvided {
		newStock, err = parseStockForm(form.Value)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}

	if files := form.File["image"]; len(files) > 0 {
		imageURL, err := h.saveImage(c.Context(), files[0])
		if err != nil {
			return err
		}
		product.Image = imageURL
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if stockProvided {
			if err := tx.Where("product_id = ?", product.ID).Delete(&models.StockEntry{}).Error; err != nil {
				return err
			}
			for i := range newStock {
				newStock[i].ProductID = product.ID
			}
			product.Stock = newStock
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&product).Error
	})
	if err != nil {
		return productError(err)
	}

	return c.JSON(product)
}

// ListProducts returns the catalog with optional filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pagination := utils.ParsePagination(c)

	query := h.db.Model(&models.Product{}).Preload("Stock")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if sub := c.Query("sub_category"); sub != "" {
		query = query.Where("sub_category = ?", sub)
	}
	if brand := c.Query("brand"); brand != "" {
		query = query.Where("brand = ?", brand)
	}
	if c.Query("best_selling") == "true" {
		query = query.Where("best_selling = ?", true)
	}
	if c.Query("new_arrival") == "true" {
		query = query.Where("new_arrival = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.
		Order("created_at DESC").
		Offset(pagination.Offset).
		Limit(pagination.Limit).
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"products": products,
		"total":    total,
		"page":     pagination.Page,
		"limit":    pagination.Limit,
	})
}

// GetProduct returns one product with its stock.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Product not found")
	}

	var product models.Product
	if err := h.db.Preload("Stock").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return err
	}

	return c.JSON(product)
}

// DeleteProduct removes a product and its stock entries.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, "Product not found")
	}

	var product models.Product
	if err := h.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "Product not found")
		}
		return err
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.StockEntry{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// SearchProducts matches product names case-insensitively.
func (h *ProductHandler) SearchProducts(c *fiber.Ctx) error {
	term := strings.TrimSpace(c.Query("query"))
	if term == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Search query is required")
	}

	var products []models.Product
	if err := h.db.Preload("Stock").
		Where("name ILIKE ?", "%"+term+"%").
		Order("created_at DESC").
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"products": products})
}

func (h *ProductHandler) saveImage(ctx context.Context, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "Could not read uploaded image")
	}
	defer file.Close()

	url, err := h.store.Save(ctx, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		return "", err
	}
	return url, nil
}

// productError maps model validation failures to 400s.
func productError(err error) error {
	for _, known := range []error{
		models.ErrProductNameRequired,
		models.ErrInvalidPrice,
		models.ErrInvalidOfferPrice,
		models.ErrOfferPriceTooHigh,
		models.ErrDuplicateStockSizes,
		models.ErrNegativeStock,
	} {
		if errors.Is(err, known) {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
	}
	return err
}
