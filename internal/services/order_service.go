package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/clothy/internal/models"
)

// OrderError carries an HTTP status alongside a client-facing message.
type OrderError struct {
	Status  int
	Message string
}

func (e *OrderError) Error() string {
	return e.Message
}

func orderErr(status int, format string, args ...any) *OrderError {
	return &OrderError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// CartItem is one requested line of a checkout cart.
type CartItem struct {
	ProductID string `json:"product"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// PlaceOrderInput collects everything the order workflow needs.
type PlaceOrderInput struct {
	User            *models.User
	PhoneNumber     string
	Items           []CartItem
	ShippingAddress models.ShippingAddress
	PaymentMethod   string
}

// OrderService owns the order-creation workflow: cart validation, price
// computation, line-item snapshotting and stock reservation.
type OrderService struct {
	db          *gorm.DB
	singlePhone bool
}

// NewOrderService constructs an OrderService. When singlePhone is set, a
// phone number may have at most one order.
func NewOrderService(db *gorm.DB, singlePhone bool) *OrderService {
	return &OrderService{db: db, singlePhone: singlePhone}
}

// SinglePhoneOrder reports whether the one-order-per-phone policy is active.
func (s *OrderService) SinglePhoneOrder() bool {
	return s.singlePhone
}

// PlaceOrder validates the cart against live stock, computes the total,
// reserves stock and persists the order. Any validation failure aborts the
// whole order; no partial orders are created.
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	if input.User == nil {
		return nil, orderErr(fiber.StatusBadRequest, "User is required")
	}
	if input.PhoneNumber == "" {
		return nil, orderErr(fiber.StatusBadRequest, "Phone number is required")
	}

	if s.singlePhone {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Order{}).
			Where("phone_number = ?", input.PhoneNumber).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, orderErr(fiber.StatusBadRequest, "An order has already been placed using this phone number")
		}
	}

	if len(input.Items) == 0 {
		return nil, orderErr(fiber.StatusBadRequest, "Products array is required")
	}
	if !addressComplete(input.ShippingAddress) {
		return nil, orderErr(fiber.StatusBadRequest, "Complete shipping address is required")
	}
	if input.PaymentMethod != models.PaymentMethodCOD && input.PaymentMethod != models.PaymentMethodOnline {
		return nil, orderErr(fiber.StatusBadRequest, "Invalid payment method")
	}

	order := &models.Order{
		OrderID:         uuid.NewString(),
		UserID:          input.User.ID,
		PhoneNumber:     input.PhoneNumber,
		ShippingAddress: input.ShippingAddress,
		OrderStatus:     models.OrderStatusPending,
		PaymentMethod:   input.PaymentMethod,
		PaymentStatus:   models.PaymentStatusPending,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var total float64

		for _, item := range input.Items {
			if item.ProductID == "" || item.Size == "" || item.Quantity == 0 {
				return orderErr(fiber.StatusBadRequest, "Each product must include product ID, size, and quantity")
			}
			if item.Quantity < 0 {
				return orderErr(fiber.StatusBadRequest, "Quantity must be greater than 0")
			}

			productID, err := uuid.Parse(item.ProductID)
			if err != nil {
				return orderErr(fiber.StatusNotFound, "Product with ID %s not found", item.ProductID)
			}

			var product models.Product
			if err := tx.First(&product, "id = ?", productID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return orderErr(fiber.StatusNotFound, "Product with ID %s not found", item.ProductID)
				}
				return err
			}

			if err := tx.Where("product_id = ?", product.ID).Find(&product.Stock).Error; err != nil {
				return err
			}

			entry := product.FindStock(item.Size)
			if entry == nil {
				return orderErr(fiber.StatusBadRequest, "Size '%s' not available for product '%s'", item.Size, product.Name)
			}
			if entry.Quantity < item.Quantity {
				return orderErr(fiber.StatusBadRequest, "Not enough stock for '%s' in size '%s'", product.Name, item.Size)
			}

			// Conditional decrement so two concurrent checkouts cannot both
			// take the last units.
			res := tx.Model(&models.StockEntry{}).
				Where("id = ? AND quantity >= ?", entry.ID, item.Quantity).
				UpdateColumn("quantity", gorm.Expr("quantity - ?", item.Quantity))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return orderErr(fiber.StatusBadRequest, "Not enough stock for '%s' in size '%s'", product.Name, item.Size)
			}

			total += product.EffectivePrice() * float64(item.Quantity)

			order.Products = append(order.Products, models.OrderItem{
				ProductID:  product.ID,
				Name:       product.Name,
				Size:       item.Size,
				Quantity:   item.Quantity,
				Price:      product.Price,
				OfferPrice: product.OfferPrice,
			})
		}

		order.TotalPrice = total
		return tx.Create(order).Error
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// DeleteOrder removes the order and returns its reserved stock.
func (s *OrderService) DeleteOrder(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := restoreStock(tx, order.Products); err != nil {
			return err
		}
		if err := tx.Where("order_ref = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Order{}, "id = ?", order.ID).Error
	})
}

func restoreStock(tx *gorm.DB, items []models.OrderItem) error {
	for _, item := range items {
		if err := tx.Model(&models.StockEntry{}).
			Where("product_id = ? AND LOWER(size) = LOWER(?)", item.ProductID, item.Size).
			UpdateColumn("quantity", gorm.Expr("quantity + ?", item.Quantity)).Error; err != nil {
			return err
		}
	}
	return nil
}

func addressComplete(addr models.ShippingAddress) bool {
	for _, field := range []string{addr.Street, addr.City, addr.State, addr.PostalCode, addr.Country} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	return true
}
