package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/clothy/internal/config"
	"github.com/example/clothy/internal/logger"
	"github.com/example/clothy/internal/middleware"
	"github.com/example/clothy/internal/models"
	"github.com/example/clothy/internal/services"
	"github.com/example/clothy/internal/utils"
)

const orderCurrency = "USD"

// OrderHandler serves order placement, gateway callbacks, tracking and the
// admin order operations.
type OrderHandler struct {
	db      *gorm.DB
	cfg     *config.Config
	orders  *services.OrderService
	gateway *services.SSLCommerzService
}

func NewOrderHandler(db *gorm.DB, cfg *config.Config, orders *services.OrderService, gateway *services.SSLCommerzService) *OrderHandler {
	return &OrderHandler{db: db, cfg: cfg, orders: orders, gateway: gateway}
}

type createOrderRequest struct {
	PhoneNumber     string                 `json:"phone_number"`
	Products        []services.CartItem    `json:"products"`
	ShippingAddress models.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
}

// CreateOrder runs the checkout workflow and branches on payment method.
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
	}

	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	order, err := h.orders.PlaceOrder(c.Context(), services.PlaceOrderInput{
		User:            user,
		PhoneNumber:     req.PhoneNumber,
		Items:           req.Products,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		return err
	}

	frontend := strings.TrimSuffix(h.cfg.FrontendURL, "/")

	if order.PaymentMethod == models.PaymentMethodCOD {
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"message":      "Order placed successfully",
			"redirect_url": fmt.Sprintf("%s/order-success?order_id=%s", frontend, order.OrderID),
			"order":        order,
		})
	}

	backend := strings.TrimSuffix(h.cfg.BackendURL, "/")
	session, err := h.gateway.InitSession(c.Context(), services.SessionRequest{
		Amount:        order.TotalPrice,
		Currency:      orderCurrency,
		TransactionID: order.OrderID,
		SuccessURL:    backend + "/api/orders/ssl-success",
		FailURL:       backend + "/api/orders/ssl-fail",
		CancelURL:     backend + "/api/orders/ssl-cancel",
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
		CustomerPhone: order.PhoneNumber,
		Address:       order.ShippingAddress,
	})
	if err != nil || session.GatewayPageURL == "" {
		if err != nil {
			logger.L().Error("Gateway session init failed",
				zap.String("order_id", order.OrderID),
				zap.Error(err),
			)
		} else {
			logger.L().Error("Gateway refused session",
				zap.String("order_id", order.OrderID),
				zap.String("reason", session.FailedReason),
			)
		}
		if delErr := h.orders.DeleteOrder(c.Context(), order); delErr != nil {
			logger.L().Error("Failed to roll back order after gateway error",
				zap.String("order_id", order.OrderID),
				zap.Error(delErr),
			)
		}
		return fiber.NewError(fiber.StatusBadRequest, "Failed to initiate payment session")
	}

	return c.JSON(fiber.Map{
		"gateway_url": session.GatewayPageURL,
		"order_id":    order.OrderID,
	})
}

// SSLSuccess verifies the gateway callback server-side before marking the
// order paid. The callback payload alone is never trusted.
func (h *OrderHandler) SSLSuccess(c *fiber.Ctx) error {
	tranID := c.FormValue("tran_id")
	valID := c.FormValue("val_id")
	if tranID == "" || valID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "tran_id and val_id are required")
	}

	order, err := h.findOrder(tranID)
	if err != nil {
		return err
	}

	result, err := h.gateway.ValidateTransaction(c.Context(), valID)
	if err != nil {
		logger.L().Error("Gateway validation request failed",
			zap.String("order_id", tranID),
			zap.Error(err),
		)
		return fiber.NewError(fiber.StatusBadRequest, "Payment verification failed")
	}
	if !result.Valid() {
		logger.L().Warn("Payment verification rejected",
			zap.String("order_id", tranID),
			zap.String("status", result.Status),
		)
		return fiber.NewError(fiber.StatusBadRequest, "Payment verification failed")
	}

	updates := map[string]interface{}{
		"payment_status": models.PaymentStatusPaid,
		"payment_info":   result.Raw,
	}
	if err := h.db.Model(order).Updates(updates).Error; err != nil {
		return err
	}

	frontend := strings.TrimSuffix(h.cfg.FrontendURL, "/")
	return c.Redirect(fmt.Sprintf("%s/order-success?order_id=%s", frontend, order.OrderID), fiber.StatusSeeOther)
}

// SSLFail handles the gateway's failure callback.
func (h *OrderHandler) SSLFail(c *fiber.Ctx) error {
	return h.abortPayment(c, models.PaymentStatusFailed, "order-fail")
}

// SSLCancel handles the gateway's cancel callback.
func (h *OrderHandler) SSLCancel(c *fiber.Ctx) error {
	return h.abortPayment(c, models.PaymentStatusCancelled, "order-cancel")
}

func (h *OrderHandler) abortPayment(c *fiber.Ctx, status, page string) error {
	tranID := c.FormValue("tran_id")
	if tranID == "" {
		return fiber.NewError(fiber.StatusBadRequest, "tran_id is required")
	}

	order, err := h.findOrder(tranID)
	if err != nil {
		return err
	}

	if h.orders.SinglePhoneOrder() {
		// The phone-uniqueness policy would otherwise block a retry with the
		// same number, so the dead order is removed entirely.
		if err := h.orders.DeleteOrder(c.Context(), order); err != nil {
			return err
		}
	} else {
		if err := h.db.Model(order).Update("payment_status", status).Error; err != nil {
			return err
		}
	}

	frontend := strings.TrimSuffix(h.cfg.FrontendURL, "/")
	return c.Redirect(fmt.Sprintf("%s/%s?order_id=%s", frontend, page, order.OrderID), fiber.StatusSeeOther)
}

// TrackOrder looks up orders by phone number, optionally narrowed to one
// order id. No authentication required.
func (h *OrderHandler) TrackOrder(c *fiber.Ctx) error {
	phone := c.Query("phone_number")
	if phone == "" {
		return fiber.NewError(fiber.StatusBadRequest, "Phone number is required")
	}

	query := h.db.Preload("Products").Where("phone_number = ?", phone)
	if orderID := c.Query("order_id"); orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}

	var orders []models.Order
	if err := query.Order("created_at DESC").Find(&orders).Error; err != nil {
		return err
	}
	if len(orders) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "Order not found")
	}

	return c.JSON(fiber.Map{"orders": orders})
}

// ListOrders returns all orders for the admin dashboard, newest first.
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	pagination := utils.ParsePagination(c)

	var total int64
	if err := h.db.Model(&models.Order{}).Count(&total).Error; err != nil {
		return err
	}

	var orders []models.Order
	if err := h.db.
		Preload("Products").
		Preload("User").
		Order("created_at DESC").
		Offset(pagination.Offset).
		Limit(pagination.Limit).
		Find(&orders).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"orders": orders,
		"total":  total,
		"page":   pagination.Page,
		"limit":  pagination.Limit,
	})
}

// UpdateOrderStatus sets a new fulfillment status on an order.
func (h *OrderHandler) UpdateOrderStatus(c *fiber.Ctx) error {
	var req struct {
		OrderStatus string `json:"order_status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if !models.IsValidOrderStatus(req.OrderStatus) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid order status")
	}

	order, err := h.findOrder(c.Params("order_id"))
	if err != nil {
		return err
	}

	if err := h.db.Model(order).Update("order_status", req.OrderStatus).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Order status updated", "order": order})
}

// UpdatePaymentStatus sets a new payment status on an order.
func (h *OrderHandler) UpdatePaymentStatus(c *fiber.Ctx) error {
	var req struct {
		PaymentStatus string `json:"payment_status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if !models.IsValidPaymentStatus(req.PaymentStatus) {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid payment status")
	}

	order, err := h.findOrder(c.Params("order_id"))
	if err != nil {
		return err
	}

	if err := h.db.Model(order).Update("payment_status", req.PaymentStatus).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Payment status updated", "order": order})
}

func (h *OrderHandler) findOrder(orderID string) (*models.Order, error) {
	if orderID == "" {
		return nil, fiber.NewError(fiber.StatusNotFound, "Order not found")
	}

	var order models.Order
	if err := h.db.Preload("Products").First(&order, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "Order not found")
		}
		return nil, err
	}
	return &order, nil
}
