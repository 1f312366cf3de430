package handlers

import (
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/clothy/internal/config"
	"github.com/example/clothy/internal/services"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gdb, mock
}

func newOrderTestApp(t *testing.T) (*fiber.App, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newMockDB(t)
	cfg := &config.Config{FrontendURL: "http://localhost:3000"}
	handler := NewOrderHandler(db, cfg, services.NewOrderService(db, false), nil)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Put("/api/orders/:order_id", handler.UpdateOrderStatus)
	app.Put("/api/orders/:order_id/payment", handler.UpdatePaymentStatus)
	app.Get("/api/orders/track-order", handler.TrackOrder)

	return app, mock
}

func TestUpdateOrderStatusRejectsUnknownValue(t *testing.T) {
	app, _ := newOrderTestApp(t)

	req := httptest.NewRequest("PUT", "/api/orders/abc123", strings.NewReader(`{"order_status":"Teleported"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestUpdateOrderStatusUnknownOrder(t *testing.T) {
	app, mock := newOrderTestApp(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE order_id = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	req := httptest.NewRequest("PUT", "/api/orders/missing", strings.NewReader(`{"order_status":"Shipped"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePaymentStatusRejectsUnknownValue(t *testing.T) {
	app, _ := newOrderTestApp(t)

	req := httptest.NewRequest("PUT", "/api/orders/abc123/payment", strings.NewReader(`{"payment_status":"Maybe"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestTrackOrderRequiresPhoneNumber(t *testing.T) {
	app, _ := newOrderTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/orders/track-order", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestTrackOrderNotFound(t *testing.T) {
	app, mock := newOrderTestApp(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "orders" WHERE phone_number = $1`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/orders/track-order?phone_number=01700000000", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}
