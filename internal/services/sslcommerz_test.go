package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/clothy/internal/models"
)

func TestInitSessionSendsFormAndParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "store-1", r.PostFormValue("store_id"))
		assert.Equal(t, "secret", r.PostFormValue("store_passwd"))
		assert.Equal(t, "120.50", r.PostFormValue("total_amount"))
		assert.Equal(t, "USD", r.PostFormValue("currency"))
		assert.Equal(t, "tran-42", r.PostFormValue("tran_id"))
		assert.Equal(t, "Dhaka", r.PostFormValue("cus_city"))

		json.NewEncoder(w).Encode(map[string]string{
			"status":         "SUCCESS",
			"GatewayPageURL": "https://pay.example/session/abc",
		})
	}))
	defer srv.Close()

	svc := NewSSLCommerzService("store-1", "secret", false)
	svc.sessionURL = srv.URL

	session, err := svc.InitSession(context.Background(), SessionRequest{
		Amount:        120.5,
		Currency:      "USD",
		TransactionID: "tran-42",
		Address:       models.ShippingAddress{City: "Dhaka"},
	})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/session/abc", session.GatewayPageURL)
	assert.Equal(t, "SUCCESS", session.Status)
}

func TestInitSessionSurfacesGatewayRefusal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"status":       "FAILED",
			"failedreason": "Store Credential Error",
		})
	}))
	defer srv.Close()

	svc := NewSSLCommerzService("store-1", "wrong", false)
	svc.sessionURL = srv.URL

	session, err := svc.InitSession(context.Background(), SessionRequest{Amount: 10, Currency: "USD", TransactionID: "t"})
	require.NoError(t, err)
	assert.Empty(t, session.GatewayPageURL)
	assert.Equal(t, "Store Credential Error", session.FailedReason)
}

func TestValidateTransactionOnlyTrustsValid(t *testing.T) {
	cases := []struct {
		status string
		valid  bool
	}{
		{"VALID", true},
		{"VALIDATED", false},
		{"INVALID_TRANSACTION", false},
		{"", false},
	}

	for _, tc := range cases {
		t.Run("status "+tc.status, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "val-9", r.URL.Query().Get("val_id"))
				assert.Equal(t, "store-1", r.URL.Query().Get("store_id"))
				assert.Equal(t, "json", r.URL.Query().Get("format"))

				json.NewEncoder(w).Encode(map[string]string{
					"status":  tc.status,
					"tran_id": "tran-42",
				})
			}))
			defer srv.Close()

			svc := NewSSLCommerzService("store-1", "secret", false)
			svc.validationURL = srv.URL

			result, err := svc.ValidateTransaction(context.Background(), "val-9")
			require.NoError(t, err)
			assert.Equal(t, tc.valid, result.Valid())
			assert.NotEmpty(t, result.Raw)
		})
	}
}

func TestValidateTransactionRejectsBadStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	svc := NewSSLCommerzService("store-1", "secret", false)
	svc.validationURL = srv.URL

	_, err := svc.ValidateTransaction(context.Background(), "val-9")
	assert.Error(t, err)
}
