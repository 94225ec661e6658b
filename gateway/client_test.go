package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(ts *httptest.Server) *Client {
	return &Client{
		BaseURL:    ts.URL,
		Project:    "digistore",
		APIKey:     "test-key",
		HTTPClient: ts.Client(),
	}
}

func TestCreateTransaction(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/transactions", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "digistore", req["project"])
		assert.Equal(t, "DG-abc123", req["order_id"])
		assert.Equal(t, float64(450000), req["amount"])
		assert.Equal(t, "test-key", req["api_key"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"payment": map[string]string{"payment_code": "00020101021226..."},
		})
	}))
	defer ts.Close()

	code, err := testClient(ts).CreateTransaction(context.Background(), "DG-abc123", 450000)
	require.NoError(t, err)
	assert.Equal(t, "00020101021226...", code)
}

func TestCreateTransactionGatewayError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error":   true,
			"message": "amount below minimum",
		})
	}))
	defer ts.Close()

	_, err := testClient(ts).CreateTransaction(context.Background(), "DG-abc123", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount below minimum")
}

func TestTransactionStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/transaction", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "digistore", q.Get("project"))
		assert.Equal(t, "50000", q.Get("amount"))
		assert.Equal(t, "TP-xyz", q.Get("order_id"))
		assert.Equal(t, "test-key", q.Get("api_key"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"transaction": map[string]interface{}{
				"order_id": "TP-xyz",
				"status":   "completed",
				"amount":   50000,
			},
		})
	}))
	defer ts.Close()

	txn, err := testClient(ts).TransactionStatus(context.Background(), "TP-xyz", 50000)
	require.NoError(t, err)
	assert.Equal(t, "completed", txn.Status)
	assert.Equal(t, int64(50000), txn.Amount)
	assert.True(t, IsSuccess(txn.Status))
}

func TestIsSuccess(t *testing.T) {
	assert.True(t, IsSuccess("success"))
	assert.True(t, IsSuccess("completed"))
	assert.False(t, IsSuccess("pending"))
	assert.False(t, IsSuccess("failed"))
	assert.False(t, IsSuccess(""))
}

func TestQRCodePNG(t *testing.T) {
	encoded, err := QRCodePNG("00020101021226670016COM.EXAMPLE.WWW")
	require.NoError(t, err)
	assert.NotEmpty(t, encoded)
}
