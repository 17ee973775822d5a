package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"lms/config"

	"github.com/go-resty/resty/v2"
)

// Client creates payment orders with a Razorpay-compatible REST gateway.
// Amounts are in minor units (paise).
type Client struct {
	http      *resty.Client
	keyID     string
	keySecret string
}

// NewClient builds the gateway client from app configuration
func NewClient() *Client {
	httpClient := resty.New().
		SetBaseURL(config.AppConfig.GatewayApiURL).
		SetBasicAuth(config.AppConfig.GatewayKeyID, config.AppConfig.GatewayKeySecret)

	return &Client{
		http:      httpClient,
		keyID:     config.AppConfig.GatewayKeyID,
		keySecret: config.AppConfig.GatewayKeySecret,
	}
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// CreateRemoteOrder registers a payment intent and returns the gateway's
// order id, which later correlates the out-of-band confirmation.
func (c *Client) CreateRemoteOrder(amountMinorUnits int64, currency string, receipt string) (string, error) {
	var result createOrderResponse

	resp, err := c.http.R().
		SetBody(createOrderRequest{Amount: amountMinorUnits, Currency: currency, Receipt: receipt}).
		SetResult(&result).
		Post("/orders")
	if err != nil {
		return "", fmt.Errorf("gateway order create failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", fmt.Errorf("gateway order create failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	if result.ID == "" {
		return "", fmt.Errorf("gateway order create returned no order id")
	}

	return result.ID, nil
}

// VerifySignature checks the HMAC-SHA256 signature the gateway attaches to a
// payment confirmation (signed over "orderID|paymentID" with the key secret).
func (c *Client) VerifySignature(gatewayOrderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
