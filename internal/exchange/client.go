package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"regimeforge-go/internal/config"
)

// Client talks to the WEEX contract API. Transport failures never surface as
// Go errors: every call returns a payload map, with failures shaped as
// {"error": <text>, "status": <code>} so callers degrade by value.
type Client struct {
	baseURL    string
	apiKey     string
	secretKey  string
	passphrase string
	http       *resty.Client
}

// NewClient creates a WEEX API client from the loaded config
func NewClient() *Client {
	http := resty.New()
	http.SetBaseURL(config.AppConfig.WeexBaseURL)
	http.SetTimeout(30 * time.Second)

	return &Client{
		baseURL:    config.AppConfig.WeexBaseURL,
		apiKey:     config.AppConfig.WeexAPIKey,
		secretKey:  config.AppConfig.WeexSecretKey,
		passphrase: config.AppConfig.WeexPassphrase,
		http:       http,
	}
}

// sign builds the HMAC-SHA256 request signature over
// timestamp + METHOD + path + query + body, base64 encoded.
func (c *Client) sign(timestamp, method, path, query, body string) string {
	message := timestamp + strings.ToUpper(method) + path + query + body
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func (c *Client) headers(method, path, query, body string) map[string]string {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	return map[string]string{
		"ACCESS-KEY":        c.apiKey,
		"ACCESS-SIGN":       c.sign(timestamp, method, path, query, body),
		"ACCESS-TIMESTAMP":  timestamp,
		"ACCESS-PASSPHRASE": c.passphrase,
		"Content-Type":      "application/json",
		"locale":            "en-US",
	}
}

// Request performs an authenticated API call. query must include the leading
// "?" when present; body is a JSON string for POST requests.
func (c *Client) Request(ctx context.Context, method, path, query, body string) map[string]interface{} {
	req := c.http.R().
		SetContext(ctx).
		SetHeaders(c.headers(method, path, query, body))

	var resp *resty.Response
	var err error
	url := path + query
	if strings.ToUpper(method) == "GET" {
		resp, err = req.Get(url)
	} else {
		resp, err = req.SetBody(body).Post(url)
	}

	if err != nil {
		status := 500
		if strings.Contains(err.Error(), "deadline exceeded") || strings.Contains(err.Error(), "timeout") {
			status = 408
		}
		log.Printf("⚠️  [WEEX API] %s %s failed: %v", method, path, err)
		return map[string]interface{}{"error": err.Error(), "status": status}
	}

	if resp.StatusCode() != 200 {
		log.Printf("⚠️  [WEEX API] %s %s returned %d", method, path, resp.StatusCode())
		return map[string]interface{}{"error": string(resp.Body()), "status": resp.StatusCode()}
	}

	var parsed map[string]interface{}
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return map[string]interface{}{"error": fmt.Sprintf("invalid response body: %v", err), "status": 500}
	}
	return parsed
}

// GetTicker returns the price ticker for a contract symbol
func (c *Client) GetTicker(ctx context.Context, symbol string) map[string]interface{} {
	return c.Request(ctx, "GET", "/capi/v2/market/ticker", "?symbol="+symbol, "")
}

// GetDepth returns the order book for a contract symbol
func (c *Client) GetDepth(ctx context.Context, symbol string) map[string]interface{} {
	return c.Request(ctx, "GET", "/capi/v2/market/depth", "?symbol="+symbol, "")
}

// GetAssets returns account balances
func (c *Client) GetAssets(ctx context.Context) map[string]interface{} {
	return c.Request(ctx, "GET", "/capi/v2/account/assets", "", "")
}

// GetPosition returns the position record for a contract symbol
func (c *Client) GetPosition(ctx context.Context, symbol string) map[string]interface{} {
	return c.Request(ctx, "GET", "/capi/v2/account/position/singlePosition", "?symbol="+symbol, "")
}

// PlaceOrder submits a new order
func (c *Client) PlaceOrder(ctx context.Context, order map[string]interface{}) map[string]interface{} {
	body, err := json.Marshal(order)
	if err != nil {
		return map[string]interface{}{"error": err.Error(), "status": 400}
	}
	return c.Request(ctx, "POST", "/capi/v2/order/placeOrder", "", string(body))
}

// CancelOrder cancels an open order
func (c *Client) CancelOrder(ctx context.Context, symbol, orderID string) map[string]interface{} {
	body, _ := json.Marshal(map[string]string{"symbol": symbol, "orderId": orderID})
	return c.Request(ctx, "POST", "/capi/v2/order/cancel_order", "", string(body))
}

// UploadAILog uploads a strategy audit record for verification
func (c *Client) UploadAILog(ctx context.Context, aiLog map[string]interface{}) map[string]interface{} {
	body, err := json.Marshal(aiLog)
	if err != nil {
		return map[string]interface{}{"error": err.Error(), "status": 400}
	}
	return c.Request(ctx, "POST", "/capi/v2/order/uploadAiLog", "", string(body))
}
