package connectors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/security"
)

// Connection states of the bridge link.
const (
	StateConnected int32 = iota
	StateDisconnected
	StateReconnecting
)

// maxOrderAttempts bounds how many times one order submission is sent to
// the bridge per execution cycle. The reconnect handshake runs at most
// once per cycle regardless of how many attempts remain.
const maxOrderAttempts = 5

// OrderRequest is the payload sent to the bridge order endpoint.
type OrderRequest struct {
	ClientOrderID string   `json:"client_order_id"`
	Symbol        string   `json:"symbol"`
	Side          string   `json:"side"`
	Quantity      int64    `json:"quantity"`
	OrderType     string   `json:"order_type"`
	LimitPrice    *float64 `json:"limit_price,omitempty"`
}

// OrderResponse is what the bridge reports back for a submission.
type OrderResponse struct {
	OrderID        string  `json:"order_id"`
	ClientOrderID  string  `json:"client_order_id"`
	Status         string  `json:"status"`
	FilledQuantity int64   `json:"filled_quantity"`
	AvgFillPrice   float64 `json:"avg_fill_price"`
	Message        string  `json:"message,omitempty"`
}

// Alerter receives out-of-band notifications about bridge trouble.
type Alerter interface {
	Alert(ctx context.Context, subject, message string)
}

// BridgeClient talks to the broker bridge over REST. All order traffic for
// one engine instance goes through a single client so connection state and
// the reconnect guard are shared.
type BridgeClient struct {
	http     *resty.Client
	baseURL  string
	notifier Alerter

	state       atomic.Int32
	reconnectMu sync.Mutex
}

// NewBridgeClient builds a client from config. A non-empty BRIDGE_API_TOKEN
// is expected to be encrypted with the credentials key and is decrypted
// before being attached as a bearer token.
func NewBridgeClient(config Config, notifier Alerter) (*BridgeClient, error) {
	baseURL := strings.TrimRight(config.BridgeBaseURL, "/")

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(time.Duration(config.BridgeTimeoutSeconds)*time.Second).
		SetHeader("Content-Type", "application/json")

	if config.BridgeAPIToken != "" {
		token, err := security.DecryptString(config.BridgeAPIToken)
		if err != nil {
			return nil, fmt.Errorf("error decrypting bridge api token: %w", err)
		}
		httpClient.SetAuthToken(token)
	}

	client := &BridgeClient{
		http:     httpClient,
		baseURL:  baseURL,
		notifier: notifier,
	}
	client.state.Store(StateConnected)
	return client, nil
}

// State returns the current connection state.
func (c *BridgeClient) State() int32 {
	return c.state.Load()
}

// Connected reports whether the last bridge interaction succeeded.
func (c *BridgeClient) Connected() bool {
	return c.state.Load() == StateConnected
}

// Health probes the bridge health endpoint.
func (c *BridgeClient) Health(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/health")
	if err != nil {
		c.state.Store(StateDisconnected)
		return fmt.Errorf("bridge health check failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		c.state.Store(StateDisconnected)
		return fmt.Errorf("bridge health check returned status %d", resp.StatusCode())
	}
	c.state.Store(StateConnected)
	return nil
}

// SubmitOrder sends one order to the bridge. The request keeps its
// ClientOrderID across retries so the bridge can deduplicate.
func (c *BridgeClient) SubmitOrder(ctx context.Context, order OrderRequest) (*OrderResponse, error) {
	return c.postOrder(ctx, "/orders", order)
}

// DryRunOrder validates an order against the bridge without routing it.
func (c *BridgeClient) DryRunOrder(ctx context.Context, order OrderRequest) (*OrderResponse, error) {
	return c.postOrder(ctx, "/orders/dry-run", order)
}

func (c *BridgeClient) postOrder(ctx context.Context, path string, order OrderRequest) (*OrderResponse, error) {
	if order.ClientOrderID == "" {
		order.ClientOrderID = NewClientOrderID()
	}
	if order.OrderType == "" {
		order.OrderType = "MKT"
	}

	var out OrderResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(order).
		SetResult(&out).
		Post(path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusCreated {
		return nil, fmt.Errorf("bridge returned status %d: %s", resp.StatusCode(), resp.String())
	}
	return &out, nil
}

// Reconnect asks the bridge to re-establish its broker session and then
// verifies it with a health probe. Only one caller reconnects at a time;
// concurrent callers block and inherit the result of the in-flight attempt.
func (c *BridgeClient) Reconnect(ctx context.Context) error {
	c.reconnectMu.Lock()
	defer c.reconnectMu.Unlock()

	// Another caller may have already restored the link while we waited.
	if c.state.Load() == StateConnected {
		return nil
	}

	c.state.Store(StateReconnecting)
	logger.Warn("bridge disconnected, attempting reconnect")

	resp, err := c.http.R().SetContext(ctx).Post("/reconnect")
	if err != nil {
		c.state.Store(StateDisconnected)
		return fmt.Errorf("bridge reconnect failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		c.state.Store(StateDisconnected)
		return fmt.Errorf("bridge reconnect returned status %d", resp.StatusCode())
	}

	if err := c.Health(ctx); err != nil {
		return err
	}

	logger.Info("bridge connection restored")
	return nil
}

// ExecuteWithReconnect submits an order, retrying through at most one
// reconnect when the failure looks like a broken connection. Business
// rejections from the bridge are returned immediately, and the last
// connection error is returned unwrapped so callers can classify it.
func (c *BridgeClient) ExecuteWithReconnect(ctx context.Context, order OrderRequest) (*OrderResponse, error) {
	if order.ClientOrderID == "" {
		order.ClientOrderID = NewClientOrderID()
	}

	var lastErr error
	reconnected := false

	for attempt := 1; attempt <= maxOrderAttempts; attempt++ {
		response, err := c.SubmitOrder(ctx, order)
		if err == nil {
			c.state.Store(StateConnected)
			return response, nil
		}
		if !isConnectionError(err) {
			return nil, err
		}

		lastErr = err
		c.state.Store(StateDisconnected)
		logger.WithError(err).WithFields(map[string]interface{}{
			"symbol":          order.Symbol,
			"client_order_id": order.ClientOrderID,
			"attempt":         attempt,
		}).Warn("order submission failed on connection error")

		if attempt == maxOrderAttempts {
			break
		}
		if reconnected {
			continue
		}
		reconnected = true
		if reconnectErr := c.Reconnect(ctx); reconnectErr != nil {
			logger.WithError(reconnectErr).Error("bridge reconnect failed during order execution")
			break
		}
	}

	if c.notifier != nil {
		c.notifier.Alert(ctx, "bridge order failed",
			fmt.Sprintf("order %s for %s failed after reconnect: %v", order.ClientOrderID, order.Symbol, lastErr))
	}
	return nil, lastErr
}

// NewClientOrderID returns a fresh idempotency key for one order.
func NewClientOrderID() string {
	return "eq-" + uuid.NewString()
}

// isConnectionError distinguishes transport failures (worth a reconnect)
// from bridge-level rejections (not worth retrying).
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "EOF") ||
		strings.Contains(msg, "no such host")
}
