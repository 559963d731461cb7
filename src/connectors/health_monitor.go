package connectors

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"
)

// StartHealthMonitor probes the bridge on a fixed interval until the
// context is cancelled. It alerts once per transition to disconnected and
// triggers a reconnect attempt, leaving order-path retries untouched.
func (c *BridgeClient) StartHealthMonitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		wasConnected := true
		for {
			select {
			case <-ctx.Done():
				logger.Info("bridge health monitor stopped")
				return
			case <-ticker.C:
				err := c.Health(ctx)
				if err == nil {
					if !wasConnected {
						logger.Info("bridge health restored")
					}
					wasConnected = true
					continue
				}

				logger.WithError(err).Warn("bridge health check failed")
				if wasConnected && c.notifier != nil {
					c.notifier.Alert(ctx, "bridge unhealthy", err.Error())
				}
				wasConnected = false

				if reconnectErr := c.Reconnect(ctx); reconnectErr != nil {
					logger.WithError(reconnectErr).Warn("background reconnect failed")
				}
			}
		}
	}()
}
