package connectors

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	logger "github.com/sirupsen/logrus"

	"github.com/DreamFulFil/Automatic-Equity-Trader-sub005/src/model"
)

const (
	tickStreamRedialBase = 2 * time.Second
	tickStreamRedialMax  = 30 * time.Second
)

// TickStream consumes market data ticks from the bridge websocket feed and
// redials with backoff when the connection drops.
type TickStream struct {
	url string
}

func NewTickStream(url string) *TickStream {
	return &TickStream{url: url}
}

// Run pushes decoded ticks into out until the context is cancelled. Bad
// frames are logged and skipped; the stream itself stays up.
func (s *TickStream) Run(ctx context.Context, out chan<- model.MarketData) {
	backoff := tickStreamRedialBase

	for {
		if ctx.Err() != nil {
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
		if err != nil {
			logger.WithError(err).WithField("url", s.url).Warn("tick stream dial failed")
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > tickStreamRedialMax {
				backoff = tickStreamRedialMax
			}
			continue
		}

		logger.WithField("url", s.url).Info("tick stream connected")
		backoff = tickStreamRedialBase

		s.readLoop(ctx, conn, out)
		_ = conn.Close()
	}
}

func (s *TickStream) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- model.MarketData) {
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				logger.WithError(err).Warn("tick stream read failed, redialing")
			}
			return
		}

		var tick model.MarketData
		if err := json.Unmarshal(payload, &tick); err != nil {
			logger.WithError(err).Warn("dropping malformed tick frame")
			continue
		}
		if tick.Symbol == "" {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case out <- tick:
		}
	}
}
