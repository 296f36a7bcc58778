// Package feed streams price updates from a WebSocket source into the
// simulation engine. Messages are plain JSON in the market.PriceUpdate
// wire shape:
//
//	{"market_id":"rain-tomorrow","best_yes_price":41,"best_no_price":59,"timestamp":"..."}
//
// Frames without a market_id (heartbeats) are skipped. The client
// reconnects with exponential backoff until the context is cancelled.
package feed

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/rustyeddy/papertrade/market"
)

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// Handler consumes decoded price updates. *sim.Engine satisfies it.
type Handler interface {
	UpdatePrice(u market.PriceUpdate) error
}

// Config holds the feed client settings.
type Config struct {
	// URL of the price WebSocket, e.g. "ws://localhost:9001/prices".
	URL string

	// ReconnectDelay is the initial delay before reconnection
	// attempts. Defaults to 2 seconds if zero.
	ReconnectDelay time.Duration

	// MaxReconnectDelay caps the exponential backoff. Defaults to 30s.
	MaxReconnectDelay time.Duration
}

func (c *Config) defaults() {
	if c.ReconnectDelay == 0 {
		c.ReconnectDelay = 2 * time.Second
	}
	if c.MaxReconnectDelay == 0 {
		c.MaxReconnectDelay = 30 * time.Second
	}
}

// Client is a reconnecting WebSocket price consumer.
type Client struct {
	cfg Config
	log *zap.Logger
}

// New creates a feed client. log may be nil.
func New(cfg Config, log *zap.Logger) *Client {
	cfg.defaults()
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{cfg: cfg, log: log}
}

// Run connects and pushes every decoded update into h. It blocks until
// ctx is cancelled, reconnecting automatically on disconnect.
func (c *Client) Run(ctx context.Context, h Handler) error {
	delay := c.cfg.ReconnectDelay

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := c.runOnce(ctx, h)
		if err == nil {
			return nil
		}

		c.log.Warn("feed disconnected",
			zap.Error(err),
			zap.Duration("retry_in", delay))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > c.cfg.MaxReconnectDelay {
			delay = c.cfg.MaxReconnectDelay
		}
	}
}

// runOnce makes a single connection attempt and reads until disconnect
// or ctx cancellation.
func (c *Client) runOnce(ctx context.Context, h Handler) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	c.log.Info("feed connected", zap.String("url", c.cfg.URL))

	// The watcher must not outlive this connection: done releases it
	// when the read loop exits, or the reconnect loop leaks one
	// goroutine per cycle.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "shutdown"))
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			return err
		}

		var u market.PriceUpdate
		if err := jsonCodec.Unmarshal(raw, &u); err != nil {
			c.log.Warn("feed frame undecodable", zap.Error(err), zap.ByteString("raw", raw))
			continue
		}
		if u.MarketID == "" {
			// heartbeat
			continue
		}
		if u.Time.IsZero() {
			u.Time = time.Now().UTC()
		}

		if err := h.UpdatePrice(u); err != nil {
			c.log.Warn("price update refused",
				zap.String("market", u.MarketID),
				zap.Error(err))
		}
	}
}
