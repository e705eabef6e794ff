package bot

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"trading_go/internal/domain"
	"trading_go/internal/server"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// Bot is a simulated trading client. It connects to the venue's websocket
// gateway and submits randomized limit orders at a fixed interval, logging
// the acks and finals it gets back. Bots exist to exercise the engine; the
// venue treats them like any other client.
type Bot struct {
	id       int64
	url      string
	symbols  []string
	interval time.Duration
	rnd      *rand.Rand
}

// New creates a bot with its own random source.
func New(id int64, url string, symbols []string, interval time.Duration) *Bot {
	return &Bot{
		id:       id,
		url:      url,
		symbols:  symbols,
		interval: interval,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano() + id)),
	}
}

// Run connects and trades until ctx ends or the connection drops.
func (b *Bot) Run(ctx context.Context) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, b.url, nil)
	if err != nil {
		slog.Warn("bot failed to connect", slog.Int64("bot_id", b.id), slog.Any("error", err))
		return
	}
	defer conn.Close()
	slog.Info("bot connected", slog.Int64("bot_id", b.id))

	// Reader drains acks and finals so the connection stays healthy.
	go func() {
		for {
			var reply server.OrderReply
			if err := conn.ReadJSON(&reply); err != nil {
				return
			}
			slog.Debug("bot reply",
				slog.Int64("bot_id", b.id),
				slog.String("type", reply.Type),
				slog.Int64("order_id", reply.OrderID),
				slog.String("status", reply.Status))
		}
	}()

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteJSON(b.randomOrder()); err != nil {
				slog.Debug("bot write failed", slog.Int64("bot_id", b.id), slog.Any("error", err))
				return
			}
		}
	}
}

func (b *Bot) randomOrder() server.OrderRequest {
	side := domain.SideBuy
	if b.rnd.Intn(2) == 0 {
		side = domain.SideSell
	}
	return server.OrderRequest{
		ClientID:   b.id,
		Symbol:     b.symbols[b.rnd.Intn(len(b.symbols))],
		Side:       side,
		Volume:     b.rnd.Int63n(10) + 1,
		LimitPrice: decimal.NewFromInt(100 + b.rnd.Int63n(50)),
	}
}
