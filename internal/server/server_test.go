package server

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trading_go/internal/domain"
	"trading_go/internal/engine"
	"trading_go/internal/infra"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

type testVenue struct {
	inst    *domain.Instrument
	ledger  *engine.Ledger
	matcher *engine.Matcher
	ts      *httptest.Server
}

func newTestVenue(t *testing.T) *testVenue {
	t.Helper()

	inst := domain.NewInstrument("BTC", 150, decimal.NewFromInt(30000))
	book := domain.NewBook(inst)
	ledger := engine.NewLedger()
	metrics := infra.NewMetrics()
	desk := engine.NewDesk(book, ledger, domain.NopAuditSink{}, metrics)

	cfg := &infra.Config{}
	cfg.Engine.CycleIntervalMS = 100
	cfg.Engine.ExpirySec = 30
	cfg.Engine.Dt = 1.0
	cfg.Engine.CommissionRate = decimal.NewFromFloat(0.005)
	matcher := engine.NewMatcher(book, ledger, domain.NopAuditSink{}, metrics, cfg, rand.New(rand.NewSource(1)))

	srv := New(":0", desk, book, metrics)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testVenue{inst: inst, ledger: ledger, matcher: matcher, ts: ts}
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("websocket dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readReply(t *testing.T, conn *websocket.Conn) OrderReply {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply OrderReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("failed to read reply: %v", err)
	}
	return reply
}

func TestSubmitOrderAck(t *testing.T) {
	v := newTestVenue(t)
	conn := dialWS(t, v.ts)

	req := OrderRequest{ClientID: 1, Symbol: "BTC", Side: domain.SideBuy, Volume: 10, LimitPrice: decimal.NewFromInt(29000)}
	if err := conn.WriteJSON(req); err != nil {
		t.Fatalf("failed to send order: %v", err)
	}

	ack := readReply(t, conn)
	if ack.Type != "ack" || ack.Status != domain.StatusPending {
		t.Fatalf("unexpected ack: %+v", ack)
	}
	if ack.OrderID == 0 {
		t.Error("ack missing order id")
	}
	if v.inst.Committed() != 10 {
		t.Errorf("expected committed=10, got %d", v.inst.Committed())
	}
}

func TestUnknownInstrumentError(t *testing.T) {
	v := newTestVenue(t)
	conn := dialWS(t, v.ts)

	req := OrderRequest{ClientID: 1, Symbol: "DOGE", Side: domain.SideBuy, Volume: 1, LimitPrice: decimal.NewFromInt(1)}
	conn.WriteJSON(req)

	reply := readReply(t, conn)
	if reply.Type != "error" {
		t.Fatalf("expected error reply, got %+v", reply)
	}
	if !strings.Contains(reply.Error, "unknown instrument") {
		t.Errorf("unexpected error text: %s", reply.Error)
	}
}

func TestRejectedAckIsTerminal(t *testing.T) {
	v := newTestVenue(t)
	conn := dialWS(t, v.ts)

	// Capacity 150: the second order can't fit.
	conn.WriteJSON(OrderRequest{ClientID: 1, Symbol: "BTC", Side: domain.SideBuy, Volume: 100, LimitPrice: decimal.NewFromInt(1)})
	first := readReply(t, conn)
	if first.Status != domain.StatusPending {
		t.Fatalf("unexpected first ack: %+v", first)
	}

	conn.WriteJSON(OrderRequest{ClientID: 1, Symbol: "BTC", Side: domain.SideBuy, Volume: 100, LimitPrice: decimal.NewFromInt(1)})
	second := readReply(t, conn)
	if second.Type != "ack" || second.Status != domain.StatusRejected {
		t.Fatalf("expected REJECTED ack, got %+v", second)
	}
}

func TestFinalPushedOnCompletion(t *testing.T) {
	v := newTestVenue(t)
	conn := dialWS(t, v.ts)

	// BUY at limit 31000 >= price 30000 executes on the next cycle.
	conn.WriteJSON(OrderRequest{ClientID: 1, Symbol: "BTC", Side: domain.SideBuy, Volume: 10, LimitPrice: decimal.NewFromInt(31000)})
	ack := readReply(t, conn)
	if ack.Status != domain.StatusPending {
		t.Fatalf("unexpected ack: %+v", ack)
	}

	v.matcher.Cycle(time.Now())

	final := readReply(t, conn)
	if final.Type != "final" {
		t.Fatalf("expected final reply, got %+v", final)
	}
	if final.OrderID != ack.OrderID {
		t.Errorf("final for wrong order: %d != %d", final.OrderID, ack.OrderID)
	}
	if final.Status != domain.StatusExecuted {
		t.Errorf("expected EXECUTED, got %s", final.Status)
	}
}

func TestInstrumentsEndpoint(t *testing.T) {
	v := newTestVenue(t)

	resp, err := http.Get(v.ts.URL + "/instruments")
	if err != nil {
		t.Fatalf("GET /instruments failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var reports []InstrumentReport
	if err := json.NewDecoder(resp.Body).Decode(&reports); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 instrument, got %d", len(reports))
	}
	rep := reports[0]
	if rep.Symbol != "BTC" || rep.Capacity != 150 || rep.Available != 150 {
		t.Errorf("unexpected report: %+v", rep)
	}
	if !rep.Price.Equal(decimal.NewFromInt(30000)) {
		t.Errorf("expected price 30000, got %s", rep.Price)
	}
}
