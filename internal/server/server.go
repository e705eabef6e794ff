package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"trading_go/internal/domain"
	"trading_go/internal/engine"
	"trading_go/internal/infra"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

// OrderRequest is one order submission from a client connection.
type OrderRequest struct {
	ClientID   int64           `json:"client_id"`
	Symbol     string          `json:"symbol"`
	Side       string          `json:"side"`
	Volume     int64           `json:"volume"`
	LimitPrice decimal.Decimal `json:"limit_price"`
}

// OrderReply is pushed back over the same connection: an "ack" right
// after admission, a "final" when the completion signal fires, or an
// "error" for invalid requests.
type OrderReply struct {
	Type    string `json:"type"` // "ack", "final" or "error"
	OrderID int64  `json:"order_id,omitempty"`
	Status  string `json:"status,omitempty"`
	Error   string `json:"error,omitempty"`
}

// InstrumentReport is the read-only view served on /instruments.
type InstrumentReport struct {
	Symbol    string          `json:"symbol"`
	Capacity  int64           `json:"capacity"`
	Available int64           `json:"available"`
	Price     decimal.Decimal `json:"price"`
	Profit    decimal.Decimal `json:"profit"`
}

// Server is the order gateway: clients submit orders over a websocket and
// receive their terminal outcome asynchronously on the same connection.
type Server struct {
	desk    *engine.Desk
	book    *domain.Book
	metrics *infra.Metrics

	upgrader websocket.Upgrader
	httpSrv  *http.Server
}

// New wires the gateway routes on addr.
func New(addr string, desk *engine.Desk, book *domain.Book, metrics *infra.Metrics) *Server {
	s := &Server{
		desk:    desk,
		book:    book,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWS)
	r.HandleFunc("/instruments", s.handleInstruments).Methods(http.MethodGet)

	s.httpSrv = &http.Server{Addr: addr, Handler: r}
	return s
}

// Handler exposes the route tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// ListenAndServe blocks serving clients until Shutdown.
func (s *Server) ListenAndServe() error {
	slog.Info("trading server started", slog.String("addr", s.httpSrv.Addr))
	err := s.httpSrv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	s.metrics.IncrementConnections()
	defer s.metrics.DecrementConnections()

	// gorilla allows one concurrent writer; acks and async finals share
	// this lock.
	var writeMu sync.Mutex

	for {
		var req OrderRequest
		if err := conn.ReadJSON(&req); err != nil {
			slog.Debug("client disconnected", slog.Any("error", err))
			return
		}

		o, err := s.desk.Admit(req.ClientID, req.Symbol, req.Side, req.Volume, req.LimitPrice)
		if err != nil {
			s.write(conn, &writeMu, OrderReply{Type: "error", Error: err.Error()})
			continue
		}

		status := o.Status()
		s.write(conn, &writeMu, OrderReply{Type: "ack", OrderID: o.ID, Status: status})

		// Rejections are already terminal; everything else reports back
		// when the matching cycle decides.
		if status == domain.StatusPending {
			go func(o *domain.Order) {
				<-o.Signal().Done()
				s.write(conn, &writeMu, OrderReply{
					Type:    "final",
					OrderID: o.ID,
					Status:  o.Signal().Outcome(),
				})
			}(o)
		}
	}
}

func (s *Server) write(conn *websocket.Conn, mu *sync.Mutex, reply OrderReply) {
	mu.Lock()
	defer mu.Unlock()
	if err := conn.WriteJSON(reply); err != nil {
		slog.Debug("write to client failed", slog.Any("error", err))
	}
}

func (s *Server) handleInstruments(w http.ResponseWriter, r *http.Request) {
	instruments := s.book.All()
	reports := make([]InstrumentReport, 0, len(instruments))
	for _, inst := range instruments {
		reports = append(reports, InstrumentReport{
			Symbol:    inst.Symbol,
			Capacity:  inst.Capacity(),
			Available: inst.Available(),
			Price:     inst.Price(),
			Profit:    inst.Profit(),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reports); err != nil {
		slog.Warn("failed to encode instrument report", slog.Any("error", err))
	}
}
