package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"trading_go/internal/app"
	"trading_go/internal/audit"
	"trading_go/internal/bot"
	"trading_go/internal/engine"
	"trading_go/internal/server"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize("configs/config.yaml"); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Simulation runs can bound their own lifetime.
	if cfg.App.RunForSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.App.RunForSec)*time.Second)
		defer cancel()
	}

	// 4. Audit recorder (async sink over the sqlite registries)
	recorder := audit.NewRecorder(bootstrap.Storage, bootstrap.Metrics, cfg.Audit.QueueSize)
	recorder.Start()

	// 5. Core engine: ledger, admission desk, matching cycle
	ledger := engine.NewLedger()
	desk := engine.NewDesk(bootstrap.Book, ledger, recorder, bootstrap.Metrics)
	matcher := engine.NewMatcher(bootstrap.Book, ledger, recorder, bootstrap.Metrics, cfg, nil)

	go matcher.Run(ctx)
	slog.InfoContext(ctx, "✅ Matching cycle started", slog.Duration("interval", cfg.CycleInterval()))

	reporter := audit.NewReporter(bootstrap.Book, ledger, cfg.AuditInterval())
	go reporter.Run(ctx)

	// 6. Order gateway
	srv := server.New(cfg.Server.Addr, desk, bootstrap.Book, bootstrap.Metrics)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			slog.Error("Trading server failed", slog.Any("error", err))
			stop()
		}
	}()

	// 7. Simulated clients
	if cfg.Bots.Count > 0 {
		wsURL := botURL(cfg.Server.Addr)
		for id := 1; id <= cfg.Bots.Count; id++ {
			go bot.New(int64(id), wsURL, bootstrap.Book.Symbols(), cfg.BotInterval()).Run(ctx)
		}
		slog.InfoContext(ctx, "✅ Bots started", slog.Int("count", cfg.Bots.Count))
	}

	slog.InfoContext(ctx, "✨ Trading venue fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("👋 Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Server shutdown failed", slog.Any("error", err))
	}

	// Drain the audit queue before exit.
	recorder.Close()

	snap := bootstrap.Metrics.Snapshot()
	slog.Info("final statistics",
		slog.Uint64("admitted", snap.OrdersAdmitted),
		slog.Uint64("rejected", snap.OrdersRejected),
		slog.Uint64("executed", snap.OrdersExecuted),
		slog.Uint64("cancelled", snap.OrdersCancelled),
		slog.Uint64("cycles", snap.CycleCount),
		slog.Int64("avg_cycle_ns", snap.AvgCycleNs),
		slog.Uint64("eval_errors", snap.EvalErrors),
		slog.Uint64("audit_dropped", snap.AuditDropped))
}

// botURL turns the listen address into a dialable websocket URL.
func botURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "ws://" + addr + "/ws"
}
