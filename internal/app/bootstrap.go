package app

import (
	"log/slog"

	"trading_go/internal/domain"
	"trading_go/internal/infra"
	"trading_go/internal/infra/storage"
)

// Bootstrap orchestrates the venue startup sequence: configuration,
// logging, audit storage and the instrument book, in that order. Every
// component downstream receives these as explicit values; nothing reads
// configuration after startup.
type Bootstrap struct {
	Config  *infra.Config
	Storage *storage.Storage
	Book    *domain.Book
	Metrics *infra.Metrics
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization.
func (b *Bootstrap) Initialize(configPath string) error {
	slog.Info("🚀 Bootstrapping trading venue...")

	// 1. Load Config
	cfg, err := infra.LoadConfig(configPath)
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize audit storage (DB)
	store, err := storage.New(cfg.Audit.DBPath)
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Audit registries initialized", slog.String("path", cfg.Audit.DBPath))

	// 4. Build the instrument book
	instruments := make([]*domain.Instrument, 0, len(cfg.Instruments))
	for _, ic := range cfg.Instruments {
		instruments = append(instruments, domain.NewInstrument(ic.Symbol, ic.Capacity, ic.InitialPrice))
	}
	b.Book = domain.NewBook(instruments...)
	slog.Info("✅ Instrument book ready", slog.Int("instruments", len(instruments)))

	b.Metrics = infra.NewMetrics()

	return nil
}
