package core

import (
	"context"
	"sync"
	"time"

	"cuecore/pkg/domain"

	"github.com/holiman/uint256"
)

// TickSource supplies the monotonically increasing discrete time counter
// (block-number-equivalent) that cooldown scheduling runs on. Callers must
// advance it consistently; wall-clock precision is not assumed.
type TickSource func() uint64

// Config carries the shared parameters every component reads. It is fixed at
// construction; runtime switches (pause, collaborator wiring) go through the
// sanctioned setters.
type Config struct {
	// SystemAddress owns freshly issued genesis cues until escrow. Direct
	// transfers to it are rejected.
	SystemAddress Address
	// GenesisCap bounds cumulative genesis issuance.
	GenesisCap uint64
	// MinGenesisPrice floors the starting price of a genesis auction.
	MinGenesisPrice *uint256.Int
	// AuctionDuration is the fixed duration passed to CreateAuction.
	AuctionDuration time.Duration
	// TickInterval is the wall-clock length of one tick, used to convert
	// cooldown durations into ticks.
	TickInterval time.Duration
}

// DefaultConfig returns the reference parameters: a 50,000 genesis ceiling,
// a 10^16 base-unit minimum starting price, one-day auctions, and 15-second
// ticks.
func DefaultConfig() Config {
	return Config{
		SystemAddress:   "sys:cuecore",
		GenesisCap:      50_000,
		MinGenesisPrice: uint256.NewInt(10_000_000_000_000_000),
		AuctionDuration: 24 * time.Hour,
		TickInterval:    domain.DefaultTickInterval,
	}
}

// Service exposes the transactional ledger, registry, breeding, and genesis
// issuance operations. All state mutation funnels through the store's
// staged-copy transactions; no partial state is ever observable.
type Service struct {
	store   PersistentStore
	cfg     Config
	auth    domain.RoleAuthorizer
	ticks   TickSource
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	sinks   []domain.EventSink

	mu      sync.RWMutex // guards auction and paused
	auction domain.SaleAuction
	paused  bool
}

// Option customizes service construction.
type Option func(*Service)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Option {
	return func(s *Service) {
		if cfg.SystemAddress.IsNull() {
			cfg.SystemAddress = DefaultConfig().SystemAddress
		}
		if cfg.MinGenesisPrice == nil {
			cfg.MinGenesisPrice = DefaultConfig().MinGenesisPrice
		}
		if cfg.TickInterval <= 0 {
			cfg.TickInterval = domain.DefaultTickInterval
		}
		if cfg.AuctionDuration <= 0 {
			cfg.AuctionDuration = DefaultConfig().AuctionDuration
		}
		s.cfg = cfg
	}
}

// WithAuthorizer wires the access-control collaborator. Without one, every
// role-gated operation is rejected.
func WithAuthorizer(auth domain.RoleAuthorizer) Option {
	return func(s *Service) { s.auth = auth }
}

// WithTickSource overrides the tick counter provider.
func WithTickSource(ticks TickSource) Option {
	return func(s *Service) {
		if ticks != nil {
			s.ticks = ticks
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder attaches a metrics recorder.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithTracer attaches a tracer.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithEventSink appends a sink receiving every committed ledger event.
func WithEventSink(sink domain.EventSink) Option {
	return func(s *Service) {
		if sink != nil {
			s.sinks = append(s.sinks, sink)
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:   store,
		cfg:     DefaultConfig(),
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
	}
	s.ticks = s.wallClockTicks
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store with the
// default rules engine.
func NewInMemoryService(opts ...Option) *Service {
	return NewService(newMemoryStore(), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore { return s.store }

// Config returns the construction-time parameters.
func (s *Service) Config() Config { return s.cfg }

func (s *Service) wallClockTicks() uint64 {
	// Nanosecond division keeps sub-second tick intervals valid.
	return uint64(time.Now().UnixNano() / int64(s.cfg.TickInterval))
}

// NowTick returns the current value of the external time counter.
func (s *Service) NowTick() uint64 { return s.ticks() }

// instrument wraps an operation with tracing, metrics, and rejection logging.
func (s *Service) instrument(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, op)
	err := fn(ctx)
	span.End(err)
	s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	if err != nil {
		s.logger.Debug("operation rejected", "op", op, "error", err.Error())
	}
	return err
}

func (s *Service) publish(events ...Event) {
	if len(events) == 0 {
		return
	}
	for _, sink := range s.sinks {
		for _, ev := range events {
			sink.Publish(ev)
		}
	}
}

// Paused reports the cross-cutting pause switch.
func (s *Service) Paused() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.paused
}

// requireActive rejects state-mutating entry points uniformly while paused.
func (s *Service) requireActive(op string) error {
	if s.Paused() {
		return domain.PreconditionError{Op: op, Reason: "registry is paused"}
	}
	return nil
}

func (s *Service) requireRole(op string, caller Address, roles ...domain.Role) error {
	if s.auth != nil {
		for _, role := range roles {
			if s.auth.Authorize(caller, role) {
				return nil
			}
		}
	}
	return domain.PreconditionError{Op: op, Reason: "caller is not authorized"}
}

func (s *Service) saleAuction() domain.SaleAuction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.auction
}

// SetSaleAuction wires the external auction collaborator. The capability
// probe guards against a misconfigured address.
func (s *Service) SetSaleAuction(ctx context.Context, caller Address, auction domain.SaleAuction) error {
	return s.instrument(ctx, "set_sale_auction", func(context.Context) error {
		if err := s.requireRole("set_sale_auction", caller, domain.RoleAdmin); err != nil {
			return err
		}
		if auction == nil || !auction.IsSaleAuction() {
			return domain.PreconditionError{Op: "set_sale_auction", Reason: "collaborator failed the sale auction capability probe"}
		}
		s.mu.Lock()
		s.auction = auction
		s.mu.Unlock()
		s.logger.Info("sale auction wired", "address", string(auction.Address()))
		return nil
	})
}

// Pause flips the registry into the paused state: every state-mutating entry
// point rejects until Unpause.
func (s *Service) Pause(ctx context.Context, caller Address) error {
	return s.instrument(ctx, "pause", func(context.Context) error {
		if err := s.requireRole("pause", caller, domain.RoleAdmin, domain.RoleOps); err != nil {
			return err
		}
		s.mu.Lock()
		if s.paused {
			s.mu.Unlock()
			return domain.PreconditionError{Op: "pause", Reason: "already paused"}
		}
		s.paused = true
		s.mu.Unlock()
		// Publish after the lock is released; sinks may read service state.
		s.publish(Event{Type: domain.EventPaused, Tick: s.ticks(), Time: time.Now().UTC()})
		return nil
	})
}

// Unpause resumes operation. It is admin-only and requires the sale auction
// collaborator to be wired, so a half-configured registry cannot be resumed.
func (s *Service) Unpause(ctx context.Context, caller Address) error {
	return s.instrument(ctx, "unpause", func(context.Context) error {
		if err := s.requireRole("unpause", caller, domain.RoleAdmin); err != nil {
			return err
		}
		s.mu.Lock()
		if !s.paused {
			s.mu.Unlock()
			return domain.PreconditionError{Op: "unpause", Reason: "not paused"}
		}
		if s.auction == nil {
			s.mu.Unlock()
			return domain.PreconditionError{Op: "unpause", Reason: "sale auction not wired"}
		}
		s.paused = false
		s.mu.Unlock()
		s.publish(Event{Type: domain.EventUnpaused, Tick: s.ticks(), Time: time.Now().UTC()})
		return nil
	})
}

// SweepAuctionBalance drains the auction collaborator's withdrawable balance
// to the system address. Finance role only; the collaborator must expose the
// Withdrawable capability.
func (s *Service) SweepAuctionBalance(ctx context.Context, caller Address) (*uint256.Int, error) {
	var swept *uint256.Int
	err := s.instrument(ctx, "sweep_auction_balance", func(ctx context.Context) error {
		if err := s.requireRole("sweep_auction_balance", caller, domain.RoleFinance); err != nil {
			return err
		}
		auction := s.saleAuction()
		if auction == nil {
			return domain.PreconditionError{Op: "sweep_auction_balance", Reason: "sale auction not wired"}
		}
		w, ok := auction.(domain.Withdrawable)
		if !ok {
			return domain.PreconditionError{Op: "sweep_auction_balance", Reason: "collaborator exposes no withdrawable balance"}
		}
		var err error
		swept, err = w.Withdraw(ctx, s.cfg.SystemAddress)
		return err
	})
	return swept, err
}
