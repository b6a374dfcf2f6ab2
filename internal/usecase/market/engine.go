package market

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/simaogato/tusec-backend/internal/domain"
)

const (
	// TickInterval is the fixed period of the price update cycle
	TickInterval = 2000 * time.Millisecond

	// MaxChangePct bounds the per-tick move of a price, in percent, both ways
	MaxChangePct = 5
)

var (
	hundred = decimal.NewFromInt(100)
	tracer  = otel.Tracer("github.com/simaogato/tusec-backend/internal/usecase/market")
)

// Rand is the source of price perturbations.
// Float64 must return values in [0, 1).
type Rand interface {
	Float64() float64
}

// UserLister gives the engine the user table to redraw after each tick.
// ViewUsers calls fn with a snapshot of the users while no other user refresh can be published,
// so presenters see user tables in the order the changes happened.
type UserLister interface {
	ViewUsers(fn func(users []domain.User))
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

type noUsers struct{}

func (noUsers) ViewUsers(fn func([]domain.User)) { fn(nil) }

// Engine applies a bounded random walk to every price of a Market on a fixed period
type Engine struct {
	market    *Market
	repo      domain.StockRepository
	presenter domain.Presenter
	users     UserLister
	rand      Rand
	logger    *zap.Logger
	now       func() time.Time
	interval  time.Duration

	mu  sync.Mutex // serialises ticks
	seq uint64
}

// NewEngine creates a new Engine instance.
// A nil presenter, users or rnd falls back to a no-op presenter, an empty user table and math/rand/v2.
func NewEngine(
	m *Market,
	repo domain.StockRepository,
	presenter domain.Presenter,
	users UserLister,
	rnd Rand,
	logger *zap.Logger,
) *Engine {
	if presenter == nil {
		presenter = domain.NopPresenter{}
	}
	if users == nil {
		users = noUsers{}
	}
	if rnd == nil {
		rnd = globalRand{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		market:    m,
		repo:      repo,
		presenter: presenter,
		users:     users,
		rand:      rnd,
		logger:    logger,
		now:       time.Now,
		interval:  TickInterval,
	}
}

// Run ticks once immediately and then once per TickInterval until ctx is cancelled.
// Ticks never overlap. Tick errors are logged and do not stop the loop.
func (e *Engine) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.logger.Info("Price engine started",
		zap.Duration("interval", e.interval),
		zap.Int("companies", len(e.market.CurrentPrices())),
	)

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		// Errors are already logged inside Tick
		_, _ = e.Tick(ctx)

		select {
		case <-ctx.Done():
			e.logger.Info("Price engine stopped", zap.Uint64("ticks", e.ticks()))
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick runs one price update cycle:
//  1. move every price by a uniform draw in [-MaxChangePct, +MaxChangePct] percent, rounded to 2 places
//  2. append to each history, dropping the oldest entry past domain.MaxHistory
//  3. persist the full listing
//  4. ask the presenter to redraw the price table, then the user table
//
// A persistence failure is returned but the market stays updated and the presenter is still refreshed.
func (e *Engine) Tick(ctx context.Context) (*domain.TickEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, span := tracer.Start(ctx, "market.Tick")
	defer span.End()

	prices := e.market.update(e.nextPrice)
	e.seq++
	event := domain.TickEvent{
		ID:     uuid.New(),
		Seq:    e.seq,
		At:     e.now(),
		Prices: prices,
	}
	span.SetAttributes(
		attribute.Int64("tick.seq", int64(event.Seq)),
		attribute.Int("tick.companies", len(prices)),
	)

	var saveErr error
	if err := e.repo.SaveStocks(ctx, prices); err != nil {
		saveErr = fmt.Errorf("failed to persist prices: %w", err)
		span.RecordError(saveErr)
		span.SetStatus(codes.Error, saveErr.Error())
		e.logger.Error("Tick persistence failed", zap.Uint64("seq", event.Seq), zap.Error(err))
	}

	e.presenter.RefreshPrices(ctx, event)
	e.users.ViewUsers(func(users []domain.User) {
		e.presenter.RefreshUsers(ctx, users)
	})

	e.logger.Debug("Tick completed", zap.Uint64("seq", event.Seq), zap.String("tick_id", event.ID.String()))
	return &event, saveErr
}

// nextPrice computes round(old * (1 + change/100), 2), floored at domain.MinPrice
func (e *Engine) nextPrice(_ string, old decimal.Decimal) decimal.Decimal {
	change := decimal.NewFromFloat(e.rand.Float64()*2*MaxChangePct - MaxChangePct)
	factor := decimal.NewFromInt(1).Add(change.Div(hundred))

	price := old.Mul(factor).Round(2)
	if price.LessThan(domain.MinPrice) {
		return domain.MinPrice
	}
	return price
}

func (e *Engine) ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seq
}
