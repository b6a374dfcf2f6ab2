package market

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/simaogato/tusec-backend/internal/domain"
)

// Market holds the current price and the bounded price history of every company.
// It is safe for concurrent use; only the Engine mutates it.
type Market struct {
	mu        sync.RWMutex
	companies []string // display order
	prices    map[string]decimal.Decimal
	history   map[string][]decimal.Decimal
}

// NewMarket creates a Market seeded with the given listing.
// Each history starts with the initial price. Duplicate companies keep their first position and last price.
func NewMarket(stocks []domain.Stock) *Market {
	m := &Market{
		companies: make([]string, 0, len(stocks)),
		prices:    make(map[string]decimal.Decimal, len(stocks)),
		history:   make(map[string][]decimal.Decimal, len(stocks)),
	}
	for _, s := range stocks {
		if _, exists := m.prices[s.Company]; !exists {
			m.companies = append(m.companies, s.Company)
		}
		m.prices[s.Company] = s.Price
		m.history[s.Company] = []decimal.Decimal{s.Price}
	}
	return m
}

// CurrentPrices returns a snapshot of every company's price in display order
func (m *Market) CurrentPrices() []domain.Stock {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot()
}

// HistoryOf returns the price history of a company, oldest first
func (m *Market) HistoryOf(company string) ([]decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, ok := m.history[company]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCompanyNotFound, company)
	}
	out := make([]decimal.Decimal, len(h))
	copy(out, h)
	return out, nil
}

// HasCompany reports whether the company is listed
func (m *Market) HasCompany(company string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.prices[company]
	return ok
}

// PriceOf returns the current price of a company
func (m *Market) PriceOf(company string) (decimal.Decimal, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.prices[company]
	return p, ok
}

// update replaces every price through next and records it in the history.
// The whole pass runs under one write lock so readers never see a half-applied tick.
func (m *Market) update(next func(company string, old decimal.Decimal) decimal.Decimal) []domain.Stock {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, company := range m.companies {
		price := next(company, m.prices[company])
		m.prices[company] = price

		h := append(m.history[company], price)
		if len(h) > domain.MaxHistory {
			h = h[1:]
		}
		m.history[company] = h
	}
	return m.snapshot()
}

func (m *Market) snapshot() []domain.Stock {
	out := make([]domain.Stock, 0, len(m.companies))
	for _, company := range m.companies {
		out = append(out, domain.Stock{Company: company, Price: m.prices[company]})
	}
	return out
}
