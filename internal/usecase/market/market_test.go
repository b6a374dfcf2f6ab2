package market

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simaogato/tusec-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMarket_SeedsPricesAndHistories(t *testing.T) {
	m := NewMarket(domain.DefaultStocks())

	prices := m.CurrentPrices()
	require.Len(t, prices, 10)
	assert.Equal(t, "TREDT Trading Company", prices[0].Company)
	assert.True(t, decimal.NewFromInt(987).Equal(prices[0].Price))
	assert.Equal(t, "Imperial Bank of TREDT", prices[9].Company)

	for _, s := range prices {
		h, err := m.HistoryOf(s.Company)
		require.NoError(t, err)
		require.Len(t, h, 1, "history of %s should start with the initial price", s.Company)
		assert.True(t, s.Price.Equal(h[0]))
	}
}

func TestNewMarket_DuplicateCompanyKeepsFirstPosition(t *testing.T) {
	m := NewMarket([]domain.Stock{
		{Company: "A", Price: decimal.NewFromInt(1)},
		{Company: "B", Price: decimal.NewFromInt(2)},
		{Company: "A", Price: decimal.NewFromInt(3)},
	})

	prices := m.CurrentPrices()
	require.Len(t, prices, 2)
	assert.Equal(t, "A", prices[0].Company)
	assert.True(t, decimal.NewFromInt(3).Equal(prices[0].Price))
}

func TestMarket_HistoryOfUnknownCompany(t *testing.T) {
	m := NewMarket(domain.DefaultStocks())

	h, err := m.HistoryOf("Nonexistent Corp")

	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)
	assert.Nil(t, h)
}

func TestMarket_HistoryIsACopy(t *testing.T) {
	m := NewMarket([]domain.Stock{{Company: "A", Price: decimal.NewFromInt(10)}})

	h, err := m.HistoryOf("A")
	require.NoError(t, err)
	h[0] = decimal.NewFromInt(99)

	again, err := m.HistoryOf("A")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(again[0]))
}

func TestMarket_HistoryIsBounded(t *testing.T) {
	m := NewMarket([]domain.Stock{{Company: "A", Price: decimal.NewFromInt(100)}})

	for i := 1; i <= 60; i++ {
		m.update(func(_ string, _ decimal.Decimal) decimal.Decimal {
			return decimal.NewFromInt(int64(100 + i))
		})

		h, err := m.HistoryOf("A")
		require.NoError(t, err)

		want := i + 1
		if want > domain.MaxHistory {
			want = domain.MaxHistory
		}
		require.Len(t, h, want, "after %d updates", i)
		// newest entry is always last
		assert.True(t, decimal.NewFromInt(int64(100+i)).Equal(h[len(h)-1]))
	}

	h, _ := m.HistoryOf("A")
	// 60 updates + the seed = 61 prices, the oldest 11 dropped
	assert.True(t, decimal.NewFromInt(111).Equal(h[0]))
}

func TestMarket_HasCompanyAndPriceOf(t *testing.T) {
	m := NewMarket(domain.DefaultStocks())

	assert.True(t, m.HasCompany("TREDT Industries"))
	assert.False(t, m.HasCompany("tredt industries"))

	p, ok := m.PriceOf("TREDT Industries")
	assert.True(t, ok)
	assert.True(t, decimal.NewFromInt(219).Equal(p))

	_, ok = m.PriceOf("Missing")
	assert.False(t, ok)
}
