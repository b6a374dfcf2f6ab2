package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestStock_Validate(t *testing.T) {
	tests := []struct {
		name    string
		stock   Stock
		wantErr bool
		errMsg  string
	}{
		{
			name:    "Listed stock should pass",
			stock:   Stock{Company: "TREDT Industries", Price: decimal.NewFromInt(219)},
			wantErr: false,
		},
		{
			name:    "Minimum price should pass",
			stock:   Stock{Company: "TREDT Industries", Price: MinPrice},
			wantErr: false,
		},
		{
			name:    "Empty company should fail",
			stock:   Stock{Company: "", Price: decimal.NewFromInt(1)},
			wantErr: true,
			errMsg:  "company name cannot be empty",
		},
		{
			name:    "Zero price should fail",
			stock:   Stock{Company: "TREDT Industries", Price: decimal.Zero},
			wantErr: true,
			errMsg:  "stock price must be positive",
		},
		{
			name:    "Negative price should fail",
			stock:   Stock{Company: "TREDT Industries", Price: decimal.NewFromFloat(-3.5)},
			wantErr: true,
			errMsg:  "stock price must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.stock.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Equal(t, tt.errMsg, err.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDefaultStocks(t *testing.T) {
	stocks := DefaultStocks()

	assert.Len(t, stocks, 10)
	assert.Equal(t, "TREDT Trading Company", stocks[0].Company)
	assert.True(t, decimal.NewFromInt(987).Equal(stocks[0].Price))
	assert.Equal(t, "Imperial Bank of TREDT", stocks[9].Company)
	assert.True(t, decimal.NewFromInt(134).Equal(stocks[9].Price))

	seen := make(map[string]bool)
	for _, s := range stocks {
		assert.NoError(t, s.Validate())
		assert.False(t, seen[s.Company], "duplicate company %s", s.Company)
		seen[s.Company] = true
	}

	// each call returns a fresh slice
	stocks[0].Price = decimal.Zero
	assert.True(t, decimal.NewFromInt(987).Equal(DefaultStocks()[0].Price))
}
