package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxHistory is the number of prices kept per company
const MaxHistory = 50

// MinPrice is the lowest price a stock can be quoted at
var MinPrice = decimal.New(1, -2)

// Stock represents a listed company and its current price
// Company is the unique key
type Stock struct {
	Company string
	Price   decimal.Decimal
}

// Validate ensures the stock adheres to domain rules
func (s Stock) Validate() error {
	if s.Company == "" {
		return errors.New("company name cannot be empty")
	}
	if s.Price.LessThan(MinPrice) {
		return errors.New("stock price must be positive")
	}
	return nil
}

// DefaultStocks returns the seed listing used when nothing has been persisted yet
// The order is the display order
func DefaultStocks() []Stock {
	return []Stock{
		{Company: "TREDT Trading Company", Price: decimal.NewFromInt(987)},
		{Company: "Royal Trading Company", Price: decimal.NewFromInt(712)},
		{Company: "TREDT Industries", Price: decimal.NewFromInt(219)},
		{Company: "Union Technologies Inc.", Price: decimal.NewFromInt(354)},
		{Company: "TREDT Minerals Corp", Price: decimal.NewFromInt(123)},
		{Company: "Atlas Munitions Corp", Price: decimal.NewFromInt(242)},
		{Company: "New World Million & Co.", Price: decimal.NewFromInt(156)},
		{Company: "Swadeshi Printing & Publishing Co.", Price: decimal.NewFromInt(231)},
		{Company: "Continental Electrodynamics Inc.", Price: decimal.NewFromInt(341)},
		{Company: "Imperial Bank of TREDT", Price: decimal.NewFromInt(134)},
	}
}

// TickEvent is emitted after every price update cycle
type TickEvent struct {
	ID     uuid.UUID
	Seq    uint64
	At     time.Time
	Prices []Stock
}
