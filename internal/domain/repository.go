package domain

import (
	"context"
)

// StockRepository defines the interface for stock price persistence operations
type StockRepository interface {
	// LoadStocks retrieves the persisted listing in display order
	// If nothing has been persisted yet, returns DefaultStocks()
	LoadStocks(ctx context.Context) ([]Stock, error)

	// SaveStocks overwrites the persisted listing with the given prices
	SaveStocks(ctx context.Context, stocks []Stock) error
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	// LoadUsers retrieves every registered user in registration order
	// If nothing has been persisted yet, returns an empty slice
	LoadUsers(ctx context.Context) ([]*User, error)

	// SaveUsers overwrites the persisted user list
	SaveUsers(ctx context.Context, users []*User) error
}
