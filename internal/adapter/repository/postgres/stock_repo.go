package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/simaogato/tusec-backend/internal/domain"
)

// stockRepository implements domain.StockRepository
type stockRepository struct {
	db *DB
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *DB) domain.StockRepository {
	return &stockRepository{db: db}
}

// LoadStocks retrieves every stock in listing order
// An empty table yields the default listing.
func (r *stockRepository) LoadStocks(ctx context.Context) ([]domain.Stock, error) {
	query := `
		SELECT company, price
		FROM stocks
		ORDER BY seq, company
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stocks: %w", err)
	}
	defer rows.Close()

	var stocks []domain.Stock
	for rows.Next() {
		var s domain.Stock
		var priceStr string
		if err := rows.Scan(&s.Company, &priceStr); err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}

		// Parse price (NUMERIC)
		price, err := decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price of %s: %w", s.Company, err)
		}
		s.Price = price
		stocks = append(stocks, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate stocks: %w", err)
	}

	if len(stocks) == 0 {
		return domain.DefaultStocks(), nil
	}
	return stocks, nil
}

// SaveStocks upserts every stock in a single database transaction
func (r *stockRepository) SaveStocks(ctx context.Context, stocks []domain.Stock) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO stocks (company, price, seq)
		VALUES ($1, $2, $3)
		ON CONFLICT (company) DO UPDATE SET price = EXCLUDED.price, seq = EXCLUDED.seq
	`

	for i, s := range stocks {
		if _, err := dbTx.ExecContext(ctx, query, s.Company, s.Price.StringFixed(2), i); err != nil {
			return fmt.Errorf("failed to upsert stock %s: %w", s.Company, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
