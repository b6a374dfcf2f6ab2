package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/simaogato/tusec-backend/internal/domain"
)

// userRepository implements domain.UserRepository
type userRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) domain.UserRepository {
	return &userRepository{db: db}
}

// LoadUsers retrieves every user in registration order
func (r *userRepository) LoadUsers(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT id, name, position, password, portfolio
		FROM users
		ORDER BY seq
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []*domain.User{}
	for rows.Next() {
		var u domain.User
		var portfolio []byte
		if err := rows.Scan(&u.ID, &u.Name, &u.Position, &u.Password, &portfolio); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		u.Portfolio = make(map[string]int64)
		if err := json.Unmarshal(portfolio, &u.Portfolio); err != nil {
			return nil, fmt.Errorf("failed to parse portfolio of %s: %w", u.ID, err)
		}
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// SaveUsers upserts every user in a single database transaction
// Users missing from the slice are left in place.
func (r *userRepository) SaveUsers(ctx context.Context, users []*domain.User) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO users (id, name, position, password, portfolio)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			position = EXCLUDED.position,
			password = EXCLUDED.password,
			portfolio = EXCLUDED.portfolio
	`

	for _, u := range users {
		portfolio := u.Portfolio
		if portfolio == nil {
			portfolio = map[string]int64{}
		}
		raw, err := json.Marshal(portfolio)
		if err != nil {
			return fmt.Errorf("failed to encode portfolio of %s: %w", u.ID, err)
		}

		if _, err := dbTx.ExecContext(ctx, query, u.ID, u.Name, string(u.Position), u.Password, string(raw)); err != nil {
			return fmt.Errorf("failed to upsert user %s: %w", u.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
