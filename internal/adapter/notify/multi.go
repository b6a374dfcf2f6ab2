package notify

import (
	"context"

	"github.com/simaogato/tusec-backend/internal/domain"
)

// Multi forwards every refresh to each presenter in order
type Multi []domain.Presenter

var _ domain.Presenter = Multi(nil)

func (m Multi) RefreshPrices(ctx context.Context, event domain.TickEvent) {
	for _, p := range m {
		p.RefreshPrices(ctx, event)
	}
}

func (m Multi) RefreshUsers(ctx context.Context, users []domain.User) {
	for _, p := range m {
		p.RefreshUsers(ctx, users)
	}
}
