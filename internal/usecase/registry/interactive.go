package registry

import (
	"context"

	"github.com/simaogato/tusec-backend/internal/domain"
)

// Service is the set of operations the interactive flows drive.
// Registry implements it locally; the gRPC client implements it remotely.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	BuyStock(ctx context.Context, input BuyStockInput) (*domain.Receipt, error)
	LookupUser(ctx context.Context, id string) (*domain.User, error)
	LookupCompany(ctx context.Context, company string) error
}

var _ Service = (*Registry)(nil)

// RegisterInteractive asks for name, position, id and password, in that order, then registers the user
func RegisterInteractive(ctx context.Context, svc Service, p domain.Prompter) (*domain.User, error) {
	const title = "Register"

	name, err := p.Ask(ctx, title, "Enter Full Name:")
	if err != nil {
		return nil, err
	}
	position, err := p.Ask(ctx, title, "Enter Position (PPM, APM, GM):")
	if err != nil {
		return nil, err
	}
	id, err := p.Ask(ctx, title, "Enter Unique ID:")
	if err != nil {
		return nil, err
	}
	password, err := p.AskSecret(ctx, title, "Enter Password:")
	if err != nil {
		return nil, err
	}

	return svc.Register(ctx, RegisterInput{
		Name:     name,
		Position: position,
		ID:       id,
		Password: password,
	})
}

// BuyStockInteractive asks for the user id first and only asks for the company once the user is found.
// The quantity is asked once the company is known to be listed.
func BuyStockInteractive(ctx context.Context, svc Service, p domain.Prompter) (*domain.Receipt, error) {
	const title = "Buy Stock"

	id, err := p.Ask(ctx, title, "Enter Your User ID:")
	if err != nil {
		return nil, err
	}
	if _, err := svc.LookupUser(ctx, id); err != nil {
		return nil, err
	}

	company, err := p.Ask(ctx, title, "Enter Company Name:")
	if err != nil {
		return nil, err
	}
	if err := svc.LookupCompany(ctx, company); err != nil {
		return nil, err
	}

	qty, err := p.AskInt(ctx, title, "Enter Quantity:")
	if err != nil {
		return nil, err
	}

	return svc.BuyStock(ctx, BuyStockInput{
		UserID:   id,
		Company:  company,
		Quantity: qty,
	})
}
