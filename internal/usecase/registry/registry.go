package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/simaogato/tusec-backend/internal/domain"
)

var tracer = otel.Tracer("github.com/simaogato/tusec-backend/internal/usecase/registry")

// CompanyLookup is the read-only view of the market the registry needs
type CompanyLookup interface {
	HasCompany(company string) bool
	PriceOf(company string) (decimal.Decimal, bool)
}

// RegisterInput represents the input for registering a user
type RegisterInput struct {
	Name     string
	Position string
	ID       string
	Password string // raw credential, hashed before it is stored
}

// BuyStockInput represents the input for a purchase
type BuyStockInput struct {
	UserID   string
	Company  string
	Quantity int64
}

// Registry holds the registered users and their portfolios.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	users     []*domain.User
	repo      domain.UserRepository
	market    CompanyLookup
	presenter domain.Presenter
	logger    *zap.Logger
	now       func() time.Time
	hashCost  int
}

// NewRegistry creates a new, empty Registry instance. Call Load to read persisted users.
func NewRegistry(repo domain.UserRepository, market CompanyLookup, presenter domain.Presenter, logger *zap.Logger) *Registry {
	if presenter == nil {
		presenter = domain.NopPresenter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		repo:      repo,
		market:    market,
		presenter: presenter,
		logger:    logger,
		now:       time.Now,
		hashCost:  bcrypt.DefaultCost,
	}
}

// Load replaces the in-memory users with the persisted ones.
// Credentials still stored in clear text are hashed and the list is saved back.
func (r *Registry) Load(ctx context.Context) error {
	users, err := r.repo.LoadUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}

	migrated := 0
	for _, u := range users {
		if u.Portfolio == nil {
			u.Portfolio = make(map[string]int64)
		}
		if u.Password == "" || isHash(u.Password) {
			continue
		}
		hash, err := r.hash(u.Password)
		if err != nil {
			return fmt.Errorf("failed to hash credential of user %s: %w", u.ID, err)
		}
		u.Password = hash
		migrated++
	}

	if migrated > 0 {
		if err := r.repo.SaveUsers(ctx, users); err != nil {
			return fmt.Errorf("failed to save migrated users: %w", err)
		}
		r.logger.Warn("Hashed clear-text credentials", zap.Int("users", migrated))
	}

	r.mu.Lock()
	r.users = users
	r.mu.Unlock()

	r.logger.Info("Users loaded", zap.Int("count", len(users)))
	return nil
}

// Register creates a new user with an empty portfolio
// Validation order: position, then empty fields, then duplicate id.
// On success the full list is persisted and the user table is redrawn.
func (r *Registry) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "registry.Register")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", input.ID))

	user, err := r.register(ctx, input)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		r.logger.Info("Registration rejected", zap.String("user_id", input.ID), zap.Error(err))
		return nil, err
	}

	r.logger.Info("User registered", zap.String("user_id", user.ID), zap.String("position", string(user.Position)))
	return user, nil
}

// register returns a copy of the stored user; the user table is refreshed before r.mu is released
func (r *Registry) register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	position, err := domain.ParseRole(input.Position)
	if err != nil {
		return nil, err
	}
	if input.Name == "" || input.ID == "" || input.Password == "" {
		return nil, domain.ErrMissingField
	}

	hash, err := r.hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash credential: %w", err)
	}

	user := &domain.User{
		ID:        input.ID,
		Name:      input.Name,
		Position:  position,
		Password:  hash,
		Portfolio: make(map[string]int64),
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.find(input.ID) != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateUserID, input.ID)
	}

	r.users = append(r.users, user)
	if err := r.repo.SaveUsers(ctx, r.users); err != nil {
		r.users = r.users[:len(r.users)-1]
		return nil, fmt.Errorf("failed to save users: %w", err)
	}

	r.presenter.RefreshUsers(ctx, r.snapshot())
	out := user.Clone()
	return &out, nil
}

// BuyStock adds quantity shares of company to the user's portfolio
// There is no funds check: any listed company and any positive quantity is accepted.
func (r *Registry) BuyStock(ctx context.Context, input BuyStockInput) (*domain.Receipt, error) {
	ctx, span := tracer.Start(ctx, "registry.BuyStock")
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", input.UserID),
		attribute.String("stock.company", input.Company),
		attribute.Int64("stock.quantity", input.Quantity),
	)

	receipt, err := r.buy(ctx, input)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		r.logger.Info("Purchase rejected",
			zap.String("user_id", input.UserID),
			zap.String("company", input.Company),
			zap.Int64("quantity", input.Quantity),
			zap.Error(err),
		)
		return nil, err
	}

	r.logger.Info("Purchase completed",
		zap.String("receipt_id", receipt.ID.String()),
		zap.String("user_id", receipt.UserID),
		zap.String("company", receipt.Company),
		zap.Int64("quantity", receipt.Quantity),
		zap.String("total", receipt.Total.StringFixed(2)),
	)
	return receipt, nil
}

func (r *Registry) buy(ctx context.Context, input BuyStockInput) (*domain.Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.find(input.UserID)
	if user == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, input.UserID)
	}
	price, ok := r.market.PriceOf(input.Company)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCompanyNotFound, input.Company)
	}
	if input.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	previous, held := user.Portfolio[input.Company]
	user.Portfolio[input.Company] = previous + input.Quantity

	if err := r.repo.SaveUsers(ctx, r.users); err != nil {
		if held {
			user.Portfolio[input.Company] = previous
		} else {
			delete(user.Portfolio, input.Company)
		}
		return nil, fmt.Errorf("failed to save users: %w", err)
	}

	r.presenter.RefreshUsers(ctx, r.snapshot())

	return &domain.Receipt{
		ID:        uuid.New(),
		UserID:    user.ID,
		Company:   input.Company,
		Quantity:  input.Quantity,
		UnitPrice: price,
		Total:     price.Mul(decimal.NewFromInt(input.Quantity)),
		Holding:   user.Portfolio[input.Company],
		At:        r.now(),
	}, nil
}

// Authenticate checks a user's credential
// Unknown ids and wrong credentials are indistinguishable to the caller.
func (r *Registry) Authenticate(ctx context.Context, id, password string) (*domain.User, error) {
	_, span := tracer.Start(ctx, "registry.Authenticate")
	defer span.End()

	r.mu.Lock()
	user := r.find(id)
	var hash string
	if user != nil {
		hash = user.Password
	}
	r.mu.Unlock()

	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify credential: %w", err)
	}

	r.mu.Lock()
	out := user.Clone()
	r.mu.Unlock()
	return &out, nil
}

// Users returns a snapshot of every user in registration order
func (r *Registry) Users() []domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.snapshot()
}

// ViewUsers calls fn with a snapshot of every user while holding the registry lock.
// fn must not call back into the Registry.
func (r *Registry) ViewUsers(fn func(users []domain.User)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fn(r.snapshot())
}

// LookupUser returns a copy of the user with the given id
func (r *Registry) LookupUser(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := r.find(id)
	if user == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, id)
	}
	out := user.Clone()
	return &out, nil
}

// LookupCompany reports whether the company is listed
func (r *Registry) LookupCompany(_ context.Context, company string) error {
	if !r.market.HasCompany(company) {
		return fmt.Errorf("%w: %s", domain.ErrCompanyNotFound, company)
	}
	return nil
}

// snapshot must be called with r.mu held
func (r *Registry) snapshot() []domain.User {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u.Clone())
	}
	return out
}

// find must be called with r.mu held
func (r *Registry) find(id string) *domain.User {
	for _, u := range r.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (r *Registry) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), r.hashCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func isHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
