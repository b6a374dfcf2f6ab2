//go:build integration

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"

	grpcadapter "github.com/simaogato/tusec-backend/internal/adapter/grpc"
	"github.com/simaogato/tusec-backend/internal/adapter/notify"
	"github.com/simaogato/tusec-backend/internal/adapter/repository/postgres"
	"github.com/simaogato/tusec-backend/internal/domain"
	"github.com/simaogato/tusec-backend/internal/usecase/registry"
)

var (
	db         *postgres.DB // nil unless the server under test uses the postgres store
	grpcClient *grpcadapter.Client
	grpcConn   *grpc.ClientConn
)

// TestMain sets up the test environment
func TestMain(m *testing.M) {
	var err error

	// 1. Connect to gRPC Server
	grpcConn, err = grpcadapter.Dial(getGRPCAddress(), getToken())
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to gRPC server: %v", err))
	}
	grpcClient = grpcadapter.NewClient(grpcConn)

	// 2. Connect to Database when one is configured
	if dsn := os.Getenv("TUSEC_TEST_DSN"); dsn != "" {
		db, err = postgres.NewDB(dsn)
		if err != nil {
			panic(fmt.Sprintf("Failed to connect to database: %v", err))
		}
	}

	code := m.Run()

	grpcConn.Close()
	if db != nil {
		db.Close()
	}
	os.Exit(code)
}

// getGRPCAddress returns the gRPC server address from environment or defaults
func getGRPCAddress() string {
	addr := os.Getenv("TUSEC_GRPC_ADDR")
	if addr == "" {
		addr = "localhost:50051"
	}
	return addr
}

// getToken returns the bearer token the server was started with
func getToken() string {
	token := os.Getenv("TUSEC_GRPC_TOKEN")
	if token == "" {
		token = "dev-token"
	}
	return token
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestEndToEndFlow tests the complete flow: Register -> Buy -> Users table -> History
func TestEndToEndFlow(t *testing.T) {
	ctx := testContext(t)

	userID := "e2e-" + uuid.NewString()[:8]
	company := "TREDT Industries"

	// Step A: Register a fresh user
	user, err := grpcClient.Register(ctx, registry.RegisterInput{
		Name:     "Integration Tester",
		Position: "GM",
		ID:       userID,
		Password: "s3cret",
	})
	require.NoError(t, err, "Register should succeed")
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, domain.RoleGM, user.Position)
	assert.Empty(t, user.Portfolio)
	assert.Empty(t, user.Password, "credentials must never cross the wire")

	// Step B: A second registration with the same id is rejected
	_, err = grpcClient.Register(ctx, registry.RegisterInput{
		Name:     "Someone Else",
		Position: "PPM",
		ID:       userID,
		Password: "other",
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateUserID)

	// Step C: Buy twice, quantities accumulate
	first, err := grpcClient.BuyStock(ctx, registry.BuyStockInput{UserID: userID, Company: company, Quantity: 5})
	require.NoError(t, err, "BuyStock should succeed")
	assert.Equal(t, int64(5), first.Holding)
	assert.True(t, first.Total.Equal(first.UnitPrice.Mul(decimal.NewFromInt(5))), "total must be unit price times quantity")

	second, err := grpcClient.BuyStock(ctx, registry.BuyStockInput{UserID: userID, Company: company, Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, int64(8), second.Holding)

	// Step D: Rejected purchases leave the holding untouched
	_, err = grpcClient.BuyStock(ctx, registry.BuyStockInput{UserID: userID, Company: "Acme", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)
	_, err = grpcClient.BuyStock(ctx, registry.BuyStockInput{UserID: userID, Company: company, Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	// Step E: The user table reflects the purchase
	users, err := grpcClient.ListUsers(ctx)
	require.NoError(t, err)
	var found *domain.User
	for i := range users {
		if users[i].ID == userID {
			found = &users[i]
		}
	}
	require.NotNil(t, found, "registered user should be listed")
	assert.Equal(t, int64(8), found.Portfolio[company])

	// Step F: Credentials check out
	authed, err := grpcClient.Authenticate(ctx, userID, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, userID, authed.ID)
	_, err = grpcClient.Authenticate(ctx, userID, "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	// Step G: History is bounded
	stocks, err := grpcClient.ListStocks(ctx)
	require.NoError(t, err)
	require.Len(t, stocks, 10)

	history, err := grpcClient.History(ctx, company)
	require.NoError(t, err)
	require.NotEmpty(t, history)
	assert.LessOrEqual(t, len(history), domain.MaxHistory)

	// Step H: Persistence, when the server runs on postgres
	if db == nil {
		t.Log("TUSEC_TEST_DSN not set, skipping database verification")
		return
	}
	var raw []byte
	err = db.QueryRowContext(ctx, `SELECT portfolio FROM users WHERE id = $1`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		t.Skip("server under test is not using this database")
	}
	require.NoError(t, err)

	var portfolio map[string]int64
	require.NoError(t, json.Unmarshal(raw, &portfolio))
	assert.Equal(t, int64(8), portfolio[company])

	var password string
	err = db.QueryRowContext(ctx, `SELECT password FROM users WHERE id = $1`, userID).Scan(&password)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", password, "stored credential must be hashed")
}

// TestWatchMarket tests that a subscriber receives a full price tick
func TestWatchMarket(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var tick *domain.TickEvent
	err := grpcClient.Watch(ctx, func(u notify.Update) error {
		if u.Tick != nil {
			tick = u.Tick
			cancel()
		}
		return nil
	})

	require.NotNil(t, tick, "expected a tick before the deadline (last error: %v)", err)
	assert.Len(t, tick.Prices, 10)
	assert.Positive(t, tick.Seq)
}
