package grpc

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/tusec-backend/internal/adapter/notify"
	"github.com/simaogato/tusec-backend/internal/domain"
	"github.com/simaogato/tusec-backend/internal/usecase/market"
	"github.com/simaogato/tusec-backend/internal/usecase/registry"
)

// watchBuffer is the number of refreshes a WatchMarket stream may lag behind
const watchBuffer = 16

// Server implements the StockViewerService gRPC server
type Server struct {
	Market   *market.Market
	Registry *registry.Registry
	Hub      *notify.Broadcaster

	logger *zap.Logger
}

var _ StockViewerServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(
	m *market.Market,
	reg *registry.Registry,
	hub *notify.Broadcaster,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		Market:   m,
		Registry: reg,
		Hub:      hub,
		logger:   logger,
	}
}

// ListStocks handles the ListStocks RPC
func (s *Server) ListStocks(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	resp, err := structpb.NewStruct(map[string]interface{}{
		"stocks": stocksToList(s.Market.CurrentPrices()),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

// ListUsers handles the ListUsers RPC
func (s *Server) ListUsers(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	resp, err := structpb.NewStruct(map[string]interface{}{
		"users": usersToList(s.Registry.Users()),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

// GetHistory handles the GetHistory RPC
func (s *Server) GetHistory(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	company := stringField(req, "company")
	history, err := s.Market.HistoryOf(company)
	if err != nil {
		return nil, mapError(err)
	}

	prices := make([]interface{}, 0, len(history))
	for _, p := range history {
		prices = append(prices, p.StringFixed(2))
	}
	resp, err := structpb.NewStruct(map[string]interface{}{
		"company": company,
		"prices":  prices,
	})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

// GetUser handles the GetUser RPC
func (s *Server) GetUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := s.Registry.LookupUser(ctx, stringField(req, "id"))
	if err != nil {
		return nil, mapError(err)
	}

	resp, err := structpb.NewStruct(userToMap(*user))
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

// RegisterUser handles the RegisterUser RPC
func (s *Server) RegisterUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input := registry.RegisterInput{
		Name:     stringField(req, "name"),
		Position: stringField(req, "position"),
		ID:       stringField(req, "id"),
		Password: stringField(req, "password"),
	}

	user, err := s.Registry.Register(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}

	resp, err := structpb.NewStruct(userToMap(*user))
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

// BuyStock handles the BuyStock RPC
func (s *Server) BuyStock(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	qty, err := intField(req, "quantity")
	if err != nil {
		return nil, err
	}

	input := registry.BuyStockInput{
		UserID:   stringField(req, "user_id"),
		Company:  stringField(req, "company"),
		Quantity: qty,
	}

	receipt, err := s.Registry.BuyStock(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}

	resp, err := receiptToStruct(receipt)
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

// Authenticate handles the Authenticate RPC
func (s *Server) Authenticate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	user, err := s.Registry.Authenticate(ctx, stringField(req, "id"), stringField(req, "password"))
	if err != nil {
		return nil, mapError(err)
	}

	resp, err := structpb.NewStruct(map[string]interface{}{
		"id":       user.ID,
		"name":     user.Name,
		"position": string(user.Position),
	})
	if err != nil {
		return nil, mapError(err)
	}
	return resp, nil
}

// WatchMarket streams every price and user refresh until the client goes away
func (s *Server) WatchMarket(_ *emptypb.Empty, stream grpc.ServerStream) error {
	sub := s.Hub.Subscribe(watchBuffer)
	defer sub.Close()

	ctx := stream.Context()
	s.logger.Info("Watcher connected", zap.Int("subscribers", s.Hub.Subscribers()))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Watcher disconnected")
			return nil
		case u, ok := <-sub.C:
			if !ok {
				return nil
			}

			var msg *structpb.Struct
			var err error
			if u.Tick != nil {
				msg, err = tickToStruct(u.Tick)
			} else {
				msg, err = structpb.NewStruct(map[string]interface{}{
					"kind":  KindUsers,
					"users": usersToList(u.Users),
				})
			}
			if err != nil {
				return mapError(err)
			}

			if err := stream.SendMsg(msg); err != nil {
				s.logger.Warn("Watcher send failed", zap.Error(err))
				return err
			}
		}
	}
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	errorMsg := err.Error()

	switch {
	case errors.Is(err, domain.ErrInvalidPosition),
		errors.Is(err, domain.ErrMissingField),
		errors.Is(err, domain.ErrInvalidQuantity):
		return status.Errorf(codes.InvalidArgument, "%s", errorMsg)
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrCompanyNotFound):
		return status.Errorf(codes.NotFound, "%s", errorMsg)
	case errors.Is(err, domain.ErrDuplicateUserID):
		return status.Errorf(codes.AlreadyExists, "%s", errorMsg)
	case errors.Is(err, domain.ErrInvalidCredentials):
		return status.Errorf(codes.Unauthenticated, "%s", errorMsg)
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", errorMsg)
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", errorMsg)
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", errorMsg)
}
