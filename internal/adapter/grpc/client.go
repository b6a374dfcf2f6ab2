package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/tusec-backend/internal/adapter/notify"
	"github.com/simaogato/tusec-backend/internal/domain"
	"github.com/simaogato/tusec-backend/internal/usecase/registry"
)

// Client calls a remote StockViewerService.
// Domain failures come back as the matching domain sentinel errors.
type Client struct {
	conn grpc.ClientConnInterface
}

var _ registry.Service = (*Client)(nil)

// NewClient creates a new Client over an established connection
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Dial opens a plaintext connection that sends token on every call
func Dial(addr, token string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithPerRPCCredentials(TokenCredentials(token)),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return conn, nil
}

// ListStocks returns the current prices in listing order
func (c *Client) ListStocks(ctx context.Context) ([]domain.Stock, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, MethodListStocks, &emptypb.Empty{}, out); err != nil {
		return nil, fromStatus(err)
	}
	return listToStocks(out.GetFields()["stocks"])
}

// ListUsers returns every user without credentials
func (c *Client) ListUsers(ctx context.Context) ([]domain.User, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, MethodListUsers, &emptypb.Empty{}, out); err != nil {
		return nil, fromStatus(err)
	}
	return listToUsers(out.GetFields()["users"]), nil
}

// History returns the price history of company, oldest first
func (c *Client) History(ctx context.Context, company string) ([]decimal.Decimal, error) {
	out := new(structpb.Struct)
	if err := c.invokeStruct(ctx, MethodGetHistory, map[string]interface{}{"company": company}, out); err != nil {
		return nil, err
	}

	items := out.GetFields()["prices"].GetListValue().GetValues()
	prices := make([]decimal.Decimal, 0, len(items))
	for _, item := range items {
		p, err := decimal.NewFromString(item.GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("failed to parse price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, nil
}

// LookupUser fetches a user by id
func (c *Client) LookupUser(ctx context.Context, id string) (*domain.User, error) {
	out := new(structpb.Struct)
	if err := c.invokeStruct(ctx, MethodGetUser, map[string]interface{}{"id": id}, out); err != nil {
		return nil, err
	}
	u := structToUser(out)
	return &u, nil
}

// LookupCompany reports whether the company is listed
func (c *Client) LookupCompany(ctx context.Context, company string) error {
	_, err := c.History(ctx, company)
	return err
}

// Register registers a new user remotely
func (c *Client) Register(ctx context.Context, input registry.RegisterInput) (*domain.User, error) {
	out := new(structpb.Struct)
	req := map[string]interface{}{
		"name":     input.Name,
		"position": input.Position,
		"id":       input.ID,
		"password": input.Password,
	}
	if err := c.invokeStruct(ctx, MethodRegisterUser, req, out); err != nil {
		return nil, err
	}
	u := structToUser(out)
	return &u, nil
}

// BuyStock performs a purchase remotely
func (c *Client) BuyStock(ctx context.Context, input registry.BuyStockInput) (*domain.Receipt, error) {
	out := new(structpb.Struct)
	req := map[string]interface{}{
		"user_id":  input.UserID,
		"company":  input.Company,
		"quantity": input.Quantity,
	}
	if err := c.invokeStruct(ctx, MethodBuyStock, req, out); err != nil {
		return nil, err
	}
	return structToReceipt(out)
}

// Authenticate checks a user's credential remotely
func (c *Client) Authenticate(ctx context.Context, id, password string) (*domain.User, error) {
	out := new(structpb.Struct)
	req := map[string]interface{}{"id": id, "password": password}
	if err := c.invokeStruct(ctx, MethodAuthenticate, req, out); err != nil {
		return nil, err
	}
	u := structToUser(out)
	return &u, nil
}

// Watch calls fn for every refresh until ctx is cancelled, the server ends
// the stream, or fn returns an error.
func (c *Client) Watch(ctx context.Context, fn func(notify.Update) error) error {
	stream, err := c.conn.NewStream(ctx, &StockViewerServiceDesc.Streams[0], MethodWatchMarket)
	if err != nil {
		return fromStatus(err)
	}
	if err := stream.SendMsg(&emptypb.Empty{}); err != nil {
		return fromStatus(err)
	}
	if err := stream.CloseSend(); err != nil {
		return fromStatus(err)
	}

	for {
		msg := new(structpb.Struct)
		if err := stream.RecvMsg(msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fromStatus(err)
		}

		var u notify.Update
		switch kind := stringField(msg, "kind"); kind {
		case KindPrices:
			ev, err := structToTick(msg)
			if err != nil {
				return err
			}
			u.Tick = ev
		case KindUsers:
			u.Users = listToUsers(msg.GetFields()["users"])
		default:
			continue
		}

		if err := fn(u); err != nil {
			return err
		}
	}
}

func (c *Client) invokeStruct(ctx context.Context, method string, req map[string]interface{}, out *structpb.Struct) error {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	if err := c.conn.Invoke(ctx, method, in, out); err != nil {
		return fromStatus(err)
	}
	return nil
}

var sentinels = []error{
	domain.ErrInvalidPosition,
	domain.ErrMissingField,
	domain.ErrDuplicateUserID,
	domain.ErrUserNotFound,
	domain.ErrCompanyNotFound,
	domain.ErrInvalidQuantity,
	domain.ErrInvalidCredentials,
}

// fromStatus turns a status carrying a domain error message back into that error
func fromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	msg := st.Message()
	for _, sentinel := range sentinels {
		if rest, found := strings.CutPrefix(msg, sentinel.Error()); found {
			return fmt.Errorf("%w%s", sentinel, rest)
		}
	}
	return err
}
