package grpc

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/tusec-backend/internal/domain"
)

// Wire values of the "kind" field on WatchMarket messages
const (
	KindPrices = "prices"
	KindUsers  = "users"
)

// stringField returns the string value of key, or "" when absent
func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// intField returns the integral number value of key
func intField(s *structpb.Struct, key string) (int64, error) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "missing field %q", key)
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, status.Errorf(codes.InvalidArgument, "field %q must be a number", key)
	}
	if n.NumberValue != math.Trunc(n.NumberValue) || math.Abs(n.NumberValue) > 1<<53 {
		return 0, status.Errorf(codes.InvalidArgument, "field %q must be a whole number", key)
	}
	return int64(n.NumberValue), nil
}

func stocksToList(stocks []domain.Stock) []interface{} {
	out := make([]interface{}, 0, len(stocks))
	for _, s := range stocks {
		out = append(out, map[string]interface{}{
			"company": s.Company,
			"price":   s.Price.StringFixed(2),
		})
	}
	return out
}

func listToStocks(v *structpb.Value) ([]domain.Stock, error) {
	items := v.GetListValue().GetValues()
	stocks := make([]domain.Stock, 0, len(items))
	for _, item := range items {
		fields := item.GetStructValue()
		price, err := decimal.NewFromString(stringField(fields, "price"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse price of %s: %w", stringField(fields, "company"), err)
		}
		stocks = append(stocks, domain.Stock{Company: stringField(fields, "company"), Price: price})
	}
	return stocks, nil
}

// userToMap never includes the credential
func userToMap(u domain.User) map[string]interface{} {
	portfolio := make(map[string]interface{}, len(u.Portfolio))
	for company, qty := range u.Portfolio {
		portfolio[company] = qty
	}
	return map[string]interface{}{
		"id":        u.ID,
		"name":      u.Name,
		"position":  string(u.Position),
		"portfolio": portfolio,
	}
}

func usersToList(users []domain.User) []interface{} {
	out := make([]interface{}, 0, len(users))
	for _, u := range users {
		out = append(out, userToMap(u))
	}
	return out
}

func structToUser(fields *structpb.Struct) domain.User {
	u := domain.User{
		ID:        stringField(fields, "id"),
		Name:      stringField(fields, "name"),
		Position:  domain.Role(stringField(fields, "position")),
		Portfolio: make(map[string]int64),
	}
	for company, qty := range fields.GetFields()["portfolio"].GetStructValue().GetFields() {
		u.Portfolio[company] = int64(qty.GetNumberValue())
	}
	return u
}

func listToUsers(v *structpb.Value) []domain.User {
	items := v.GetListValue().GetValues()
	users := make([]domain.User, 0, len(items))
	for _, item := range items {
		users = append(users, structToUser(item.GetStructValue()))
	}
	return users
}

func receiptToStruct(r *domain.Receipt) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"id":         r.ID.String(),
		"user_id":    r.UserID,
		"company":    r.Company,
		"quantity":   r.Quantity,
		"unit_price": r.UnitPrice.StringFixed(2),
		"total":      r.Total.StringFixed(2),
		"holding":    r.Holding,
		"at":         r.At.UTC().Format(time.RFC3339Nano),
	})
}

func structToReceipt(s *structpb.Struct) (*domain.Receipt, error) {
	id, err := uuid.Parse(stringField(s, "id"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse receipt id: %w", err)
	}
	unit, err := decimal.NewFromString(stringField(s, "unit_price"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse unit price: %w", err)
	}
	total, err := decimal.NewFromString(stringField(s, "total"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse total: %w", err)
	}
	at, err := time.Parse(time.RFC3339Nano, stringField(s, "at"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse receipt time: %w", err)
	}
	return &domain.Receipt{
		ID:        id,
		UserID:    stringField(s, "user_id"),
		Company:   stringField(s, "company"),
		Quantity:  int64(s.GetFields()["quantity"].GetNumberValue()),
		UnitPrice: unit,
		Total:     total,
		Holding:   int64(s.GetFields()["holding"].GetNumberValue()),
		At:        at,
	}, nil
}

func tickToStruct(ev *domain.TickEvent) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"kind":   KindPrices,
		"id":     ev.ID.String(),
		"seq":    float64(ev.Seq),
		"at":     ev.At.UTC().Format(time.RFC3339Nano),
		"stocks": stocksToList(ev.Prices),
	})
}

func structToTick(s *structpb.Struct) (*domain.TickEvent, error) {
	id, err := uuid.Parse(stringField(s, "id"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse tick id: %w", err)
	}
	at, err := time.Parse(time.RFC3339Nano, stringField(s, "at"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse tick time: %w", err)
	}
	stocks, err := listToStocks(s.GetFields()["stocks"])
	if err != nil {
		return nil, err
	}
	return &domain.TickEvent{
		ID:     id,
		Seq:    uint64(s.GetFields()["seq"].GetNumberValue()),
		At:     at,
		Prices: stocks,
	}, nil
}
