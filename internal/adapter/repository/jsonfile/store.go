package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simaogato/tusec-backend/internal/domain"
)

const (
	DefaultStockFile = "tusec_stocks.json"
	DefaultUserFile  = "users.json"

	indent = "    "
)

// Store persists stocks and users as two pretty-printed JSON documents.
// It implements both domain.StockRepository and domain.UserRepository.
type Store struct {
	mu        sync.Mutex
	stockPath string
	userPath  string
	logger    *zap.Logger
}

var (
	_ domain.StockRepository = (*Store)(nil)
	_ domain.UserRepository  = (*Store)(nil)
)

// NewStore creates a new Store rooted at dir. Empty file names fall back to the defaults.
func NewStore(dir, stockFile, userFile string, logger *zap.Logger) *Store {
	if stockFile == "" {
		stockFile = DefaultStockFile
	}
	if userFile == "" {
		userFile = DefaultUserFile
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		stockPath: filepath.Join(dir, stockFile),
		userPath:  filepath.Join(dir, userFile),
		logger:    logger,
	}
}

// StockPath returns the location of the stock document
func (s *Store) StockPath() string { return s.stockPath }

// UserPath returns the location of the user document
func (s *Store) UserPath() string { return s.userPath }

// LoadStocks reads the stock document, keeping the file's key order.
// A missing file yields the default listing.
func (s *Store) LoadStocks(_ context.Context) ([]domain.Stock, error) {
	data, err := os.ReadFile(s.stockPath)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("Stock file not found, using defaults", zap.String("path", s.stockPath))
		return domain.DefaultStocks(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stocks from %s: %w", s.stockPath, err)
	}

	stocks, err := decodeStocks(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load stocks from %s: %w", s.stockPath, err)
	}
	return stocks, nil
}

// SaveStocks overwrites the stock document
func (s *Store) SaveStocks(_ context.Context, stocks []domain.Stock) error {
	data, err := encodeStocks(stocks)
	if err != nil {
		return fmt.Errorf("failed to encode stocks: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeFile(s.stockPath, data); err != nil {
		return fmt.Errorf("failed to save stocks to %s: %w", s.stockPath, err)
	}
	return nil
}

type userRecord struct {
	Name      string           `json:"name"`
	Position  string           `json:"position"`
	ID        string           `json:"id"`
	Password  string           `json:"password"`
	Portfolio map[string]int64 `json:"portfolio"`
}

// LoadUsers reads the user document. A missing file yields no users.
func (s *Store) LoadUsers(_ context.Context) ([]*domain.User, error) {
	data, err := os.ReadFile(s.userPath)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("User file not found, starting empty", zap.String("path", s.userPath))
		return []*domain.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load users from %s: %w", s.userPath, err)
	}

	var records []userRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to load users from %s: %w", s.userPath, err)
	}

	users := make([]*domain.User, 0, len(records))
	for _, r := range records {
		portfolio := r.Portfolio
		if portfolio == nil {
			portfolio = make(map[string]int64)
		}
		users = append(users, &domain.User{
			ID:        r.ID,
			Name:      r.Name,
			Position:  domain.Role(r.Position),
			Password:  r.Password,
			Portfolio: portfolio,
		})
	}
	return users, nil
}

// SaveUsers overwrites the user document in list order.
// Portfolio keys are written sorted.
func (s *Store) SaveUsers(_ context.Context, users []*domain.User) error {
	records := make([]userRecord, 0, len(users))
	for _, u := range users {
		portfolio := u.Portfolio
		if portfolio == nil {
			portfolio = map[string]int64{}
		}
		records = append(records, userRecord{
			Name:      u.Name,
			Position:  string(u.Position),
			ID:        u.ID,
			Password:  u.Password,
			Portfolio: portfolio,
		})
	}

	data, err := json.MarshalIndent(records, "", indent)
	if err != nil {
		return fmt.Errorf("failed to encode users: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeFile(s.userPath, data); err != nil {
		return fmt.Errorf("failed to save users to %s: %w", s.userPath, err)
	}
	return nil
}

// decodeStocks walks the object token by token so the company order survives
func decodeStocks(data []byte) ([]domain.Stock, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("stock document must be a JSON object")
	}

	var stocks []domain.Stock
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		company, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}
		num, ok := tok.(json.Number)
		if !ok {
			return nil, fmt.Errorf("price of %q is not a number", company)
		}
		price, err := decimal.NewFromString(num.String())
		if err != nil {
			return nil, fmt.Errorf("price of %q: %w", company, err)
		}
		stocks = append(stocks, domain.Stock{Company: company, Price: price})
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after stock document")
	}
	return stocks, nil
}

// encodeStocks writes the object in slice order, then re-indents it
func encodeStocks(stocks []domain.Stock) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range stocks {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.Company)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(s.Price.String())
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// writeFile replaces path with data through a temp file in the same directory
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
