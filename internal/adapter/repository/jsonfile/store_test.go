package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/simaogato/tusec-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir(), "", "", nil)
}

func TestLoadStocks_MissingFileReturnsDefaults(t *testing.T) {
	s := newTestStore(t)

	stocks, err := s.LoadStocks(context.Background())

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultStocks(), stocks)
	_, statErr := os.Stat(s.StockPath())
	assert.True(t, os.IsNotExist(statErr), "loading must not create the file")
}

func TestLoadUsers_MissingFileReturnsEmpty(t *testing.T) {
	s := newTestStore(t)

	users, err := s.LoadUsers(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestStocks_RoundTripKeepsOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	stocks := []domain.Stock{
		{Company: "Zeta", Price: decimal.RequireFromString("937.65")},
		{Company: "Alpha", Price: decimal.NewFromInt(12)},
		{Company: "Mid & Co.", Price: decimal.RequireFromString("0.01")},
	}

	require.NoError(t, s.SaveStocks(ctx, stocks))
	loaded, err := s.LoadStocks(ctx)

	require.NoError(t, err)
	require.Len(t, loaded, 3)
	for i := range stocks {
		assert.Equal(t, stocks[i].Company, loaded[i].Company)
		assert.True(t, stocks[i].Price.Equal(loaded[i].Price), "%s", stocks[i].Company)
	}
}

func TestSaveStocks_FourSpaceIndent(t *testing.T) {
	s := newTestStore(t)
	stocks := []domain.Stock{
		{Company: "TREDT Trading Company", Price: decimal.NewFromInt(987)},
		{Company: "TREDT Industries", Price: decimal.RequireFromString("219.5")},
	}

	require.NoError(t, s.SaveStocks(context.Background(), stocks))

	data, err := os.ReadFile(s.StockPath())
	require.NoError(t, err)
	want := "{\n    \"TREDT Trading Company\": 987,\n    \"TREDT Industries\": 219.5\n}"
	assert.Equal(t, want, string(data))
}

func TestLoadStocks_AcceptsFloatsWrittenByOtherTools(t *testing.T) {
	s := newTestStore(t)
	doc := `{"B": 101.37, "A": 1e2}`
	require.NoError(t, os.WriteFile(s.StockPath(), []byte(doc), 0o644))

	stocks, err := s.LoadStocks(context.Background())

	require.NoError(t, err)
	require.Len(t, stocks, 2)
	assert.Equal(t, "B", stocks[0].Company)
	assert.True(t, decimal.RequireFromString("101.37").Equal(stocks[0].Price))
	assert.True(t, decimal.NewFromInt(100).Equal(stocks[1].Price))
}

func TestLoadStocks_CorruptFile(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "Truncated", doc: `{"A": 1,`},
		{name: "Array instead of object", doc: `[1, 2]`},
		{name: "String price", doc: `{"A": "ten"}`},
		{name: "Trailing data", doc: `{"A": 1} {}`},
		{name: "Empty file", doc: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			require.NoError(t, os.WriteFile(s.StockPath(), []byte(tt.doc), 0o644))

			stocks, err := s.LoadStocks(context.Background())

			assert.Nil(t, stocks)
			assert.ErrorContains(t, err, "failed to load stocks")
		})
	}
}

func TestUsers_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	users := []*domain.User{
		{ID: "u1", Name: "Alice", Position: domain.RolePPM, Password: "h1", Portfolio: map[string]int64{"TREDT Industries": 10}},
		{ID: "u2", Name: "Bob", Position: domain.RoleGM, Password: "h2"},
	}

	require.NoError(t, s.SaveUsers(ctx, users))
	loaded, err := s.LoadUsers(ctx)

	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, *users[0], *loaded[0])
	assert.Equal(t, "Bob", loaded[1].Name)
	assert.NotNil(t, loaded[1].Portfolio)
	assert.Empty(t, loaded[1].Portfolio)
}

func TestSaveUsers_DocumentShape(t *testing.T) {
	s := newTestStore(t)
	users := []*domain.User{
		{ID: "u1", Name: "Alice", Position: domain.RolePPM, Password: "h", Portfolio: map[string]int64{"B": 2, "A": 1}},
	}

	require.NoError(t, s.SaveUsers(context.Background(), users))

	data, err := os.ReadFile(s.UserPath())
	require.NoError(t, err)
	want := `[
    {
        "name": "Alice",
        "position": "PPM",
        "id": "u1",
        "password": "h",
        "portfolio": {
            "A": 1,
            "B": 2
        }
    }
]`
	assert.Equal(t, want, string(data))
}

func TestSaveUsers_EmptyListWritesEmptyArray(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.SaveUsers(context.Background(), nil))

	data, err := os.ReadFile(s.UserPath())
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestLoadUsers_CorruptFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.UserPath(), []byte(`{"name": "Alice"}`), 0o644))

	users, err := s.LoadUsers(context.Background())

	assert.Nil(t, users)
	assert.ErrorContains(t, err, "failed to load users")
}

func TestSave_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, "prices.json", "people.json", nil)
	ctx := context.Background()

	require.NoError(t, s.SaveStocks(ctx, domain.DefaultStocks()))
	require.NoError(t, s.SaveStocks(ctx, domain.DefaultStocks()))
	require.NoError(t, s.SaveUsers(ctx, nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"prices.json", "people.json"}, names)
	assert.Equal(t, filepath.Join(dir, "prices.json"), s.StockPath())
}

func TestSave_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s := NewStore(dir, "", "", nil)

	require.NoError(t, s.SaveStocks(context.Background(), domain.DefaultStocks()))

	stocks, err := s.LoadStocks(context.Background())
	require.NoError(t, err)
	assert.Len(t, stocks, 10)
}
