package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/transpass/transpass/internal/model"
)

type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error { return m.scanFunc(dest...) }

type mockRows struct {
	idx   int
	scans []func(dest ...any) error
}

func (m *mockRows) Next() bool { return m.idx < len(m.scans) }
func (m *mockRows) Scan(dest ...any) error {
	fn := m.scans[m.idx]
	m.idx++
	return fn(dest...)
}
func (m *mockRows) Err() error                                   { return nil }
func (m *mockRows) Close()                                       {}
func (m *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

func productScan(p model.Product) func(dest ...any) error {
	return func(dest ...any) error {
		components, _ := json.Marshal(p.Components)
		*(dest[0].(*string)) = p.ID
		*(dest[1].(*string)) = p.Name
		*(dest[2].(*string)) = p.Description
		*(dest[3].(*string)) = p.Manufacturer
		*(dest[4].(*string)) = p.Model
		*(dest[5].(**string)) = p.SerialNumber
		*(dest[6].(*string)) = p.Category
		*(dest[7].(*[]string)) = p.Tags
		*(dest[8].(*string)) = p.ImageURL
		*(dest[9].(*[]byte)) = components
		*(dest[10].(*string)) = p.CreatedBy
		*(dest[11].(**string)) = p.CompanyID
		*(dest[12].(*time.Time)) = p.CreatedAt
		*(dest[13].(*time.Time)) = p.UpdatedAt
		return nil
	}
}

func productRows(products ...model.Product) *mockRows {
	rows := &mockRows{}
	for _, p := range products {
		rows.scans = append(rows.scans, productScan(p))
	}
	return rows
}

func sqlContaining(parts ...string) any {
	return mock.MatchedBy(func(sql string) bool {
		for _, p := range parts {
			if !strings.Contains(sql, p) {
				return false
			}
		}
		return true
	})
}

func testProduct(id, name string) model.Product {
	cid := "company-1"
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return model.Product{
		ID:         id,
		Name:       name,
		Category:   "furniture",
		Tags:       []string{},
		Components: []model.Component{{ID: "c1", Name: "Seat", Material: "oak"}},
		CreatedBy:  "user-1",
		CompanyID:  &cid,
		CreatedAt:  at,
		UpdatedAt:  at,
	}
}
