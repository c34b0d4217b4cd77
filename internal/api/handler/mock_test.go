package handler

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/transpass/transpass/internal/core"
	"github.com/transpass/transpass/internal/model"
)

// handlerMockDB implements core.DB for handler tests.
type handlerMockDB struct {
	mock.Mock
}

func (m *handlerMockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *handlerMockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *handlerMockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

func errRow(err error) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error { return err }}
}

// timesRow scans the given timestamps into RETURNING destinations.
func timesRow(times ...time.Time) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		for i, t := range times {
			*(dest[i].(*time.Time)) = t
		}
		return nil
	}}
}

type mockRows struct {
	callIndex int
	scanFuncs []func(dest ...any) error
}

func newMockRows(scanFuncs ...func(dest ...any) error) *mockRows {
	return &mockRows{scanFuncs: scanFuncs}
}

func (m *mockRows) Next() bool {
	return m.callIndex < len(m.scanFuncs)
}

func (m *mockRows) Scan(dest ...any) error {
	fn := m.scanFuncs[m.callIndex]
	m.callIndex++
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
		components, err := json.Marshal(p.Components)
		if err != nil {
			return err
		}
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

func productRow(p model.Product) *mockRow {
	return &mockRow{scanFunc: productScan(p)}
}

func productRows(products ...model.Product) *mockRows {
	fns := make([]func(dest ...any) error, len(products))
	for i, p := range products {
		fns[i] = productScan(p)
	}
	return newMockRows(fns...)
}

func scanRecordRows(records ...model.ScanRecord) *mockRows {
	fns := make([]func(dest ...any) error, len(records))
	for i, r := range records {
		fns[i] = func(dest ...any) error {
			*(dest[0].(*string)) = r.ID
			*(dest[1].(*string)) = r.UserID
			*(dest[2].(*string)) = r.ProductID
			*(dest[3].(*string)) = r.ProductName
			*(dest[4].(*string)) = r.ImageURL
			*(dest[5].(*time.Time)) = r.ScannedAt
			return nil
		}
	}
	return newMockRows(fns...)
}

// sqlContaining matches a statement containing every part.
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

var fixtureTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

// companyProduct is a product created by the company test user.
func companyProduct() model.Product {
	cid := companyID
	return model.Product{
		ID:           productID,
		Name:         "Oak Chair",
		Description:  "Solid oak dining chair",
		Manufacturer: "Acme Furniture",
		Model:        "OC-1",
		Category:     "furniture",
		Tags:         []string{"oak"},
		Components: []model.Component{
			{ID: "comp-1", Name: "Seat", Material: "oak", Weight: 2.5, Recyclable: true},
		},
		CreatedBy: companyUserID,
		CompanyID: &cid,
		CreatedAt: fixtureTime,
		UpdatedAt: fixtureTime,
	}
}

// foreignProduct is a product owned by somebody else entirely.
func foreignProduct() model.Product {
	p := companyProduct()
	other := "company-2"
	p.CreatedBy = "user-other"
	p.CompanyID = &other
	return p
}

// expectGetProduct expects a single lookup of productID returning p.
func expectGetProduct(db *handlerMockDB, p model.Product) {
	db.On("QueryRow", mock.Anything, sqlContaining("FROM products WHERE id = $1"), []any{p.ID}).
		Return(productRow(p)).Once()
}

func expectProductMissing(db *handlerMockDB, id string) {
	db.On("QueryRow", mock.Anything, sqlContaining("FROM products WHERE id = $1"), []any{id}).
		Return(errRow(pgx.ErrNoRows)).Once()
}

func newTestServices(db *handlerMockDB) *core.Services {
	return core.NewServices(db, core.Options{
		JWTSecret:     "test-secret-test-secret-test-secret",
		JWTIssuer:     "transpass-test",
		PublicBaseURL: "https://transpass.example",
		Location:      time.UTC,
	})
}

// expectOwnerList expects the ordered owner query used by ListByOwner.
func expectOwnerList(db *handlerMockDB, ownerID string, products ...model.Product) {
	db.On("QueryRow", mock.Anything, sqlContaining("SELECT 1 FROM products"), mock.Anything).
		Return(&mockRow{scanFunc: func(dest ...any) error {
			*(dest[0].(*int)) = 1
			return nil
		}}).Once()
	db.On("Query", mock.Anything, sqlContaining("created_by = $1", "ORDER BY created_at DESC"), []any{ownerID}).
		Return(productRows(products...), nil).Once()
}

func pgxNoRows() error { return pgx.ErrNoRows }
