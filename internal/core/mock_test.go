package core

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/transpass/transpass/internal/model"
)

// ---------- Mock DB ----------

// mockDB implements the DB interface for testing.
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

// ---------- Mock Row ----------

// mockRow implements pgx.Row for testing.
type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	return m.scanFunc(dest...)
}

func errRow(err error) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error { return err }}
}

// ---------- Mock Rows ----------

// mockRows implements pgx.Rows for testing.
// It iterates through a list of scan functions, one per row.
type mockRows struct {
	callIndex int
	scanFuncs []func(dest ...any) error
	err       error
}

func newMockRows(scanFuncs ...func(dest ...any) error) *mockRows {
	return &mockRows{scanFuncs: scanFuncs}
}

// newEmptyMockRows returns a mockRows that yields zero rows.
func newEmptyMockRows() *mockRows {
	return &mockRows{}
}

func (m *mockRows) Next() bool {
	return m.callIndex < len(m.scanFuncs)
}

func (m *mockRows) Scan(dest ...any) error {
	if m.callIndex < len(m.scanFuncs) {
		fn := m.scanFuncs[m.callIndex]
		m.callIndex++
		return fn(dest...)
	}
	return nil
}

func (m *mockRows) Err() error                                   { return m.err }
func (m *mockRows) Close()                                       {}
func (m *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

// ---------- Row fixtures ----------

// productScan fills the destinations of a productColumns row from p.
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

// scanRecordScan fills the destinations of a scanColumns row from r.
func scanRecordScan(r model.ScanRecord) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = r.ID
		*(dest[1].(*string)) = r.UserID
		*(dest[2].(*string)) = r.ProductID
		*(dest[3].(*string)) = r.ProductName
		*(dest[4].(*string)) = r.ImageURL
		*(dest[5].(*time.Time)) = r.ScannedAt
		return nil
	}
}

func scanRecordRows(records ...model.ScanRecord) *mockRows {
	fns := make([]func(dest ...any) error, len(records))
	for i, r := range records {
		fns[i] = scanRecordScan(r)
	}
	return newMockRows(fns...)
}

// ---------- Fake blob store ----------

// fakeBlobStore records uploads in memory. The first failPuts calls to Put
// fail with putErr.
type fakeBlobStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	deleted  []string
	puts     int
	failPuts int
	putErr   error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (f *fakeBlobStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.puts <= f.failPuts {
		return "", f.putErr
	}
	f.objects[key] = data
	return "https://blobs.example/" + key, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}
