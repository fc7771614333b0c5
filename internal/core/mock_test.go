package core

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"

	"github.com/edvin/branchbox/internal/model"
)

// mockDB stands in for the registry pool. Expectations match on the SQL and
// the argument slice.
type mockDB struct {
	mock.Mock
}

func (m *mockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *mockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	rows, _ := args.Get(0).(pgx.Rows)
	return rows, args.Error(1)
}

func (m *mockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	return m.Called(ctx, sql, arguments).Get(0).(pgx.Row)
}

func sqlContaining(fragment string) any {
	return mock.MatchedBy(func(sql string) bool { return strings.Contains(sql, fragment) })
}

type scanFunc func(dest ...any) error

type mockRow struct {
	scanFunc scanFunc
}

func (r *mockRow) Scan(dest ...any) error { return r.scanFunc(dest...) }

// mockRows yields one row per scan function, then reports err.
type mockRows struct {
	rows []scanFunc
	next int
	err  error
}

func newMockRows(rows ...func(dest ...any) error) *mockRows {
	r := &mockRows{}
	for _, fn := range rows {
		r.rows = append(r.rows, fn)
	}
	return r
}

func newEmptyMockRows() *mockRows { return &mockRows{} }

func (r *mockRows) Next() bool { return r.next < len(r.rows) }

func (r *mockRows) Scan(dest ...any) error {
	fn := r.rows[r.next]
	r.next++
	return fn(dest...)
}

func (r *mockRows) Err() error                                   { return r.err }
func (r *mockRows) Close()                                       {}
func (r *mockRows) CommandTag() pgconn.CommandTag                 { return pgconn.NewCommandTag("SELECT") }
func (r *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *mockRows) RawValues() [][]byte                          { return nil }
func (r *mockRows) Values() ([]any, error)                       { return nil, nil }
func (r *mockRows) Conn() *pgx.Conn                              { return nil }

// envScan fills the scan destinations in environmentColumns order.
func envScan(env model.Environment) func(dest ...any) error {
	return func(dest ...any) error {
		services, err := json.Marshal(env.Services)
		if err != nil {
			return err
		}
		for i, v := range []string{env.ID, env.RepoName, env.BranchName, env.StackID, env.StackName, env.Alias, env.StopTime, env.StartTime, env.Status} {
			*(dest[i].(*string)) = v
		}
		*(dest[9].(*[]byte)) = services
		*(dest[10].(*string)) = env.Owner
		*(dest[11].(*time.Time)) = env.CreatedAt
		*(dest[12].(*time.Time)) = env.UpdatedAt
		return nil
	}
}
