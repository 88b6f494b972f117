package dialect_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/biyonik/fluentdb/dialect"
)

// mockBuilder implements QueryBuilder interface for testing
type mockBuilder struct {
	table    string
	columns  []string
	distinct bool
	wheres   []dialect.WhereClause
	orders   []dialect.OrderClause
	groupBy  []string
	limit    *int
	offset   *int
}

func (m *mockBuilder) GetTable() string                 { return m.table }
func (m *mockBuilder) GetColumns() []string             { return m.columns }
func (m *mockBuilder) IsDistinct() bool                 { return m.distinct }
func (m *mockBuilder) GetWheres() []dialect.WhereClause { return m.wheres }
func (m *mockBuilder) GetOrders() []dialect.OrderClause { return m.orders }
func (m *mockBuilder) GetGroupBy() []string             { return m.groupBy }
func (m *mockBuilder) GetLimit() *int                   { return m.limit }
func (m *mockBuilder) GetOffset() *int                  { return m.offset }

func intPtr(n int) *int { return &n }

func eq(column string, value any) dialect.WhereClause {
	return dialect.WhereClause{Type: dialect.WhereTypeBasic, Column: column, Operator: "=", Value: value}
}

type compileCase struct {
	name     string
	builder  *mockBuilder
	wantSQL  string
	wantArgs []any
	wantErr  error
}

func runSelectCases(t *testing.T, g dialect.Grammar, tests []compileCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := g.CompileSelect(tt.builder)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CompileSelect() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CompileSelect() unexpected error: %v", err)
			}
			if sql != tt.wantSQL {
				t.Errorf("CompileSelect() sql = %q, want %q", sql, tt.wantSQL)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("CompileSelect() args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestForName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"sqlite", "sqlite", false},
		{"sqlite3", "sqlite", false},
		{"mysql", "mysql", false},
		{"MariaDB", "mysql", false},
		{"postgres", "postgres", false},
		{"postgresql", "postgres", false},
		{" pgsql ", "postgres", false},
		{"oracle", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := dialect.ForName(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ForName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err == nil && g.Name() != tt.want {
				t.Errorf("ForName(%q).Name() = %q, want %q", tt.name, g.Name(), tt.want)
			}
		})
	}
}

func TestCompile_IsPure(t *testing.T) {
	b := &mockBuilder{
		table:  "users",
		wheres: []dialect.WhereClause{eq("id", 5)},
		limit:  intPtr(1),
	}

	for _, g := range []dialect.Grammar{dialect.SQLite(), dialect.MySQL(), dialect.Postgres()} {
		sql1, args1, err1 := g.CompileSelect(b)
		sql2, args2, err2 := g.CompileSelect(b)
		if err1 != nil || err2 != nil {
			t.Fatalf("%s: unexpected errors %v / %v", g.Name(), err1, err2)
		}
		if sql1 != sql2 || !reflect.DeepEqual(args1, args2) {
			t.Errorf("%s: compile is not deterministic: %q vs %q", g.Name(), sql1, sql2)
		}
	}
}

func TestCompileInsert_OnePlaceholderPerColumn(t *testing.T) {
	data := map[string]any{"name": "Ann", "email": "ann@example.com", "age": 30}
	b := &mockBuilder{table: "users"}

	sql, args, err := dialect.SQLite().CompileInsert(b, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `INSERT INTO "users" ("age", "email", "name") VALUES (?, ?, ?)`
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{30, "ann@example.com", "Ann"}) {
		t.Errorf("args = %v", args)
	}
}

func TestCompileInsert_Errors(t *testing.T) {
	g := dialect.MySQL()

	if _, _, err := g.CompileInsert(&mockBuilder{table: "users"}, nil); !errors.Is(err, dialect.ErrNoColumns) {
		t.Errorf("empty data error = %v, want ErrNoColumns", err)
	}
	if _, _, err := g.CompileInsert(&mockBuilder{}, map[string]any{"a": 1}); !errors.Is(err, dialect.ErrNoTable) {
		t.Errorf("missing table error = %v, want ErrNoTable", err)
	}
	if _, _, err := g.CompileInsert(&mockBuilder{table: "users"}, map[string]any{"a;--": 1}); err == nil {
		t.Error("expected error for malicious column name")
	}
}

func TestCompileAggregate_Unsupported(t *testing.T) {
	_, _, err := dialect.SQLite().CompileAggregate(&mockBuilder{table: "users"}, "MEDIAN", "age")
	if !errors.Is(err, dialect.ErrAggregate) {
		t.Errorf("error = %v, want ErrAggregate", err)
	}
}

func TestWhereType_String(t *testing.T) {
	if got := dialect.WhereTypeNotIn.String(); got != "NotIn" {
		t.Errorf("String() = %q, want NotIn", got)
	}
	if got := dialect.WhereType(99).String(); got != "Unknown" {
		t.Errorf("String() = %q, want Unknown", got)
	}
}
