package dialect_test

import (
	"reflect"
	"testing"

	"github.com/biyonik/fluentdb/dialect"
)

func TestSQLiteGrammar_Wrap(t *testing.T) {
	g := dialect.SQLite()

	tests := []struct {
		identifier string
		want       string
	}{
		{"users", `"users"`},
		{"users.id", `"users"."id"`},
		{"u.*", `"u".*`},
		{"*", "*"},
	}

	for _, tt := range tests {
		got, err := g.Wrap(tt.identifier)
		if err != nil {
			t.Errorf("Wrap(%q) unexpected error: %v", tt.identifier, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Wrap(%q) = %q, want %q", tt.identifier, got, tt.want)
		}
	}
}

func TestSQLiteGrammar_CompileSelect(t *testing.T) {
	runSelectCases(t, dialect.SQLite(), []compileCase{
		{
			name:     "where with alias",
			builder:  &mockBuilder{table: "users u", columns: []string{"u.name"}, wheres: []dialect.WhereClause{eq("u.id", 5)}},
			wantSQL:  `SELECT "u"."name" FROM "users" AS "u" WHERE "u"."id" = ?`,
			wantArgs: []any{5},
		},
		{
			name:     "offset without limit",
			builder:  &mockBuilder{table: "users", offset: intPtr(3)},
			wantSQL:  `SELECT * FROM "users" LIMIT -1 OFFSET 3`,
			wantArgs: []any{},
		},
		{
			name: "not in and not null",
			builder: &mockBuilder{table: "users", wheres: []dialect.WhereClause{
				{Type: dialect.WhereTypeNotIn, Column: "id", Values: []any{1, 2}},
				{Type: dialect.WhereTypeNotNull, Boolean: dialect.WhereBooleanOr, Column: "email"},
			}},
			wantSQL:  `SELECT * FROM "users" WHERE "id" NOT IN (?, ?) OR "email" IS NOT NULL`,
			wantArgs: []any{1, 2},
		},
	})
}

func TestSQLiteGrammar_CompileExists(t *testing.T) {
	g := dialect.SQLite()

	sql, args, err := g.CompileExists(&mockBuilder{table: "users", wheres: []dialect.WhereClause{eq("id", 1)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `SELECT EXISTS(SELECT 1 FROM "users" WHERE "id" = ? LIMIT 1)`; sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{1}) {
		t.Errorf("args = %v", args)
	}
}

func TestSQLiteGrammar_CompileCount(t *testing.T) {
	g := dialect.SQLite()
	b := &mockBuilder{
		table:  "users",
		wheres: []dialect.WhereClause{eq("active", true)},
		orders: []dialect.OrderClause{{Column: "id", Direction: dialect.OrderAsc}},
		limit:  intPtr(5),
	}

	tests := []struct {
		column string
		want   string
	}{
		{"", `SELECT COUNT(*) AS "aggregate" FROM "users" WHERE "active" = ?`},
		{"*", `SELECT COUNT(*) AS "aggregate" FROM "users" WHERE "active" = ?`},
		{"email", `SELECT COUNT("email") AS "aggregate" FROM "users" WHERE "active" = ?`},
	}

	for _, tt := range tests {
		sql, args, err := g.CompileCount(b, tt.column)
		if err != nil {
			t.Fatalf("CompileCount(%q) unexpected error: %v", tt.column, err)
		}
		if sql != tt.want {
			t.Errorf("CompileCount(%q) = %q, want %q", tt.column, sql, tt.want)
		}
		if !reflect.DeepEqual(args, []any{true}) {
			t.Errorf("CompileCount(%q) args = %v", tt.column, args)
		}
	}
}

func TestSQLiteGrammar_CompileCountDistinctAndGroup(t *testing.T) {
	g := dialect.SQLite()

	tests := []struct {
		name    string
		builder *mockBuilder
		want    string
	}{
		{
			name:    "distinct single column",
			builder: &mockBuilder{table: "t", columns: []string{"status"}, distinct: true},
			want:    `SELECT COUNT(DISTINCT "status") AS "aggregate" FROM "t"`,
		},
		{
			name:    "distinct several columns",
			builder: &mockBuilder{table: "t", columns: []string{"status", "kind"}, distinct: true, limit: intPtr(3)},
			want:    `SELECT COUNT(*) AS "aggregate" FROM (SELECT DISTINCT "status", "kind" FROM "t") AS "counted"`,
		},
		{
			name:    "distinct all columns",
			builder: &mockBuilder{table: "t", distinct: true},
			want:    `SELECT COUNT(*) AS "aggregate" FROM (SELECT DISTINCT * FROM "t") AS "counted"`,
		},
		{
			name: "group by",
			builder: &mockBuilder{
				table:   "t",
				columns: []string{"status", "COUNT(*) AS n"},
				wheres:  []dialect.WhereClause{eq("active", 1)},
				groupBy: []string{"status"},
				orders:  []dialect.OrderClause{{Column: "status", Direction: dialect.OrderDesc}},
			},
			want: `SELECT COUNT(*) AS "aggregate" FROM (SELECT "status" FROM "t" WHERE "active" = ? GROUP BY "status") AS "counted"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, _, err := g.CompileCount(tt.builder, "")
			if err != nil {
				t.Fatalf("CompileCount() unexpected error: %v", err)
			}
			if sql != tt.want {
				t.Errorf("CompileCount() = %q, want %q", sql, tt.want)
			}
		})
	}
}

func TestCountPlaceholders(t *testing.T) {
	tests := []struct {
		fragment  string
		backslash bool
		want      int
	}{
		{"a = ? AND b = ?", false, 2},
		{"note = '?' AND id = ?", false, 1},
		{"note = 'it''s ?' AND id = ?", false, 1},
		{`name = 'it\'s' AND id = ?`, true, 1},
		{`name = 'it\'s' AND id = ?`, false, 0},
		{`path = 'C:\' OR id = ?`, false, 1},
		{"`we?ird` = ?", true, 1},
	}

	for _, tt := range tests {
		if got := dialect.CountPlaceholders(tt.fragment, tt.backslash); got != tt.want {
			t.Errorf("CountPlaceholders(%q, %v) = %d, want %d", tt.fragment, tt.backslash, got, tt.want)
		}
	}
}

func TestSQLiteGrammar_VersionQuery(t *testing.T) {
	if got := dialect.SQLite().VersionQuery(); got != "SELECT sqlite_version()" {
		t.Errorf("VersionQuery() = %q", got)
	}
}
