package dialect_test

import (
	"reflect"
	"testing"

	"github.com/biyonik/fluentdb/dialect"
)

func TestPostgresGrammar_Placeholder(t *testing.T) {
	g := dialect.Postgres()

	for i, want := range []string{"$1", "$2", "$3"} {
		if got := g.Placeholder(i + 1); got != want {
			t.Errorf("Placeholder(%d) = %q, want %q", i+1, got, want)
		}
	}
}

func TestPostgresGrammar_CompileSelect(t *testing.T) {
	runSelectCases(t, dialect.Postgres(), []compileCase{
		{
			name: "numbered placeholders",
			builder: &mockBuilder{table: "users", wheres: []dialect.WhereClause{
				eq("id", 5),
				{Type: dialect.WhereTypeIn, Column: "role", Values: []any{"a", "b"}},
			}},
			wantSQL:  `SELECT * FROM "users" WHERE "id" = $1 AND "role" IN ($2, $3)`,
			wantArgs: []any{5, "a", "b"},
		},
		{
			name: "raw fragment is rebound and quoted marks are kept",
			builder: &mockBuilder{table: "users", wheres: []dialect.WhereClause{
				eq("id", 1),
				{Type: dialect.WhereTypeRaw, Raw: "name = ? OR note = '?'", Bindings: []any{"Ann"}},
			}},
			wantSQL:  `SELECT * FROM "users" WHERE "id" = $1 AND (name = $2 OR note = '?')`,
			wantArgs: []any{1, "Ann"},
		},
		{
			name:     "offset without limit",
			builder:  &mockBuilder{table: "users", offset: intPtr(4)},
			wantSQL:  `SELECT * FROM "users" OFFSET 4`,
			wantArgs: []any{},
		},
	})
}

func TestPostgresGrammar_CompileUpdate(t *testing.T) {
	g := dialect.Postgres()
	b := &mockBuilder{table: "users", wheres: []dialect.WhereClause{eq("id", 9)}}

	sql, args, err := g.CompileUpdate(b, map[string]any{"name": "Bob"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `UPDATE "users" SET "name" = $1 WHERE "id" = $2`; sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"Bob", 9}) {
		t.Errorf("args = %v", args)
	}
}

func TestPostgresGrammar_CompileAggregate(t *testing.T) {
	g := dialect.Postgres()
	b := &mockBuilder{table: "orders", wheres: []dialect.WhereClause{eq("paid", true)}}

	sql, args, err := g.CompileAggregate(b, "avg", "total")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := `SELECT AVG("total") AS "aggregate" FROM "orders" WHERE "paid" = $1`; sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{true}) {
		t.Errorf("args = %v", args)
	}
}
