package fluentdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/fluentdb/dialect"
)

func TestBuildConditions(t *testing.T) {
	and, or := dialect.WhereBooleanAnd, dialect.WhereBooleanOr

	tests := []struct {
		name     string
		cond     any
		bindings []any
		boolean  dialect.WhereBoolean
		want     []dialect.WhereClause
	}{
		{
			name:    "nil",
			cond:    nil,
			boolean: and,
			want:    nil,
		},
		{
			name:    "empty string",
			cond:    " ",
			boolean: and,
			want:    nil,
		},
		{
			name:     "raw fragment",
			cond:     "age > ?",
			bindings: []any{18},
			boolean:  or,
			want: []dialect.WhereClause{
				{Type: dialect.WhereTypeRaw, Boolean: or, Raw: "age > ?", Bindings: []any{18}},
			},
		},
		{
			name:    "map keys sorted, first keeps boolean",
			cond:    map[string]any{"b": 2, "a": 1},
			boolean: or,
			want: []dialect.WhereClause{
				{Type: dialect.WhereTypeBasic, Boolean: or, Column: "a", Operator: "=", Value: 1},
				{Type: dialect.WhereTypeBasic, Boolean: and, Column: "b", Operator: "=", Value: 2},
			},
		},
		{
			name:    "typed map",
			cond:    map[string]string{"status": "active"},
			boolean: and,
			want: []dialect.WhereClause{
				{Type: dialect.WhereTypeBasic, Boolean: and, Column: "status", Operator: "=", Value: "active"},
			},
		},
		{
			name:    "string triple",
			cond:    []string{"like", "name", "A%"},
			boolean: and,
			want: []dialect.WhereClause{
				{Type: dialect.WhereTypeBasic, Boolean: and, Column: "name", Operator: "LIKE", Value: "A%"},
			},
		},
		{
			name:    "in with typed slice",
			cond:    Cond{Op: "in", Column: "id", Value: []int{1, 2}},
			boolean: and,
			want: []dialect.WhereClause{
				{Type: dialect.WhereTypeIn, Boolean: and, Column: "id", Operator: "IN", Values: []any{1, 2}},
			},
		},
		{
			name:    "not equal nil",
			cond:    &Cond{Op: "<>", Column: "deleted_at"},
			boolean: and,
			want: []dialect.WhereClause{
				{Type: dialect.WhereTypeNotNull, Boolean: and, Column: "deleted_at", Operator: "<>"},
			},
		},
		{
			name:    "cond list",
			cond:    []Cond{Gt("age", 18), Lte("age", 65)},
			boolean: or,
			want: []dialect.WhereClause{
				{Type: dialect.WhereTypeBasic, Boolean: or, Column: "age", Operator: ">", Value: 18},
				{Type: dialect.WhereTypeBasic, Boolean: and, Column: "age", Operator: "<=", Value: 65},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := buildConditions(tt.cond, tt.bindings, tt.boolean)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildConditions_Errors(t *testing.T) {
	tests := []struct {
		name     string
		cond     any
		bindings []any
	}{
		{"bindings with map", map[string]any{"a": 1}, []any{1}},
		{"too few bindings", "a = ? AND b = ?", []any{1}},
		{"too many bindings", "a = 1", []any{1}},
		{"short triple", []any{"=", "a"}, nil},
		{"non string operator", []any{1, "a", 2}, nil},
		{"in without slice", In("id"), nil},
		{"in with scalar", Cond{Op: "IN", Column: "id", Value: 3}, nil},
		{"in with bytes", Cond{Op: "IN", Column: "id", Value: []byte("ab")}, nil},
		{"bad column", Eq("a b", 1), nil},
		{"bad operator", Cond{Op: "~", Column: "a", Value: 1}, nil},
		{"int map keys", map[int]any{1: 1}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildConditions(tt.cond, tt.bindings, dialect.WhereBooleanAnd)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestToCount(t *testing.T) {
	tests := []struct {
		in      any
		want    int
		wantOK  bool
		wantErr bool
	}{
		{nil, 0, false, false},
		{"", 0, false, false},
		{10, 10, true, false},
		{int64(3), 3, true, false},
		{" 25 ", 25, true, false},
		{0, 0, true, false},
		{-1, 0, false, true},
		{"-5", 0, false, true},
		{"abc", 0, false, true},
		{true, 0, false, true},
	}

	for _, tt := range tests {
		got, ok, err := toCount("limit", tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %v", tt.in)
			continue
		}
		assert.NoError(t, err, "input %v", tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %v", tt.in)
		assert.Equal(t, tt.want, got, "input %v", tt.in)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"id, name"}, []string{"id", "name"}},
		{[]string{"id", " name "}, []string{"id", "name"}},
		{[]string{"COUNT(DISTINCT a), b"}, []string{"COUNT(DISTINCT a)", "b"}},
		{[]string{"*"}, nil},
		{[]string{""}, []string{}},
		{[]string{"a,,b,"}, []string{"a", "b"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, splitList(tt.in), "input %q", tt.in)
	}
}

func TestColumnIndex(t *testing.T) {
	cols := []string{"id", "Name", "email"}

	assert.Equal(t, 0, columnIndex(cols, "id"))
	assert.Equal(t, 1, columnIndex(cols, "name"))
	assert.Equal(t, 2, columnIndex(cols, "users.email"))
	assert.Equal(t, -1, columnIndex(cols, "age"))
}
