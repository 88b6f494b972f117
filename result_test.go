package fluentdb_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/biyonik/fluentdb"
)

func TestCollection(t *testing.T) {
	c := fluentdb.NewCollection([]fluentdb.Record{
		{"id": int64(1), "name": "Ann"},
		{"id": int64(2), "name": "Bob"},
		{"id": int64(3), "name": "Cid"},
	})

	assert.Equal(t, 3, c.Len())

	first, ok := c.First()
	assert.True(t, ok)
	assert.Equal(t, "Ann", first["name"])

	last, ok := c.Last()
	assert.True(t, ok)
	assert.Equal(t, "Cid", last["name"])

	_, ok = c.At(3)
	assert.False(t, ok)

	assert.Equal(t, []any{"Ann", "Bob", "Cid"}, c.Pluck("name"))

	odd := c.Filter(func(r fluentdb.Record) bool { return r.Int("id")%2 == 1 })
	assert.Equal(t, []any{int64(1), int64(3)}, odd.Pluck("id"))
}

func TestCollection_Empty(t *testing.T) {
	c := fluentdb.NewCollection(nil)

	assert.Equal(t, 0, c.Len())
	assert.NotNil(t, c.Records())

	_, ok := c.First()
	assert.False(t, ok)
	_, ok = c.Last()
	assert.False(t, ok)
}

func TestFirstOrNone(t *testing.T) {
	tests := []struct {
		name   string
		result fluentdb.Result
		wantOK bool
	}{
		{"nil", nil, false},
		{"empty collection", fluentdb.NewCollection(nil), false},
		{"empty list", fluentdb.List{}, false},
		{"list", fluentdb.List{{"a": 1}}, true},
		{"column values", &fluentdb.ColumnValues{Name: "a", Values: []any{1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := fluentdb.FirstOrNone(tt.result)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, 1, rec["a"])
			}
		})
	}
}

func TestColumnValues_Records(t *testing.T) {
	c := &fluentdb.ColumnValues{Name: "n", Values: []any{1, 2}}
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []fluentdb.Record{{"n": 1}, {"n": 2}}, c.Records())
}

func TestRecord_Accessors(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	r := fluentdb.Record{
		"id":      int64(7),
		"price":   "12.5",
		"active":  int64(1),
		"name":    "Ann",
		"created": now,
		"deleted": nil,
	}

	assert.Equal(t, int64(7), r.Int("id"))
	assert.Equal(t, 12.5, r.Float("price"))
	assert.True(t, r.Bool("active"))
	assert.Equal(t, "Ann", r.String("name"))
	assert.Equal(t, "7", r.String("id"))
	assert.True(t, r.Time("created").Equal(now))

	assert.True(t, r.Has("deleted"))
	assert.True(t, r.IsNull("deleted"))
	assert.True(t, r.IsNull("missing"))
	assert.False(t, r.Has("missing"))
	assert.Equal(t, int64(0), r.Int("missing"))

	assert.Equal(t, []string{"active", "created", "deleted", "id", "name", "price"}, r.Columns())
}

func TestFetchShape_String(t *testing.T) {
	assert.Equal(t, "structured", fluentdb.ShapeStructured.String())
	assert.Equal(t, "associative", fluentdb.ShapeAssociative.String())
}
