package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/fluentdb"
)

func captureOut(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Out
	Out = &buf
	t.Cleanup(func() { Out = prev })
	return &buf
}

func TestResultTable(t *testing.T) {
	res := fluentdb.List{
		{"id": int64(1), "name": "Ann", "avatar": []byte{0xca, 0xfe}},
		{"id": int64(2), "name": nil, "email": "bob@example.com"},
	}

	headers, rows := ResultTable(res)

	assert.Equal(t, []string{"avatar", "email", "id", "name"}, headers)
	assert.Equal(t, [][]string{
		{"0xcafe", "NULL", "1", "Ann"},
		{"NULL", "bob@example.com", "2", "NULL"},
	}, rows)
}

func TestResultTable_Empty(t *testing.T) {
	headers, rows := ResultTable(nil)
	assert.Nil(t, headers)
	assert.Nil(t, rows)

	headers, rows = ResultTable(fluentdb.NewCollection(nil))
	assert.Nil(t, headers)
	assert.Nil(t, rows)
}

func TestPrintResult(t *testing.T) {
	buf := captureOut(t)

	require.NoError(t, PrintResult(fluentdb.List{{"name": "Ann"}, {"name": "Bob"}}))

	out := buf.String()
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "Ann")
	assert.Contains(t, out, "Bob")
	assert.Contains(t, out, "2 row(s)")
}

func TestPrintResult_NoRows(t *testing.T) {
	buf := captureOut(t)

	require.NoError(t, PrintResult(fluentdb.List{}))
	assert.Contains(t, buf.String(), "no rows")
}

func TestPrintKeyValues(t *testing.T) {
	buf := captureOut(t)

	PrintKeyValues([][2]string{{"dialect", "sqlite"}, {"prefix", "-"}})

	out := buf.String()
	assert.Contains(t, out, "dialect")
	assert.Contains(t, out, "sqlite")
	assert.Contains(t, out, "prefix")
}
