package fluentdb_test

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/biyonik/fluentdb"
)

func TestErrors_Is(t *testing.T) {
	driverErr := errors.New("driver: bad connection")

	tests := []struct {
		name string
		err  error
		is   error
		not  error
	}{
		{"config", &fluentdb.ConfigError{Field: "host", Reason: "is required"}, fluentdb.ErrConfig, fluentdb.ErrQuery},
		{"connection", &fluentdb.ConnectionError{Dialect: "mysql", Err: driverErr}, fluentdb.ErrConnection, fluentdb.ErrConfig},
		{"connection unwraps", &fluentdb.ConnectionError{Err: driverErr}, driverErr, fluentdb.ErrValidation},
		{"query", &fluentdb.QueryError{Query: "SELECT", Err: driverErr}, fluentdb.ErrQuery, fluentdb.ErrConnection},
		{"query unwraps", &fluentdb.QueryError{Query: "SELECT", Err: driverErr}, driverErr, fluentdb.ErrConfig},
		{"validation", &fluentdb.ValidationError{Context: "limit", Reason: "must not be negative"}, fluentdb.ErrValidation, fluentdb.ErrInvalidIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.is)
			assert.NotErrorIs(t, tt.err, tt.not)
		})
	}
}

func TestErrors_Messages(t *testing.T) {
	assert.Equal(t,
		"fluentdb: config preset 'main' field 'host': is required",
		(&fluentdb.ConfigError{Preset: "main", Field: "host", Reason: "is required"}).Error())
	assert.Equal(t,
		"fluentdb: mysql connection failed: refused",
		(&fluentdb.ConnectionError{Dialect: "mysql", Err: errors.New("refused")}).Error())
	assert.Equal(t,
		"fluentdb: invalid limit '-1': must not be negative",
		(&fluentdb.ValidationError{Context: "limit", Value: "-1", Reason: "must not be negative"}).Error())
	assert.Equal(t,
		"fluentdb: query failed: boom",
		(&fluentdb.QueryError{Query: "SELECT 1", Err: errors.New("boom")}).Error())
}

func TestQueryError_Constraint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want fluentdb.Constraint
	}{
		{"mysql duplicate", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, fluentdb.ConstraintUnique},
		{"mysql not null", &mysql.MySQLError{Number: 1048, Message: "Column cannot be null"}, fluentdb.ConstraintNotNull},
		{"mysql foreign key", &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}, fluentdb.ConstraintForeignKey},
		{"mysql check", &mysql.MySQLError{Number: 3819, Message: "Check constraint is violated"}, fluentdb.ConstraintCheck},
		{"mysql other", &mysql.MySQLError{Number: 1146, Message: "Table doesn't exist"}, fluentdb.ConstraintNone},
		{"pq unique", &pq.Error{Code: "23505"}, fluentdb.ConstraintUnique},
		{"pq not null", &pq.Error{Code: "23502"}, fluentdb.ConstraintNotNull},
		{"pq foreign key", &pq.Error{Code: "23503"}, fluentdb.ConstraintForeignKey},
		{"pq check", &pq.Error{Code: "23514"}, fluentdb.ConstraintCheck},
		{"pq exclusion", &pq.Error{Code: "23P01"}, fluentdb.ConstraintOther},
		{"pq syntax", &pq.Error{Code: "42601"}, fluentdb.ConstraintNone},
		{"plain error", errors.New("boom"), fluentdb.ConstraintNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qerr := &fluentdb.QueryError{Query: "INSERT", Err: tt.err}
			assert.Equal(t, tt.want, qerr.Constraint())
		})
	}
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := fluentdb.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	logger.Log("SELECT 1", []any{1}, 2*time.Millisecond, nil)
	logger.Log("SELECT 2", nil, time.Millisecond, errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if assert.Len(t, lines, 2) {
		assert.Contains(t, lines[0], "level=DEBUG")
		assert.Contains(t, lines[0], "component=fluentdb")
		assert.Contains(t, lines[0], `query="SELECT 1"`)
		assert.Contains(t, lines[1], "level=ERROR")
		assert.Contains(t, lines[1], "error=boom")
	}
}

func TestNopLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		fluentdb.NopLogger{}.Log("SELECT 1", nil, 0, nil)
	})
}
