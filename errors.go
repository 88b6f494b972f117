package fluentdb

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/biyonik/fluentdb/internal/validation"
)

// Sentinel errors for fluentdb.
// These errors can be checked using errors.Is().
var (
	// ErrConfig is matched by every *ConfigError.
	ErrConfig = errors.New("fluentdb: configuration error")

	// ErrConnection is matched by every *ConnectionError.
	ErrConnection = errors.New("fluentdb: connection error")

	// ErrQuery is matched by every *QueryError.
	ErrQuery = errors.New("fluentdb: query error")

	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("fluentdb: validation error")

	// ErrInvalidIdentifier is returned when a table or column name contains invalid characters.
	ErrInvalidIdentifier = errors.New("fluentdb: invalid SQL identifier")

	// ErrInvalidOperator is returned when an unsupported SQL operator is used.
	ErrInvalidOperator = errors.New("fluentdb: invalid SQL operator")

	// ErrNoConnection is returned when a session has no live connection and cannot open one.
	ErrNoConnection = errors.New("fluentdb: no connection")

	// ErrTxClosed is returned when a finished transaction session is used again.
	ErrTxClosed = errors.New("fluentdb: transaction already closed")
)

// ConfigError, bağlantı yapılandırması çözülemediğinde döner.
type ConfigError struct {
	Preset string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	var sb strings.Builder
	sb.WriteString("fluentdb: config")
	if e.Preset != "" {
		sb.WriteString(" preset '" + e.Preset + "'")
	}
	if e.Field != "" {
		sb.WriteString(" field '" + e.Field + "'")
	}
	sb.WriteString(": " + e.Reason)
	return sb.String()
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// ConnectionError, sürücü bağlantıyı açamadığında veya ping başarısız olduğunda döner.
type ConnectionError struct {
	Dialect string
	Err     error
}

func (e *ConnectionError) Error() string {
	if e.Dialect == "" {
		return "fluentdb: connection failed: " + e.Err.Error()
	}
	return "fluentdb: " + e.Dialect + " connection failed: " + e.Err.Error()
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}

// QueryError wraps a prepare or execute failure with the statement that caused it.
type QueryError struct {
	Query    string
	Bindings []any
	Err      error
}

func (e *QueryError) Error() string {
	return "fluentdb: query failed: " + e.Err.Error()
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func (e *QueryError) Is(target error) bool {
	return target == ErrQuery
}

// Constraint, sürücü hatasını kısıt ihlali türüne göre sınıflandırır.
func (e *QueryError) Constraint() Constraint {
	return classifyConstraint(e.Err)
}

// ValidationError, builder girdisi hatalı olduğunda çağrı noktasında döner.
// Bu hatalar bağlantıya hiç ulaşmaz ve trace kaydı üretmez.
type ValidationError struct {
	Context string
	Value   string
	Reason  string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return "fluentdb: invalid " + e.Context + ": " + e.Reason
	}
	return "fluentdb: invalid " + e.Context + " '" + e.Value + "': " + e.Reason
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	switch target {
	case ErrValidation:
		return true
	case ErrInvalidIdentifier:
		var ie *validation.IdentifierError
		return errors.As(e.Err, &ie)
	case ErrInvalidOperator:
		var oe *validation.OperatorError
		return errors.As(e.Err, &oe)
	}
	return false
}

// newValidationError, alt paketlerden gelen hatayı ValidationError'a çevirir.
func newValidationError(context, value string, err error) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return &ValidationError{
		Context: context,
		Value:   value,
		Reason:  err.Error(),
		Err:     err,
	}
}

// ----------------------------------------------------------------------------
// Constraint classification
// ----------------------------------------------------------------------------

// Constraint, bir kısıt ihlalinin türüdür.
type Constraint int

const (
	ConstraintNone Constraint = iota
	ConstraintUnique
	ConstraintNotNull
	ConstraintForeignKey
	ConstraintCheck
	ConstraintOther
)

func (c Constraint) String() string {
	names := [...]string{"none", "unique", "not null", "foreign key", "check", "other"}
	if int(c) < len(names) {
		return names[c]
	}
	return "unknown"
}

func classifyConstraint(err error) Constraint {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		if liteErr.Code != sqlite3.ErrConstraint {
			return ConstraintNone
		}
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ConstraintUnique
		case sqlite3.ErrConstraintNotNull:
			return ConstraintNotNull
		case sqlite3.ErrConstraintForeignKey:
			return ConstraintForeignKey
		case sqlite3.ErrConstraintCheck:
			return ConstraintCheck
		}
		return ConstraintOther
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case 1062, 1586:
			return ConstraintUnique
		case 1048, 1364:
			return ConstraintNotNull
		case 1216, 1217, 1451, 1452:
			return ConstraintForeignKey
		case 3819:
			return ConstraintCheck
		}
		return ConstraintNone
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return ConstraintUnique
		case "23502":
			return ConstraintNotNull
		case "23503":
			return ConstraintForeignKey
		case "23514":
			return ConstraintCheck
		}
		if pqErr.Code.Class() == "23" {
			return ConstraintOther
		}
	}

	return ConstraintNone
}
