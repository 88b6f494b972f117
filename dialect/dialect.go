// Package dialect, sorgu bileşenlerini SQLite, MySQL ve PostgreSQL için
// çalıştırılabilir SQL metnine ve buna paralel binding listesine çevirir.
//
// Yazar: Ahmet ALTUN
// Github: github.com/biyonik
// LinkedIn: linkedin.com/in/biyonik
// Email: ahmet.altun60@gmail.com
package dialect

import "strings"

// ----------------------------------------------------------------------------
// QueryBuilder Interface (import döngüsünü kırmak için)
// ----------------------------------------------------------------------------

// QueryBuilder, Grammar implementasyonlarının okuduğu sorgu durumudur.
// Ana paketteki Query bu arayüzü uygular.
type QueryBuilder interface {
	GetTable() string
	GetColumns() []string
	IsDistinct() bool
	GetWheres() []WhereClause
	GetOrders() []OrderClause
	GetGroupBy() []string
	GetLimit() *int
	GetOffset() *int
}

// ----------------------------------------------------------------------------
// Grammar Interface
// ----------------------------------------------------------------------------

// Grammar, sorgu bileşenlerini veritabanına özgü SQL ifadelerine çevirir.
// Derleme saftır: aynı QueryBuilder durumu her zaman aynı (sql, args) çiftini üretir.
type Grammar interface {
	// Name, gramerin kimliğini döndürür ("sqlite", "mysql", "postgres").
	Name() string

	// Wrap, kolon veya tablo adını doğrular ve dialect tırnaklarıyla sarar.
	Wrap(identifier string) (string, error)

	// WrapTable, tablo adını sarar ve alias yönetir.
	WrapTable(table string) (string, error)

	// Placeholder, 1 tabanlı indeks için parametre yer tutucusunu döndürür.
	Placeholder(index int) string

	CompileSelect(b QueryBuilder) (string, []any, error)
	CompileInsert(b QueryBuilder, data map[string]any) (string, []any, error)
	CompileUpdate(b QueryBuilder, data map[string]any) (string, []any, error)
	CompileDelete(b QueryBuilder) (string, []any, error)
	CompileExists(b QueryBuilder) (string, []any, error)

	// CompileCount, COUNT(*) veya COUNT(column) sorgusunu derler.
	CompileCount(b QueryBuilder, column string) (string, []any, error)

	// CompileAggregate, MIN, MAX, AVG, SUM sorgularını derler.
	CompileAggregate(b QueryBuilder, fn, column string) (string, []any, error)

	// VersionQuery, sunucu sürümünü tek satır tek kolon olarak döndüren sorgudur.
	VersionQuery() string
}

// ForName, dialect adından (veya takma adından) Grammar üretir.
func ForName(name string) (Grammar, error) {
	switch Normalize(name) {
	case "sqlite":
		return SQLite(), nil
	case "mysql":
		return MySQL(), nil
	case "postgres":
		return Postgres(), nil
	default:
		return nil, &DialectError{Message: "unknown dialect '" + name + "'"}
	}
}

// Normalize, dialect takma adlarını kanonik ada çevirir. Bilinmeyen adlar
// küçük harfe çevrilmiş olarak aynen döner.
func Normalize(name string) string {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "sqlite", "sqlite3":
		return "sqlite"
	case "mysql", "mariadb":
		return "mysql"
	case "postgres", "postgresql", "pgsql", "pg":
		return "postgres"
	default:
		return n
	}
}

// ----------------------------------------------------------------------------
// WHERE Clause Types
// ----------------------------------------------------------------------------

// WhereType, WHERE koşulunun türünü belirtir.
type WhereType int

const (
	WhereTypeBasic WhereType = iota
	WhereTypeIn
	WhereTypeNotIn
	WhereTypeNull
	WhereTypeNotNull
	WhereTypeRaw
)

// String, WhereType'ın string temsilini döndürür.
func (t WhereType) String() string {
	names := [...]string{"Basic", "In", "NotIn", "Null", "NotNull", "Raw"}
	if int(t) < len(names) {
		return names[t]
	}
	return "Unknown"
}

// WhereBoolean, AND veya OR bağlacını belirtir.
type WhereBoolean int

const (
	WhereBooleanAnd WhereBoolean = iota
	WhereBooleanOr
)

// String, SQL için bağlaç kelimesini döndürür.
func (b WhereBoolean) String() string {
	if b == WhereBooleanOr {
		return "OR"
	}
	return "AND"
}

// WhereClause, tek bir WHERE koşulunu temsil eder.
type WhereClause struct {
	Type     WhereType
	Boolean  WhereBoolean
	Column   string
	Operator string
	Value    any
	Values   []any  // IN / NOT IN
	Raw      string // ham SQL parçası, ? yer tutucularıyla
	Bindings []any  // Raw için bindingler
}

// ----------------------------------------------------------------------------
// ORDER BY Types
// ----------------------------------------------------------------------------

// OrderDirection, sıralama yönünü belirtir.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

// IsValid, yönün geçerli olup olmadığını kontrol eder.
func (d OrderDirection) IsValid() bool {
	return d == OrderAsc || d == OrderDesc
}

// OrderClause, ORDER BY ifadesini temsil eder.
type OrderClause struct {
	Column    string
	Direction OrderDirection
}

// ----------------------------------------------------------------------------
// Sentinel Errors (dialect-specific)
// ----------------------------------------------------------------------------

var (
	ErrNoTable         = &DialectError{Message: "no table specified"}
	ErrNoColumns       = &DialectError{Message: "no columns specified"}
	ErrEmptyWhereIn    = &DialectError{Message: "empty slice passed to IN"}
	ErrBindingMismatch = &DialectError{Message: "placeholder count does not match bindings"}
	ErrAggregate       = &DialectError{Message: "unsupported aggregate function"}
	ErrDirection       = &DialectError{Message: "order direction must be ASC or DESC"}
)

// DialectError, dialect'e özgü hataları temsil eder.
type DialectError struct {
	Message string
}

// Error, hatayı string olarak döndürür.
func (e *DialectError) Error() string {
	return "dialect: " + e.Message
}
