package fluentdb

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// =====================================================================================
// RESULT MATERIALIZER
// -------------------------------------------------------------------------------------
// Veritabanından dönen satırlar üç stratejiden biriyle şekillendirilir:
//
//   structured   -> sürücü değerleri kolonun tarama tipine çevrilir ([]byte -> string,
//                   DECIMAL -> float64, metin olarak gelen tamsayı -> int64)
//   associative  -> sürücü değerleri olduğu gibi bırakılır
//   scalarColumn -> tek bir kolonun değerleri sırayla toplanır
//
// Strateji bir enum ile seçilir; kapsayıcı (Collection veya List) da öyle.
//
// @author    Ahmet ALTUN
// @github    github.com/biyonik
// @linkedin  linkedin.com/in/biyonik
// @email     ahmet.altun60@gmail.com
// =====================================================================================

// FetchShape, satırların nasıl şekilleneceğini belirtir.
type FetchShape int

const (
	ShapeStructured FetchShape = iota
	ShapeAssociative
)

func (s FetchShape) String() string {
	if s == ShapeAssociative {
		return "associative"
	}
	return "structured"
}

// Container, kayıtların hangi kapsayıcıda döneceğini belirtir.
type Container int

const (
	ContainerCollection Container = iota
	ContainerList
)

// Result, bir sorgunun şekillendirilmiş sonucudur.
type Result interface {
	Len() int
	Records() []Record
}

// ----------------------------------------------------------------------------
// Containers
// ----------------------------------------------------------------------------

// Collection, kayıtlar üzerinde yardımcı metotlar sunan varsayılan kapsayıcıdır.
type Collection struct {
	records []Record
}

// NewCollection, verilen kayıtlardan bir Collection oluşturur.
func NewCollection(records []Record) *Collection {
	if records == nil {
		records = []Record{}
	}
	return &Collection{records: records}
}

func (c *Collection) Len() int          { return len(c.records) }
func (c *Collection) Records() []Record { return c.records }

// First, ilk kaydı döndürür. Boş koleksiyonda ok false'tur.
func (c *Collection) First() (Record, bool) {
	if len(c.records) == 0 {
		return nil, false
	}
	return c.records[0], true
}

// Last, son kaydı döndürür.
func (c *Collection) Last() (Record, bool) {
	if len(c.records) == 0 {
		return nil, false
	}
	return c.records[len(c.records)-1], true
}

// At, i. kaydı döndürür.
func (c *Collection) At(i int) (Record, bool) {
	if i < 0 || i >= len(c.records) {
		return nil, false
	}
	return c.records[i], true
}

// Pluck, tüm kayıtlardan tek bir kolonun değerlerini toplar.
func (c *Collection) Pluck(column string) []any {
	values := make([]any, len(c.records))
	for i, r := range c.records {
		values[i] = r[column]
	}
	return values
}

// Filter, fn'in true döndüğü kayıtlardan yeni bir Collection üretir.
func (c *Collection) Filter(fn func(Record) bool) *Collection {
	out := make([]Record, 0, len(c.records))
	for _, r := range c.records {
		if fn(r) {
			out = append(out, r)
		}
	}
	return NewCollection(out)
}

// List, yardımcı metotsuz düz kayıt listesidir.
type List []Record

func (l List) Len() int          { return len(l) }
func (l List) Records() []Record { return l }

// ColumnValues, tek kolonluk sonuçtur.
type ColumnValues struct {
	Name   string
	Values []any
}

func (c *ColumnValues) Len() int { return len(c.Values) }

// Records, her değeri tek kolonlu bir Record olarak döndürür.
func (c *ColumnValues) Records() []Record {
	records := make([]Record, len(c.Values))
	for i, v := range c.Values {
		records[i] = Record{c.Name: v}
	}
	return records
}

// FirstOrNone, sonucun ilk kaydını döndürür. Sıfır satırda hata değil ok=false döner.
func FirstOrNone(r Result) (Record, bool) {
	if r == nil || r.Len() == 0 {
		return nil, false
	}
	return r.Records()[0], true
}

// ----------------------------------------------------------------------------
// Materializers
// ----------------------------------------------------------------------------

// Materializer, *sql.Rows'u bir Result'a dönüştüren stratejidir.
// Rows'u tüketir ama kapatmaz.
type Materializer interface {
	Materialize(rows *sql.Rows) (Result, error)
}

// MaterializerKind, hazır stratejilerden birini seçer.
type MaterializerKind int

const (
	MaterializeStructured MaterializerKind = iota
	MaterializeAssociative
	MaterializeScalarColumn
)

// NewMaterializer, enum'a göre strateji döndürür. column yalnızca scalarColumn için kullanılır;
// boşsa ilk kolon alınır.
func NewMaterializer(kind MaterializerKind, container Container, column string) Materializer {
	switch kind {
	case MaterializeAssociative:
		return recordMaterializer{normalize: false, container: container}
	case MaterializeScalarColumn:
		return columnMaterializer{column: column}
	default:
		return recordMaterializer{normalize: true, container: container}
	}
}

type recordMaterializer struct {
	normalize bool
	container Container
}

func (m recordMaterializer) Materialize(rows *sql.Rows) (Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var kinds []columnKind
	if m.normalize {
		kinds = columnKinds(rows, len(columns))
	}

	records := make([]Record, 0)
	for rows.Next() {
		values, err := scanValues(rows, len(columns))
		if err != nil {
			return nil, err
		}

		record := make(Record, len(columns))
		for i, col := range columns {
			v := values[i]
			if m.normalize {
				v = kinds[i].convert(v)
			}
			record[col] = v
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if m.container == ContainerList {
		return List(records), nil
	}
	return NewCollection(records), nil
}

type columnMaterializer struct {
	column string
}

func (m columnMaterializer) Materialize(rows *sql.Rows) (Result, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("result has no columns")
	}

	index := 0
	if m.column != "" {
		index = columnIndex(columns, m.column)
		if index < 0 {
			return nil, fmt.Errorf("column %q not found in result", m.column)
		}
	}

	kinds := columnKinds(rows, len(columns))
	out := &ColumnValues{Name: columns[index], Values: make([]any, 0)}
	for rows.Next() {
		values, err := scanValues(rows, len(columns))
		if err != nil {
			return nil, err
		}
		out.Values = append(out.Values, kinds[index].convert(values[index]))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanValues(rows *sql.Rows, n int) ([]any, error) {
	values := make([]any, n)
	ptrs := make([]any, n)
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return values, nil
}

// columnIndex, "table.column" biçiminde verilen adı da son parçasıyla eşler.
func columnIndex(columns []string, name string) int {
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	for i, col := range columns {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return -1
}

// columnKind, structured materializer'ın bir kolona uyguladığı dönüşümdür.
type columnKind int

const (
	kindText columnKind = iota
	kindBinary
	kindInt
	kindUint
	kindFloat
	kindBool
)

var (
	nullInt64Type   = reflect.TypeOf(sql.NullInt64{})
	nullInt32Type   = reflect.TypeOf(sql.NullInt32{})
	nullInt16Type   = reflect.TypeOf(sql.NullInt16{})
	nullFloat64Type = reflect.TypeOf(sql.NullFloat64{})
	nullBoolType    = reflect.TypeOf(sql.NullBool{})
)

// columnKinds, kolonların tarama tiplerinden dönüşümleri çıkarır. Sürücü tip
// bilgisi vermiyorsa tüm kolonlar metin kabul edilir.
func columnKinds(rows *sql.Rows, n int) []columnKind {
	kinds := make([]columnKind, n)
	types, err := rows.ColumnTypes()
	if err != nil {
		return kinds
	}
	for i, t := range types {
		if i >= n {
			break
		}
		kinds[i] = kindOf(t.DatabaseTypeName(), t.ScanType())
	}
	return kinds
}

func kindOf(databaseType string, scanType reflect.Type) columnKind {
	switch strings.ToUpper(databaseType) {
	case "BLOB", "BINARY", "VARBINARY", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BYTEA":
		return kindBinary
	case "DECIMAL", "NUMERIC":
		return kindFloat
	}
	if scanType == nil {
		return kindText
	}

	switch scanType {
	case nullInt64Type, nullInt32Type, nullInt16Type:
		return kindInt
	case nullFloat64Type:
		return kindFloat
	case nullBoolType:
		return kindBool
	}

	switch scanType.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return kindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return kindUint
	case reflect.Float32, reflect.Float64:
		return kindFloat
	case reflect.Bool:
		return kindBool
	}
	return kindText
}

// convert, metin olarak gelen değeri kolon tipine çevirir. Çevrilemeyen değer
// string olarak kalır; sürücünün zaten tiplediği değerlere dokunulmaz.
func (k columnKind) convert(v any) any {
	var text string
	switch val := v.(type) {
	case []byte:
		if k == kindBinary {
			return val
		}
		text = string(val)
	case string:
		text = val
	default:
		return v
	}

	var (
		out any
		err error
	)
	switch k {
	case kindInt:
		out, err = cast.ToInt64E(text)
	case kindUint:
		out, err = cast.ToUint64E(text)
	case kindFloat:
		out, err = cast.ToFloat64E(text)
	case kindBool:
		out, err = cast.ToBoolE(text)
	default:
		return text
	}
	if err != nil {
		return text
	}
	return out
}

func emptyResult(o queryOptions) Result {
	if o.column != "" || o.kind == MaterializeScalarColumn {
		return &ColumnValues{Name: o.column, Values: []any{}}
	}
	if o.container == ContainerList {
		return List{}
	}
	return NewCollection(nil)
}

// ----------------------------------------------------------------------------
// Query options
// ----------------------------------------------------------------------------

// QueryOption, Session.Query sonucunun şeklini belirler.
type QueryOption func(*queryOptions)

type queryOptions struct {
	kind      MaterializerKind
	container Container
	column    string
	custom    Materializer
}

// WithShape, structured veya associative şekli seçer.
func WithShape(shape FetchShape) QueryOption {
	return func(o *queryOptions) {
		if shape == ShapeAssociative {
			o.kind = MaterializeAssociative
		} else {
			o.kind = MaterializeStructured
		}
	}
}

// WithContainer, Collection veya List kapsayıcısını seçer.
func WithContainer(c Container) QueryOption {
	return func(o *queryOptions) {
		o.container = c
	}
}

// WithColumn, sonucu tek bir kolonun değerlerine indirger.
func WithColumn(name string) QueryOption {
	return func(o *queryOptions) {
		o.kind = MaterializeScalarColumn
		o.column = name
	}
}

// WithMaterializer, özel bir strateji kullanır.
func WithMaterializer(m Materializer) QueryOption {
	return func(o *queryOptions) {
		o.custom = m
	}
}

func buildQueryOptions(opts []QueryOption) queryOptions {
	var o queryOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o queryOptions) materializer() Materializer {
	if o.custom != nil {
		return o.custom
	}
	return NewMaterializer(o.kind, o.container, o.column)
}
