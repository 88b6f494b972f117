package fluentdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/biyonik/fluentdb/dialect"
	"github.com/biyonik/fluentdb/internal/orderspec"
)

// Operation, Render'ın derleyeceği ifade türüdür.
type Operation int

const (
	OpSelect Operation = iota
	OpInsert
	OpUpdate
	OpDelete
	OpCount
	OpMin
	OpMax
	OpAvg
	OpSum
)

func (o Operation) String() string {
	names := [...]string{"select", "insert", "update", "delete", "count", "min", "max", "avg", "sum"}
	if int(o) >= 0 && int(o) < len(names) {
		return names[o]
	}
	return "unknown"
}

func (o Operation) aggregate() string {
	switch o {
	case OpMin:
		return "MIN"
	case OpMax:
		return "MAX"
	case OpAvg:
		return "AVG"
	case OpSum:
		return "SUM"
	}
	return ""
}

// Query, SQL ifadelerini akıcı bir arayüzle oluşturur ve Session üzerinden çalıştırır.
//
// Zincir metotları aynı *Query'yi değiştirip döndürür. Hatalı girdi (geçersiz kolon,
// negatif limit, ...) çağrı anında Err()'e yazılır ve her terminal metot bağlantıya
// dokunmadan bu hatayı döndürür. Dallanmak için Clone kullanılır.
// Query örnekleri eşzamanlı kullanım için güvenli değildir.
//
// Genel kullanım örneği:
//
//	rec, ok, err := s.Table("users").
//	    Select("id, name").
//	    Where(map[string]any{"id": 5}).
//	    First()
//
// @author Ahmet ALTUN
// @github github.com/biyonik
// @linkedin linkedin.com/in/biyonik
// @email ahmet.altun60@gmail.com
type Query struct {
	session *Session
	grammar dialect.Grammar

	table    string
	columns  []string
	distinct bool

	wheres  []dialect.WhereClause
	orders  []dialect.OrderClause
	groupBy []string

	limit  *int
	offset *int

	values map[string]any
	fetch  []QueryOption

	// Accumulated error
	err error
}

func newQuery(s *Session, g dialect.Grammar, table string) *Query {
	q := &Query{
		session: s,
		grammar: g,
		table:   strings.TrimSpace(table),
	}
	if q.table == "" {
		q.setErr(&ValidationError{Context: "table", Reason: "table name cannot be empty"})
	}
	return q
}

func (q *Query) setErr(err error) {
	if q.err == nil {
		q.err = err
	}
}

// Err, biriken ilk hatayı döndürür.
func (q *Query) Err() error {
	return q.err
}

// Select, seçilecek kolonları belirler ve öncekilerin yerine geçer.
// "id, name" biçiminde virgülle ayrılmış string veya ayrı argümanlar kabul edilir.
func (q *Query) Select(columns ...string) *Query {
	q.columns = splitList(columns)
	return q
}

// Distinct, sorguyu DISTINCT olarak işaretler.
func (q *Query) Distinct() *Query {
	q.distinct = true
	return q
}

// Where, AND ile bağlanan bir koşul ekler.
//
// Kabul edilen biçimler:
//
//	q.Where("age > ? AND age < ?", 18, 65)            // ham SQL parçası
//	q.Where(map[string]any{"id": 5, "active": true})   // kolon = ? (anahtar sırasıyla)
//	q.Where([]any{">=", "age", 18})                   // [operatör, kolon, değer]
//	q.Where(fluentdb.In("id", 1, 2, 3))               // Cond
//
// nil, "" ve boş map hiçbir şey eklemez.
func (q *Query) Where(cond any, bindings ...any) *Query {
	return q.addWhere(cond, bindings, dialect.WhereBooleanAnd)
}

// OrWhere, OR ile bağlanan bir koşul ekler.
func (q *Query) OrWhere(cond any, bindings ...any) *Query {
	return q.addWhere(cond, bindings, dialect.WhereBooleanOr)
}

func (q *Query) addWhere(cond any, bindings []any, boolean dialect.WhereBoolean) *Query {
	clauses, err := buildConditions(cond, bindings, boolean)
	if err != nil {
		q.setErr(err)
		return q
	}
	q.wheres = append(q.wheres, clauses...)
	return q
}

// WhereIn, WHERE IN koşulu ekler.
func (q *Query) WhereIn(column string, values ...any) *Query {
	return q.Where(In(column, values...))
}

// WhereNotIn, WHERE NOT IN koşulu ekler.
func (q *Query) WhereNotIn(column string, values ...any) *Query {
	return q.Where(NotIn(column, values...))
}

// WhereNull, WHERE IS NULL koşulu ekler.
func (q *Query) WhereNull(column string) *Query {
	return q.Where(Eq(column, nil))
}

// WhereNotNull, WHERE IS NOT NULL koşulu ekler.
func (q *Query) WhereNotNull(column string) *Query {
	return q.Where(Ne(column, nil))
}

// Order, "name asc, created_at desc" biçimindeki tanımı ORDER BY'a ekler.
// Yön verilmezse ASC kabul edilir.
func (q *Query) Order(spec string) *Query {
	terms, err := orderspec.Parse(spec)
	if err != nil {
		q.setErr(&ValidationError{Context: "order", Value: spec, Reason: "expected \"column [asc|desc], ...\"", Err: err})
		return q
	}
	for _, t := range terms {
		q.orders = append(q.orders, dialect.OrderClause{
			Column:    t.Column,
			Direction: dialect.OrderDirection(t.Direction),
		})
	}
	return q
}

// OrderBy, tek bir ORDER BY ifadesi ekler.
func (q *Query) OrderBy(column, direction string) *Query {
	dir := dialect.OrderDirection(strings.ToUpper(strings.TrimSpace(direction)))
	if direction == "" {
		dir = dialect.OrderAsc
	}
	if !dir.IsValid() {
		q.setErr(&ValidationError{Context: "order direction", Value: direction, Reason: "must be ASC or DESC"})
		return q
	}
	q.orders = append(q.orders, dialect.OrderClause{Column: column, Direction: dir})
	return q
}

// Group, GROUP BY kolonlarını ekler.
func (q *Query) Group(columns ...string) *Query {
	q.groupBy = append(q.groupBy, splitList(columns)...)
	return q
}

// Limit, LIMIT değerini belirler. Tamsayı veya sayısal string kabul eder.
// Limit(0) sıfır satır demektir; nil veya "" limiti kaldırır.
func (q *Query) Limit(n any) *Query {
	v, ok, err := toCount("limit", n)
	if err != nil {
		q.setErr(err)
		return q
	}
	if !ok {
		q.limit = nil
		return q
	}
	q.limit = &v
	return q
}

// NoLimit, LIMIT'i kaldırır.
func (q *Query) NoLimit() *Query {
	q.limit = nil
	return q
}

// Offset, OFFSET değerini belirler. Offset(0) hiçbir şey yazmaz.
func (q *Query) Offset(n any) *Query {
	v, ok, err := toCount("offset", n)
	if err != nil {
		q.setErr(err)
		return q
	}
	if !ok {
		q.offset = nil
		return q
	}
	q.offset = &v
	return q
}

// Page, sayfa bazlı limit ve offset belirler (page 1'den başlar).
func (q *Query) Page(page, perPage int) *Query {
	if page < 1 {
		page = 1
	}
	return q.Limit(perPage).Offset((page - 1) * perPage)
}

// Values, INSERT ve UPDATE için kolon -> değer eşlemesini belirler.
func (q *Query) Values(values map[string]any) *Query {
	q.values = values
	return q
}

// Fetch, All ve First sonuçlarının şeklini belirler.
//
//	q.Fetch(fluentdb.WithShape(fluentdb.ShapeAssociative), fluentdb.WithContainer(fluentdb.ContainerList))
func (q *Query) Fetch(opts ...QueryOption) *Query {
	q.fetch = opts
	return q
}

// Clone, Query'nin bağımsız bir kopyasını oluşturur.
func (q *Query) Clone() *Query {
	clone := &Query{
		session:  q.session,
		grammar:  q.grammar,
		table:    q.table,
		distinct: q.distinct,
		err:      q.err,
	}

	clone.columns = append([]string(nil), q.columns...)
	clone.wheres = append([]dialect.WhereClause(nil), q.wheres...)
	clone.orders = append([]dialect.OrderClause(nil), q.orders...)
	clone.groupBy = append([]string(nil), q.groupBy...)
	clone.fetch = append([]QueryOption(nil), q.fetch...)

	if q.limit != nil {
		v := *q.limit
		clone.limit = &v
	}
	if q.offset != nil {
		v := *q.offset
		clone.offset = &v
	}
	if q.values != nil {
		clone.values = make(map[string]any, len(q.values))
		for k, v := range q.values {
			clone.values[k] = v
		}
	}
	return clone
}

// ----------------------------------------------------------------------------
// dialect.QueryBuilder
// ----------------------------------------------------------------------------

// GetTable, önek eklenmiş tablo adını döndürür.
func (q *Query) GetTable() string {
	if q.session != nil && q.table != "" {
		return q.session.Prefix() + q.table
	}
	return q.table
}

func (q *Query) GetColumns() []string             { return q.columns }
func (q *Query) IsDistinct() bool                 { return q.distinct }
func (q *Query) GetWheres() []dialect.WhereClause { return q.wheres }
func (q *Query) GetOrders() []dialect.OrderClause { return q.orders }
func (q *Query) GetGroupBy() []string             { return q.groupBy }
func (q *Query) GetLimit() *int                   { return q.limit }
func (q *Query) GetOffset() *int                  { return q.offset }

// ----------------------------------------------------------------------------
// Rendering
// ----------------------------------------------------------------------------

// Render, sorguyu verilen işlem için (sql, bindings) çiftine derler. Saftır: aynı
// durumda iki çağrı aynı sonucu verir. Min/Max/Avg/Sum için Select ile verilen ilk kolon kullanılır.
func (q *Query) Render(op Operation) (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}

	g := q.grammar
	if g == nil && q.session != nil {
		s := q.session
		s.mu.Lock()
		g = s.grammar
		s.mu.Unlock()
	}
	if g == nil {
		return "", nil, &ConfigError{Field: "dialect", Reason: "no grammar; connect first or use WithDialect"}
	}

	column := ""
	if op.aggregate() != "" && len(q.columns) > 0 {
		column = q.columns[0]
	}
	return q.render(g, op, column)
}

// ToSQL, SELECT sorgusunu derler.
func (q *Query) ToSQL() (string, []any, error) {
	return q.Render(OpSelect)
}

func (q *Query) render(g dialect.Grammar, op Operation, column string) (string, []any, error) {
	var (
		sqlStr string
		args   []any
		err    error
	)

	switch op {
	case OpSelect:
		sqlStr, args, err = g.CompileSelect(q)
	case OpInsert, OpUpdate:
		if len(q.values) == 0 {
			return "", nil, &ValidationError{Context: "values", Reason: op.String() + " requires a non-empty mapping"}
		}
		if op == OpInsert {
			sqlStr, args, err = g.CompileInsert(q, q.values)
		} else {
			sqlStr, args, err = g.CompileUpdate(q, q.values)
		}
	case OpDelete:
		sqlStr, args, err = g.CompileDelete(q)
	case OpCount:
		sqlStr, args, err = g.CompileCount(q, column)
	case OpMin, OpMax, OpAvg, OpSum:
		if column == "" {
			return "", nil, &ValidationError{Context: op.String(), Reason: "an aggregate column is required"}
		}
		sqlStr, args, err = g.CompileAggregate(q, op.aggregate(), column)
	default:
		return "", nil, &ValidationError{Context: "operation", Value: op.String(), Reason: "unsupported operation"}
	}

	if err != nil {
		return "", nil, newValidationError(op.String(), "", err)
	}
	return sqlStr, args, nil
}

// prepare, terminal metotların ortak ön adımıdır: biriken hata, ardından
// bağlantı gerektirmeyen doğrulama, en son gramer ve derleme.
func (q *Query) prepare(ctx context.Context, op Operation, column string) (string, []any, error) {
	if q.err != nil {
		return "", nil, q.err
	}
	if (op == OpInsert || op == OpUpdate) && len(q.values) == 0 {
		return "", nil, &ValidationError{Context: "values", Reason: op.String() + " requires a non-empty mapping"}
	}
	if q.session == nil {
		return "", nil, &ConnectionError{Err: ErrNoConnection}
	}

	g := q.grammar
	if g == nil {
		var err error
		if g, err = q.session.grammarFor(ctx); err != nil {
			return "", nil, err
		}
	}
	return q.render(g, op, column)
}

// ----------------------------------------------------------------------------
// Terminals
// ----------------------------------------------------------------------------

// AllContext, sorguyu çalıştırır ve tüm kayıtları döndürür.
// Başarısız sorguda boş sonuç döner (fail-fast kurulu değilse).
func (q *Query) AllContext(ctx context.Context) (Result, error) {
	sqlStr, args, err := q.prepare(ctx, OpSelect, "")
	if err != nil {
		return nil, err
	}
	return q.session.Query(ctx, sqlStr, args, q.fetch...)
}

// All, AllContext'in context.Background() versiyonudur.
func (q *Query) All() (Result, error) {
	return q.AllContext(context.Background())
}

// FirstContext, LIMIT 1 ile ilk kaydı döndürür. Kayıt yoksa ok false'tur.
func (q *Query) FirstContext(ctx context.Context) (Record, bool, error) {
	res, err := q.Clone().Limit(1).AllContext(ctx)
	if err != nil {
		return nil, false, err
	}
	rec, ok := FirstOrNone(res)
	return rec, ok, nil
}

// First, FirstContext'in context.Background() versiyonudur.
func (q *Query) First() (Record, bool, error) {
	return q.FirstContext(context.Background())
}

// ColumnContext, tek bir kolonun değerlerini sırayla döndürür.
func (q *Query) ColumnContext(ctx context.Context, column string) ([]any, error) {
	c := q.Clone().Select(column)
	sqlStr, args, err := c.prepare(ctx, OpSelect, "")
	if err != nil {
		return nil, err
	}

	res, err := q.session.Query(ctx, sqlStr, args, WithColumn(""))
	if err != nil {
		return nil, err
	}
	return res.(*ColumnValues).Values, nil
}

// Column, ColumnContext'in context.Background() versiyonudur.
func (q *Query) Column(column string) ([]any, error) {
	return q.ColumnContext(context.Background(), column)
}

// CountContext, eşleşen satır sayısını döndürür. ORDER BY, LIMIT ve OFFSET yok sayılır.
// Sonuç yoksa veya sorgu başarısızsa 0 döner.
func (q *Query) CountContext(ctx context.Context) (int64, error) {
	v, armed, err := q.scalar(ctx, OpCount, "")
	if err != nil || v == nil {
		return 0, err
	}
	n, castErr := cast.ToInt64E(v)
	if castErr != nil {
		return 0, q.scalarFailed(armed, fmt.Errorf("count is not an integer: %w", castErr))
	}
	return n, nil
}

// Count, CountContext'in context.Background() versiyonudur.
func (q *Query) Count() (int64, error) {
	return q.CountContext(context.Background())
}

func (q *Query) MinContext(ctx context.Context, column string) (sql.NullFloat64, error) {
	return q.aggregate(ctx, OpMin, column)
}

func (q *Query) Min(column string) (sql.NullFloat64, error) {
	return q.MinContext(context.Background(), column)
}

func (q *Query) MaxContext(ctx context.Context, column string) (sql.NullFloat64, error) {
	return q.aggregate(ctx, OpMax, column)
}

func (q *Query) Max(column string) (sql.NullFloat64, error) {
	return q.MaxContext(context.Background(), column)
}

func (q *Query) AvgContext(ctx context.Context, column string) (sql.NullFloat64, error) {
	return q.aggregate(ctx, OpAvg, column)
}

func (q *Query) Avg(column string) (sql.NullFloat64, error) {
	return q.AvgContext(context.Background(), column)
}

func (q *Query) SumContext(ctx context.Context, column string) (sql.NullFloat64, error) {
	return q.aggregate(ctx, OpSum, column)
}

func (q *Query) Sum(column string) (sql.NullFloat64, error) {
	return q.SumContext(context.Background(), column)
}

// MinValueContext, MIN sonucunu sürücü değeriyle döndürür; metin ve tarih kolonları
// için Min yerine kullanılır. Eşleşen satır yoksa veya sorgu başarısızsa nil döner.
func (q *Query) MinValueContext(ctx context.Context, column string) (any, error) {
	v, _, err := q.scalar(ctx, OpMin, column)
	return v, err
}

func (q *Query) MinValue(column string) (any, error) {
	return q.MinValueContext(context.Background(), column)
}

// MaxValueContext, MAX sonucunu sürücü değeriyle döndürür.
func (q *Query) MaxValueContext(ctx context.Context, column string) (any, error) {
	v, _, err := q.scalar(ctx, OpMax, column)
	return v, err
}

func (q *Query) MaxValue(column string) (any, error) {
	return q.MaxValueContext(context.Background(), column)
}

// aggregate, MIN/MAX/AVG/SUM sonucunu sayıya çevirir. Eşleşen satır yoksa,
// sorgu başarısızsa veya değer sayı değilse NULL (Valid=false) döner.
func (q *Query) aggregate(ctx context.Context, op Operation, column string) (sql.NullFloat64, error) {
	v, armed, err := q.scalar(ctx, op, column)
	if err != nil || v == nil {
		return sql.NullFloat64{}, err
	}
	f, castErr := cast.ToFloat64E(v)
	if castErr != nil {
		return sql.NullFloat64{}, q.scalarFailed(armed, fmt.Errorf("aggregate is not numeric: %w", castErr))
	}
	return sql.NullFloat64{Float64: f, Valid: true}, nil
}

// scalar, tek satır tek kolonluk sonucu döndürür; satır yoksa nil. armed, hit
// başladığında fail-fast'in kurulu olup olmadığıdır.
func (q *Query) scalar(ctx context.Context, op Operation, column string) (any, bool, error) {
	sqlStr, args, err := q.prepare(ctx, op, column)
	if err != nil {
		return nil, false, err
	}

	res, armed, err := q.session.query(ctx, sqlStr, args, []QueryOption{WithColumn("")})
	if err != nil {
		return nil, armed, err
	}
	values := res.(*ColumnValues).Values
	if len(values) == 0 {
		return nil, armed, nil
	}
	return values[0], armed, nil
}

// scalarFailed, çevrilemeyen skaler sonucu son hit'in hatası olarak kaydeder.
// Hata yalnızca fail-fast kuruluysa döner.
func (q *Query) scalarFailed(armed bool, cause error) error {
	qerr := &QueryError{Query: q.session.LastQuery(), Bindings: q.session.LastBindings(), Err: cause}
	q.session.failLast(qerr)
	if armed {
		return qerr
	}
	return nil
}

// ExistsContext, sorguya uyan en az bir satır olup olmadığını döndürür.
func (q *Query) ExistsContext(ctx context.Context) (bool, error) {
	if q.err != nil {
		return false, q.err
	}
	if q.session == nil {
		return false, &ConnectionError{Err: ErrNoConnection}
	}

	g := q.grammar
	if g == nil {
		var err error
		if g, err = q.session.grammarFor(ctx); err != nil {
			return false, err
		}
	}

	sqlStr, args, err := g.CompileExists(q)
	if err != nil {
		return false, newValidationError("exists", "", err)
	}

	res, err := q.session.Query(ctx, sqlStr, args, WithColumn(""))
	if err != nil {
		return false, err
	}
	values := res.(*ColumnValues).Values
	if len(values) == 0 {
		return false, nil
	}
	return cast.ToBool(values[0]), nil
}

// Exists, ExistsContext'in context.Background() versiyonudur.
func (q *Query) Exists() (bool, error) {
	return q.ExistsContext(context.Background())
}

// InsertContext, tek bir kayıt ekler. values nil ise Values ile verilen eşleme kullanılır.
// Eklenen id Session.LastID ile okunur.
func (q *Query) InsertContext(ctx context.Context, values map[string]any) (bool, error) {
	if values != nil {
		q.values = values
	}
	return q.execute(ctx, OpInsert)
}

// Insert, InsertContext'in context.Background() versiyonudur.
func (q *Query) Insert(values map[string]any) (bool, error) {
	return q.InsertContext(context.Background(), values)
}

// UpdateContext, WHERE koşullarına uyan kayıtları günceller.
func (q *Query) UpdateContext(ctx context.Context, values map[string]any) (bool, error) {
	if values != nil {
		q.values = values
	}
	return q.execute(ctx, OpUpdate)
}

// Update, UpdateContext'in context.Background() versiyonudur.
func (q *Query) Update(values map[string]any) (bool, error) {
	return q.UpdateContext(context.Background(), values)
}

// DeleteContext, WHERE koşullarına uyan kayıtları siler.
func (q *Query) DeleteContext(ctx context.Context) (bool, error) {
	return q.execute(ctx, OpDelete)
}

// Delete, DeleteContext'in context.Background() versiyonudur.
func (q *Query) Delete() (bool, error) {
	return q.DeleteContext(context.Background())
}

func (q *Query) execute(ctx context.Context, op Operation) (bool, error) {
	sqlStr, args, err := q.prepare(ctx, op, "")
	if err != nil {
		return false, err
	}
	return q.session.Execute(ctx, sqlStr, args...)
}

// ----------------------------------------------------------------------------
// helpers
// ----------------------------------------------------------------------------

// toCount, limit/offset girdisini negatif olmayan tamsayıya çevirir.
// nil veya boş string "değer yok" demektir (ok=false).
func toCount(context string, n any) (int, bool, error) {
	switch v := n.(type) {
	case nil:
		return 0, false, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, false, nil
		}
		n = strings.TrimSpace(v)
	case bool:
		return 0, false, &ValidationError{Context: context, Value: fmt.Sprint(v), Reason: "must be an integer"}
	}

	v, err := cast.ToIntE(n)
	if err != nil {
		return 0, false, &ValidationError{Context: context, Value: fmt.Sprint(n), Reason: "must be an integer", Err: err}
	}
	if v < 0 {
		return 0, false, &ValidationError{Context: context, Value: fmt.Sprint(n), Reason: "must not be negative"}
	}
	return v, true, nil
}

// splitList, "a, b" ve "a", "b" biçimlerini tek listeye açar. Parantez içindeki
// virgüller bölünmez.
func splitList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		depth, start := 0, 0
		for i, r := range item {
			switch r {
			case '(':
				depth++
			case ')':
				depth--
			case ',':
				if depth == 0 {
					if part := strings.TrimSpace(item[start:i]); part != "" {
						out = append(out, part)
					}
					start = i + 1
				}
			}
		}
		if part := strings.TrimSpace(item[start:]); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 1 && out[0] == "*" {
		return nil
	}
	return out
}
