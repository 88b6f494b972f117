package dialect

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/biyonik/fluentdb/internal/validation"
)

/*
 * ----------------------------------------------------------------------------
 * BASE GRAMMAR
 * ----------------------------------------------------------------------------
 *
 * Üç dialect aynı cümle sırasını paylaşır:
 * SELECT|INSERT|UPDATE|DELETE -> kolonlar/değerler -> FROM -> WHERE -> GROUP BY
 * -> ORDER BY -> LIMIT/OFFSET.
 * Farklar yalnızca tanımlayıcı tırnaklama, yer tutucu biçimi ve
 * "LIMIT olmadan OFFSET" yazımıdır; bunlar BaseGrammar alanlarıyla verilir.
 *
 * @author Ahmet ALTUN
 * @github github.com/biyonik
 * ----------------------------------------------------------------------------
 */

// BaseGrammar, tüm dialectlerin ortak derleme gövdesidir.
type BaseGrammar struct {
	name string

	// quote, doğrulanmış tek bir tanımlayıcı parçasını tırnaklar.
	quote func(part string) string

	// placeholder, 1 tabanlı binding indeksini yer tutucuya çevirir.
	placeholder func(index int) string

	// offsetOnlyLimit, OFFSET tek başına yazılamıyorsa kullanılacak LIMIT değeridir.
	// Boşsa OFFSET tek başına yazılır.
	offsetOnlyLimit string

	// backslashEscapes, string literallerinde \ kaçışının geçerli olup olmadığıdır.
	backslashEscapes bool

	versionQuery string
}

// Name, gramerin adını döndürür.
func (g *BaseGrammar) Name() string {
	return g.name
}

// VersionQuery, sunucu sürümü sorgusunu döndürür.
func (g *BaseGrammar) VersionQuery() string {
	return g.versionQuery
}

// Placeholder, verilen 1 tabanlı indeks için yer tutucuyu döndürür.
func (g *BaseGrammar) Placeholder(index int) string {
	return g.placeholder(index)
}

// Wrap, "column", "table.column" ve "table.*" biçimlerini sarar.
func (g *BaseGrammar) Wrap(identifier string) (string, error) {
	if identifier == "*" {
		return "*", nil
	}

	if prefix, ok := strings.CutSuffix(identifier, ".*"); ok {
		if err := validation.ValidateIdentifier(prefix); err != nil {
			return "", err
		}
		if strings.Contains(prefix, ".") {
			return "", &validation.IdentifierError{Identifier: identifier, Reason: "wildcard must follow a table name"}
		}
		return g.quote(prefix) + ".*", nil
	}

	if err := validation.ValidateIdentifier(identifier); err != nil {
		return "", err
	}

	parts := validation.SplitIdentifier(identifier)
	for i, part := range parts {
		parts[i] = g.quote(part)
	}
	return strings.Join(parts, "."), nil
}

// WrapTable, tablo adını ve varsa aliasını sarar.
func (g *BaseGrammar) WrapTable(table string) (string, error) {
	name, alias, err := validation.ValidateTableWithAlias(table)
	if err != nil {
		return "", err
	}

	wrapped := g.quote(name)
	if alias != "" {
		wrapped += " AS " + g.quote(alias)
	}
	return wrapped, nil
}

// CompileSelect, SELECT sorgusunu derler.
func (g *BaseGrammar) CompileSelect(b QueryBuilder) (string, []any, error) {
	c := g.newCompiler()

	c.sql.WriteString("SELECT ")
	if b.IsDistinct() {
		c.sql.WriteString("DISTINCT ")
	}

	columns, err := g.compileColumns(b.GetColumns())
	if err != nil {
		return "", nil, err
	}
	c.sql.WriteString(columns)

	if err := c.from(b); err != nil {
		return "", nil, err
	}
	if err := c.wheres(b.GetWheres()); err != nil {
		return "", nil, err
	}
	if err := c.groupBy(b.GetGroupBy()); err != nil {
		return "", nil, err
	}
	if err := c.orderBy(b.GetOrders()); err != nil {
		return "", nil, err
	}
	c.limit(b.GetLimit(), b.GetOffset())

	return c.result()
}

// CompileInsert, tekil INSERT sorgusunu derler. Kolonlar alfabetik sıralanır.
func (g *BaseGrammar) CompileInsert(b QueryBuilder, data map[string]any) (string, []any, error) {
	if b.GetTable() == "" {
		return "", nil, ErrNoTable
	}
	if len(data) == 0 {
		return "", nil, ErrNoColumns
	}

	table, err := g.WrapTable(b.GetTable())
	if err != nil {
		return "", nil, err
	}

	c := g.newCompiler()
	keys := sortedKeys(data)

	wrappedCols := make([]string, len(keys))
	placeholders := make([]string, len(keys))
	for i, key := range keys {
		wrapped, err := g.Wrap(key)
		if err != nil {
			return "", nil, err
		}
		wrappedCols[i] = wrapped
		placeholders[i] = c.bind(data[key])
	}

	c.sql.WriteString("INSERT INTO ")
	c.sql.WriteString(table)
	c.sql.WriteString(" (")
	c.sql.WriteString(strings.Join(wrappedCols, ", "))
	c.sql.WriteString(") VALUES (")
	c.sql.WriteString(strings.Join(placeholders, ", "))
	c.sql.WriteString(")")

	return c.result()
}

// CompileUpdate, UPDATE sorgusunu derler. SET bindingleri WHERE bindinglerinden önce gelir.
func (g *BaseGrammar) CompileUpdate(b QueryBuilder, data map[string]any) (string, []any, error) {
	if b.GetTable() == "" {
		return "", nil, ErrNoTable
	}
	if len(data) == 0 {
		return "", nil, ErrNoColumns
	}

	table, err := g.WrapTable(b.GetTable())
	if err != nil {
		return "", nil, err
	}

	c := g.newCompiler()
	keys := sortedKeys(data)

	setParts := make([]string, len(keys))
	for i, key := range keys {
		wrapped, err := g.Wrap(key)
		if err != nil {
			return "", nil, err
		}
		setParts[i] = wrapped + " = " + c.bind(data[key])
	}

	c.sql.WriteString("UPDATE ")
	c.sql.WriteString(table)
	c.sql.WriteString(" SET ")
	c.sql.WriteString(strings.Join(setParts, ", "))

	if err := c.wheres(b.GetWheres()); err != nil {
		return "", nil, err
	}

	return c.result()
}

// CompileDelete, DELETE sorgusunu derler.
func (g *BaseGrammar) CompileDelete(b QueryBuilder) (string, []any, error) {
	if b.GetTable() == "" {
		return "", nil, ErrNoTable
	}

	table, err := g.WrapTable(b.GetTable())
	if err != nil {
		return "", nil, err
	}

	c := g.newCompiler()
	c.sql.WriteString("DELETE FROM ")
	c.sql.WriteString(table)

	if err := c.wheres(b.GetWheres()); err != nil {
		return "", nil, err
	}

	return c.result()
}

// CompileExists, SELECT EXISTS(SELECT 1 ...) sorgusunu derler.
func (g *BaseGrammar) CompileExists(b QueryBuilder) (string, []any, error) {
	c := g.newCompiler()

	c.sql.WriteString("SELECT EXISTS(SELECT 1")
	if err := c.from(b); err != nil {
		return "", nil, err
	}
	if err := c.wheres(b.GetWheres()); err != nil {
		return "", nil, err
	}
	c.sql.WriteString(" LIMIT 1)")

	return c.result()
}

// CompileCount, COUNT sorgusunu derler. ORDER BY, LIMIT ve OFFSET yok sayılır.
// DISTINCT tek kolonda COUNT(DISTINCT col) olur; GROUP BY veya çok kolonlu DISTINCT
// alt sorgu üzerinden sayılır.
func (g *BaseGrammar) CompileCount(b QueryBuilder, column string) (string, []any, error) {
	if len(b.GetGroupBy()) > 0 || (b.IsDistinct() && !singleColumn(b.GetColumns())) {
		return g.compileCountSubquery(b)
	}

	expr := "COUNT(*)"
	if b.IsDistinct() {
		wrapped, err := g.Wrap(b.GetColumns()[0])
		if err != nil {
			return "", nil, err
		}
		expr = "COUNT(DISTINCT " + wrapped + ")"
	} else if column != "" && column != "*" {
		wrapped, err := g.Wrap(column)
		if err != nil {
			return "", nil, err
		}
		expr = "COUNT(" + wrapped + ")"
	}
	return g.compileScalar(b, expr)
}

// compileCountSubquery, gruplu veya çok kolonlu DISTINCT sorguyu alt sorguda sayar.
// Grupta seçilen kolonlar yerine GROUP BY kolonları kullanılır.
func (g *BaseGrammar) compileCountSubquery(b QueryBuilder) (string, []any, error) {
	c := g.newCompiler()

	c.sql.WriteString("SELECT COUNT(*) AS ")
	c.sql.WriteString(g.quote("aggregate"))
	c.sql.WriteString(" FROM (SELECT ")

	selected := b.GetGroupBy()
	if b.IsDistinct() {
		c.sql.WriteString("DISTINCT ")
		selected = b.GetColumns()
	}
	columns, err := g.compileColumns(selected)
	if err != nil {
		return "", nil, err
	}
	c.sql.WriteString(columns)

	if err := c.from(b); err != nil {
		return "", nil, err
	}
	if err := c.wheres(b.GetWheres()); err != nil {
		return "", nil, err
	}
	if err := c.groupBy(b.GetGroupBy()); err != nil {
		return "", nil, err
	}

	c.sql.WriteString(") AS ")
	c.sql.WriteString(g.quote("counted"))

	return c.result()
}

// singleColumn, listenin tek bir düz kolon olup olmadığını bildirir.
func singleColumn(columns []string) bool {
	if len(columns) != 1 {
		return false
	}
	col := columns[0]
	if col == "*" || strings.HasSuffix(col, ".*") {
		return false
	}
	return validation.ValidateIdentifier(col) == nil
}

// CompileAggregate, MIN, MAX, AVG, SUM sorgularını derler.
func (g *BaseGrammar) CompileAggregate(b QueryBuilder, fn, column string) (string, []any, error) {
	fn = strings.ToUpper(strings.TrimSpace(fn))
	switch fn {
	case "MIN", "MAX", "AVG", "SUM":
	default:
		return "", nil, ErrAggregate
	}
	if column == "" {
		return "", nil, ErrNoColumns
	}

	wrapped, err := g.Wrap(column)
	if err != nil {
		return "", nil, err
	}
	return g.compileScalar(b, fn+"("+wrapped+")")
}

func (g *BaseGrammar) compileScalar(b QueryBuilder, expr string) (string, []any, error) {
	c := g.newCompiler()

	c.sql.WriteString("SELECT ")
	c.sql.WriteString(expr)
	c.sql.WriteString(" AS ")
	c.sql.WriteString(g.quote("aggregate"))

	if err := c.from(b); err != nil {
		return "", nil, err
	}
	if err := c.wheres(b.GetWheres()); err != nil {
		return "", nil, err
	}

	return c.result()
}

// compileColumns, SELECT kolon listesini derler.
// Desteklenen ifadeler: "col", "t.col", "t.*", "col AS a", "COUNT(*) AS n".
func (g *BaseGrammar) compileColumns(columns []string) (string, error) {
	if len(columns) == 0 {
		return "*", nil
	}

	wrapped := make([]string, len(columns))
	for i, col := range columns {
		w, err := g.wrapColumnExpr(col)
		if err != nil {
			return "", err
		}
		wrapped[i] = w
	}
	return strings.Join(wrapped, ", "), nil
}

var (
	columnAliasRegex = regexp.MustCompile(`(?i)^(.+?)\s+(?:as\s+)?([a-zA-Z_][a-zA-Z0-9_]*)$`)
	aggregateRegex   = regexp.MustCompile(`(?i)^(COUNT|MIN|MAX|AVG|SUM)\(\s*(DISTINCT\s+)?([^()\s]+)\s*\)$`)
)

func (g *BaseGrammar) wrapColumnExpr(expr string) (string, error) {
	if m := columnAliasRegex.FindStringSubmatch(expr); m != nil && !strings.EqualFold(m[1], "distinct") {
		inner, err := g.wrapColumnTerm(m[1])
		if err != nil {
			return "", err
		}
		return inner + " AS " + g.quote(m[2]), nil
	}
	return g.wrapColumnTerm(expr)
}

func (g *BaseGrammar) wrapColumnTerm(term string) (string, error) {
	if m := aggregateRegex.FindStringSubmatch(term); m != nil {
		inner, err := g.Wrap(m[3])
		if err != nil {
			return "", err
		}
		distinct := ""
		if m[2] != "" {
			distinct = "DISTINCT "
		}
		return strings.ToUpper(m[1]) + "(" + distinct + inner + ")", nil
	}
	return g.Wrap(term)
}

func (g *BaseGrammar) newCompiler() *compiler {
	return &compiler{g: g, args: make([]any, 0)}
}

// ----------------------------------------------------------------------------
// compiler: tek bir derleme çağrısının durumu
// ----------------------------------------------------------------------------

type compiler struct {
	g    *BaseGrammar
	sql  strings.Builder
	args []any
}

// bind, değeri binding listesine ekler ve yer tutucusunu döndürür.
func (c *compiler) bind(v any) string {
	c.args = append(c.args, v)
	return c.g.placeholder(len(c.args))
}

func (c *compiler) result() (string, []any, error) {
	return c.sql.String(), c.args, nil
}

func (c *compiler) from(b QueryBuilder) error {
	if b.GetTable() == "" {
		return ErrNoTable
	}
	table, err := c.g.WrapTable(b.GetTable())
	if err != nil {
		return err
	}
	c.sql.WriteString(" FROM ")
	c.sql.WriteString(table)
	return nil
}

func (c *compiler) wheres(wheres []WhereClause) error {
	if len(wheres) == 0 {
		return nil
	}

	c.sql.WriteString(" WHERE ")
	for i, where := range wheres {
		if i > 0 {
			c.sql.WriteString(" ")
			c.sql.WriteString(where.Boolean.String())
			c.sql.WriteString(" ")
		}
		if err := c.where(where, len(wheres) > 1); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) where(where WhereClause, grouped bool) error {
	if where.Type == WhereTypeRaw {
		fragment, err := c.rebind(where.Raw, where.Bindings)
		if err != nil {
			return err
		}
		if grouped {
			fragment = "(" + fragment + ")"
		}
		c.sql.WriteString(fragment)
		return nil
	}

	column, err := c.g.Wrap(where.Column)
	if err != nil {
		return err
	}

	switch where.Type {
	case WhereTypeBasic:
		op, err := validation.NormalizeOperator(where.Operator)
		if err != nil {
			return err
		}
		c.sql.WriteString(column + " " + op + " " + c.bind(where.Value))
	case WhereTypeIn, WhereTypeNotIn:
		if len(where.Values) == 0 {
			return ErrEmptyWhereIn
		}
		placeholders := make([]string, len(where.Values))
		for i, v := range where.Values {
			placeholders[i] = c.bind(v)
		}
		op := "IN"
		if where.Type == WhereTypeNotIn {
			op = "NOT IN"
		}
		c.sql.WriteString(column + " " + op + " (" + strings.Join(placeholders, ", ") + ")")
	case WhereTypeNull:
		c.sql.WriteString(column + " IS NULL")
	case WhereTypeNotNull:
		c.sql.WriteString(column + " IS NOT NULL")
	default:
		return &DialectError{Message: "unknown where type: " + where.Type.String()}
	}
	return nil
}

// rebind, ham parçadaki tırnak dışı ? işaretlerini dialect yer tutucularıyla
// değiştirir ve bindingleri sırasıyla ekler.
func (c *compiler) rebind(fragment string, bindings []any) (string, error) {
	positions := placeholderPositions(fragment, c.g.backslashEscapes)
	if len(positions) != len(bindings) {
		return "", ErrBindingMismatch
	}

	var out strings.Builder
	last := 0
	for i, pos := range positions {
		out.WriteString(fragment[last:pos])
		out.WriteString(c.bind(bindings[i]))
		last = pos + 1
	}
	out.WriteString(fragment[last:])
	return out.String(), nil
}

// CountPlaceholders, ham parçadaki tırnak dışı ? işaretlerini sayar.
// backslashEscapes true ise string içindeki \ sonraki karakteri kaçırır (MySQL).
func CountPlaceholders(fragment string, backslashEscapes bool) int {
	return len(placeholderPositions(fragment, backslashEscapes))
}

func placeholderPositions(fragment string, backslashEscapes bool) []int {
	var (
		positions []int
		quote     rune
		escaped   bool
	)
	for i, r := range fragment {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			if r == '\\' && backslashEscapes && quote != '`' {
				escaped = true
			} else if r == quote {
				quote = 0
			}
		case r == '\'' || r == '"' || r == '`':
			quote = r
		case r == '?':
			positions = append(positions, i)
		}
	}
	return positions
}

func (c *compiler) groupBy(groups []string) error {
	if len(groups) == 0 {
		return nil
	}
	wrapped := make([]string, len(groups))
	for i, col := range groups {
		w, err := c.g.Wrap(col)
		if err != nil {
			return err
		}
		wrapped[i] = w
	}
	c.sql.WriteString(" GROUP BY ")
	c.sql.WriteString(strings.Join(wrapped, ", "))
	return nil
}

func (c *compiler) orderBy(orders []OrderClause) error {
	if len(orders) == 0 {
		return nil
	}
	parts := make([]string, len(orders))
	for i, order := range orders {
		if !order.Direction.IsValid() {
			return ErrDirection
		}
		w, err := c.g.Wrap(order.Column)
		if err != nil {
			return err
		}
		parts[i] = w + " " + string(order.Direction)
	}
	c.sql.WriteString(" ORDER BY ")
	c.sql.WriteString(strings.Join(parts, ", "))
	return nil
}

// limit, LIMIT/OFFSET yazar. OFFSET 0 yazılmaz.
func (c *compiler) limit(limit, offset *int) {
	if limit != nil {
		c.sql.WriteString(" LIMIT " + strconv.Itoa(*limit))
	}
	if offset == nil || *offset == 0 {
		return
	}
	if limit == nil && c.g.offsetOnlyLimit != "" {
		c.sql.WriteString(" LIMIT " + c.g.offsetOnlyLimit)
	}
	c.sql.WriteString(" OFFSET " + strconv.Itoa(*offset))
}

func sortedKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
