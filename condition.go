package fluentdb

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/biyonik/fluentdb/dialect"
	"github.com/biyonik/fluentdb/internal/validation"
)

// Cond, yapılandırılmış tek bir WHERE koşuludur.
//
// Örnek:
//
//	q.Where(fluentdb.Cond{Op: ">=", Column: "age", Value: 18})
//	q.Where(fluentdb.In("status", "active", "pending"))
type Cond struct {
	Op     string
	Column string
	Value  any
}

func Eq(column string, value any) Cond { return Cond{Op: "=", Column: column, Value: value} }
func Ne(column string, value any) Cond { return Cond{Op: "!=", Column: column, Value: value} }
func Gt(column string, value any) Cond { return Cond{Op: ">", Column: column, Value: value} }
func Gte(column string, value any) Cond { return Cond{Op: ">=", Column: column, Value: value} }
func Lt(column string, value any) Cond { return Cond{Op: "<", Column: column, Value: value} }
func Lte(column string, value any) Cond { return Cond{Op: "<=", Column: column, Value: value} }
func Like(column, pattern string) Cond { return Cond{Op: "LIKE", Column: column, Value: pattern} }
func In(column string, values ...any) Cond { return Cond{Op: "IN", Column: column, Value: values} }
func NotIn(column string, values ...any) Cond { return Cond{Op: "NOT IN", Column: column, Value: values} }

// buildConditions, Where'e verilen koşulu WHERE cümleciklerine çevirir.
// nil, boş string ve boş map hiçbir cümlecik üretmez.
func buildConditions(cond any, bindings []any, boolean dialect.WhereBoolean) ([]dialect.WhereClause, error) {
	if cond == nil {
		return nil, nil
	}

	if _, isString := cond.(string); !isString && len(bindings) > 0 {
		return nil, &ValidationError{
			Context: "where",
			Reason:  "bindings are only accepted with a string fragment",
		}
	}

	switch c := cond.(type) {
	case string:
		return rawCondition(c, bindings, boolean)
	case Cond:
		return single(c, boolean)
	case *Cond:
		if c == nil {
			return nil, nil
		}
		return single(*c, boolean)
	case []Cond:
		clauses := make([]dialect.WhereClause, 0, len(c))
		for i, item := range c {
			b := boolean
			if i > 0 {
				b = dialect.WhereBooleanAnd
			}
			clause, err := condClause(item, b)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, clause)
		}
		return clauses, nil
	case []any:
		return tripleCondition(c, boolean)
	case []string:
		triple := make([]any, len(c))
		for i, v := range c {
			triple[i] = v
		}
		return tripleCondition(triple, boolean)
	case map[string]any:
		return mapCondition(c, boolean)
	}

	rv := reflect.ValueOf(cond)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return mapCondition(m, boolean)
	}

	return nil, &ValidationError{
		Context: "where",
		Value:   fmt.Sprintf("%T", cond),
		Reason:  "unsupported condition type",
	}
}

func rawCondition(fragment string, bindings []any, boolean dialect.WhereBoolean) ([]dialect.WhereClause, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return nil, nil
	}

	// Dialect henüz belli olmayabilir; kesin kontrol derleme sırasında yapılır.
	n := dialect.CountPlaceholders(fragment, false)
	if n != len(bindings) && dialect.CountPlaceholders(fragment, true) != len(bindings) {
		return nil, &ValidationError{
			Context: "where",
			Value:   fragment,
			Reason:  fmt.Sprintf("fragment has %d placeholders but %d bindings were given", n, len(bindings)),
		}
	}

	return []dialect.WhereClause{{
		Type:     dialect.WhereTypeRaw,
		Boolean:  boolean,
		Raw:      fragment,
		Bindings: bindings,
	}}, nil
}

// mapCondition, her kaydı "kolon = ?" koşuluna çevirir. Anahtarlar alfabetik sıralanır.
func mapCondition(m map[string]any, boolean dialect.WhereBoolean) ([]dialect.WhereClause, error) {
	if len(m) == 0 {
		return nil, nil
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	clauses := make([]dialect.WhereClause, 0, len(keys))
	for i, k := range keys {
		b := boolean
		if i > 0 {
			b = dialect.WhereBooleanAnd
		}
		clause, err := condClause(Cond{Op: "=", Column: k, Value: m[k]}, b)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
	}
	return clauses, nil
}

// tripleCondition, [operatör, kolon, değer] üçlüsünü işler.
func tripleCondition(triple []any, boolean dialect.WhereBoolean) ([]dialect.WhereClause, error) {
	if len(triple) == 0 {
		return nil, nil
	}
	if len(triple) != 3 {
		return nil, &ValidationError{
			Context: "where",
			Value:   fmt.Sprint(triple...),
			Reason:  "condition must be [operator, column, value]",
		}
	}

	op, okOp := triple[0].(string)
	column, okCol := triple[1].(string)
	if !okOp || !okCol {
		return nil, &ValidationError{
			Context: "where",
			Reason:  "operator and column must be strings",
		}
	}
	return single(Cond{Op: op, Column: column, Value: triple[2]}, boolean)
}

func single(c Cond, boolean dialect.WhereBoolean) ([]dialect.WhereClause, error) {
	clause, err := condClause(c, boolean)
	if err != nil {
		return nil, err
	}
	return []dialect.WhereClause{clause}, nil
}

// condClause, tek bir Cond'u doğrular ve cümleciğe çevirir.
// nil değer "=" için IS NULL, "!=" / "<>" için IS NOT NULL olur.
func condClause(c Cond, boolean dialect.WhereBoolean) (dialect.WhereClause, error) {
	if err := validation.ValidateIdentifier(c.Column); err != nil {
		return dialect.WhereClause{}, newValidationError("column", c.Column, err)
	}

	op, err := validation.NormalizeOperator(c.Op)
	if err != nil {
		return dialect.WhereClause{}, newValidationError("operator", c.Op, err)
	}

	clause := dialect.WhereClause{Boolean: boolean, Column: c.Column, Operator: op}

	if validation.IsSetOperator(op) {
		values, ok := toSlice(c.Value)
		if !ok || len(values) == 0 {
			return dialect.WhereClause{}, &ValidationError{
				Context: "where",
				Value:   c.Column,
				Reason:  op + " requires a non-empty list of values",
			}
		}
		clause.Type = dialect.WhereTypeIn
		if op == "NOT IN" {
			clause.Type = dialect.WhereTypeNotIn
		}
		clause.Values = values
		return clause, nil
	}

	if c.Value == nil {
		switch op {
		case "=":
			clause.Type = dialect.WhereTypeNull
			return clause, nil
		case "!=", "<>":
			clause.Type = dialect.WhereTypeNotNull
			return clause, nil
		}
	}

	clause.Type = dialect.WhereTypeBasic
	clause.Value = c.Value
	return clause, nil
}

// toSlice, slice veya array değerini []any'e çevirir. []byte liste sayılmaz.
func toSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if values, ok := v.([]any); ok {
		return values, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}

	values := make([]any, rv.Len())
	for i := range values {
		values[i] = rv.Index(i).Interface()
	}
	return values, true
}
