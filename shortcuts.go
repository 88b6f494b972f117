package fluentdb

import (
	"context"
	"database/sql"
)

// ----------------------------------------------------------------------------
// Tablo kısayolları
//
// Her kısayol yalnızca bir Query zinciri kurar ve terminal metodu çağırır; session'a
// ek durum yazmaz. Boş where ve order değerleri ("" veya nil) yok sayılır.
// ----------------------------------------------------------------------------

// Select, tablodan kayıtları döndürür.
//
// Örnek:
//
//	res, err := s.Select(ctx, "users", "id, name", map[string]any{"active": true}, "name asc", 0, 20)
func (s *Session) Select(ctx context.Context, table, columns string, where any, order string, offset, limit any) (Result, error) {
	return s.Table(table).
		Select(columns).
		Where(where).
		Order(order).
		Offset(offset).
		Limit(limit).
		AllContext(ctx)
}

// First, koşula uyan ilk kaydı döndürür. Kayıt yoksa ok false'tur.
func (s *Session) First(ctx context.Context, table, columns string, where any, order string) (Record, bool, error) {
	return s.Table(table).
		Select(columns).
		Where(where).
		Order(order).
		FirstContext(ctx)
}

// Row, First ile aynıdır.
func (s *Session) Row(ctx context.Context, table, columns string, where any, order string) (Record, bool, error) {
	return s.First(ctx, table, columns, where, order)
}

// One, First ile aynıdır.
func (s *Session) One(ctx context.Context, table, columns string, where any, order string) (Record, bool, error) {
	return s.First(ctx, table, columns, where, order)
}

// Column, tek bir kolonun değerlerini döndürür.
func (s *Session) Column(ctx context.Context, table, column string, where any, order string, limit any) ([]any, error) {
	return s.Table(table).
		Where(where).
		Order(order).
		Limit(limit).
		ColumnContext(ctx, column)
}

// Insert, tabloya tek kayıt ekler. Eklenen id LastID ile okunur.
func (s *Session) Insert(ctx context.Context, table string, values map[string]any) (bool, error) {
	return s.Table(table).InsertContext(ctx, values)
}

// Update, koşula uyan kayıtları günceller.
func (s *Session) Update(ctx context.Context, table string, values map[string]any, where any) (bool, error) {
	return s.Table(table).Where(where).UpdateContext(ctx, values)
}

// Delete, koşula uyan kayıtları siler.
func (s *Session) Delete(ctx context.Context, table string, where any) (bool, error) {
	return s.Table(table).Where(where).DeleteContext(ctx)
}

// Count, koşula uyan satır sayısını döndürür.
func (s *Session) Count(ctx context.Context, table string, where any) (int64, error) {
	return s.Table(table).Where(where).CountContext(ctx)
}

func (s *Session) Min(ctx context.Context, table, column string, where any) (sql.NullFloat64, error) {
	return s.Table(table).Where(where).MinContext(ctx, column)
}

func (s *Session) Max(ctx context.Context, table, column string, where any) (sql.NullFloat64, error) {
	return s.Table(table).Where(where).MaxContext(ctx, column)
}

func (s *Session) Avg(ctx context.Context, table, column string, where any) (sql.NullFloat64, error) {
	return s.Table(table).Where(where).AvgContext(ctx, column)
}

func (s *Session) Sum(ctx context.Context, table, column string, where any) (sql.NullFloat64, error) {
	return s.Table(table).Where(where).SumContext(ctx, column)
}

// MinValue, Min'in sürücü değeri döndüren biçimidir (metin ve tarih kolonları).
func (s *Session) MinValue(ctx context.Context, table, column string, where any) (any, error) {
	return s.Table(table).Where(where).MinValueContext(ctx, column)
}

func (s *Session) MaxValue(ctx context.Context, table, column string, where any) (any, error) {
	return s.Table(table).Where(where).MaxValueContext(ctx, column)
}
