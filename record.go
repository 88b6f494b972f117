package fluentdb

import (
	"sort"
	"time"

	"github.com/spf13/cast"
)

// Record, tek bir satırın kolon adı -> değer eşlemesidir.
// Tip dönüşümlü erişimciler eksik kolon veya dönüştürülemeyen değer için sıfır değer döndürür.
type Record map[string]any

// Get, ham değeri döndürür.
func (r Record) Get(column string) any {
	return r[column]
}

// Has, kolonun kayıtta bulunup bulunmadığını bildirir.
func (r Record) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// IsNull, kolon yoksa veya değeri NULL ise true döner.
func (r Record) IsNull(column string) bool {
	return r[column] == nil
}

func (r Record) String(column string) string {
	return cast.ToString(r[column])
}

func (r Record) Int(column string) int64 {
	return cast.ToInt64(r[column])
}

func (r Record) Float(column string) float64 {
	return cast.ToFloat64(r[column])
}

func (r Record) Bool(column string) bool {
	return cast.ToBool(r[column])
}

func (r Record) Time(column string) time.Time {
	return cast.ToTime(r[column])
}

// Columns, kolon adlarını alfabetik sırayla döndürür.
func (r Record) Columns() []string {
	cols := make([]string, 0, len(r))
	for k := range r {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}
