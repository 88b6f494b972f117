// Package fluentdb, preset tabanlı bağlantı yönetimi, akıcı sorgu oluşturma ve
// izlenebilir yürütme sunan bir veritabanı erişim katmanıdır.
//
// Yazar: Ahmet ALTUN
// Github: github.com/biyonik
// LinkedIn: linkedin.com/in/biyonik
// Email: ahmet.altun60@gmail.com
package fluentdb

import (
	"github.com/biyonik/fluentdb/dialect"
)

// Version, fluentdb kütüphanesinin mevcut sürümünü belirtir.
const Version = "0.2.0"

// Table, bağlantısız bir Query oluşturur. Yalnızca Render/ToSQL ile SQL üretmek için
// kullanılır; terminal metotlar ErrNoConnection döndürür. g nil ise MySQL grameri kullanılır.
//
// Örnek:
//
//	sql, args, err := fluentdb.Table("users", dialect.Postgres()).
//	    Where(map[string]any{"status": "active"}).
//	    ToSQL()
func Table(name string, g dialect.Grammar) *Query {
	if g == nil {
		g = dialect.MySQL()
	}
	return newQuery(nil, g, name)
}
