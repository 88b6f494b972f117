package fluentdb

import (
	"net"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/biyonik/fluentdb/dialect"
)

/*
 * ----------------------------------------------------------------------------
 * CONNECTION CONFIGURATION
 * ----------------------------------------------------------------------------
 *
 * Config, bir bağlantının "nereye" ve "nasıl" açılacağını tarif eder.
 * Preset dosyasından, ortam değişkenlerinden veya doğrudan koddan gelir;
 * Connector.Resolve tarafından doğrulandıktan sonra değiştirilmez.
 *
 * @author Ahmet ALTUN
 * @github github.com/biyonik
 * @linkedin linkedin.com/in/biyonik
 * @email ahmet.altun60@gmail.com
 * ----------------------------------------------------------------------------
 */

// MemoryDatabase, SQLite bellek içi veritabanının dosya adıdır.
const MemoryDatabase = ":memory:"

// Config, veritabanı bağlantısının yapılandırma şemasıdır.
type Config struct {
	Dialect  string            `mapstructure:"dialect"`  // sqlite, mysql, postgres
	Host     string            `mapstructure:"host"`     // sunucu adresi
	Port     int               `mapstructure:"port"`     // 0 ise dialect varsayılanı
	Database string            `mapstructure:"database"` // veritabanı (schema) adı
	File     string            `mapstructure:"file"`     // SQLite dosya yolu
	User     string            `mapstructure:"user"`
	Password string            `mapstructure:"password"`
	Prefix   string            `mapstructure:"prefix"`  // tablo adı öneki
	Charset  string            `mapstructure:"charset"` // MySQL karakter seti
	Params   map[string]string `mapstructure:"params"`  // sürücüye aynen geçen DSN parametreleri
	Create   bool              `mapstructure:"create"`  // SQLite dosyası yoksa oluştur
}

// configFields, preset dosyasında tanınan anahtarlardır.
var configFields = []string{
	"dialect", "host", "port", "database", "file", "user",
	"password", "prefix", "charset", "params", "create",
}

// Validate, zorunlu alanları kontrol eder ve dialect adını kanonik hale getirir.
func (c *Config) Validate(preset string) error {
	if strings.TrimSpace(c.Dialect) == "" {
		return &ConfigError{Preset: preset, Field: "dialect", Reason: "is required"}
	}

	name := dialect.Normalize(c.Dialect)
	switch name {
	case "sqlite":
		if c.File == "" {
			return &ConfigError{Preset: preset, Field: "file", Reason: "is required for sqlite"}
		}
	case "mysql", "postgres":
		if c.Host == "" {
			return &ConfigError{Preset: preset, Field: "host", Reason: "is required for " + name}
		}
		if c.Database == "" {
			return &ConfigError{Preset: preset, Field: "database", Reason: "is required for " + name}
		}
	default:
		return &ConfigError{Preset: preset, Field: "dialect", Reason: "unsupported dialect '" + c.Dialect + "'"}
	}

	if c.Port < 0 || c.Port > 65535 {
		return &ConfigError{Preset: preset, Field: "port", Reason: "must be between 0 and 65535"}
	}

	c.Dialect = name
	return nil
}

// Driver, database/sql sürücü adını döndürür.
func (c Config) Driver() string {
	switch dialect.Normalize(c.Dialect) {
	case "sqlite":
		return "sqlite3"
	case "postgres":
		return "postgres"
	default:
		return "mysql"
	}
}

// IsMemory, yapılandırmanın SQLite bellek veritabanını gösterip göstermediğini bildirir.
func (c Config) IsMemory() bool {
	return c.File == MemoryDatabase || strings.HasPrefix(c.File, "file::memory:")
}

// DSN, sürücünün anlayacağı bağlantı dizesini oluşturur.
func (c Config) DSN() string {
	switch dialect.Normalize(c.Dialect) {
	case "sqlite":
		return c.sqliteDSN()
	case "postgres":
		return c.postgresDSN()
	default:
		return c.mysqlDSN()
	}
}

func (c Config) mysqlDSN() string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = hostPort(c.Host, c.Port, 3306)
	cfg.DBName = c.Database
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.ParseTime = true

	params := make(map[string]string, len(c.Params)+1)
	for k, v := range c.Params {
		params[k] = v
	}
	if c.Charset != "" {
		params["charset"] = c.Charset
	}
	if len(params) > 0 {
		cfg.Params = params
	}

	return cfg.FormatDSN()
}

func (c Config) postgresDSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   hostPort(c.Host, c.Port, 5432),
		Path:   "/" + c.Database,
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}

	q := url.Values{}
	for k, v := range c.Params {
		q.Set(k, v)
	}
	if q.Get("sslmode") == "" {
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()

	return u.String()
}

func (c Config) sqliteDSN() string {
	if c.File == MemoryDatabase && len(c.Params) == 0 {
		return MemoryDatabase
	}

	dsn := c.File
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	if len(c.Params) == 0 {
		return dsn
	}

	keys := make([]string, 0, len(c.Params))
	for k := range c.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = url.QueryEscape(k) + "=" + url.QueryEscape(c.Params[k])
	}

	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + strings.Join(pairs, "&")
}

// Redacted, parolası gizlenmiş bir kopya döndürür (log ve CLI çıktısı için).
func (c Config) Redacted() Config {
	if c.Password != "" {
		c.Password = "******"
	}
	return c
}

func hostPort(host string, port, fallback int) string {
	if port == 0 {
		port = fallback
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
