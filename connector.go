package fluentdb

import (
	"context"
	"database/sql"
	"io/fs"
	"sync"

	"github.com/spf13/afero"

	// database/sql sürücüleri
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Connector, bağlantı parametrelerini Config'e çözer ve canlı bağlantıyı açar.
// Global durum değiştirmez; bağlantıyı saklamak Session'ın işidir.
type Connector struct {
	mu      sync.Mutex
	presets *Presets
	fs      afero.Fs
	open    func(driver, dsn string) (*sql.DB, error)
}

// NewConnector, verilen preset kümesi ve dosya sistemiyle bir Connector oluşturur.
// presets nil ise ilk preset adı çözümlemesinde LoadPresets ile yüklenir.
// filesystem nil ise işletim sistemi dosya sistemi kullanılır.
func NewConnector(presets *Presets, filesystem afero.Fs) *Connector {
	if filesystem == nil {
		filesystem = afero.NewOsFs()
	}
	return &Connector{
		presets: presets,
		fs:      filesystem,
		open:    sql.Open,
	}
}

// Presets, connector'ın kullandığı preset kümesini döndürür (gerekirse yükler).
func (c *Connector) Presets() (*Presets, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.presets == nil {
		p, err := LoadPresets(WithPresetFs(c.fs))
		if err != nil {
			return nil, err
		}
		c.presets = p
	}
	return c.presets, nil
}

// Resolve, params değerini doğrulanmış bir Config'e çevirir.
//
// Kabul edilen biçimler:
//   - string: preset adı ("" ise DefaultPreset)
//   - Config veya *Config
//   - map[string]any: preset dosyasındaki alan adlarıyla
func (c *Connector) Resolve(params any) (Config, error) {
	var (
		cfg    Config
		preset string
	)

	switch p := params.(type) {
	case nil:
		return c.Resolve(DefaultPreset)
	case string:
		presets, err := c.Presets()
		if err != nil {
			return Config{}, err
		}
		preset = p
		if preset == "" {
			preset = DefaultPreset
		}
		if cfg, err = presets.Lookup(preset); err != nil {
			return Config{}, err
		}
	case Config:
		cfg = p
	case *Config:
		if p == nil {
			return Config{}, &ConfigError{Reason: "nil config"}
		}
		cfg = *p
	case map[string]any:
		if err := decodeConfig(p, &cfg); err != nil {
			return Config{}, &ConfigError{Reason: err.Error()}
		}
	default:
		return Config{}, &ConfigError{Reason: "unsupported connection parameters"}
	}

	if err := cfg.Validate(preset); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Open, Config'e göre bağlantıyı açar, havuzu tek bağlantıyla sınırlar ve ping atar.
// Yeniden deneme yapılmaz.
func (c *Connector) Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}

	if cfg.Dialect == "sqlite" && !cfg.Create && !cfg.IsMemory() {
		exists, err := afero.Exists(c.fs, cfg.File)
		if err != nil {
			return nil, &ConnectionError{Dialect: cfg.Dialect, Err: err}
		}
		if !exists {
			return nil, &ConnectionError{
				Dialect: cfg.Dialect,
				Err:     &fs.PathError{Op: "open", Path: cfg.File, Err: fs.ErrNotExist},
			}
		}
	}

	db, err := c.open(cfg.Driver(), cfg.DSN())
	if err != nil {
		return nil, &ConnectionError{Dialect: cfg.Dialect, Err: err}
	}

	// Tek oturum, tek bağlantı. SQLite :memory: veritabanı da bağlantıya özeldir.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &ConnectionError{Dialect: cfg.Dialect, Err: err}
	}

	return db, nil
}
