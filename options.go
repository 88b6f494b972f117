package fluentdb

import (
	"github.com/biyonik/fluentdb/dialect"
)

// -----------------------------------------------------------------------------
//  Session yapılandırması fonksiyonel Option'larla yapılır. Her With*
//  fonksiyonu Session üzerinde tek bir ayarı değiştirir; sıralama önemlidir,
//  sonra gelen öncekini ezer.
//
//  -- @author   Ahmet ALTUN
//  -- @github   github.com/biyonik
//  -- @linkedin linkedin.com/in/biyonik
//  -- @email    ahmet.altun60@gmail.com
// -----------------------------------------------------------------------------

// Option, bir *Session örneği üzerinde çalışan yapılandırma fonksiyonudur.
type Option func(*Session)

// WithGrammar, sorgu derlemede kullanılacak grameri belirler.
//
// Örnek:
//
//	s := fluentdb.NewSession(db, fluentdb.WithGrammar(dialect.Postgres()))
func WithGrammar(g dialect.Grammar) Option {
	return func(s *Session) {
		if g != nil {
			s.grammar = g
		}
	}
}

// WithDialect, grameri dialect adından seçer ("sqlite", "mysql", "postgres" ve takma adları).
// Bilinmeyen ad, ilk bağlantı denemesinde ConfigError olarak döner.
func WithDialect(name string) Option {
	return func(s *Session) {
		g, err := dialect.ForName(name)
		if err != nil {
			s.initErr = &ConfigError{Field: "dialect", Reason: "unsupported dialect '" + name + "'"}
			return
		}
		s.grammar = g
	}
}

// WithPrefix, tüm tablo adlarına otomatik önek ekler. Bağlanılan Config'te
// önek varsa o kullanılır.
//
// Örnek:
//
//	s := fluentdb.NewSession(db, fluentdb.WithPrefix("app_"))
//	// s.Table("users") -> "app_users"
func WithPrefix(prefix string) Option {
	return func(s *Session) {
		s.prefix = prefix
		s.optPrefix = prefix
	}
}

// WithLogger, sorgu logger'ını belirler. Loglama WithDebug(true) ile açılır.
func WithLogger(logger Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDebug, debug modunu açar veya kapatır. Açıkken her hit loglanır.
func WithDebug(enabled bool) Option {
	return func(s *Session) {
		s.debug = enabled
	}
}

// WithTraceLimit, trace kayıtlarının üst sınırını belirler. Sınır aşılınca
// en eski kayıtlar atılır. 0 sınırsızdır.
func WithTraceLimit(n int) Option {
	return func(s *Session) {
		if n >= 0 {
			s.traceLimit = n
		}
	}
}

// WithConnector, Connect ve tembel bağlantı için kullanılacak Connector'ı belirler.
func WithConnector(c *Connector) Option {
	return func(s *Session) {
		if c != nil {
			s.connector = c
		}
	}
}

// WithPresets, session'ın connector'ını verilen preset kümesiyle kurar.
func WithPresets(p *Presets) Option {
	return func(s *Session) {
		s.connector = NewConnector(p, nil)
	}
}

func applyOptions(s *Session, opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
}
