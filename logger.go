package fluentdb

import (
	"context"
	"log/slog"
	"time"
)

// ----------------------------------------------------------------------------
// Logger Interface
// ----------------------------------------------------------------------------

// Logger, çalışan SQL sorgularını, bindingleri, süreyi ve hatayı izlemek için
// kullanılan arayüzdür. Session yalnızca debug modunda loglar.
type Logger interface {
	Log(query string, args []any, duration time.Duration, err error)
}

// NopLogger tüm logları yutar. Varsayılan logger'dır.
type NopLogger struct{}

// Log, gelen tüm veriyi yok sayar.
func (NopLogger) Log(string, []any, time.Duration, error) {}

// LoggerFunc, sıradan bir fonksiyonu Logger olarak kullanmayı sağlar.
type LoggerFunc func(query string, args []any, duration time.Duration, err error)

// Log, fonksiyonu çağırır.
func (f LoggerFunc) Log(query string, args []any, duration time.Duration, err error) {
	f(query, args, duration, err)
}

// SlogLogger, sorguları log/slog üzerinden yazar.
// Başarılı sorgular Debug, hatalı sorgular Error seviyesindedir.
type SlogLogger struct {
	logger *slog.Logger
}

// NewSlogLogger, verilen slog.Logger için bir adaptör döndürür. nil ise slog.Default kullanılır.
func NewSlogLogger(logger *slog.Logger) *SlogLogger {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogLogger{logger: logger.With("component", "fluentdb")}
}

// Log, Logger arayüzünü uygular.
func (l *SlogLogger) Log(query string, args []any, duration time.Duration, err error) {
	attrs := []slog.Attr{
		slog.String("query", query),
		slog.Any("bindings", args),
		slog.Duration("duration", duration),
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		l.logger.LogAttrs(context.Background(), slog.LevelError, "query failed", attrs...)
		return
	}
	l.logger.LogAttrs(context.Background(), slog.LevelDebug, "query", attrs...)
}
